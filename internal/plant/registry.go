package plant

import "fmt"

// Registry is an immutable uid-indexed table of plants.
//
// Thread Safety:
//   - A Registry never changes after NewRegistry returns, so all methods
//     are safe for concurrent use without locking.
type Registry struct {
	byUID    map[string]Plant
	bySerial map[uint8]string
	order    []string
}

// NewRegistry validates plants and builds a Registry from them.
// Description order is preserved by Plants.
//
// Parameters:
//   - plants: Plant entries, typically from Parse
//
// Returns:
//   - *Registry: Ready for lookups
//   - error: First validation failure, wrapping one of the package errors
func NewRegistry(plants []Plant) (*Registry, error) {
	r := &Registry{
		byUID:    make(map[string]Plant, len(plants)),
		bySerial: make(map[uint8]string),
		order:    make([]string, 0, len(plants)),
	}

	for _, p := range plants {
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, exists := r.byUID[p.UID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUID, p.UID)
		}
		if p.Connection == ConnectionSerial {
			if other, taken := r.bySerial[p.SerialID]; taken {
				return nil, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateSerialID, p.SerialID, other, p.UID)
			}
			r.bySerial[p.SerialID] = p.UID
		}
		r.byUID[p.UID] = p
		r.order = append(r.order, p.UID)
	}

	return r, nil
}

// Lookup returns the plant with the given uid.
func (r *Registry) Lookup(uid string) (Plant, bool) {
	p, ok := r.byUID[uid]
	return p, ok
}

// Get is Lookup with an error result for callers that propagate errors.
func (r *Registry) Get(uid string) (Plant, error) {
	p, ok := r.byUID[uid]
	if !ok {
		return Plant{}, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	return p, nil
}

// LookupSerial returns the serial plant using the given radio address.
func (r *Registry) LookupSerial(id uint8) (Plant, bool) {
	uid, ok := r.bySerial[id]
	if !ok {
		return Plant{}, false
	}
	return r.byUID[uid], true
}

// Len returns the number of plants.
func (r *Registry) Len() int {
	return len(r.order)
}

// Plants returns every plant in description order.
func (r *Registry) Plants() []Plant {
	out := make([]Plant, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.byUID[uid])
	}
	return out
}

// ByConnection returns the plants reporting over c, in description order.
func (r *Registry) ByConnection(c ConnectionType) []Plant {
	var out []Plant
	for _, uid := range r.order {
		if p := r.byUID[uid]; p.Connection == c {
			out = append(out, p)
		}
	}
	return out
}

// HasConnection reports whether any plant reports over c.
func (r *Registry) HasConnection(c ConnectionType) bool {
	for _, p := range r.byUID {
		if p.Connection == c {
			return true
		}
	}
	return false
}
