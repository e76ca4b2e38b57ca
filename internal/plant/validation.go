package plant

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxUIDLength  = 64
	maxNameLength = 100

	// Radio address 0 belongs to the gateway coordinator.
	minSerialID = 1
	maxSerialID = 255
)

// Validate checks a single plant in isolation.
// Cross-plant rules (unique uid and serial id) are enforced by NewRegistry.
func Validate(p Plant) error {
	if err := validateUID(p.UID); err != nil {
		return err
	}
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("%w: %s: name exceeds %d characters", ErrInvalidPlant, p.UID, maxNameLength)
	}
	if !p.Connection.Valid() {
		return fmt.Errorf("%w: %s: %q", ErrInvalidConnection, p.UID, p.Connection)
	}
	if !p.Watering.Valid() {
		return fmt.Errorf("%w: %s: %q", ErrInvalidWatering, p.UID, p.Watering)
	}

	switch p.Connection {
	case ConnectionSerial:
		if p.SerialID < minSerialID {
			return fmt.Errorf("%w: %s", ErrMissingSerialID, p.UID)
		}
	case ConnectionNetwork, ConnectionWired:
		if p.SerialID != 0 {
			return fmt.Errorf("%w: %s: serial_id set on %s plant", ErrInvalidPlant, p.UID, p.Connection)
		}
	}
	return nil
}

func validateUID(uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrInvalidPlant)
	}
	if len(uid) > maxUIDLength {
		return fmt.Errorf("%w: uid %q exceeds %d characters", ErrInvalidPlant, uid, maxUIDLength)
	}
	if strings.IndexFunc(uid, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: uid %q contains whitespace", ErrInvalidPlant, uid)
	}
	return nil
}
