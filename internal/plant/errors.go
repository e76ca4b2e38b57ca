package plant

import "errors"

// Domain errors for the plant package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, plant.ErrInvalidConnection) {
//	    // description names an unknown transport
//	}
var (
	// ErrNotFound is returned when a uid is not in the registry.
	ErrNotFound = errors.New("plant: not found")

	// ErrInvalidDescription is returned when the plant description cannot be parsed.
	ErrInvalidDescription = errors.New("plant: invalid description")

	// ErrInvalidPlant is returned when a plant entry fails validation.
	ErrInvalidPlant = errors.New("plant: invalid")

	// ErrInvalidConnection is returned for an unrecognised connection value.
	ErrInvalidConnection = errors.New("plant: invalid connection")

	// ErrInvalidWatering is returned for an unrecognised watering value.
	ErrInvalidWatering = errors.New("plant: invalid watering method")

	// ErrDuplicateUID is returned when two plants share a uid.
	ErrDuplicateUID = errors.New("plant: duplicate uid")

	// ErrDuplicateSerialID is returned when two serial plants share a radio address.
	ErrDuplicateSerialID = errors.New("plant: duplicate serial id")

	// ErrMissingSerialID is returned when a serial plant has no radio address.
	ErrMissingSerialID = errors.New("plant: missing serial id")
)
