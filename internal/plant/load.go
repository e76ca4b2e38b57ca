package plant

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// descriptionDoc is the on-disk shape of a plant description.
type descriptionDoc struct {
	Plants *[]plantDoc `yaml:"plants"`
}

type plantDoc struct {
	UID        string `yaml:"uid"`
	Name       string `yaml:"name"`
	Connection string `yaml:"connection"`
	Watering   string `yaml:"watering"`
	SerialID   *int   `yaml:"serial_id"`
	XBeeID     *int   `yaml:"xbee_id"`
}

// LoadFile reads a plant description file and builds a Registry from it.
// An empty plant list is valid; callers decide whether to warn about it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plant description: %w", err)
	}
	return Load(data)
}

// Load parses a YAML or JSON plant description and builds a Registry from it.
func Load(data []byte) (*Registry, error) {
	plants, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewRegistry(plants)
}

// Parse decodes a plant description into Plant values without cross-plant checks.
// Unknown keys are rejected so typos fail at startup rather than silently.
func Parse(data []byte) ([]Plant, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc descriptionDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDescription)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescription, err)
	}
	if doc.Plants == nil {
		return nil, fmt.Errorf("%w: missing plants list", ErrInvalidDescription)
	}

	plants := make([]Plant, 0, len(*doc.Plants))
	for i, d := range *doc.Plants {
		p, err := d.toPlant()
		if err != nil {
			return nil, fmt.Errorf("plants[%d]: %w", i, err)
		}
		plants = append(plants, p)
	}
	return plants, nil
}

func (d plantDoc) toPlant() (Plant, error) {
	conn, err := ParseConnection(d.Connection)
	if err != nil {
		return Plant{}, err
	}
	watering, err := ParseWatering(d.Watering)
	if err != nil {
		return Plant{}, err
	}

	p := Plant{
		UID:        d.UID,
		Name:       d.Name,
		Connection: conn,
		Watering:   watering,
	}

	id := d.SerialID
	if id == nil {
		id = d.XBeeID
	} else if d.XBeeID != nil && *d.XBeeID != *d.SerialID {
		return Plant{}, fmt.Errorf("%w: %s: serial_id and xbee_id disagree", ErrInvalidPlant, d.UID)
	}
	if id != nil {
		if *id < minSerialID || *id > maxSerialID {
			return Plant{}, fmt.Errorf("%w: %s: serial_id %d out of range %d..%d",
				ErrInvalidPlant, d.UID, *id, minSerialID, maxSerialID)
		}
		p.SerialID = uint8(*id)
	}

	return p, nil
}
