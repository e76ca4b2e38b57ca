package plant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_YAML(t *testing.T) {
	r, err := Load([]byte(`
plants:
  - uid: ficus
    name: Ficus
    connection: network
    watering: conditional
  - uid: basil
    name: Basil
    connection: serial
    watering: planned
    serial_id: 4
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if p, ok := r.LookupSerial(4); !ok || p.UID != "basil" {
		t.Errorf("LookupSerial(4) = %+v, %v", p, ok)
	}
}

func TestLoad_LegacyJSON(t *testing.T) {
	r, err := Load([]byte(`{"plants": [
		{"uid": "p1", "name": "Pepper", "connection": "xbee", "watering": "conditional", "xbee_id": 12},
		{"uid": "p2", "name": "Palm", "connection": "wired", "watering": "nowatering"}
	]}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p1, _ := r.Lookup("p1")
	if p1.Connection != ConnectionSerial || p1.SerialID != 12 {
		t.Errorf("p1 = %+v, want serial with id 12", p1)
	}
	p2, _ := r.Lookup("p2")
	if p2.Watering != WateringNone {
		t.Errorf("p2.Watering = %q, want no_watering", p2.Watering)
	}
}

func TestLoad_EmptyList(t *testing.T) {
	r, err := Load([]byte("plants: []\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty document", "", ErrInvalidDescription},
		{"missing plants key", "gardens: []", ErrInvalidDescription},
		{"malformed", "plants: [", ErrInvalidDescription},
		{"unknown field", "plants:\n  - uid: a\n    connection: wired\n    watering: planned\n    colour: green\n", ErrInvalidDescription},
		{"bad connection", "plants:\n  - uid: a\n    connection: lora\n    watering: planned\n", ErrInvalidConnection},
		{"bad watering", "plants:\n  - uid: a\n    connection: wired\n    watering: daily\n", ErrInvalidWatering},
		{"serial id out of range", "plants:\n  - uid: a\n    connection: serial\n    watering: planned\n    serial_id: 300\n", ErrInvalidPlant},
		{"serial id zero", "plants:\n  - uid: a\n    connection: serial\n    watering: planned\n    serial_id: 0\n", ErrInvalidPlant},
		{"conflicting ids", "plants:\n  - uid: a\n    connection: serial\n    watering: planned\n    serial_id: 1\n    xbee_id: 2\n", ErrInvalidPlant},
		{"duplicate uid", "plants:\n  - {uid: a, connection: wired, watering: planned}\n  - {uid: a, connection: wired, watering: planned}\n", ErrDuplicateUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.yaml")
	if err := os.WriteFile(path, []byte("plants:\n  - {uid: a, connection: wired, watering: planned}\n"), 0600); err != nil {
		t.Fatalf("writing description: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}
