package plant

import (
	"errors"
	"testing"
)

func samplePlants() []Plant {
	return []Plant{
		{UID: "ficus", Name: "Ficus", Connection: ConnectionNetwork, Watering: WateringConditional},
		{UID: "basil", Name: "Basil", Connection: ConnectionSerial, Watering: WateringPlanned, SerialID: 3},
		{UID: "cactus", Name: "Cactus", Connection: ConnectionWired, Watering: WateringNone},
		{UID: "mint", Name: "Mint", Connection: ConnectionSerial, Watering: WateringConditional, SerialID: 7},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(samplePlants())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}

	p, ok := r.Lookup("basil")
	if !ok {
		t.Fatal("Lookup(basil) not found")
	}
	if p.Watering != WateringPlanned || p.SerialID != 3 {
		t.Errorf("Lookup(basil) = %+v", p)
	}

	if _, ok := r.Lookup("orchid"); ok {
		t.Error("Lookup(orchid) should miss")
	}
}

func TestNewRegistry_Empty(t *testing.T) {
	r, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry(nil) error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if r.HasConnection(ConnectionNetwork) {
		t.Error("empty registry should have no connections")
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		plants  []Plant
		wantErr error
	}{
		{
			name: "duplicate uid",
			plants: []Plant{
				{UID: "a", Connection: ConnectionNetwork, Watering: WateringNone},
				{UID: "a", Connection: ConnectionWired, Watering: WateringNone},
			},
			wantErr: ErrDuplicateUID,
		},
		{
			name: "duplicate serial id",
			plants: []Plant{
				{UID: "a", Connection: ConnectionSerial, Watering: WateringNone, SerialID: 9},
				{UID: "b", Connection: ConnectionSerial, Watering: WateringNone, SerialID: 9},
			},
			wantErr: ErrDuplicateSerialID,
		},
		{
			name:    "serial plant without id",
			plants:  []Plant{{UID: "a", Connection: ConnectionSerial, Watering: WateringNone}},
			wantErr: ErrMissingSerialID,
		},
		{
			name:    "serial id on network plant",
			plants:  []Plant{{UID: "a", Connection: ConnectionNetwork, Watering: WateringNone, SerialID: 2}},
			wantErr: ErrInvalidPlant,
		},
		{
			name:    "unknown connection",
			plants:  []Plant{{UID: "a", Connection: "bluetooth", Watering: WateringNone}},
			wantErr: ErrInvalidConnection,
		},
		{
			name:    "unknown watering",
			plants:  []Plant{{UID: "a", Connection: ConnectionWired, Watering: "flood"}},
			wantErr: ErrInvalidWatering,
		},
		{
			name:    "empty uid",
			plants:  []Plant{{Connection: ConnectionWired, Watering: WateringNone}},
			wantErr: ErrInvalidPlant,
		},
		{
			name:    "uid with whitespace",
			plants:  []Plant{{UID: "my plant", Connection: ConnectionWired, Watering: WateringNone}},
			wantErr: ErrInvalidPlant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.plants)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRegistry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r, err := NewRegistry(samplePlants())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if _, err := r.Get("ficus"); err != nil {
		t.Errorf("Get(ficus) error = %v", err)
	}
	if _, err := r.Get("orchid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(orchid) error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_LookupSerial(t *testing.T) {
	r, err := NewRegistry(samplePlants())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	p, ok := r.LookupSerial(7)
	if !ok || p.UID != "mint" {
		t.Errorf("LookupSerial(7) = %+v, %v; want mint", p, ok)
	}
	if _, ok := r.LookupSerial(0); ok {
		t.Error("LookupSerial(0) should miss")
	}
}

func TestRegistry_PlantsKeepsOrder(t *testing.T) {
	r, err := NewRegistry(samplePlants())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	want := []string{"ficus", "basil", "cactus", "mint"}
	got := r.Plants()
	if len(got) != len(want) {
		t.Fatalf("Plants() len = %d, want %d", len(got), len(want))
	}
	for i, uid := range want {
		if got[i].UID != uid {
			t.Errorf("Plants()[%d] = %s, want %s", i, got[i].UID, uid)
		}
	}

	// Callers get copies.
	got[0].Watering = WateringNone
	if p, _ := r.Lookup("ficus"); p.Watering != WateringConditional {
		t.Error("mutating Plants() result changed the registry")
	}
}

func TestRegistry_ByConnection(t *testing.T) {
	r, err := NewRegistry(samplePlants())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	serial := r.ByConnection(ConnectionSerial)
	if len(serial) != 2 || serial[0].UID != "basil" || serial[1].UID != "mint" {
		t.Errorf("ByConnection(serial) = %+v", serial)
	}
	for _, c := range AllConnections() {
		if !r.HasConnection(c) {
			t.Errorf("HasConnection(%s) = false", c)
		}
	}
}
