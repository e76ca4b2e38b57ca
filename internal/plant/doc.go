// Package plant provides the Plant Registry for Planteur Core.
//
// The registry is the static catalogue of plants the gateway knows about.
// It is loaded once at startup from a YAML or JSON description and is
// read-only afterwards, so the aggregator and the sprinkler share it
// without locking.
//
// # Description format
//
//	plants:
//	  - uid: "ficus-01"
//	    name: "Ficus by the window"
//	    connection: "serial"     # network, wired, serial (alias: xbee)
//	    watering: "conditional"  # planned, conditional, no_watering (alias: nowatering)
//	    serial_id: 3             # serial plants only (alias: xbee_id)
//
// JSON documents with the same shape are accepted as-is.
//
// # Key Types
//
//   - Plant: identity and watering policy of one plant
//   - ConnectionType: transport the plant's peripheral uses
//   - WateringMethod: how the plant is watered
//   - Registry: immutable uid-indexed lookup table
//
// # Usage
//
//	registry, err := plant.LoadFile(cfg.Plants.File)
//	if err != nil {
//	    return err // fatal: the gateway cannot run without its plants
//	}
//	p, ok := registry.Lookup(reading.PlantUID)
package plant
