package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for Planteur MQTT traffic.
const (
	// TopicPrefix is the root of every Planteur topic.
	TopicPrefix = "planteur"

	// TopicPrefixSystem is the base for gateway status topics.
	TopicPrefixSystem = "planteur/system"
)

// Topics provides builders for Planteur MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.PlantReadings() // "planteur/plant"
//	topics.Watering()      // "planteur/watering"
type Topics struct{}

// PlantReadings returns the topic remote peripherals publish readings on.
//
// Example: planteur/plant
func (Topics) PlantReadings() string {
	return fmt.Sprintf("%s/plant", TopicPrefix)
}

// Watering returns the topic watering demands are published on.
//
// Example: planteur/watering
func (Topics) Watering() string {
	return fmt.Sprintf("%s/watering", TopicPrefix)
}

// PlantWatering returns the per-plant demand topic, for consumers that only
// drive one valve.
//
// Example: planteur/watering/ficus-01
func (Topics) PlantWatering(uid string) string {
	return fmt.Sprintf("%s/watering/%s", TopicPrefix, uid)
}

// SystemStatus returns the gateway online/offline status topic.
//
// Example: planteur/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTopics returns a pattern matching all Planteur topics.
//
// Pattern: planteur/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// validateTopic checks a topic against the MQTT topic rules. Subscribe
// filters may use + as a whole level and # as the final level; publish
// topics may use neither.
func validateTopic(topic string, filter bool) error {
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidTopic, topic)
	}

	levels := strings.Split(topic, "/")
	for i, level := range levels {
		if !strings.ContainsAny(level, "+#") {
			continue
		}
		if !filter {
			return fmt.Errorf("%w: wildcard in publish topic %q", ErrInvalidTopic, topic)
		}
		switch {
		case level == "+":
		case level == "#" && i == len(levels)-1:
		default:
			return fmt.Errorf("%w: misplaced wildcard in %q", ErrInvalidTopic, topic)
		}
	}
	return nil
}
