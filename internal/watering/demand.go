package watering

import (
	"time"

	"github.com/google/uuid"
)

// Demand asks for a plant to be watered. Only the Sprinkler creates demands.
type Demand struct {
	// ID lets consumers drop duplicates of at-least-once deliveries.
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PlantUID  string    `json:"uid"`
}

func newDemand(plantUID string, now time.Time) Demand {
	return Demand{
		ID:        uuid.New(),
		Timestamp: now.UTC(),
		PlantUID:  plantUID,
	}
}
