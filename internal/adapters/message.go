package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/planteur/planteur-core/internal/monitoring"
)

// PlantMessage is the JSON body sent by network and MQTT peripherals:
//
//	{"plant":{"timestamp":1767225600.5,"uid":"ficus","humidity":42,"temperature":21.5}}
//
// timestamp is optional and may be Unix seconds or an RFC 3339 string.
// humidity and temperature are each optional.
type PlantMessage struct {
	Plant PlantPayload `json:"plant"`
}

// PlantPayload is the body of a PlantMessage.
type PlantPayload struct {
	Timestamp   json.RawMessage `json:"timestamp,omitempty"`
	UID         string          `json:"uid"`
	Humidity    *float64        `json:"humidity,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

// DecodePlantMessage decodes and validates a plant message. now stamps
// messages that carry no timestamp.
func DecodePlantMessage(data []byte, now time.Time) (monitoring.Reading, error) {
	var msg PlantMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &msg); err != nil {
		return monitoring.Reading{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	p := msg.Plant
	if p.UID == "" {
		return monitoring.Reading{}, fmt.Errorf("%w: missing plant.uid", ErrMalformed)
	}

	ts, err := parseTimestamp(p.Timestamp, now)
	if err != nil {
		return monitoring.Reading{}, err
	}

	var opts []monitoring.Option
	if p.Humidity != nil {
		h := *p.Humidity
		if h != math.Trunc(h) {
			return monitoring.Reading{}, fmt.Errorf("%w: humidity %v is not an integer", ErrMalformed, h)
		}
		opts = append(opts, monitoring.WithHumidity(int(h)))
	}
	if p.Temperature != nil {
		opts = append(opts, monitoring.WithTemperature(*p.Temperature))
	}

	r := monitoring.NewReadingAt(ts, p.UID, opts...)
	if err := r.Validate(); err != nil {
		return monitoring.Reading{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return r, nil
}

// EncodePlantMessage is the inverse of DecodePlantMessage. The timestamp
// is written as fractional Unix seconds.
func EncodePlantMessage(r monitoring.Reading) ([]byte, error) {
	ts := float64(r.Timestamp().UnixNano()) / float64(time.Second)
	p := PlantPayload{UID: r.PlantUID(), Timestamp: json.RawMessage(fmt.Sprintf("%.6f", ts))}
	if h, ok := r.Humidity(); ok {
		v := float64(h)
		p.Humidity = &v
	}
	if t, ok := r.Temperature(); ok {
		p.Temperature = &t
	}
	return json.Marshal(PlantMessage{Plant: p})
}

// MaxClockSkew is how far ahead of the gateway clock a peripheral timestamp
// may run.
const MaxClockSkew = 24 * time.Hour

func parseTimestamp(raw json.RawMessage, now time.Time) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return now, nil
	}

	var ts time.Time
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil {
		// Range-check before converting: 1e30 does not fit in an int64.
		if secs < float64(monitoring.MinTimestamp.Unix()) || secs > float64(monitoring.MaxTimestamp.Unix()) {
			return time.Time{}, fmt.Errorf("%w: timestamp %v out of range", ErrMalformed, secs)
		}
		whole, frac := math.Modf(secs)
		ts = time.Unix(int64(whole), int64(frac*float64(time.Second)))
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp must be a number or a string", ErrMalformed)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp: %w", ErrMalformed, err)
		}
		ts = parsed
	}

	if ts.After(now.Add(MaxClockSkew)) {
		return time.Time{}, fmt.Errorf("%w: timestamp %s is ahead of gateway clock %s",
			ErrMalformed, ts.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return ts, nil
}
