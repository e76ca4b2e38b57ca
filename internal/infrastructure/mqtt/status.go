package mqtt

import (
	"encoding/json"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Gateway states on planteur/system/status.
const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Offline reasons.
const (
	ReasonShutdown = "graceful_shutdown"
	ReasonLost     = "unexpected_disconnect"
)

// willQoS is fixed so the broker delivers the offline notice at least once
// whatever the configured QoS.
const willQoS = 1

// Identity names the gateway on the status topic.
type Identity struct {
	Gateway string
	Version string

	// Snapshot is sampled each time a status is published. Optional.
	Snapshot func() Snapshot
}

// Snapshot is the gateway state carried by a status message.
type Snapshot struct {
	Plants int                    `json:"plants"`
	Queues map[string]QueueStatus `json:"queues,omitempty"`
}

// QueueStatus summarises one event queue.
type QueueStatus struct {
	Depth    int    `json:"depth"`
	Capacity int    `json:"capacity"`
	Posted   uint64 `json:"posted"`
}

// Status is the retained payload on planteur/system/status. Valve
// controllers use it to tell whether the gateway is alive.
type Status struct {
	Gateway       string    `json:"gateway"`
	State         string    `json:"state"`
	Reason        string    `json:"reason,omitempty"`
	Version       string    `json:"version,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Subscriptions []string  `json:"subscriptions,omitempty"`
	*Snapshot
}

// statusFor builds a status message. Subscriptions and the snapshot are
// only meaningful while online.
func (id Identity) statusFor(state, reason string, subs []string, now time.Time) Status {
	st := Status{
		Gateway:   id.Gateway,
		State:     state,
		Reason:    reason,
		Version:   id.Version,
		Timestamp: now.UTC(),
	}
	if state == StateOnline {
		st.Subscriptions = subs
	}
	if id.Snapshot != nil && reason != ReasonLost {
		snap := id.Snapshot()
		st.Snapshot = &snap
	}
	return st
}

func encodeStatus(st Status) []byte {
	b, err := json.Marshal(st)
	if err != nil {
		return []byte(`{"gateway":"` + st.Gateway + `","state":"` + st.State + `"}`)
	}
	return b
}

// configureWill registers the offline notice the broker publishes when the
// gateway vanishes without Close. Its timestamp is the connect time.
func configureWill(opts *pahomqtt.ClientOptions, id Identity) {
	st := id.statusFor(StateOffline, ReasonLost, nil, time.Now())
	opts.SetBinaryWill(Topics{}.SystemStatus(), encodeStatus(st), willQoS, true)
}
