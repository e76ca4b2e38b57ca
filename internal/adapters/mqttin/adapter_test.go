package mqttin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/planteur/planteur-core/internal/adapters"
	"github.com/planteur/planteur-core/internal/infrastructure/mqtt"
	"github.com/planteur/planteur-core/internal/monitoring"
)

type fakeSubscriber struct {
	mu           sync.Mutex
	subscribeErr error
	handlers     map[string]mqtt.MessageHandler
	unsubscribed []string
	subscribed   chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers:   make(map[string]mqtt.MessageHandler),
		subscribed: make(chan struct{}, 1),
	}
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, h mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.handlers[topic] = h
	f.subscribed <- struct{}{}
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	f.unsubscribed = append(f.unsubscribed, topic)
	return nil
}

func (f *fakeSubscriber) deliver(t *testing.T, topic, payload string) error {
	t.Helper()
	f.mu.Lock()
	h, ok := f.handlers[topic]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no handler for %s", topic)
	}
	return h(topic, []byte(payload))
}

type slicePoster struct {
	mu       sync.Mutex
	readings []monitoring.Reading
}

func (p *slicePoster) Post(r monitoring.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readings = append(p.readings, r)
}

func TestAdapter_Run(t *testing.T) {
	sub := newFakeSubscriber()
	poster := &slicePoster{}
	a := New(sub, poster, Options{QoS: 1})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	select {
	case <-sub.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("adapter did not subscribe")
	}

	if err := sub.deliver(t, "planteur/plant", `{"plant":{"timestamp":1780300800,"uid":"ficus","humidity":48}}`); err != nil {
		t.Errorf("valid message error = %v", err)
	}
	if err := sub.deliver(t, "planteur/plant", `{"plant":`); !errors.Is(err, adapters.ErrMalformed) {
		t.Errorf("malformed message error = %v, want ErrMalformed", err)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}

	if len(poster.readings) != 1 || poster.readings[0].PlantUID() != "ficus" {
		t.Fatalf("posted = %v", poster.readings)
	}
	if got := a.Stats(); got.Received != 2 || got.Posted != 1 || got.Dropped != 1 {
		t.Errorf("Stats() = %+v", got)
	}
	if len(sub.unsubscribed) != 1 || sub.unsubscribed[0] != "planteur/plant" {
		t.Errorf("unsubscribed = %v", sub.unsubscribed)
	}
}

func TestAdapter_SubscribeFailure(t *testing.T) {
	sub := newFakeSubscriber()
	sub.subscribeErr = mqtt.ErrNotConnected

	a := New(sub, &slicePoster{}, Options{Topic: "greenhouse/plant"})
	err := a.Run(context.Background())
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Run() error = %v, want ErrNotConnected", err)
	}
}

func TestHandleMessage_StampsMissingTimestamp(t *testing.T) {
	poster := &slicePoster{}
	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	a := New(newFakeSubscriber(), poster, Options{Now: func() time.Time { return ts }})

	if err := a.HandleMessage("planteur/plant", []byte(`{"plant":{"uid":"ficus","humidity":20}}`)); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !poster.readings[0].Timestamp().Equal(ts) {
		t.Errorf("timestamp = %v, want %v", poster.readings[0].Timestamp(), ts)
	}
}
