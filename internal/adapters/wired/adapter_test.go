package wired

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/planteur/planteur-core/internal/monitoring"
)

type chanPoster struct {
	ch chan monitoring.Reading
}

func (p *chanPoster) Post(r monitoring.Reading) { p.ch <- r }

func TestSawtoothSensor(t *testing.T) {
	s := NewSawtoothSensor()
	ctx := context.Background()

	var got []int
	for i := 0; i < 103; i++ {
		sample, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if sample.Temperature != nil {
			t.Fatal("sawtooth sensor should not report temperature")
		}
		got = append(got, *sample.Humidity)
	}

	if got[0] != 0 || got[50] != 50 || got[100] != 100 {
		t.Errorf("ramp = %d, %d, %d, want 0, 50, 100", got[0], got[50], got[100])
	}
	if got[101] != 0 || got[102] != 1 {
		t.Errorf("after wrap = %d, %d, want 0, 1", got[101], got[102])
	}
}

func TestAdapter_PollsOnInterval(t *testing.T) {
	poster := &chanPoster{ch: make(chan monitoring.Reading, 16)}
	a := New(poster, "pgt_basil_wired", NewSawtoothSensor(), Options{PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	for want := 0; want < 3; want++ {
		select {
		case r := <-poster.ch:
			if r.PlantUID() != "pgt_basil_wired" {
				t.Errorf("uid = %q", r.PlantUID())
			}
			if h, ok := r.Humidity(); !ok || h != want {
				t.Errorf("poll %d humidity = (%d, %v)", want, h, ok)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("poll %d not posted", want)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestAdapter_SensorErrorsAreSkipped(t *testing.T) {
	poster := &chanPoster{ch: make(chan monitoring.Reading, 4)}
	calls := 0
	sensor := SensorFunc(func(context.Context) (Sample, error) {
		calls++
		switch calls {
		case 1:
			return Sample{}, errors.New("adc timeout")
		case 2:
			bad := 140
			return Sample{Humidity: &bad}, nil
		default:
			h, c := 35, 19.5
			return Sample{Humidity: &h, Temperature: &c}, nil
		}
	})

	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	a := New(poster, "pgt_basil_wired", sensor, Options{Now: func() time.Time { return ts }})

	for i := 0; i < 3; i++ {
		a.poll(context.Background())
	}

	if got := a.Stats(); got.Polls != 3 || got.Failed != 2 || got.Posted != 1 {
		t.Errorf("Stats() = %+v", got)
	}

	r := <-poster.ch
	if c, ok := r.Temperature(); !ok || c != 19.5 {
		t.Errorf("temperature = (%v, %v)", c, ok)
	}
	if !r.Timestamp().Equal(ts) {
		t.Errorf("timestamp = %v", r.Timestamp())
	}
}

func TestAdapter_Name(t *testing.T) {
	a := New(&chanPoster{}, "pgt_basil_wired", NewSawtoothSensor(), Options{})
	if a.Name() != "wired:pgt_basil_wired" {
		t.Errorf("Name() = %q", a.Name())
	}
	if a.interval != defaultPollInterval {
		t.Errorf("interval = %v, want %v", a.interval, defaultPollInterval)
	}
}
