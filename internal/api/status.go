package api

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/planteur/planteur-core/internal/eventbus"
	"github.com/planteur/planteur-core/internal/plant"
)

// healthCheckTimeout bounds each component probe.
const healthCheckTimeout = 2 * time.Second

// HealthResponse is the body of /api/v1/health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// SystemStatus is the body of /api/v1/status.
type SystemStatus struct {
	Timestamp     string                    `json:"timestamp"`
	Version       string                    `json:"version"`
	UptimeSeconds int64                     `json:"uptime_seconds"`
	Runtime       RuntimeMetrics            `json:"runtime"`
	Plants        PlantMetrics              `json:"plants"`
	Buses         map[string]eventbus.Stats `json:"buses"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// PlantMetrics summarises the registry.
type PlantMetrics struct {
	Total        int            `json:"total"`
	ByConnection map[string]int `json:"by_connection"`
	ByWatering   map[string]int `json:"by_watering"`
}

// handleHealth probes every component and answers 503 if any fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: s.version}

	if len(s.components) > 0 {
		resp.Components = make(map[string]string, len(s.components))
		names := make([]string, 0, len(s.components))
		for name := range s.components {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := s.components[name].HealthCheck(ctx)
			cancel()
			if err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleStatus returns runtime, registry and event bus statistics.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Plants: s.plantMetrics(),
		Buses:  make(map[string]eventbus.Stats, len(s.buses)),
	}
	for name, b := range s.buses {
		status.Buses[name] = b.Stats()
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) plantMetrics() PlantMetrics {
	m := PlantMetrics{
		ByConnection: make(map[string]int),
		ByWatering:   make(map[string]int),
	}
	for _, p := range s.registry.Plants() {
		m.Total++
		m.ByConnection[p.Connection.String()]++
		m.ByWatering[p.Watering.String()]++
	}
	for _, c := range plant.AllConnections() {
		if _, ok := m.ByConnection[c.String()]; !ok {
			m.ByConnection[c.String()] = 0
		}
	}
	return m
}
