package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/plant"
	"github.com/planteur/planteur-core/internal/storage"
	"github.com/planteur/planteur-core/internal/watering"
)

// defaultHistoryLimit applies when ?limit= is absent.
const defaultHistoryLimit = 50

// PlantView is a registered plant with its most recent reading.
type PlantView struct {
	plant.Plant
	LastReading *monitoring.Reading `json:"last_reading,omitempty"`
}

type plantsResponse struct {
	Plants []PlantView `json:"plants"`
	Count  int         `json:"count"`
}

type readingsResponse struct {
	UID      string               `json:"uid"`
	Readings []monitoring.Reading `json:"readings"`
	Count    int                  `json:"count"`
}

type demandsResponse struct {
	UID     string            `json:"uid"`
	Demands []watering.Demand `json:"demands"`
	Count   int               `json:"count"`
}

// handleListPlants returns every registered plant in description order.
func (s *Server) handleListPlants(w http.ResponseWriter, r *http.Request) {
	plants := s.registry.Plants()
	views := make([]PlantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, s.plantView(r, p))
	}
	writeJSON(w, http.StatusOK, plantsResponse{Plants: views, Count: len(views)})
}

// handleGetPlant returns one plant by uid.
func (s *Server) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupPlant(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.plantView(r, p))
}

// handleListReadings returns the most recent readings of a plant, newest first.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupPlant(w, r)
	if !ok {
		return
	}
	limit, ok := s.historyRequest(w, r)
	if !ok {
		return
	}

	readings, err := s.history.RecentReadings(r.Context(), p.UID, limit)
	if err != nil {
		s.writeHistoryError(w, p.UID, err)
		return
	}
	if readings == nil {
		readings = []monitoring.Reading{}
	}
	writeJSON(w, http.StatusOK, readingsResponse{UID: p.UID, Readings: readings, Count: len(readings)})
}

// handleListDemands returns the most recent watering demands of a plant, newest first.
func (s *Server) handleListDemands(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupPlant(w, r)
	if !ok {
		return
	}
	limit, ok := s.historyRequest(w, r)
	if !ok {
		return
	}

	demands, err := s.history.RecentDemands(r.Context(), p.UID, limit)
	if err != nil {
		s.writeHistoryError(w, p.UID, err)
		return
	}
	if demands == nil {
		demands = []watering.Demand{}
	}
	writeJSON(w, http.StatusOK, demandsResponse{UID: p.UID, Demands: demands, Count: len(demands)})
}

func (s *Server) lookupPlant(w http.ResponseWriter, r *http.Request) (plant.Plant, bool) {
	uid := chi.URLParam(r, "uid")
	p, ok := s.registry.Lookup(uid)
	if !ok {
		writeNotFound(w, "plant not found")
		return plant.Plant{}, false
	}
	return p, true
}

// historyRequest checks a history store is wired and parses ?limit=.
func (s *Server) historyRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	if s.history == nil {
		writeUnavailable(w, "history store not configured")
		return 0, false
	}

	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > storage.MaxLimit {
		writeBadRequest(w, "limit must be an integer between 1 and "+strconv.Itoa(storage.MaxLimit))
		return 0, false
	}
	return limit, true
}

func (s *Server) writeHistoryError(w http.ResponseWriter, uid string, err error) {
	if errors.Is(err, storage.ErrInvalidLimit) {
		writeBadRequest(w, err.Error())
		return
	}
	s.logger.Error("history query failed", "uid", uid, "error", err)
	writeInternalError(w, "history query failed")
}

// plantView attaches the latest stored reading when one exists.
func (s *Server) plantView(r *http.Request, p plant.Plant) PlantView {
	view := PlantView{Plant: p}
	if s.history == nil {
		return view
	}
	last, err := s.history.LatestReading(r.Context(), p.UID)
	switch {
	case err == nil:
		view.LastReading = &last
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Warn("latest reading lookup failed", "uid", p.UID, "error", err)
	}
	return view
}
