package indicators

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the indicators API
type Handlers struct {
	resolver *Resolver
	engine   *TalibEngine
	history  *HistoryRepository
	log      zerolog.Logger
}

// NewHandlers creates a new handlers instance. history may be nil.
func NewHandlers(resolver *Resolver, engine *TalibEngine, history *HistoryRepository, log zerolog.Logger) *Handlers {
	return &Handlers{
		resolver: resolver,
		engine:   engine,
		history:  history,
		log:      log.With().Str("component", "indicator_handlers").Logger(),
	}
}

// RegisterRoutes mounts the indicator routes on a router
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/indicators", h.HandleListIndicators)
	r.Get("/indicators/{symbol}/{indicator}", h.HandleResolve)
	r.Get("/history", h.HandleHistory)
}

// HandleListIndicators returns the supported indicator names
// GET /api/indicators
func (h *Handlers) HandleListIndicators(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"indicators": h.engine.Supported(),
	})
}

// HandleResolve resolves one indicator value
// GET /api/indicators/{symbol}/{indicator}?date=YYYY-MM-DD&mode=online|offline
func (h *Handlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	indicator := chi.URLParam(r, "indicator")

	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return
	}

	mode := Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = ModeOnline
	}
	if mode != ModeOnline && mode != ModeOffline {
		http.Error(w, "mode must be online or offline", http.StatusBadRequest)
		return
	}

	result, err := h.resolver.Resolve(symbol, indicator, date, mode)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownIndicator):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDataNotFetched):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.log.Error().Err(err).
				Str("symbol", symbol).
				Str("indicator", indicator).
				Msg("Resolution failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	h.writeJSON(w, result)
}

// HandleHistory returns recent resolutions
// GET /api/history?limit=N
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "history is not enabled", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.history.ListRecent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list resolutions")
		http.Error(w, "failed to list resolutions", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []HistoryRecord{}
	}

	h.writeJSON(w, map[string]interface{}{
		"count":       len(records),
		"resolutions": records,
	})
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
