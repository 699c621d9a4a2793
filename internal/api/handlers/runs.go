package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/pkg/logger"
)

// MaxListLimit bounds the limit query parameter
const MaxListLimit = 200

// RunHandler serves stored analysis runs
type RunHandler struct {
	repo   contracts.RunRepository
	logger *logger.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(repo contracts.RunRepository, log *logger.Logger) *RunHandler {
	return &RunHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns recent run summaries
// GET /api/runs?limit=20
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			respondError(w, http.StatusBadRequest, "limit must be an integer between 1 and 200")
			return
		}
		limit = n
	}

	runs, err := h.repo.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondEngineError(w, err)
		return
	}

	respondOK(w, h.logger, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// Latest returns the most recent run
// GET /api/runs/latest
func (h *RunHandler) Latest(w http.ResponseWriter, r *http.Request) {
	run, err := h.repo.GetLatestRun(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondOK(w, h.logger, run)
}

// Get returns one run by id
// GET /api/runs/{id}
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.repo.GetRun(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondOK(w, h.logger, run)
}
