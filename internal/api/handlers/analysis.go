package handlers

import (
	"net/http"

	"github.com/wonny/salesbonus/internal/analysis"
	"github.com/wonny/salesbonus/pkg/logger"
)

// AnalysisHandler runs analyses over datasets posted by clients
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	runner *analysis.Runner
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(runner *analysis.Runner, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner: runner,
		logger: log,
	}
}

// Run executes ranking and special bonuses
// POST /api/analysis
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	ds, err := decodeDataset(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runner.Run(r.Context(), ds)
	if err != nil {
		h.logger.WithError(err).Warn("Analysis request failed")
		respondEngineError(w, err)
		return
	}

	respondOK(w, h.logger, run)
}

// Ranking returns the ranked seller reports only
// POST /api/analysis/ranking
func (h *AnalysisHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ds, err := decodeDataset(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sellers, err := h.runner.Ranking(ds)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondOK(w, h.logger, map[string]interface{}{
		"sellers": sellers,
	})
}

// Bonuses returns the special bonus awards only
// POST /api/analysis/bonuses
func (h *AnalysisHandler) Bonuses(w http.ResponseWriter, r *http.Request) {
	ds, err := decodeDataset(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bonuses, err := h.runner.Bonuses(ds)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondOK(w, h.logger, map[string]interface{}{
		"bonuses": bonuses,
	})
}

// Policy returns the active bonus policy and its hash
// GET /api/policy
func (h *AnalysisHandler) Policy(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.logger, map[string]interface{}{
		"policy":      h.runner.Policy(),
		"policy_hash": h.runner.PolicyHash(),
	})
}
