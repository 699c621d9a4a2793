package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/pkg/logger"
)

// MaxBodyBytes caps request bodies carrying a dataset
const MaxBodyBytes = 32 << 20

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// respondJSON encodes data before writing the status, so an unencodable
// payload (NaN or Inf from an injected strategy) becomes a 500
func respondJSON(w http.ResponseWriter, status int, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		err = fmt.Errorf("failed to encode response: %w", err)
		body, _ = json.Marshal(ErrorResponse{Error: err.Error()})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
	return err
}

// respondOK writes a 200 and logs encoding failures
func respondOK(w http.ResponseWriter, log *logger.Logger, data interface{}) {
	if err := respondJSON(w, http.StatusOK, data); err != nil {
		log.WithError(err).Error("Response encoding failed")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondEngineError maps core and storage failures to HTTP statuses
func respondEngineError(w http.ResponseWriter, err error) {
	var verr *contracts.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Kind:  verr.Kind.Error(),
			Field: verr.Field,
		})
	case errors.Is(err, contracts.ErrRunNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeDataset reads a JSON dataset from the request body
func decodeDataset(w http.ResponseWriter, r *http.Request) (*contracts.Dataset, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	var ds contracts.Dataset
	if err := json.NewDecoder(body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset JSON: %w", err)
	}
	return &ds, nil
}
