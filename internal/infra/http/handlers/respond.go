package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openclinic/medscout/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the usecase error taxonomy onto HTTP statuses. Technical
// errors stay opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	code := usecase.DomainErrorCode(err)
	status := http.StatusInternalServerError

	switch code {
	case usecase.CodeValidation:
		status = http.StatusBadRequest
	case usecase.CodeNotFound:
		status = http.StatusNotFound
	case usecase.CodeSourceUnavailable:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
