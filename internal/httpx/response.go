package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/motelworks/motel-manager/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// WriteError maps the apperr taxonomy to HTTP status codes.
// Validation failures include their field map as details.
func WriteError(w http.ResponseWriter, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		JSONError(w, http.StatusBadRequest, "validation_failed", ve.Fields)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, apperr.ErrForbidden):
		JSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, http.StatusConflict, "conflict", err.Error())
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
