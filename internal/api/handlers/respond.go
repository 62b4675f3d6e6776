package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/bill-tracker-be/internal/schema"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type validationResponse struct {
	Message string              `json:"message"`
	Errors  []schema.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps service and validation errors to a response. Anything
// unrecognised is logged and answered with failMsg and a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, failMsg string) {
	var verr *schema.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{Message: "Validation error", Errors: verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMsg)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(failMsg)
		writeMessage(w, http.StatusInternalServerError, failMsg)
	}
}

// decodeJSON reads the body into v, normalizes it when it knows how, and
// validates it. It writes the error response itself and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if n, ok := v.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if err := schema.Validate(v); err != nil {
		writeError(w, r, err, "", "Invalid request body")
		return false
	}
	return true
}

// idParam parses the {id} path segment as a positive integer.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
