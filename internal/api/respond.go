package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tallybooks/tally/internal/model"
)

// ErrorResponse is the JSON shape of every API error.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates domain error kinds onto HTTP statuses: not-found is
// 404, bad input 400, state conflicts 409, everything else a logged 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = f.Error()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request",
			Fields:  fields,
		})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, model.ErrInvalidStateTransition):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "invalid_state_transition",
			Message: err.Error(),
		})
	default:
		log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "unexpected failure",
		})
	}
}

// decode unmarshals a JSON request body, reporting malformed input as a
// validation error.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var verr model.ValidationError
		verr.Add("body", "malformed JSON: "+err.Error())
		return &verr
	}
	return nil
}

// parseDate accepts "2006-01-02" or full RFC 3339.
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var verr model.ValidationError
	verr.Add(field, "invalid date "+s)
	return time.Time{}, &verr
}
