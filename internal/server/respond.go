package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aTrapDeer/utworld/internal/media"
)

// statusError is implemented by errors that know their HTTP status, such
// as the store's NotFoundError and ConflictError.
type statusError interface {
	error
	StatusCode() int
}

// detailError is an error answered with its own status and detail.
type detailError struct {
	status int
	detail string
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) StatusCode() int { return e.status }

func errDetail(status int, detail string) error {
	return &detailError{status: status, detail: detail}
}

// respondJSON marshals before writing headers so an encoding failure
// still yields a clean 500.
func respondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// respondDetail writes the API's error body, {"detail": "..."}.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	payload, _ := json.Marshal(map[string]string{"detail": detail})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// respondError maps err onto a status code and detail message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	var se statusError
	switch {
	case errors.As(err, &verrs):
		respondDetail(w, http.StatusUnprocessableEntity, verrs.Error())
	case errors.Is(err, media.ErrTooLarge):
		respondDetail(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.As(err, &se):
		respondDetail(w, se.StatusCode(), se.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into v. Malformed bodies are 422s.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("invalid request body", "path", r.URL.Path, "error", err)
		return errDetail(http.StatusUnprocessableEntity, "Invalid request body")
	}
	return nil
}
