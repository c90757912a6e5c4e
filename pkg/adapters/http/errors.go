package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phdev/briefing/internal/runtime"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/runner"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// statusFor maps engine errors to HTTP statuses and stable codes.
func statusFor(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var (
		invalid    *errInvalidBody
		validation *runtime.ValidationError
		incomplete *domain.IncompleteError
	)
	switch {
	case errors.As(err, &invalid):
		resp.Code = "invalid_body"
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrSessionNotFound):
		resp.Code = "not_found"
		return http.StatusNotFound, resp
	case errors.Is(err, domain.ErrBusy):
		resp.Code = "busy"
		return http.StatusConflict, resp
	case errors.Is(err, domain.ErrFinished):
		resp.Code = "finished"
		return http.StatusConflict, resp
	case errors.Is(err, domain.ErrWrongMode), errors.Is(err, domain.ErrNoCorrection), errors.Is(err, domain.ErrNotAtSummary):
		resp.Code = "wrong_mode"
		return http.StatusConflict, resp
	case errors.Is(err, domain.ErrUnknownOption), errors.Is(err, domain.ErrUnknownControl), errors.Is(err, domain.ErrUnknownPackage):
		resp.Code = "invalid_input"
		return http.StatusBadRequest, resp
	case errors.As(err, &validation):
		resp.Code = "validation"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &incomplete):
		resp.Code = "incomplete"
		for _, f := range incomplete.Missing {
			resp.Missing = append(resp.Missing, string(f))
		}
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, runner.ErrClosed):
		resp.Code = "unavailable"
		return http.StatusServiceUnavailable, resp
	}
	resp.Code = "internal"
	resp.Error = "internal error"
	return http.StatusInternalServerError, resp
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
