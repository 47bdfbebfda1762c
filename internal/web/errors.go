package web

// errors.go builds the JSON error bodies for the import API.
//
// Every error body carries an "error" message. Run-level failures add the
// support code from core.MapError, and place rejections and aborted runs add
// the per-row errors so the uploader can still fix the file.

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/placemap/internal/core"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code,omitempty"`
	Errors []core.RowError `json:"errors,omitempty"`
}

// writeError writes a plain {"error": message} response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSONStatus(w, status, ErrorResponse{Error: message})
}

// respondError logs err with request context and writes body with status.
// The code is filled from core.MapError when body does not carry one.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int, body ErrorResponse) {
	if body.Code == "" {
		body.Code = core.MapError(err).Code
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", body.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSONStatus(w, status, body)
}

// importStatus picks the HTTP status for a failed import run.
func importStatus(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrMissingFile), core.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
