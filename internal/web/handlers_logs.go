package web

import (
	"net/http"
	"strconv"
)

// handleImportLogs lists the newest import log entries.
// An optional ?limit= overrides the configured page size.
func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", s.cfg.Import.LogLimit)

	entries, err := s.service.ListImportLogs(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError,
			ErrorResponse{Error: "Failed to fetch import logs"})
		return
	}

	writeJSON(w, entries)
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
