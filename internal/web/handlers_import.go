package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/placemap/internal/core"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// noValidRowsMessage is the 422 body for a place file where every row failed.
const noValidRowsMessage = "File contained no valid rows"

// handleImport accepts a multipart upload with the file in the "file" field
// and runs it through the import pipeline for kind.
func (s *Server) handleImport(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := core.Get(kind)
		if !ok {
			respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownKind, kind), http.StatusInternalServerError,
				ErrorResponse{Error: "import kind not configured"})
			return
		}
		info := def.Info

		fileName, data, err := readUpload(w, r, s.cfg.Upload.MaxFileSize)
		if err != nil {
			status := importStatus(err)
			body := ErrorResponse{Error: core.MapError(err).Message}
			if status == http.StatusUnsupportedMediaType {
				body.Error = info.UnsupportedFormatMessage
			}
			respondError(w, r, err, status, body)
			return
		}

		report, err := s.service.Import(importContext(r), kind, fileName, data)
		if err != nil {
			status := importStatus(err)
			body := ErrorResponse{Error: core.MapError(err).Message}
			switch status {
			case http.StatusUnsupportedMediaType:
				body.Error = info.UnsupportedFormatMessage
			case http.StatusServiceUnavailable:
				w.Header().Set("Retry-After", "5")
			case http.StatusInternalServerError:
				body.Error = info.FailureMessage
				if report != nil {
					body.Errors = report.Errors
				}
			}
			respondError(w, r, err, status, body)
			return
		}

		if info.RejectWhenNoValidRows && noValidRows(report) {
			writeJSONStatus(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:  noValidRowsMessage,
				Errors: report.Errors,
			})
			return
		}

		writeJSON(w, report)
	}
}

// noValidRows reports whether every row failed validation.
func noValidRows(report *core.Report) bool {
	return len(report.Errors) > 0 && report.Inserted == 0 && report.Skipped == 0
}

// readUpload returns the name and contents of the "file" form field.
// The extension is checked before the body is read into memory.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", core.ErrMissingFile, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrMissingFile, err)
	}
	defer file.Close()

	if _, err := core.DetectFormat(header.Filename); err != nil {
		return "", nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// handleTemplate returns an empty CSV with the columns kind understands.
func (s *Server) handleTemplate(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := core.Get(kind)
		if !ok {
			writeError(w, http.StatusNotFound, "import kind not configured")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, def.Info.Table))

		cw := csv.NewWriter(w)
		_ = cw.Write(def.Info.Columns)
		cw.Flush()
	}
}
