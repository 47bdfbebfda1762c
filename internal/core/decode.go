package core

// decode.go turns an uploaded buffer into ordered RawRows.
//
// Both formats follow the same rules: the first non-blank record is the
// header, blank records are skipped, headers and values are trimmed, and each
// row keeps the line (CSV) or sheet row (XLSX) it came from so validation
// errors point at the user's file.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = ".csv"
	FormatXLSX Format = ".xlsx"
)

// DetectFormat returns the upload format for a file name.
// Returns ErrUnsupportedFormat for anything other than .csv or .xlsx.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	switch Format(ext) {
	case FormatCSV, FormatXLSX:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode parses data according to the extension of fileName.
func Decode(data []byte, fileName string) ([]RawRow, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return decodeXLSX(data)
	default:
		return decodeCSV(data)
	}
}

func decodeCSV(data []byte) ([]RawRow, error) {
	data = bytes.TrimPrefix(data, byteOrderMark)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		header []string
		rows   []RawRow
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
		if isEmptyRow(record) {
			continue
		}
		if header == nil {
			header = normalizeHeader(record)
			continue
		}

		line, _ := r.FieldPos(0)
		rows = append(rows, makeRawRow(line, header, record))
	}

	return rows, nil
}

func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	// GetRows yields each cell's formatted text, which is what the user sees.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformedFile, sheets[0], err)
	}

	var (
		header []string
		rows   []RawRow
	)
	for i, record := range records {
		if isEmptyRow(record) {
			continue
		}
		if header == nil {
			header = normalizeHeader(record)
			continue
		}
		rows = append(rows, makeRawRow(i+1, header, record))
	}

	return rows, nil
}

// makeRawRow pairs values with header names. Columns missing from a short
// record stay absent; blank cells become "".
func makeRawRow(number int, header, record []string) RawRow {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" || i >= len(record) {
			continue
		}
		values[name] = strings.TrimSpace(record[i])
	}
	return RawRow{Number: number, Values: values}
}

func normalizeHeader(record []string) []string {
	header := make([]string, len(record))
	for i, name := range record {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return header
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
