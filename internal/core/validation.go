package core

// validation.go provides the field checks shared by every import kind.
//
// Rules are declared as `validate` struct tags on the record types and run
// through one go-playground validator. Each violation is kept as a
// FieldViolation so it can be logged, while the row error shown to the
// uploader stays the kind's single generic message.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// colorHexRegex accepts #RGB and #RRGGBB, case-insensitive.
var colorHexRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// The built-in hexcolor tag also admits 4 and 8 digit forms.
	_ = v.RegisterValidation("colorhex", func(fl validator.FieldLevel) bool {
		return IsColorHex(fl.Field().String())
	})
	return v
}

// IsColorHex reports whether s is a #RGB or #RRGGBB color.
func IsColorHex(s string) bool {
	return colorHexRegex.MatchString(s)
}

// FieldViolation represents a single failed rule for a field.
type FieldViolation struct {
	Field   string // Record field name
	Value   string // The offending value
	Message string // Failed rule, e.g. "required", "hexcolor", "finite number"
}

func (v FieldViolation) Error() string {
	if v.Field != "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return v.Message
}

// CheckStruct runs the struct-tag rules on a record and returns every
// violation. An empty result means the record is valid.
func CheckStruct(record any) []FieldViolation {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Message: err.Error()}}
	}

	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: fe.Tag(),
		})
	}
	return out
}

// ParseCoordinate parses a latitude or longitude cell.
// Empty, NaN and infinite values are rejected.
func ParseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NewRowError builds the row error reported for a failed row.
func NewRowError(raw RawRow, message string, violations []FieldViolation) *RowError {
	return &RowError{Row: raw.Number, Message: message, Violations: violations}
}
