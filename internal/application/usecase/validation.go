package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	agesPattern  = regexp.MustCompile(`^\d+-\d+$`)
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed field so clients see all problems
// in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// validator accumulates field errors across a set of checks.
type validator struct {
	fields []FieldError
}

func (v *validator) add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) requireString(field, value string, min, max int) {
	n := len(strings.TrimSpace(value))
	switch {
	case n == 0:
		v.add(field, "is required")
	case n < min:
		v.add(field, fmt.Sprintf("must be at least %d characters", min))
	case max > 0 && n > max:
		v.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (v *validator) requireEmail(field, value string) {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		v.add(field, "must be a valid email address")
	}
}

func (v *validator) requirePositiveAmount(field string, value decimal.Decimal) {
	if value.LessThanOrEqual(decimal.Zero) {
		v.add(field, "must be greater than zero")
	}
}

func (v *validator) requireAgeRange(field, value string) {
	if value != "" && !agesPattern.MatchString(value) {
		v.add(field, "must match the form <min>-<max>, e.g. 3-8")
	}
}

func (v *validator) requireRating(field string, value int) {
	if value < 1 || value > 5 {
		v.add(field, "must be between 1 and 5")
	}
}

func (v *validator) requireToken(field, value string) {
	n := len(value)
	if n < 32 || n > 64 {
		v.add(field, "is not a valid download token")
	}
}
