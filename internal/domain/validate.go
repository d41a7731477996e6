package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted date input format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// MaxMagnitude bounds the minimum-magnitude search field.
const MaxMagnitude = 10.0

// Field names reported in FieldError.
const (
	FieldLocation     = "location"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldMinMagnitude = "min_magnitude"
	FieldRadiusKm     = "radius_km"
)

// ValidationResult is either valid (empty Message) or invalid with a
// human-readable message.
type ValidationResult struct {
	Message string
}

// Valid reports whether the checked value passed.
func (r ValidationResult) Valid() bool { return r.Message == "" }

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Message: fmt.Sprintf(format, args...)}
}

// FieldError attaches a validation message to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ParseDate parses s with the strict DD-MM-YYYY rule. time.Parse already
// rejects day-of-month overflow ("31-04-2024") instead of rolling it over.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ValidateDate checks a DD-MM-YYYY date field. Blank input is "required",
// anything else that does not parse is a format error.
func ValidateDate(s string) ValidationResult {
	if strings.TrimSpace(s) == "" {
		return invalid("date is required")
	}
	if _, err := ParseDate(s); err != nil {
		return invalid("date must be a valid date in DD-MM-YYYY format")
	}
	return ValidationResult{}
}

// ValidateNumber checks that s is a finite real number >= 0. Zero is accepted.
func ValidateNumber(s, label string) ValidationResult {
	if _, ok := parseNonNegative(s); !ok {
		return invalid("%s must be a number >= 0", label)
	}
	return ValidationResult{}
}

// ValidateMagnitude applies ValidateNumber and caps the value at MaxMagnitude.
func ValidateMagnitude(s string) ValidationResult {
	const label = "minimum magnitude"
	v, ok := parseNonNegative(s)
	if !ok {
		return invalid("%s must be a number >= 0", label)
	}
	if v > MaxMagnitude {
		return invalid("%s must be at most %g", label, MaxMagnitude)
	}
	return ValidationResult{}
}

func parseNonNegative(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// IsStartBeforeOrEqualEnd reports whether start <= end. Both sides are parsed
// with ParseDate; a parse failure on either side yields false.
func IsStartBeforeOrEqualEnd(start, end string) bool {
	s, err := ParseDate(start)
	if err != nil {
		return false
	}
	e, err := ParseDate(end)
	if err != nil {
		return false
	}
	return !s.After(e)
}

// ValidateCriteria validates every field of a search form and returns the
// failures in form order. The date range is only checked when both dates are
// individually valid, and is reported against the end date.
func ValidateCriteria(form SearchForm) []FieldError {
	var errs []FieldError
	add := func(field string, r ValidationResult) {
		if !r.Valid() {
			errs = append(errs, FieldError{Field: field, Message: r.Message})
		}
	}

	if strings.TrimSpace(form.Location) == "" {
		add(FieldLocation, invalid("location is required"))
	}

	startResult := ValidateDate(form.StartDate)
	endResult := ValidateDate(form.EndDate)
	add(FieldStartDate, startResult)
	add(FieldEndDate, endResult)
	if startResult.Valid() && endResult.Valid() && !IsStartBeforeOrEqualEnd(form.StartDate, form.EndDate) {
		add(FieldEndDate, invalid("start date must be on or before end date"))
	}

	add(FieldMinMagnitude, ValidateMagnitude(form.MinMagnitude))
	add(FieldRadiusKm, ValidateNumber(form.RadiusKm, "radius"))
	return errs
}

// ParseCriteria validates form and converts it into typed criteria. When any
// field is invalid the returned criteria is zero and the errors are non-empty.
func ParseCriteria(form SearchForm) (SearchCriteria, []FieldError) {
	if errs := ValidateCriteria(form); len(errs) > 0 {
		return SearchCriteria{}, errs
	}

	// Validation above guarantees these parse.
	start, _ := ParseDate(form.StartDate)
	end, _ := ParseDate(form.EndDate)
	mag, _ := parseNonNegative(form.MinMagnitude)
	radius, _ := parseNonNegative(form.RadiusKm)

	return SearchCriteria{
		Location:     strings.TrimSpace(form.Location),
		Start:        start,
		End:          end,
		MinMagnitude: mag,
		RadiusKm:     radius,
	}, nil
}
