package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = time.DateOnly

// ParseDate parses a YYYY-MM-DD string as UTC midnight.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", apperrors.ErrValidation, field)
	}
	return t, nil
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
