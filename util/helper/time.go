package helper_util

import (
	"time"

	vigil_errors "github.com/clearledger/vigil/api/errors"
)

const dateLayout = "2006-01-02"

// ParseDateParam parses a YYYY-MM-DD query value. An empty value means the
// bound is absent.
func ParseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, vigil_errors.ErrInvalidDateFormat
	}
	t = t.UTC()
	return &t, nil
}

// ParseEndDateParam parses an inclusive end date: the bound covers the whole
// day it names.
func ParseEndDateParam(value string) (*time.Time, error) {
	t, err := ParseDateParam(value)
	if err != nil || t == nil {
		return t, err
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end, nil
}

// Helper function to parse time
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err
}
