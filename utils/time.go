// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// DateOnlyLayout is the wire format for date-only fields (effective ranges,
// dispatch dates, settlement dates).
const DateOnlyLayout = "2006-01-02"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// ParseDateOnly parses a YYYY-MM-DD string into a UTC midnight time
func ParseDateOnly(s string) (time.Time, error) {
	return time.ParseInLocation(DateOnlyLayout, s, time.UTC)
}

// FormatDateOnly formats a time as YYYY-MM-DD
func FormatDateOnly(t time.Time) string {
	return t.Format(DateOnlyLayout)
}
