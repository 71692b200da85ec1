package utils

import "time"

// NowRFC3339 returns the current UTC time formatted as RFC3339
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FormatTime formats t as RFC3339Nano in UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses an RFC3339 timestamp, returning the zero time on failure
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
