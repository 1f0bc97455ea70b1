package clock

import (
	"time"
)

const layout = "2006-01-02T15:04:05Z"

// Now current UTC time truncated to milliseconds, the precision kept by the database
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Format time as UTC string with seconds precision
func Format(t time.Time) string {
	return t.UTC().Format(layout)
}

// Timestamp current time formatted for api responses
func Timestamp() string {
	return Format(time.Now())
}
