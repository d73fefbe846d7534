package utils

import (
	"sync"
	"time"

	_ "time/tzdata"
)

// TimestampLayout is the storage format used in both sinks.
const TimestampLayout = "2006-01-02 15:04:05"

// TimezoneName is the fixed timezone all persisted timestamps are rendered in.
const TimezoneName = "America/Los_Angeles"

var (
	location     *time.Location
	locationOnce sync.Once
)

// Location returns the fixed pacific timezone. The tzdata import guarantees
// the zone is available even on hosts without a system zoneinfo database.
func Location() *time.Location {
	locationOnce.Do(func() {
		loc, err := time.LoadLocation(TimezoneName)
		if err != nil {
			panic(err)
		}

		location = loc
	})

	return location
}

// FormatTime renders a timestamp in the storage layout and fixed timezone.
func FormatTime(t time.Time) string {
	return t.In(Location()).Format(TimestampLayout)
}

// ParseTimestamp parses a storage-layout timestamp in the fixed timezone.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, Location())
}
