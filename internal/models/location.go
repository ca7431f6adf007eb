package models

import "time"

// LocationFix is a single position report from the location provider.
// Providers typically deliver a small batch of fixes per callback; fixes are
// processed in delivery order.
type LocationFix struct {
	// Latitude and Longitude are in degrees.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// TimestampMillis is the fix time in Unix milliseconds. Zero means the
	// provider supplied no timestamp.
	TimestampMillis int64 `json:"timestamp_ms"`
}

// Time returns the fix time, falling back to now when the provider supplied
// no timestamp.
func (f LocationFix) Time() time.Time {
	if f.TimestampMillis == 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(f.TimestampMillis).UTC()
}

// Valid reports whether the fix carries a plausible position.
func (f LocationFix) Valid() bool {
	return f.Latitude >= -90 && f.Latitude <= 90 &&
		f.Longitude >= -180 && f.Longitude <= 180
}
