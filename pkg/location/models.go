package location

import (
	"math"
	"time"
)

// Source tags carried by samples to identify their provenance.
const (
	SourceSimulated = "simulated"
	SourceDemo      = "demo"
	SourceSerialGPS = "serial_gps"
	SourceGoogle    = "google_geolocation"

	// Platform stub sources, one per OS branch.
	SourceWindowsLocationAPI = "windows_location_api"
	SourceGeoClue            = "geoclue"
	SourceCoreLocation       = "corelocation"
)

// Sample represents one geolocation reading. It is the atomic unit of
// data moved through the publishing pipeline and serializes to a flat
// JSON object with no nested structures.
type Sample struct {
	Latitude  float64 `json:"latitude"`        // Decimal degrees, 6-decimal precision
	Longitude float64 `json:"longitude"`       // Decimal degrees, 6-decimal precision
	Altitude  float64 `json:"altitude"`        // Meters, 2-decimal precision
	Accuracy  float64 `json:"accuracy"`        // Estimated error radius in meters, 2-decimal precision
	Timestamp string  `json:"timestamp"`       // UTC, ISO-8601 with Z suffix, set at sample time
	Source    string  `json:"source"`          // Provenance tag
	Error     string  `json:"error,omitempty"` // Set only on platform stub samples
}

// IsStub reports whether the sample is a placeholder from an
// unimplemented platform branch rather than a real reading.
func (s Sample) IsStub() bool {
	return s.Error != ""
}

// UTCTimestamp returns the current time in the format every sample
// carries: UTC ISO-8601 with a trailing Z.
func UTCTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
