package models

import (
	"fmt"
	"math"
	"time"
)

// ErrInvalidCoordinates indicates a latitude/longitude pair outside the valid range.
var ErrInvalidCoordinates = fmt.Errorf("coordinates out of range")

// LocationSample represents a single geographical fix with associated metadata.
// Samples are immutable; a newer sample supersedes an older one.
type LocationSample struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	CapturedAt     time.Time `json:"captured_at"`
}

// Validate checks that the sample's coordinates are within the valid
// latitude/longitude ranges. Boundary values are valid.
func (s LocationSample) Validate() error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f not in [-90,90]", ErrInvalidCoordinates, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f not in [-180,180]", ErrInvalidCoordinates, s.Longitude)
	}
	return nil
}

// IsValid reports whether the sample's coordinates are within range.
func (s LocationSample) IsValid() bool {
	return s.Validate() == nil
}

// String renders the sample as "lat, lon" with six decimal places.
func (s LocationSample) String() string {
	return fmt.Sprintf("%.6f, %.6f", s.Latitude, s.Longitude)
}

// DistanceKm returns the haversine distance in kilometers between two samples.
func (s LocationSample) DistanceKm(other LocationSample) float64 {
	const earthRadiusKm = 6371.0

	dLat := (other.Latitude - s.Latitude) * math.Pi / 180
	dLon := (other.Longitude - s.Longitude) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(s.Latitude*math.Pi/180)*math.Cos(other.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadiusKm reports whether other lies within radiusKm of the sample.
func (s LocationSample) WithinRadiusKm(other LocationSample, radiusKm float64) bool {
	return s.DistanceKm(other) <= radiusKm
}

// LocationShare is the payload published to the live location share topic.
type LocationShare struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
}
