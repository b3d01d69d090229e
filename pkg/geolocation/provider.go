package geolocation

import "errors"

// Position represents the geographical coordinates reported by a provider.
type Position struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
}

var (
	// ErrPermissionDenied is returned when the environment does not permit
	// location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrServicesDisabled is returned when location services are unavailable
	// on the device.
	ErrServicesDisabled = errors.New("location services are disabled")

	// ErrNoFix is returned when the provider could not obtain a usable fix.
	ErrNoFix = errors.New("no location fix available")
)

// Provider interface defines the methods for location providers.
type Provider interface {
	// RequestPermission verifies the provider may access location data,
	// returning ErrPermissionDenied otherwise.
	RequestPermission() error

	// ServicesEnabled reports whether the underlying location facility is
	// usable on this device.
	ServicesEnabled() (bool, error)

	// CurrentPosition performs a single location query.
	CurrentPosition() (Position, error)

	// Close releases any resources held by the provider.
	Close() error
}
