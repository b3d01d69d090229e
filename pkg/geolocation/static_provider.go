package geolocation

// StaticProvider returns a fixed position. Used in development builds and in
// environments without a GPS sensor or network geolocation access.
type StaticProvider struct {
	position          Position
	permissionGranted bool
	servicesEnabled   bool
}

// NewStaticProvider creates a provider that always reports the given position.
func NewStaticProvider(lat, lon, accuracy float64) *StaticProvider {
	return &StaticProvider{
		position:          Position{Latitude: lat, Longitude: lon, AccuracyMeters: accuracy},
		permissionGranted: true,
		servicesEnabled:   true,
	}
}

// DenyPermission makes subsequent RequestPermission calls fail.
func (p *StaticProvider) DenyPermission() { p.permissionGranted = false }

// DisableServices makes the provider report location services as unavailable.
func (p *StaticProvider) DisableServices() { p.servicesEnabled = false }

func (p *StaticProvider) RequestPermission() error {
	if !p.permissionGranted {
		return ErrPermissionDenied
	}
	return nil
}

func (p *StaticProvider) ServicesEnabled() (bool, error) {
	if !p.servicesEnabled {
		return false, ErrServicesDisabled
	}
	return true, nil
}

func (p *StaticProvider) CurrentPosition() (Position, error) {
	return p.position, nil
}

func (p *StaticProvider) Close() error { return nil }
