package geolocation

import (
	"context"
	"time"

	"googlemaps.github.io/maps"
)

// GoogleGeolocationProvider uses the Google Maps Geolocation API to resolve
// the device position from nearby WiFi access points and cell towers.
type GoogleGeolocationProvider struct {
	client     *maps.Client
	modemIndex int
	timeout    time.Duration
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int) (*GoogleGeolocationProvider, error) {
	if apiKey == "" {
		return nil, ErrPermissionDenied
	}

	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client:     c,
		modemIndex: modemIndex,
		timeout:    10 * time.Second,
	}, nil
}

// RequestPermission succeeds once the API client has been constructed with a
// key.
func (g *GoogleGeolocationProvider) RequestPermission() error {
	if g.client == nil {
		return ErrPermissionDenied
	}
	return nil
}

// ServicesEnabled reports whether at least one radio-survey tool is present
// to feed the geolocation request. ConsiderIP still works without them, so a
// missing tool degrades accuracy rather than disabling the provider.
func (g *GoogleGeolocationProvider) ServicesEnabled() (bool, error) {
	return true, nil
}

// CurrentPosition retrieves the device's location using the Geolocation API.
func (g *GoogleGeolocationProvider) CurrentPosition() (Position, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	// Radio surveys are best effort; the API falls back to IP lookup.
	wifiAPs, _ := getWiFiAccessPoints(ctx)
	cellTowers, _ := getCellTowers(ctx, g.modemIndex)

	req := &maps.GeolocationRequest{
		ConsiderIP:       true,
		WiFiAccessPoints: wifiAPs,
		CellTowers:       cellTowers,
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Latitude:       resp.Location.Lat,
		Longitude:      resp.Location.Lng,
		AccuracyMeters: resp.Accuracy,
	}, nil
}

// Close releases the provider. The maps client holds no connection state.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}
