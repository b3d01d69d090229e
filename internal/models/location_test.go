package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

func TestLocationSample_Validate_Boundaries(t *testing.T) {
	cases := []struct {
		name  string
		lat   float64
		lon   float64
		valid bool
	}{
		{"origin", 0, 0, true},
		{"north pole", 90, 0, true},
		{"south pole", -90, 0, true},
		{"date line east", 0, 180, true},
		{"date line west", 0, -180, true},
		{"latitude just over", 90.0001, 0, false},
		{"latitude just under", -90.0001, 0, false},
		{"longitude just over", 0, 180.0001, false},
		{"longitude just under", 0, -180.0001, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sample := models.LocationSample{Latitude: tc.lat, Longitude: tc.lon, CapturedAt: time.Now()}
			if tc.valid {
				assert.NoError(t, sample.Validate())
				assert.True(t, sample.IsValid())
			} else {
				err := sample.Validate()
				assert.Error(t, err)
				assert.ErrorIs(t, err, models.ErrInvalidCoordinates)
			}
		})
	}
}

func TestLocationSample_DistanceKm(t *testing.T) {
	bangalore := models.LocationSample{Latitude: 12.9716, Longitude: 77.5946}
	mysore := models.LocationSample{Latitude: 12.2958, Longitude: 76.6394}

	d := bangalore.DistanceKm(mysore)
	assert.InDelta(t, 128, d, 5)

	assert.Zero(t, bangalore.DistanceKm(bangalore))
	assert.False(t, bangalore.WithinRadiusKm(mysore, 100))
	assert.True(t, bangalore.WithinRadiusKm(mysore, 150))
}

func TestLocationSample_String(t *testing.T) {
	sample := models.LocationSample{Latitude: 12.9716, Longitude: 77.5946}
	assert.Equal(t, "12.971600, 77.594600", sample.String())
}
