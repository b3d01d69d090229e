package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/internal/services"
	"github.com/rakshaapp/raksha-agent/pkg/geolocation"
	"github.com/rakshaapp/raksha-agent/tests/mocks"
)

func newTrackingService(provider geolocation.Provider, interval time.Duration) (*services.TrackingService, *mocks.MockUserStore) {
	userStore := new(mocks.MockUserStore)
	userStore.On("GetUserID").Return("user-1")
	svc := services.NewTrackingService("", interval, 0, userStore, nil, provider, nil, zerolog.Nop())
	return svc, userStore
}

// callbackCounter records update callbacks in a goroutine-safe way.
type callbackCounter struct {
	mu      sync.Mutex
	count   int
	samples []models.LocationSample
	first   chan struct{}
	once    sync.Once
}

func newCallbackCounter() *callbackCounter {
	return &callbackCounter{first: make(chan struct{})}
}

func (c *callbackCounter) onUpdate(sample models.LocationSample) {
	c.mu.Lock()
	c.count++
	c.samples = append(c.samples, sample)
	c.mu.Unlock()
	c.once.Do(func() { close(c.first) })
}

func (c *callbackCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func TestTrack_PermissionDenied(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(geolocation.ErrPermissionDenied)

	svc, _ := newTrackingService(provider, time.Second)

	sub, err := svc.Track("user-1", func(models.LocationSample) {}, func(error) {})
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, geolocation.ErrPermissionDenied)
	provider.AssertNotCalled(t, "CurrentPosition")
}

func TestTrack_ServicesDisabled(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(false, nil)

	svc, _ := newTrackingService(provider, time.Second)

	sub, err := svc.Track("user-1", func(models.LocationSample) {}, func(error) {})
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, geolocation.ErrServicesDisabled)
	provider.AssertNotCalled(t, "CurrentPosition")
}

func TestTrack_ImmediateSample(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 12.9716, Longitude: 77.5946, AccuracyMeters: 8}, nil)

	// Long interval: the only sample within the test window is the
	// immediate one.
	svc, _ := newTrackingService(provider, time.Hour)
	counter := newCallbackCounter()

	sub, err := svc.Track("user-1", counter.onUpdate, func(error) {})
	assert.NoError(t, err)
	defer sub.Stop()

	select {
	case <-counter.first:
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate sample delivered")
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, 12.9716, counter.samples[0].Latitude)
	assert.Equal(t, 77.5946, counter.samples[0].Longitude)
	assert.False(t, counter.samples[0].CapturedAt.IsZero())
}

func TestTrack_NoCallbacksAfterStop(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 12.9716, Longitude: 77.5946}, nil)

	interval := 10 * time.Millisecond
	svc, _ := newTrackingService(provider, interval)
	counter := newCallbackCounter()

	sub, err := svc.Track("user-1", counter.onUpdate, func(error) {})
	assert.NoError(t, err)

	select {
	case <-counter.first:
	case <-time.After(2 * time.Second):
		t.Fatal("no sample delivered before stop")
	}

	sub.Stop()
	frozen := counter.total()

	// Well past several intervals; the count must not move.
	time.Sleep(10 * interval)
	assert.Equal(t, frozen, counter.total())

	// Stop is idempotent.
	sub.Stop()
}

func TestTrack_ErrorCallbackLoopContinues(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{}, geolocation.ErrNoFix).Once()
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 12.9716, Longitude: 77.5946}, nil)

	svc, _ := newTrackingService(provider, 10*time.Millisecond)
	counter := newCallbackCounter()
	errs := make(chan error, 1)

	sub, err := svc.Track("user-1", counter.onUpdate, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	assert.NoError(t, err)
	defer sub.Stop()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, geolocation.ErrNoFix)
	case <-time.After(2 * time.Second):
		t.Fatal("no error callback delivered")
	}

	// The failure must not end the loop: a later tick delivers a sample.
	select {
	case <-counter.first:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not continue after query failure")
	}
}

func TestTrack_InvalidSampleRejected(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 91, Longitude: 0}, nil)

	svc, _ := newTrackingService(provider, time.Hour)
	errs := make(chan error, 1)

	sub, err := svc.Track("user-1", func(models.LocationSample) {
		t.Error("update callback fired for an out-of-range sample")
	}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	assert.NoError(t, err)
	defer sub.Stop()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, models.ErrInvalidCoordinates)
	case <-time.After(2 * time.Second):
		t.Fatal("no error callback delivered")
	}
}

func TestTrackingService_StartStopLifecycle(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 12.9716, Longitude: 77.5946}, nil)
	provider.On("Close").Return(nil)

	userStore := new(mocks.MockUserStore)
	userStore.On("GetUserID").Return("user-1")

	state := appstate.NewStore()
	svc := services.NewTrackingService("", time.Hour, 0, userStore, nil, provider, state, zerolog.Nop())

	assert.NoError(t, svc.Start())
	assert.True(t, state.State().Tracking)

	err := svc.Start()
	assert.Error(t, err)

	assert.NoError(t, svc.Stop())
	assert.False(t, state.State().Tracking)
	provider.AssertCalled(t, "Close")

	err = svc.Stop()
	assert.Error(t, err)
}

func TestCurrentSample(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(nil)
	provider.On("ServicesEnabled").Return(true, nil)
	provider.On("CurrentPosition").Return(geolocation.Position{Latitude: 12.9716, Longitude: 77.5946, AccuracyMeters: 5}, nil)

	svc, _ := newTrackingService(provider, time.Hour)

	sample, err := svc.CurrentSample()
	assert.NoError(t, err)
	assert.Equal(t, 12.9716, sample.Latitude)
	assert.Equal(t, 5.0, sample.AccuracyMeters)
	assert.False(t, sample.CapturedAt.IsZero())
}

func TestCurrentSample_PermissionDenied(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("RequestPermission").Return(geolocation.ErrPermissionDenied)

	svc, _ := newTrackingService(provider, time.Hour)

	_, err := svc.CurrentSample()
	assert.ErrorIs(t, err, geolocation.ErrPermissionDenied)
}
