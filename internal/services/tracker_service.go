package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/internal/profile"
	"github.com/rakshaapp/raksha-agent/pkg/geolocation"
	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
)

// LocationUpdateFunc receives each accepted location sample.
type LocationUpdateFunc func(models.LocationSample)

// LocationErrorFunc receives sampling failures. The polling loop keeps
// running after a failure; intermittent GPS loss must not end tracking.
type LocationErrorFunc func(error)

// Subscription is an active, cancellable polling loop. It is owned by the
// caller that started it; exactly one cancellation handle exists per
// subscription.
type Subscription struct {
	userID string

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	onStop  func(*Subscription)
	wg      sync.WaitGroup
}

// Stop ends the subscription. It is idempotent, and once it returns no
// further callback fires: delivery takes the same mutex and re-checks the
// stopped flag, so an in-flight query resolves into a discard.
func (s *Subscription) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cancel()
	onStop := s.onStop
	s.mu.Unlock()

	if onStop != nil {
		onStop(s)
	}
}

// deliver runs fn unless the subscription has been stopped. Returning false
// means the result was discarded.
func (s *Subscription) deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	fn()
	return true
}

// TrackingService manages periodic location sampling and live location
// sharing over the MQTT broker.
type TrackingService struct {
	// Configuration fields
	shareTopic string
	interval   time.Duration
	qos        int

	// Dependencies
	userStore  profile.UserStoreInterface
	mqttClient mqtt.MQTTClient
	provider   geolocation.Provider
	state      *appstate.Store
	logger     zerolog.Logger

	// Internal state management
	mu      sync.Mutex
	running bool
	ownSub  *Subscription
	subs    map[*Subscription]struct{}
}

// NewTrackingService creates a new TrackingService instance with the provided
// configuration.
func NewTrackingService(shareTopic string, interval time.Duration, qos int, userStore profile.UserStoreInterface,
	mqttClient mqtt.MQTTClient, provider geolocation.Provider, state *appstate.Store, logger zerolog.Logger) *TrackingService {
	return &TrackingService{
		shareTopic: shareTopic,
		interval:   interval,
		qos:        qos,
		userStore:  userStore,
		mqttClient: mqttClient,
		provider:   provider,
		state:      state,
		logger:     logger,
		subs:       make(map[*Subscription]struct{}),
	}
}

// Start begins live tracking for the profile user.
func (t *TrackingService) Start() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		t.logger.Warn().Msg("TrackingService is already running")
		return errors.New("tracking service is already running")
	}
	t.running = true
	t.mu.Unlock()

	sub, err := t.Track(t.userStore.GetUserID(),
		func(sample models.LocationSample) {
			t.logger.Debug().Str("location", sample.String()).Msg("Location sample accepted")
		},
		func(err error) {
			t.logger.Error().Err(err).Msg("Location sampling failure, loop continues")
		},
	)
	if err != nil {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.ownSub = sub
	t.mu.Unlock()

	if t.state != nil {
		t.state.Dispatch(appstate.TrackingChanged{Active: true})
	}
	t.logger.Info().
		Str("topic", t.shareTopic).
		Dur("interval", t.interval).
		Int("qos", t.qos).
		Msg("TrackingService started")
	return nil
}

// Stop ends all active subscriptions and releases the location provider.
func (t *TrackingService) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		t.logger.Warn().Msg("TrackingService is not running")
		return errors.New("tracking service is not running")
	}
	t.running = false
	active := make([]*Subscription, 0, len(t.subs))
	for sub := range t.subs {
		active = append(active, sub)
	}
	t.mu.Unlock()

	for _, sub := range active {
		sub.Stop()
		sub.wg.Wait()
	}

	if err := t.provider.Close(); err != nil {
		t.logger.Error().Err(err).Msg("Failed to close location provider")
		return err
	}

	if t.state != nil {
		t.state.Dispatch(appstate.TrackingChanged{Active: false})
	}
	t.logger.Info().Msg("TrackingService stopped")
	return nil
}

// Track starts a polling subscription for userID. The provider is queried
// once immediately and then on the fixed interval until Stop is called on
// the returned subscription. Query failures go to onError and the loop
// continues.
func (t *TrackingService) Track(userID string, onUpdate LocationUpdateFunc, onError LocationErrorFunc) (*Subscription, error) {
	if err := t.provider.RequestPermission(); err != nil {
		return nil, err
	}
	enabled, err := t.provider.ServicesEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, geolocation.ErrServicesDisabled
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		userID: userID,
		cancel: cancel,
		onStop: t.forget,
	}

	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()

	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()

		// Immediate first sample before the ticker takes over.
		t.sample(sub, onUpdate, onError)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// The query runs synchronously in this goroutine, so a tick
				// can never overlap a still-outstanding query; slow queries
				// make the ticker drop ticks instead.
				t.sample(sub, onUpdate, onError)
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

// CurrentSample performs a single gated location query.
func (t *TrackingService) CurrentSample() (models.LocationSample, error) {
	if err := t.provider.RequestPermission(); err != nil {
		return models.LocationSample{}, err
	}
	enabled, err := t.provider.ServicesEnabled()
	if err != nil {
		return models.LocationSample{}, err
	}
	if !enabled {
		return models.LocationSample{}, geolocation.ErrServicesDisabled
	}

	pos, err := t.provider.CurrentPosition()
	if err != nil {
		return models.LocationSample{}, err
	}

	sample := models.LocationSample{
		Latitude:       pos.Latitude,
		Longitude:      pos.Longitude,
		AccuracyMeters: pos.AccuracyMeters,
		CapturedAt:     time.Now(),
	}
	if err := sample.Validate(); err != nil {
		return models.LocationSample{}, err
	}
	return sample, nil
}

// sample queries the provider once and delivers the result through the
// subscription. Late results arriving after Stop are discarded.
func (t *TrackingService) sample(sub *Subscription, onUpdate LocationUpdateFunc, onError LocationErrorFunc) {
	pos, err := t.provider.CurrentPosition()
	if err != nil {
		sub.deliver(func() { onError(err) })
		return
	}

	sample := models.LocationSample{
		Latitude:       pos.Latitude,
		Longitude:      pos.Longitude,
		AccuracyMeters: pos.AccuracyMeters,
		CapturedAt:     time.Now(),
	}
	if err := sample.Validate(); err != nil {
		sub.deliver(func() { onError(err) })
		return
	}

	delivered := sub.deliver(func() {
		onUpdate(sample)
		if t.state != nil {
			t.state.Dispatch(appstate.LocationUpdated{Sample: sample})
		}
		t.publishShare(sub.userID, sample)
	})
	if !delivered {
		t.logger.Debug().Msg("Discarded location sample for stopped subscription")
	}
}

// publishShare pushes the sample to the live share topic. Failures are
// logged only; sharing is best effort and never ends the loop.
func (t *TrackingService) publishShare(userID string, sample models.LocationSample) {
	if t.mqttClient == nil || t.shareTopic == "" {
		return
	}

	payload, err := json.Marshal(models.LocationShare{
		UserID:    userID,
		Timestamp: sample.CapturedAt,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Accuracy:  sample.AccuracyMeters,
	})
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to serialize location share")
		return
	}

	token := t.mqttClient.Publish(t.shareTopic+"/"+userID, byte(t.qos), false, payload)
	if token.Wait() && token.Error() != nil {
		t.logger.Error().
			Err(token.Error()).
			Str("topic", t.shareTopic).
			Msg("Failed to publish location share")
	}
}

// forget drops a stopped subscription from the active set.
func (t *TrackingService) forget(sub *Subscription) {
	t.mu.Lock()
	delete(t.subs, sub)
	t.mu.Unlock()
}
