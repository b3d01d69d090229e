package services

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/utils"
	"github.com/rakshaapp/raksha-agent/pkg/sms"
)

// ErrNoRecipients is returned when a broadcast is requested with an empty
// recipient list.
var ErrNoRecipients = errors.New("no recipients to notify")

// Dispatcher fans out one notification per recipient through the messaging
// transport. Dispatch is best effort: there is no retry, and failures are
// surfaced for the caller to re-attempt manually.
type Dispatcher struct {
	messenger  sms.Messenger
	workerPool *utils.WorkerPool
	dedup      bool
	logger     zerolog.Logger
}

// NewDispatcher creates a Dispatcher. dedup controls whether duplicate
// recipients are collapsed before fan-out; when false, each occurrence is an
// independent send.
func NewDispatcher(messenger sms.Messenger, workerPool *utils.WorkerPool, dedup bool, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger:  messenger,
		workerPool: workerPool,
		dedup:      dedup,
		logger:     logger,
	}
}

// Broadcast sends text to every recipient. It fails fast with
// sms.ErrTransportUnavailable when the transport cannot send at all;
// otherwise per-recipient failures are joined into the returned error.
func (d *Dispatcher) Broadcast(recipients []string, text string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	if !d.messenger.IsAvailable() {
		return sms.ErrTransportUnavailable
	}

	targets := recipients
	if d.dedup {
		targets = dedupOrdered(recipients)
	}

	results := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, recipient := range targets {
		i, recipient := i, recipient
		wg.Add(1)
		d.workerPool.Submit(func() {
			defer wg.Done()
			results[i] = d.messenger.Send(recipient, text)
		})
	}
	wg.Wait()

	var failed int
	for _, err := range results {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		d.logger.Error().
			Int("failed", failed).
			Int("total", len(targets)).
			Msg("Notification fan-out partially failed")
		return errors.Join(results...)
	}

	d.logger.Info().Int("recipients", len(targets)).Msg("Notification fan-out complete")
	return nil
}

// dedupOrdered removes duplicate recipients, keeping first occurrences in
// order.
func dedupOrdered(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
