package store

import (
	"fmt"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

// TransitionPolicy decides whether a status transition is permitted. The
// store applies the policy on every update; reapplying the current status is
// always idempotent under both shipped policies.
type TransitionPolicy func(from, to models.Status) error

// StrictTransitions only allows active events to move to a terminal state.
// Terminal events accept an idempotent reapply of the same status and reject
// everything else.
func StrictTransitions(from, to models.Status) error {
	if from == to {
		return nil
	}
	if from == models.StatusActive && to.Terminal() {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// AllowAllTransitions permits any transition between known statuses,
// including re-opening terminal events.
func AllowAllTransitions(from, to models.Status) error {
	return nil
}
