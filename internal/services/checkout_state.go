package service

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

type CheckoutState int

const (
	CheckoutPending CheckoutState = iota
	CheckoutValidating
	CheckoutCommitted
	CheckoutAborted
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutPending:
		return "pending"
	case CheckoutValidating:
		return "validating"
	case CheckoutCommitted:
		return "committed"
	case CheckoutAborted:
		return "aborted"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

// Committed and aborted are terminal.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutPending:    {CheckoutValidating, CheckoutAborted},
	CheckoutValidating: {CheckoutCommitted, CheckoutAborted},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	return slices.Contains(checkoutTransitions[s], next)
}

// checkoutRun tracks one checkout attempt and logs every transition.
type checkoutRun struct {
	state  CheckoutState
	logger *slog.Logger
}

func newCheckoutRun(logger *slog.Logger, userID uuid.UUID) *checkoutRun {
	return &checkoutRun{
		state:  CheckoutPending,
		logger: logger.With(slog.String("userID", userID.String())),
	}
}

func (r *checkoutRun) transition(next CheckoutState, attrs ...any) error {
	if !r.state.CanTransitionTo(next) {
		return fmt.Errorf("illegal checkout transition from %s to %s", r.state, next)
	}

	r.logger.Info("Checkout state changed",
		append([]any{slog.String("from", r.state.String()), slog.String("to", next.String())}, attrs...)...)

	r.state = next

	return nil
}

// abort is a no-op once the run has reached a terminal state.
func (r *checkoutRun) abort(reason string, attrs ...any) {
	if r.state.CanTransitionTo(CheckoutAborted) {
		_ = r.transition(CheckoutAborted, append([]any{slog.String("reason", reason)}, attrs...)...)
	}
}
