// Package phase is the phase/time validator of spec.md §4.4: given an
// escrow and a requested action's window, decide whether the action is
// admissible right now.
package phase

import (
	"fmt"

	"github.com/liquidityos/escrow-coordinator/domain"
)

// ErrNotYetOpen and ErrWindowClosed map directly to the NotYetOpen and
// WindowClosed error kinds of spec.md §7.
type ErrNotYetOpen struct {
	OpensAt int64
}

func (e *ErrNotYetOpen) Error() string {
	return fmt.Sprintf("phase: not available until %d", e.OpensAt)
}

type ErrWindowClosed struct {
	ClosedAt int64
}

func (e *ErrWindowClosed) Error() string {
	return fmt.Sprintf("phase: window closed at %d", e.ClosedAt)
}

// NoEndPhase signals an open-ended window ([start, ∞)), as used by Cancel.
const NoEndPhase domain.Phase = -1

// ValidateWindow implements spec.md §4.4's validate_window: now is
// wall-clock plus slackSeconds; the call fails NotYetOpen if now precedes
// timelocks[startPhase], fails WindowClosed if endPhase is supplied and now
// has reached timelocks[endPhase], else succeeds.
func ValidateWindow(e *domain.Escrow, now int64, startPhase, endPhase domain.Phase, slackSeconds int64) error {
	adjustedNow := now + slackSeconds

	if adjustedNow < e.PhaseTime(startPhase) {
		return &ErrNotYetOpen{OpensAt: e.PhaseTime(startPhase)}
	}
	if endPhase != NoEndPhase && adjustedNow >= e.PhaseTime(endPhase) {
		return &ErrWindowClosed{ClosedAt: e.PhaseTime(endPhase)}
	}
	return nil
}
