// Package mutation tracks the lifecycle of one user-triggered write
// (add, update, remove, checkout) so a second submission of the same
// action is refused while the first is still on the wire.
package mutation

import "errors"

type State string

const (
	StateIdle     State = "IDLE"
	StateInFlight State = "IN_FLIGHT"
	StateSuccess  State = "SUCCESS"
	StateFailed   State = "FAILED"
)

var (
	ErrInFlight          = errors.New("mutation already in flight")
	ErrIllegalTransition = errors.New("illegal mutation state transition")
)

func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

func (s State) String() string {
	return string(s)
}

// Next returns the state reached by moving to "to", or ErrIllegalTransition.
// Idle -> InFlight -> {Success, Failed} -> Idle.
func (s State) Next(to State) (State, error) {
	switch {
	case s == StateIdle && to == StateInFlight:
	case s == StateInFlight && to.IsTerminal():
	case s.IsTerminal() && to == StateIdle:
	default:
		return s, ErrIllegalTransition
	}
	return to, nil
}
