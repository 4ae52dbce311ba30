package bookings

import "github.com/reservahq/reserva/pkg/fault"

// transitions is the complete status graph. completed and cancelled are
// terminal; cancellation is reachable from pending and confirmed only.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether the status graph allows from → to.
// Self-transitions are never allowed.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// CheckTransition returns an InvalidTransitionError if from → to is outside
// the status graph
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &fault.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}
