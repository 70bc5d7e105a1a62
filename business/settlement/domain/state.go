package domain

import (
	"fmt"

	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
)

// State is one stage of a settlement attempt. An attempt moves strictly
// forward through the pipeline and ends in exactly one of the two terminal
// states.
type State string

const (
	StateValidating State = "validating"
	StateBorrowing  State = "borrowing"
	StateRouting    State = "routing"
	StateEvaluating State = "evaluating"
	StateRepaying   State = "repaying"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// Terminal reports whether the state ends the attempt.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}

var transitions = map[State][]State{
	StateValidating: {StateBorrowing, StateRolledBack},
	StateBorrowing:  {StateRouting, StateRolledBack},
	StateRouting:    {StateEvaluating, StateRolledBack},
	StateEvaluating: {StateRepaying, StateRolledBack},
	StateRepaying:   {StateCommitted, StateRolledBack},
}

// Attempt tracks the state of one settlement run. Transitions outside the
// pipeline order panic via error, surfacing orchestrator bugs immediately.
type Attempt struct {
	id    string
	state State
}

// NewAttempt starts an attempt in the validating state.
func NewAttempt(id string) *Attempt {
	return &Attempt{id: id, state: StateValidating}
}

// ID returns the attempt identifier.
func (a *Attempt) ID() string { return a.id }

// State returns the current state.
func (a *Attempt) State() State { return a.state }

// Advance moves the attempt to next, enforcing pipeline order.
func (a *Attempt) Advance(next State) error {
	for _, allowed := range transitions[a.state] {
		if next == allowed {
			a.state = next
			return nil
		}
	}
	return apperror.New(apperror.CodeInvalidState,
		apperror.WithContext(fmt.Sprintf("attempt %s cannot go %s -> %s", a.id, a.state, next)))
}
