package components

import "github.com/sarchlab/procsim/sim/naming"

// A State holds a value that tasks can wait for.
type State[T comparable] struct {
	naming.NamedBase

	sched Scheduler
	value T
}

// NewState creates a State holding init.
func NewState[T comparable](s Scheduler, init T) *State[T] {
	return &State[T]{
		NamedBase: naming.MakeNamedBase(s.Labeler().Next("State")),
		sched:     s,
		value:     init,
	}
}

// Set replaces the value.
func (st *State[T]) Set(v T) {
	st.value = v
}

// Value returns the current value.
func (st *State[T]) Value() T {
	return st.value
}

// Wait suspends the calling task until the value equals target. The value
// only has to equal target at the moment the scheduler checks, so a value
// that passes through target and leaves again between two checks is missed.
func (st *State[T]) Wait(target T) error {
	if st.value == target {
		return nil
	}

	return st.sched.SuspendUntil(func() bool { return st.value == target })
}
