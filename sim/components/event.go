package components

import "github.com/sarchlab/procsim/sim/naming"

// An Event is a flag that can be set once. Tasks can wait for it to be set.
type Event struct {
	naming.NamedBase

	sched Scheduler
	set   bool
}

// NewEvent creates an Event that is not set.
func NewEvent(s Scheduler) *Event {
	return &Event{
		NamedBase: naming.MakeNamedBase(s.Labeler().Next("Event")),
		sched:     s,
	}
}

// Set sets the event. Setting it again has no effect. Waiting tasks continue
// in the next scheduling pass.
func (e *Event) Set() {
	e.set = true
}

// IsSet tells if the event has been set.
func (e *Event) IsSet() bool {
	return e.set
}

// Wait suspends the calling task until the event is set. It returns right
// away if the event is already set.
func (e *Event) Wait() error {
	if e.set {
		return nil
	}

	return e.sched.SuspendUntil(e.IsSet)
}
