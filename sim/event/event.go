// Package event provides an event-driven kernel. Events are scheduled at a
// delay from now and triggered one after another in time order. Unlike the
// process kernel, nothing suspends: each event runs to completion and may
// schedule more events.
package event

import (
	"errors"

	"github.com/sarchlab/procsim/sim/hooking"
)

// ErrNegativeDelay is returned when an event is scheduled in the past.
var ErrNegativeDelay = errors.New("negative delay")

// An Event is something that happens at an instant.
type Event interface {
	// Trigger runs the event. The engine's clock reads the instant the event
	// was scheduled for.
	Trigger(e *Engine) error
}

// Func adapts a plain function to the Event interface.
type Func func(e *Engine) error

// Trigger calls f.
func (f Func) Trigger(e *Engine) error {
	return f(e)
}

var (
	// HookPosBeforeEvent triggers right before an event runs. The item is
	// the event.
	HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

	// HookPosAfterEvent triggers right after an event has run. The item is
	// the event and the detail is the error it returned, if any.
	HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}
)
