package process

import (
	"errors"

	"github.com/sarchlab/procsim/sim/timing"
)

var (
	// ErrPastInstant is returned when a task tries to sleep or wait until an
	// instant that is already behind the current time.
	ErrPastInstant = errors.New("instant is before current time")

	// ErrNotInTask is returned when a suspending call is made by code that
	// is not running inside a scheduled task.
	ErrNotInTask = errors.New("not called from a simulation task")

	// ErrTaskAborted is returned to a task that tries to suspend while it is
	// being torn down by Reset.
	ErrTaskAborted = errors.New("task aborted")

	// ErrTaskPanicked wraps the value of a panic raised inside a task.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrDomainMismatch is returned when time values from different domains
	// are combined.
	ErrDomainMismatch = timing.ErrDomainMismatch
)
