// Package components provides the synchronization primitives that processes
// use to coordinate: events, states, resources, containers, stores and
// queues.
//
// Every primitive is built on a single operation, suspending the running
// task until a condition holds. Primitives are not safe for concurrent use;
// they rely on the Simulator running one task at a time.
package components

import (
	"errors"

	"github.com/sarchlab/procsim/sim/naming"
	"github.com/sarchlab/procsim/sim/process"
)

// Unbounded is the capacity of a Store or Queue that never fills up.
const Unbounded = -1

var (
	// ErrNotHolder is returned when a Resource is released by someone that
	// does not hold it.
	ErrNotHolder = errors.New("resource released without holding it")

	// ErrInvalidHolder is returned when a Resource is requested or released
	// by a value that cannot be compared, such as a slice or a map.
	ErrInvalidHolder = errors.New("holder is not comparable")

	// ErrTypeMismatch is returned when an item of a different type is put
	// into a non-empty Store.
	ErrTypeMismatch = errors.New("item type does not match store type")

	// ErrInvalidAmount is returned when a Container is asked to move a
	// negative amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCapacity is returned when a primitive is created with a
	// capacity it can never satisfy.
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// A Scheduler can suspend the running task and names the primitives it
// coordinates. *process.Simulator is a Scheduler.
type Scheduler interface {
	SuspendUntil(cond process.Condition) error
	Labeler() *naming.Labeler
}

// Leveled is a primitive that holds a quantity up to a capacity. Unbounded
// primitives report an infinite capacity.
type Leveled interface {
	naming.Named
	Occupancy() (level, capacity float64)
}
