package components

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/procsim/sim/naming"
)

// A Resource is a pool of identical slots. A holder takes a slot with
// Request and gives it back with Release. Holders must be comparable and
// not nil.
type Resource struct {
	naming.NamedBase

	sched    Scheduler
	capacity int
	holders  []any
}

// NewResource creates a Resource with the given number of slots.
func NewResource(s Scheduler, capacity int) (*Resource, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: resource capacity %d", ErrInvalidCapacity,
			capacity)
	}

	return &Resource{
		NamedBase: naming.MakeNamedBase(s.Labeler().Next("Resource")),
		sched:     s,
		capacity:  capacity,
	}, nil
}

// Request takes a slot for by. If all slots are taken, the calling task
// suspends until one is released.
func (r *Resource) Request(by any) error {
	if err := r.holderMustBeComparable(by); err != nil {
		return err
	}

	if !r.IsIdle() {
		if err := r.sched.SuspendUntil(r.IsIdle); err != nil {
			return err
		}
	}

	r.holders = append(r.holders, by)

	return nil
}

// Release gives back the slot held by by. If by holds more than one slot,
// the one taken first is released.
func (r *Resource) Release(by any) error {
	if err := r.holderMustBeComparable(by); err != nil {
		return err
	}

	for i, h := range r.holders {
		if h == by {
			r.holders = append(r.holders[:i], r.holders[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("%w: %v cannot release %s", ErrNotHolder, by, r.Name())
}

func (r *Resource) holderMustBeComparable(by any) error {
	if !reflect.ValueOf(by).Comparable() {
		return fmt.Errorf("%w: %T cannot hold %s", ErrInvalidHolder, by,
			r.Name())
	}

	return nil
}

// Usage returns the number of slots taken.
func (r *Resource) Usage() int {
	return len(r.holders)
}

// Capacity returns the number of slots.
func (r *Resource) Capacity() int {
	return r.capacity
}

// IsIdle tells if at least one slot is free.
func (r *Resource) IsIdle() bool {
	return len(r.holders) < r.capacity
}

// Holders returns the holders in the order they took their slots.
func (r *Resource) Holders() []any {
	holders := make([]any, len(r.holders))
	copy(holders, r.holders)

	return holders
}

// Occupancy returns the usage and the capacity.
func (r *Resource) Occupancy() (level, capacity float64) {
	return float64(len(r.holders)), float64(r.capacity)
}
