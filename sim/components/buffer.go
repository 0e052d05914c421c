package components

import (
	"fmt"
	"math"
	"reflect"

	"github.com/sarchlab/procsim/sim/naming"
)

// itemBuffer is the FIFO shared by Queue and Store.
type itemBuffer[T any] struct {
	naming.NamedBase

	sched    Scheduler
	capacity int
	items    []T
}

func makeItemBuffer[T any](
	s Scheduler,
	kind string,
	capacity int,
) (itemBuffer[T], error) {
	if capacity < 1 && capacity != Unbounded {
		return itemBuffer[T]{}, fmt.Errorf("%w: %s capacity %d",
			ErrInvalidCapacity, kind, capacity)
	}

	return itemBuffer[T]{
		NamedBase: naming.MakeNamedBase(s.Labeler().Next(kind)),
		sched:     s,
		capacity:  capacity,
	}, nil
}

func (b *itemBuffer[T]) canPush() bool {
	return b.capacity == Unbounded || len(b.items) < b.capacity
}

func (b *itemBuffer[T]) canPop() bool {
	return len(b.items) > 0
}

func (b *itemBuffer[T]) waitForRoom() error {
	if b.canPush() {
		return nil
	}

	return b.sched.SuspendUntil(b.canPush)
}

// Get removes and returns the oldest item. The calling task suspends until
// an item is available.
func (b *itemBuffer[T]) Get() (T, error) {
	if !b.canPop() {
		if err := b.sched.SuspendUntil(b.canPop); err != nil {
			var zero T
			return zero, err
		}
	}

	item := b.items[0]

	var zero T
	b.items[0] = zero
	b.items = b.items[1:]

	return item, nil
}

// Size returns the number of items held.
func (b *itemBuffer[T]) Size() int {
	return len(b.items)
}

// Level returns the number of items held.
func (b *itemBuffer[T]) Level() int {
	return len(b.items)
}

// Capacity returns the maximum number of items, or Unbounded.
func (b *itemBuffer[T]) Capacity() int {
	return b.capacity
}

// Occupancy returns the size and the capacity.
func (b *itemBuffer[T]) Occupancy() (level, capacity float64) {
	if b.capacity == Unbounded {
		return float64(len(b.items)), math.Inf(1)
	}

	return float64(len(b.items)), float64(b.capacity)
}

// A Queue is a FIFO buffer of items.
type Queue[T any] struct {
	itemBuffer[T]
}

// NewQueue creates an empty Queue holding at most capacity items. Use
// Unbounded for a Queue that never fills up.
func NewQueue[T any](s Scheduler, capacity int) (*Queue[T], error) {
	b, err := makeItemBuffer[T](s, "Queue", capacity)
	if err != nil {
		return nil, err
	}

	return &Queue[T]{itemBuffer: b}, nil
}

// Put appends item. The calling task suspends until there is room.
func (q *Queue[T]) Put(item T) error {
	if err := q.waitForRoom(); err != nil {
		return err
	}

	q.items = append(q.items, item)

	return nil
}

// A Store is a FIFO buffer whose items all share the same dynamic type. The
// type is decided by the oldest item held, so an empty Store accepts any
// item.
type Store[T any] struct {
	itemBuffer[T]
}

// NewStore creates an empty Store holding at most capacity items. Use
// Unbounded for a Store that never fills up.
func NewStore[T any](s Scheduler, capacity int) (*Store[T], error) {
	b, err := makeItemBuffer[T](s, "Store", capacity)
	if err != nil {
		return nil, err
	}

	return &Store[T]{itemBuffer: b}, nil
}

// Put appends item. The type is checked before waiting for room, so an item
// of the wrong type fails even when the Store is full. It is checked again
// once there is room, since the Store may have been emptied and refilled
// with another type in the meantime.
func (st *Store[T]) Put(item T) error {
	if err := st.typeMustMatch(item); err != nil {
		return err
	}

	if err := st.waitForRoom(); err != nil {
		return err
	}

	if err := st.typeMustMatch(item); err != nil {
		return err
	}

	st.items = append(st.items, item)

	return nil
}

func (st *Store[T]) typeMustMatch(item T) error {
	if len(st.items) == 0 {
		return nil
	}

	want := reflect.TypeOf(st.items[0])
	got := reflect.TypeOf(item)

	if want != got {
		return fmt.Errorf("%w: %v cannot be put into %s holding %v",
			ErrTypeMismatch, got, st.Name(), want)
	}

	return nil
}
