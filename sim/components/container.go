package components

import (
	"fmt"
	"math"

	"github.com/sarchlab/procsim/sim/naming"
)

// A Container holds a continuous quantity, such as fuel in a tank. Amounts
// can be fractional.
type Container struct {
	naming.NamedBase

	sched    Scheduler
	capacity float64
	level    float64
}

// NewContainer creates an empty Container. Pass math.Inf(1) for a Container
// without limit.
func NewContainer(s Scheduler, capacity float64) (*Container, error) {
	if math.IsNaN(capacity) || capacity < 0 {
		return nil, fmt.Errorf("%w: container capacity %v",
			ErrInvalidCapacity, capacity)
	}

	return &Container{
		NamedBase: naming.MakeNamedBase(s.Labeler().Next("Container")),
		sched:     s,
		capacity:  capacity,
	}, nil
}

// NewUnlimitedContainer creates an empty Container without limit.
func NewUnlimitedContainer(s Scheduler) *Container {
	c, _ := NewContainer(s, math.Inf(1))
	return c
}

// Put adds amount to the container. The calling task suspends until there
// is enough room.
func (c *Container) Put(amount float64) error {
	if err := c.amountMustBeValid(amount); err != nil {
		return err
	}

	if amount > c.capacity {
		return fmt.Errorf("%w: %v never fits into %s of capacity %v",
			ErrInvalidAmount, amount, c.Name(), c.capacity)
	}

	canPut := func() bool { return c.level+amount <= c.capacity }
	if !canPut() {
		if err := c.sched.SuspendUntil(canPut); err != nil {
			return err
		}
	}

	c.level += amount

	return nil
}

// Get takes amount out of the container. The calling task suspends until
// the level is high enough.
func (c *Container) Get(amount float64) error {
	if err := c.amountMustBeValid(amount); err != nil {
		return err
	}

	canGet := func() bool { return c.level-amount >= 0 }
	if !canGet() {
		if err := c.sched.SuspendUntil(canGet); err != nil {
			return err
		}
	}

	c.level -= amount

	return nil
}

func (c *Container) amountMustBeValid(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: %v for %s", ErrInvalidAmount, amount, c.Name())
	}

	return nil
}

// Level returns the current quantity.
func (c *Container) Level() float64 {
	return c.level
}

// Capacity returns the maximum quantity.
func (c *Container) Capacity() float64 {
	return c.capacity
}

// Occupancy returns the level and the capacity.
func (c *Container) Occupancy() (level, capacity float64) {
	return c.level, c.capacity
}
