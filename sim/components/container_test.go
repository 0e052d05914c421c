package components

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/procsim/sim/process"
	"github.com/sarchlab/procsim/sim/timing"
)

var _ = Describe("Container", func() {
	var (
		sim *process.Simulator
	)

	BeforeEach(func() {
		sim = process.NewSimulator(timing.At(0))
	})

	It("should reject an invalid capacity", func() {
		_, err := NewContainer(sim, -1)
		Expect(errors.Is(err, ErrInvalidCapacity)).To(BeTrue())

		_, err = NewContainer(sim, math.NaN())
		Expect(errors.Is(err, ErrInvalidCapacity)).To(BeTrue())
	})

	It("should default to an unlimited capacity", func() {
		c := NewUnlimitedContainer(sim)

		Expect(c.Name()).To(Equal("Container.0"))
		Expect(math.IsInf(c.Capacity(), 1)).To(BeTrue())
		Expect(c.Level()).To(Equal(0.0))

		Expect(c.Put(1e9)).To(Succeed())
		Expect(c.Level()).To(Equal(1e9))
	})

	It("should move fractional amounts", func() {
		c, err := NewContainer(sim, 1)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Put(0.25)).To(Succeed())
		Expect(c.Put(0.5)).To(Succeed())
		Expect(c.Get(0.125)).To(Succeed())

		Expect(c.Level()).To(Equal(0.625))
	})

	It("should reject negative amounts", func() {
		c, err := NewContainer(sim, 10)
		Expect(err).NotTo(HaveOccurred())

		Expect(errors.Is(c.Put(-1), ErrInvalidAmount)).To(BeTrue())
		Expect(errors.Is(c.Get(-1), ErrInvalidAmount)).To(BeTrue())
		Expect(errors.Is(c.Put(math.NaN()), ErrInvalidAmount)).To(BeTrue())
		Expect(c.Level()).To(Equal(0.0))
	})

	It("should reject an amount larger than the capacity", func() {
		c, err := NewContainer(sim, 10)
		Expect(err).NotTo(HaveOccurred())

		Expect(errors.Is(c.Put(11), ErrInvalidAmount)).To(BeTrue())
	})

	It("should make a getter wait until the level is high enough", func() {
		c := NewUnlimitedContainer(sim)

		var (
			gotAt      timing.Instant
			levelAfter float64
		)

		_, err := sim.Schedule(func() error {
			for i := 0; i < 5; i++ {
				if err := sim.Sleep(timing.Span(1)); err != nil {
					return err
				}

				if err := c.Put(5); err != nil {
					return err
				}
			}

			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.Schedule(func() error {
			if err := c.Get(15); err != nil {
				return err
			}

			gotAt = sim.Now()
			levelAfter = c.Level()

			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.RunUntil(timing.At(3))).To(Succeed())

		Expect(gotAt).To(Equal(timing.At(3)))
		Expect(levelAfter).To(Equal(0.0))
	})

	It("should keep the level within bounds", func() {
		c, err := NewContainer(sim, 7.5)
		Expect(err).NotTo(HaveOccurred())

		checkBounds := func() {
			Expect(c.Level()).To(BeNumerically(">=", 0))
			Expect(c.Level()).To(BeNumerically("<=", c.Capacity()))
		}

		worker := func(
			move func(float64) error,
			amount float64,
			times int,
			pause float64,
		) {
			_, err := sim.Schedule(func() error {
				for j := 0; j < times; j++ {
					if err := move(amount); err != nil {
						return err
					}

					checkBounds()

					if err := sim.Sleep(timing.Span(pause)); err != nil {
						return err
					}
				}

				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		}

		worker(c.Put, 2.5, 6, 0.5)
		worker(c.Put, 1, 5, 0.7)
		worker(c.Get, 1.5, 10, 1)
		worker(c.Get, 1, 5, 0.3)

		Expect(sim.Run()).To(Succeed())

		Expect(c.Level()).To(Equal(0.0))
		Expect(sim.NumWaiting()).To(Equal(0))
	})
})
