package timing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WakeQueue", func() {
	var queue *WakeQueue

	BeforeEach(func() {
		queue = NewWakeQueue()
	})

	It("should pop in order", func() {
		numWakes := 100
		for i := 0; i < numWakes; i++ {
			queue.Push(At(rand.Float64() / 1e8))
		}

		now := At(-1)
		for i := 0; i < numWakes; i++ {
			w := queue.Pop()
			Expect(w.Time.Before(now)).To(BeFalse())
			now = w.Time
		}

		Expect(queue.Len()).To(Equal(0))
	})

	It("should keep insertion order for the same instant", func() {
		queue.Push(At(5))
		first := queue.Push(At(3))
		second := queue.Push(At(3))
		third := queue.Push(At(3))

		Expect(queue.Peek()).To(Equal(first))
		Expect(queue.Pop()).To(Equal(first))
		Expect(queue.Pop()).To(Equal(second))
		Expect(queue.Pop()).To(Equal(third))
		Expect(queue.Pop().Time.Float()).To(Equal(5.0))
	})

	It("should clear", func() {
		queue.Push(At(1))
		queue.Push(At(2))

		queue.Clear()

		Expect(queue.Len()).To(Equal(0))
		Expect(queue.Push(At(0)).Seq).To(Equal(uint64(2)))
	})
})
