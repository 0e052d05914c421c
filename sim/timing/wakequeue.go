package timing

import (
	"container/heap"
	"sync"
)

// A Wake is a future instant at which the clock may need to advance. Wakes
// scheduled for the same instant are ordered by their sequence number.
type Wake struct {
	Time Instant
	Seq  uint64
}

// WakeQueue is a thread safe min-heap of wakes, ordered first by time and
// then by insertion order.
type WakeQueue struct {
	sync.Mutex
	wakes   wakeHeap
	nextSeq uint64
}

// NewWakeQueue creates and returns a newly created WakeQueue.
func NewWakeQueue() *WakeQueue {
	q := new(WakeQueue)
	q.wakes = make([]Wake, 0)
	heap.Init(&q.wakes)

	return q
}

// Push adds a wake for the given instant and returns it.
func (q *WakeQueue) Push(t Instant) Wake {
	q.Lock()
	defer q.Unlock()

	w := Wake{Time: t, Seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.wakes, w)

	return w
}

// Pop removes and returns the earliest wake.
func (q *WakeQueue) Pop() Wake {
	q.Lock()
	w := heap.Pop(&q.wakes).(Wake)
	q.Unlock()

	return w
}

// Peek returns the earliest wake without removing it from the queue.
func (q *WakeQueue) Peek() Wake {
	q.Lock()
	w := q.wakes[0]
	q.Unlock()

	return w
}

// Len returns the number of pending wakes.
func (q *WakeQueue) Len() int {
	q.Lock()
	l := q.wakes.Len()
	q.Unlock()

	return l
}

// Clear drops all pending wakes. The sequence counter keeps counting so that
// ordering stays stable across clears.
func (q *WakeQueue) Clear() {
	q.Lock()
	q.wakes = q.wakes[:0]
	q.Unlock()
}

type wakeHeap []Wake

func (h wakeHeap) Len() int {
	return len(h)
}

// Less returns true if the i-th wake happens before the j-th wake.
func (h wakeHeap) Less(i, j int) bool {
	c := h[i].Time.Compare(h[j].Time)
	if c != 0 {
		return c < 0
	}

	return h[i].Seq < h[j].Seq
}

func (h wakeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *wakeHeap) Push(x interface{}) {
	*h = append(*h, x.(Wake))
}

func (h *wakeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	w := old[n-1]
	*h = old[0 : n-1]

	return w
}
