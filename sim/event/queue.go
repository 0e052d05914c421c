package event

import (
	"container/heap"
	"sync"

	"github.com/sarchlab/procsim/sim/timing"
)

type entry struct {
	time  timing.Instant
	seq   uint64
	event Event
}

// queue is a thread safe min-heap of events. Events due at the same instant
// come out in the order they were pushed.
type queue struct {
	sync.Mutex
	entries entryHeap
	nextSeq uint64
}

func newQueue() *queue {
	q := new(queue)
	q.entries = make([]entry, 0)
	heap.Init(&q.entries)

	return q
}

func (q *queue) Push(t timing.Instant, evt Event) {
	q.Lock()
	heap.Push(&q.entries, entry{time: t, seq: q.nextSeq, event: evt})
	q.nextSeq++
	q.Unlock()
}

func (q *queue) Pop() entry {
	q.Lock()
	e := heap.Pop(&q.entries).(entry)
	q.Unlock()

	return e
}

func (q *queue) Len() int {
	q.Lock()
	l := q.entries.Len()
	q.Unlock()

	return l
}

func (q *queue) Clear() {
	q.Lock()
	q.entries = q.entries[:0]
	q.Unlock()
}

type entryHeap []entry

func (h entryHeap) Len() int {
	return len(h)
}

func (h entryHeap) Less(i, j int) bool {
	c := h[i].time.Compare(h[j].time)
	if c != 0 {
		return c < 0
	}

	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[0 : n-1]

	return e
}
