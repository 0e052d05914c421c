package process

import (
	"sync"

	"github.com/sarchlab/procsim/sim/hooking"
	"github.com/sarchlab/procsim/sim/timing"
)

// TaskFilter selects the tasks a tracer should count.
type TaskFilter func(t *Task) bool

// TaskTimeTracer collects the total and average lifetime of tasks, from the
// instant they start to the instant they end. Overlapping tasks simply add
// up. Calendar lifetimes are measured in seconds.
type TaskTimeTracer struct {
	filter TaskFilter

	lock      sync.Mutex
	inflight  map[*Task]timing.Instant
	totalTime float64
	taskCount uint64
}

// NewTaskTimeTracer creates a tracer counting the tasks accepted by filter. A
// nil filter accepts every task.
func NewTaskTimeTracer(filter TaskFilter) *TaskTimeTracer {
	return &TaskTimeTracer{
		filter:   filter,
		inflight: make(map[*Task]timing.Instant),
	}
}

// Func records the start and the end of tasks.
func (t *TaskTimeTracer) Func(ctx hooking.HookCtx) {
	task, ok := ctx.Item.(*Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		t.startTask(task, ctx.Now)
	case HookPosTaskEnd:
		t.endTask(task, ctx.Now)
	}
}

func (t *TaskTimeTracer) startTask(task *Task, now timing.Instant) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflight[task] = now
	t.lock.Unlock()
}

func (t *TaskTimeTracer) endTask(task *Task, now timing.Instant) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[task]
	if !ok {
		return
	}

	t.totalTime += now.Float() - start.Float()
	t.taskCount++

	delete(t.inflight, task)
}

// TotalTime returns the summed lifetime of the ended tasks.
func (t *TaskTimeTracer) TotalTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// AverageTime returns the mean lifetime of the ended tasks, or 0 if none
// ended.
func (t *TaskTimeTracer) AverageTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.totalTime / float64(t.taskCount)
}

// TotalCount returns the number of ended tasks.
func (t *TaskTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// Reset forgets everything collected so far.
func (t *TaskTimeTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflight = make(map[*Task]timing.Instant)
	t.totalTime = 0
	t.taskCount = 0
}
