package process

import (
	"fmt"
	"runtime"

	"github.com/sarchlab/procsim/sim/naming"
	"github.com/sarchlab/procsim/sim/timing"
)

// TaskState is the life-cycle stage of a task.
type TaskState int

// The task states. A task moves from TaskCreated to TaskRunning, then back
// and forth between TaskRunning and TaskSuspended, and ends in one of the
// three final states.
const (
	TaskCreated TaskState = iota
	TaskRunning
	TaskSuspended
	TaskCompleted
	TaskFailed
	TaskAborted
)

var taskStateNames = [...]string{
	"created", "running", "suspended", "completed", "failed", "aborted",
}

func (s TaskState) String() string {
	if s < 0 || int(s) >= len(taskStateNames) {
		return fmt.Sprintf("TaskState(%d)", int(s))
	}

	return taskStateNames[s]
}

// IsFinal tells if a task in this state will never run again.
func (s TaskState) IsFinal() bool {
	return s >= TaskCompleted
}

// A Task is a cooperatively scheduled unit of execution. Each task runs on
// its own goroutine, but the Simulator makes sure that at most one of them
// executes at any moment. A task gives control back only when it suspends or
// returns.
type Task struct {
	naming.NamedBase

	id    string
	sim   *Simulator
	entry func() error
	at    *timing.Instant
	after *timing.Duration

	state   TaskState
	err     error
	started bool

	resume  chan struct{}
	yielded chan struct{}
	abort   chan struct{}
	done    chan struct{}
}

func newTask(s *Simulator, entry func() error) *Task {
	return &Task{
		NamedBase: naming.MakeNamedBase(s.labeler.Next("Task")),
		id:        s.ids.Generate(),
		sim:       s,
		entry:     entry,
		resume:    make(chan struct{}),
		yielded:   make(chan struct{}),
		abort:     make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// ID returns the sequential ID of the task.
func (t *Task) ID() string {
	return t.id
}

// State returns the current state of the task.
func (t *Task) State() TaskState {
	return t.state
}

// Err returns the error that made the task fail, if any.
func (t *Task) Err() error {
	return t.err
}

// start launches the goroutine. The goroutine runs until its first
// suspension point before the caller regains control.
func (t *Task) start() {
	t.started = true

	go t.run()
}

func (t *Task) run() {
	defer close(t.done)
	defer func() {
		r := recover()

		if t.state == TaskAborted {
			return
		}

		if r != nil {
			t.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}

		if t.err != nil {
			t.state = TaskFailed
		} else {
			t.state = TaskCompleted
		}

		t.yielded <- struct{}{}
	}()

	t.err = t.body()
}

func (t *Task) body() error {
	if t.at != nil {
		if err := t.sim.SleepUntil(*t.at); err != nil {
			return err
		}
	}

	if t.after != nil {
		if err := t.sim.Sleep(*t.after); err != nil {
			return err
		}
	}

	return t.entry()
}

// suspend hands control back to the scheduler and blocks until the task is
// resumed. If the task is aborted instead, the goroutine exits here, running
// the deferred calls of the task on the way out.
func (t *Task) suspend() {
	t.state = TaskSuspended
	t.yielded <- struct{}{}

	select {
	case <-t.resume:
	case <-t.abort:
		runtime.Goexit()
	}
}

// wake gives control to the task and blocks until it suspends or ends.
func (t *Task) wake() {
	t.state = TaskRunning

	if !t.started {
		t.start()
	} else {
		t.resume <- struct{}{}
	}

	<-t.yielded
}

// kill tears down a task that has not finished. The caller blocks until the
// goroutine is gone.
func (t *Task) kill() {
	wasStarted := t.started && !t.state.IsFinal()
	t.state = TaskAborted

	if wasStarted {
		close(t.abort)
		<-t.done
	}
}
