// Package process implements a process-oriented discrete event simulator.
//
// Processes are plain functions scheduled as tasks. A task runs until it
// reaches a suspension point (Sleep, SleepUntil, SuspendUntil and the calls
// built on them) and the Simulator then picks the next task whose wake-up
// condition holds. When no task can run, the clock jumps to the next instant
// that some task is waiting for.
package process

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/procsim/sim/hooking"
	"github.com/sarchlab/procsim/sim/id"
	"github.com/sarchlab/procsim/sim/naming"
	"github.com/sarchlab/procsim/sim/timing"
	"github.com/sarchlab/procsim/tracing"
)

// A Condition is a predicate over the state of the simulated world. It is
// evaluated by the scheduler while no task is running.
type Condition func() bool

func always() bool { return true }

// A Sink receives the records made during a simulation.
type Sink interface {
	Record(rec tracing.Record)
	Records() []tracing.Record
	Reset()
}

type waitEntry struct {
	task *Task
	cond Condition
}

// A Simulator owns the simulation time and decides which task runs next.
type Simulator struct {
	hooking.HookableBase

	timeLock sync.RWMutex
	now      timing.Instant
	initTime timing.Instant

	waiting []waitEntry
	wakes   *timing.WakeQueue
	tasks   []*Task
	current *Task
	failed  []error

	sink    Sink
	labeler *naming.Labeler
	ids     id.IDGenerator

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSimulator creates a Simulator whose clock starts at init. The domain of
// init decides the domain of every instant and duration used later on.
func NewSimulator(init timing.Instant) *Simulator {
	return &Simulator{
		now:      init,
		initTime: init,
		wakes:    timing.NewWakeQueue(),
		sink:     tracing.NewRecorder(),
		labeler:  naming.NewLabeler(),
		ids:      id.NewIDGenerator(),
	}
}

// WithSink replaces the sink that receives the records.
func (s *Simulator) WithSink(sink Sink) *Simulator {
	s.sink = sink
	return s
}

// Name returns the name of the simulator.
func (s *Simulator) Name() string {
	return "Simulator"
}

// Labeler returns the labeler that names the objects of this simulation.
func (s *Simulator) Labeler() *naming.Labeler {
	return s.labeler
}

// Now returns the current simulation time.
func (s *Simulator) Now() timing.Instant {
	s.timeLock.RLock()
	t := s.now
	s.timeLock.RUnlock()

	return t
}

// InitialTime returns the instant the clock starts from and is reset to.
func (s *Simulator) InitialTime() timing.Instant {
	return s.initTime
}

func (s *Simulator) writeNow(t timing.Instant) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

// Current returns the task that is running, or nil when called from outside
// any task.
func (s *Simulator) Current() *Task {
	return s.current
}

// Tasks returns the tasks that have not finished yet, in creation order.
func (s *Simulator) Tasks() []*Task {
	tasks := make([]*Task, len(s.tasks))
	copy(tasks, s.tasks)

	return tasks
}

// NumWaiting returns the number of tasks waiting for their condition.
func (s *Simulator) NumWaiting() int {
	return len(s.waiting)
}

// NumPendingWakes returns the number of future instants the clock may still
// advance to.
func (s *Simulator) NumPendingWakes() int {
	return s.wakes.Len()
}

// A ScheduleOption delays the start of a scheduled task.
type ScheduleOption func(t *Task)

// At makes the task start at the given instant.
func At(t timing.Instant) ScheduleOption {
	return func(task *Task) {
		task.at = &t
	}
}

// After makes the task start after the given delay. When combined with At,
// the delay counts from the At instant.
func After(d timing.Duration) ScheduleOption {
	return func(task *Task) {
		task.after = &d
	}
}

// Schedule creates a task that runs entry. The task is runnable right away,
// so it starts during the current scheduling pass, behind the tasks that
// are already runnable. If entry returns an error, the task fails and the
// error is reported by Run.
func (s *Simulator) Schedule(
	entry func() error,
	opts ...ScheduleOption,
) (*Task, error) {
	t := newTask(s, entry)
	for _, opt := range opts {
		opt(t)
	}

	if err := s.startOptionsMustBeValid(t); err != nil {
		return nil, err
	}

	s.tasks = append(s.tasks, t)
	s.waiting = append(s.waiting, waitEntry{task: t, cond: always})

	return t, nil
}

func (s *Simulator) startOptionsMustBeValid(t *Task) error {
	now := s.Now()

	if t.at != nil {
		if err := now.MustMatch(*t.at); err != nil {
			return err
		}

		if t.at.Before(now) {
			return fmt.Errorf("%w: start time %s, now %s",
				ErrPastInstant, *t.at, now)
		}
	}

	if t.after != nil {
		if _, err := now.Add(*t.after); err != nil {
			return err
		}

		if t.after.IsNegative() {
			return fmt.Errorf("%w: negative start delay %s",
				ErrPastInstant, *t.after)
		}
	}

	return nil
}

// SuspendUntil suspends the calling task until cond returns true.
func (s *Simulator) SuspendUntil(cond Condition) error {
	return s.suspend(cond, nil)
}

// SuspendUntilDeadline suspends the calling task until cond returns true or
// the clock reaches deadline, whichever happens first. The caller has to
// test cond again to tell the two apart.
func (s *Simulator) SuspendUntilDeadline(
	cond Condition,
	deadline timing.Instant,
) error {
	now := s.Now()

	if err := now.MustMatch(deadline); err != nil {
		return err
	}

	if deadline.Before(now) {
		return fmt.Errorf("%w: deadline %s, now %s",
			ErrPastInstant, deadline, now)
	}

	return s.suspend(
		func() bool { return cond() || s.Now().Equal(deadline) },
		&deadline,
	)
}

// SuspendFor suspends the calling task until cond returns true or timeout
// has elapsed.
func (s *Simulator) SuspendFor(cond Condition, timeout timing.Duration) error {
	deadline, err := s.Now().Add(timeout)
	if err != nil {
		return err
	}

	return s.SuspendUntilDeadline(cond, deadline)
}

// Sleep suspends the calling task for d.
func (s *Simulator) Sleep(d timing.Duration) error {
	target, err := s.Now().Add(d)
	if err != nil {
		return err
	}

	return s.SleepUntil(target)
}

// SleepUntil suspends the calling task until the clock reaches t. Sleeping
// until the current time returns immediately.
func (s *Simulator) SleepUntil(t timing.Instant) error {
	now := s.Now()

	if err := now.MustMatch(t); err != nil {
		return err
	}

	switch t.Compare(now) {
	case 0:
		return nil
	case -1:
		return fmt.Errorf("%w: wake time %s, now %s", ErrPastInstant, t, now)
	}

	return s.suspend(func() bool { return s.Now().Equal(t) }, &t)
}

func (s *Simulator) suspend(cond Condition, wakeAt *timing.Instant) error {
	t := s.current
	if t == nil {
		return ErrNotInTask
	}

	if t.state == TaskAborted {
		return fmt.Errorf("%w: %s", ErrTaskAborted, t.Name())
	}

	s.waiting = append(s.waiting, waitEntry{task: t, cond: cond})
	if wakeAt != nil {
		s.wakes.Push(*wakeAt)
	}

	t.suspend()

	return nil
}

// Record stamps a record with the current time and sends it to the sink.
func (s *Simulator) Record(label string, value any, description string) {
	s.sink.Record(tracing.Record{
		Time:        s.Now(),
		Label:       label,
		Value:       value,
		Description: description,
	})
}

// Records returns all the records of the current run.
func (s *Simulator) Records() []tracing.Record {
	return s.sink.Records()
}

// Run runs the simulation until no task can make progress anymore. It
// returns the errors of the tasks that failed, joined together.
func (s *Simulator) Run() error {
	return s.run(nil)
}

// RunUntil runs the simulation like Run, but stops advancing the clock once
// it has reached until. Tasks that are still waiting can be continued by
// another call to Run or RunUntil.
func (s *Simulator) RunUntil(until timing.Instant) error {
	if err := s.Now().MustMatch(until); err != nil {
		return err
	}

	return s.run(&until)
}

func (s *Simulator) run(until *timing.Instant) error {
	if !s.singleRunLock.TryLock() {
		log.Panic("simulator is already running")
	}
	defer s.singleRunLock.Unlock()

	for s.step(until) {
	}

	failed := s.failed
	s.failed = nil

	return errors.Join(failed...)
}

func (s *Simulator) step(until *timing.Instant) bool {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	if t := s.popReady(); t != nil {
		s.resume(t)
		return true
	}

	if until != nil && !s.Now().Before(*until) {
		return false
	}

	if s.wakes.Len() == 0 {
		return false
	}

	s.advanceTo(s.wakes.Pop().Time)

	return true
}

// popReady removes and returns the task of the first entry, in insertion
// order, whose condition holds.
func (s *Simulator) popReady() *Task {
	for i, entry := range s.waiting {
		if entry.cond() {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return entry.task
		}
	}

	return nil
}

func (s *Simulator) advanceTo(t timing.Instant) {
	now := s.Now()
	if t.Before(now) {
		log.Panicf("cannot move time backwards, to %s, now %s", t, now)
	}

	if t.Equal(now) {
		return
	}

	s.writeNow(t)

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosTimeAdvance,
		Now:    t,
		Item:   now,
	})
}

func (s *Simulator) resume(t *Task) {
	pos := HookPosTaskResume
	if !t.started {
		pos = HookPosTaskStart
	}

	s.InvokeHook(hooking.HookCtx{Domain: s, Pos: pos, Now: s.Now(), Item: t})

	s.current = t
	t.wake()
	s.current = nil

	if t.state.IsFinal() {
		s.finish(t)
	}
}

func (s *Simulator) finish(t *Task) {
	s.removeTask(t)

	if t.state == TaskFailed {
		logrus.WithFields(logrus.Fields{
			"task": t.Name(),
			"time": s.Now().String(),
		}).Warnf("task failed: %v", t.err)

		s.failed = append(s.failed, fmt.Errorf("%s: %w", t.Name(), t.err))
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosTaskEnd,
		Now:    s.Now(),
		Item:   t,
		Detail: t.err,
	})
}

func (s *Simulator) removeTask(t *Task) {
	for i, task := range s.tasks {
		if task == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Reset brings the simulator back to its initial state so that the same
// model can run again. Tasks that have not finished are aborted, one at a
// time, and their deferred calls run before Reset returns. Aborted tasks
// that had started end with HookPosTaskEnd and ErrTaskAborted as detail.
func (s *Simulator) Reset() {
	if !s.singleRunLock.TryLock() {
		log.Panic("cannot reset a running simulator")
	}
	defer s.singleRunLock.Unlock()

	for _, t := range s.tasks {
		started := t.started

		s.current = t
		t.kill()
		s.current = nil

		if started {
			s.InvokeHook(hooking.HookCtx{
				Domain: s,
				Pos:    HookPosTaskEnd,
				Now:    s.Now(),
				Item:   t,
				Detail: ErrTaskAborted,
			})
		}
	}

	s.tasks = nil
	s.waiting = nil
	s.failed = nil
	s.wakes.Clear()
	s.sink.Reset()
	s.labeler.Reset()
	s.ids.Reset()
	s.writeNow(s.initTime)
}

// Pause prevents the Simulator from making progress until Continue is
// called.
func (s *Simulator) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the Simulator to make progress again.
func (s *Simulator) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}
