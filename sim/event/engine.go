package event

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/procsim/sim/hooking"
	"github.com/sarchlab/procsim/sim/naming"
	"github.com/sarchlab/procsim/sim/timing"
	"github.com/sarchlab/procsim/tracing"
)

// A Sink receives the records of the engine.
type Sink interface {
	Record(rec tracing.Record)
}

// Engine triggers scheduled events in time order, one at a time. Events due
// at the same instant trigger in the order they were scheduled.
type Engine struct {
	hooking.HookableBase

	timeLock sync.RWMutex
	now      timing.Instant
	initTime timing.Instant

	queue   *queue
	sink    Sink
	labeler *naming.Labeler
	fired   uint64
	failed  []error

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewEngine creates an Engine whose clock starts at init.
func NewEngine(init timing.Instant) *Engine {
	return &Engine{
		now:      init,
		initTime: init,
		queue:    newQueue(),
		sink:     tracing.NewRecorder(),
		labeler:  naming.NewLabeler(),
	}
}

// WithSink replaces the sink that receives the records.
func (e *Engine) WithSink(sink Sink) *Engine {
	e.sink = sink
	return e
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return "Engine"
}

// Labeler returns the labeler that names the objects driven by the engine.
func (e *Engine) Labeler() *naming.Labeler {
	return e.labeler
}

// Now returns the current simulation time.
func (e *Engine) Now() timing.Instant {
	e.timeLock.RLock()
	t := e.now
	e.timeLock.RUnlock()

	return t
}

func (e *Engine) writeNow(t timing.Instant) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// InitialTime returns the instant the clock starts from and is reset to.
func (e *Engine) InitialTime() timing.Instant {
	return e.initTime
}

// Pending returns the number of events that have not been triggered yet.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Fired returns the number of events triggered since the last reset.
func (e *Engine) Fired() uint64 {
	return e.fired
}

// Schedule makes evt trigger delay after now. A delay of zero triggers the
// event after the events already due now.
func (e *Engine) Schedule(evt Event, delay timing.Duration) error {
	if delay.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeDelay, delay)
	}

	t, err := e.Now().Add(delay)
	if err != nil {
		return err
	}

	e.queue.Push(t, evt)

	return nil
}

// ScheduleAt makes evt trigger at t, which cannot be before now.
func (e *Engine) ScheduleAt(evt Event, t timing.Instant) error {
	now := e.Now()
	if err := now.MustMatch(t); err != nil {
		return err
	}

	if t.Before(now) {
		return fmt.Errorf("%w: %s is before %s", ErrNegativeDelay, t, now)
	}

	e.queue.Push(t, evt)

	return nil
}

// Record stamps a record with the current time and sends it to the sink.
func (e *Engine) Record(label string, value any, description string) {
	e.sink.Record(tracing.Record{
		Time:        e.Now(),
		Label:       label,
		Value:       value,
		Description: description,
	})
}

// Run triggers events until none is left. It returns the errors of the
// events that failed, joined together.
func (e *Engine) Run() error {
	return e.run(nil)
}

// RunUntil triggers events while the clock is before until. The check
// happens before each event is taken from the queue, so the last event
// triggered may lie after until, and the clock with it.
func (e *Engine) RunUntil(until timing.Instant) error {
	if err := e.Now().MustMatch(until); err != nil {
		return err
	}

	return e.run(&until)
}

func (e *Engine) run(until *timing.Instant) error {
	if !e.singleRunLock.TryLock() {
		log.Panic("engine is already running")
	}
	defer e.singleRunLock.Unlock()

	for e.step(until) {
	}

	failed := e.failed
	e.failed = nil

	return errors.Join(failed...)
}

func (e *Engine) step(until *timing.Instant) bool {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if e.queue.Len() == 0 {
		return false
	}

	if until != nil && !e.Now().Before(*until) {
		return false
	}

	next := e.queue.Pop()
	if next.time.Before(e.Now()) {
		log.Panicf("cannot move time backwards, to %s, now %s",
			next.time, e.Now())
	}

	e.writeNow(next.time)
	e.trigger(next.event)

	return true
}

func (e *Engine) trigger(evt Event) {
	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Now:    e.Now(),
		Item:   evt,
	})

	err := evt.Trigger(e)
	e.fired++

	if err != nil {
		logrus.WithField("time", e.Now().String()).
			Warnf("event failed: %v", err)

		e.failed = append(e.failed, fmt.Errorf("at %s: %w", e.Now(), err))
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    HookPosAfterEvent,
		Now:    e.Now(),
		Item:   evt,
		Detail: err,
	})
}

// Reset drops the pending events and brings the clock back to the initial
// time. It panics if the engine is running.
func (e *Engine) Reset() {
	if !e.singleRunLock.TryLock() {
		log.Panic("cannot reset a running engine")
	}
	defer e.singleRunLock.Unlock()

	e.queue.Clear()
	e.labeler.Reset()
	e.fired = 0
	e.failed = nil
	e.writeNow(e.initTime)
}

// Pause prevents the Engine from triggering events until Continue is called.
func (e *Engine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the Engine to trigger events again.
func (e *Engine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}
