package process

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/procsim/sim/hooking"
)

var (
	// HookPosTaskStart triggers right before a task runs for the first
	// time. The item is the task.
	HookPosTaskStart = &hooking.HookPos{Name: "TaskStart"}

	// HookPosTaskResume triggers right before a suspended task continues.
	// The item is the task.
	HookPosTaskResume = &hooking.HookPos{Name: "TaskResume"}

	// HookPosTaskEnd triggers after a task has returned or has been aborted
	// by a reset. The item is the task and the detail is the error it
	// returned, if any, or ErrTaskAborted.
	HookPosTaskEnd = &hooking.HookPos{Name: "TaskEnd"}

	// HookPosTimeAdvance triggers after the clock has moved forward. The
	// item is the previous instant.
	HookPosTimeAdvance = &hooking.HookPos{Name: "TimeAdvance"}
)

// TaskLogger is a hook that logs how tasks start, resume and end.
type TaskLogger struct {
	logger logrus.FieldLogger
}

// NewTaskLogger returns a TaskLogger that writes into the logger.
func NewTaskLogger(logger logrus.FieldLogger) *TaskLogger {
	h := new(TaskLogger)

	h.logger = logger

	return h
}

// Func writes the task information into the logger.
func (h *TaskLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos == HookPosTimeAdvance {
		h.logger.WithField("time", ctx.Now.String()).Debug("time advanced")
		return
	}

	task, ok := ctx.Item.(*Task)
	if !ok {
		return
	}

	entry := h.logger.WithFields(logrus.Fields{
		"time": ctx.Now.String(),
		"task": task.Name(),
	})

	switch ctx.Pos {
	case HookPosTaskStart:
		entry.Debug("task started")
	case HookPosTaskResume:
		entry.Debug("task resumed")
	case HookPosTaskEnd:
		if err, _ := ctx.Detail.(error); err != nil {
			entry.WithError(err).Info("task failed")
			return
		}

		entry.Debug("task completed")
	}
}
