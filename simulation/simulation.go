// Package simulation puts together the pieces of a simulation: the
// simulator, the trace recorder, the optional data export and the optional
// monitor.
package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/sarchlab/procsim/datarecording"
	"github.com/sarchlab/procsim/monitoring"
	"github.com/sarchlab/procsim/sim/event"
	"github.com/sarchlab/procsim/sim/naming"
	"github.com/sarchlab/procsim/sim/process"
	"github.com/sarchlab/procsim/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id string

	simulator    *process.Simulator
	engine       *event.Engine
	recorder     *tracing.Recorder
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	monitorPort  int
	taskTimer    *process.TaskTimeTracer

	components    []naming.Named
	compNameIndex map[string]int
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetTaskTimer returns the tracer measuring how long tasks live.
func (s *Simulation) GetTaskTimer() *process.TaskTimeTracer {
	return s.taskTimer
}

// GetSimulator returns the simulator that runs the tasks.
func (s *Simulation) GetSimulator() *process.Simulator {
	return s.simulator
}

// GetEngine returns the engine that triggers events. It shares the clock
// start and the recorder with the simulator, but not the clock itself.
func (s *Simulation) GetEngine() *event.Engine {
	return s.engine
}

// GetRecorder returns the recorder that keeps the records.
func (s *Simulation) GetRecorder() *tracing.Recorder {
	return s.recorder
}

// GetDataRecorder returns the data recorder used in the simulation, or nil
// if data export is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil if
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorPort returns the port the monitor listens on, or 0 if monitoring is
// off.
func (s *Simulation) MonitorPort() int {
	return s.monitorPort
}

// RegisterComponent registers a component with the simulation. The monitor,
// if any, can then inspect it.
func (s *Simulation) RegisterComponent(c naming.Named) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// Components returns the registered components in registration order.
func (s *Simulation) Components() []naming.Named {
	components := make([]naming.Named, len(s.components))
	copy(components, s.components)

	return components
}

// GetComponentByName returns the component with the given name, or nil if
// no such component is registered.
func (s *Simulation) GetComponentByName(name string) naming.Named {
	index, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[index]
}

// Reset brings the simulator and the engine back to their initial state and
// forgets the registered components, since labels are handed out again
// from 0.
func (s *Simulation) Reset() {
	s.simulator.Reset()
	s.engine.Reset()
	s.taskTimer.Reset()

	s.components = nil
	s.compNameIndex = make(map[string]int)

	if s.monitor != nil {
		s.monitor.ClearComponents()
	}
}

// Terminate stops the monitor and closes the data recorder.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
