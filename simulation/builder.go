package simulation

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/procsim/datarecording"
	"github.com/sarchlab/procsim/monitoring"
	"github.com/sarchlab/procsim/sim/event"
	"github.com/sarchlab/procsim/sim/id"
	"github.com/sarchlab/procsim/sim/process"
	"github.com/sarchlab/procsim/sim/timing"
	"github.com/sarchlab/procsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	initTime       timing.Instant
	traceWriter    io.Writer
	exportOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	logger         logrus.FieldLogger
}

// MakeBuilder creates a new builder. By default, the clock starts at the
// numeric instant 0, records are printed to the standard output, nothing is
// exported and no monitor is started.
func MakeBuilder() Builder {
	return Builder{
		initTime:    timing.At(0),
		traceWriter: os.Stdout,
	}
}

// WithInitialTime sets the instant the clock starts from.
func (b Builder) WithInitialTime(t timing.Instant) Builder {
	b.initTime = t
	return b
}

// WithoutTrace stops the records from being printed.
func (b Builder) WithoutTrace() Builder {
	b.traceWriter = nil
	return b
}

// WithTraceWriter prints the records to w.
func (b Builder) WithTraceWriter(w io.Writer) Builder {
	b.traceWriter = w
	return b
}

// WithDataExport exports the records into a SQLite database.
func (b Builder) WithDataExport() Builder {
	b.exportOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It turns data export on.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.exportOn = true
	b.outputFileName = filename

	return b
}

// WithMonitoring starts a monitoring server with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithTaskLogging logs the life of every task into logger.
func (b Builder) WithTaskLogging(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.exportOn && b.outputFileName != "" {
		panic("output file name cannot be set when export is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            id.NewRunID(),
		compNameIndex: make(map[string]int),
	}

	s.recorder = tracing.NewRecorder()
	if b.traceWriter != nil {
		s.recorder.WithTable(b.traceWriter)
	}

	if b.exportOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "procsim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.recorder.WithDataRecorder(s.dataRecorder)
	}

	s.simulator = process.NewSimulator(b.initTime).WithSink(s.recorder)
	s.engine = event.NewEngine(b.initTime).WithSink(s.recorder)

	s.taskTimer = process.NewTaskTimeTracer(nil)
	s.simulator.AcceptHook(s.taskTimer)

	if b.logger != nil {
		s.simulator.AcceptHook(process.NewTaskLogger(b.logger))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.monitor.RegisterSimulator(s.simulator)

		bar := s.monitor.CreateProgressBar("Tasks", 0)
		s.simulator.AcceptHook(monitoring.NewTaskProgress(bar))

		s.monitorPort = s.monitor.StartServer()
	}

	return s
}
