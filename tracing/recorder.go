package tracing

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sarchlab/procsim/datarecording"
	"github.com/sarchlab/procsim/sim/id"
)

// TableName is the name of the table that exported records are written to.
const TableName = "trace_records"

var columnWidths = [4]int{30, 15, 40, 30}

const maxDescriptionLen = 30

// A Recorder keeps the append-only log of records of a run. It can print the
// records as a table while they arrive and export them to a DataRecorder.
type Recorder struct {
	lock    sync.RWMutex
	records []Record
	runID   string

	out          io.Writer
	dataRecorder datarecording.DataRecorder
}

// NewRecorder creates a Recorder that neither prints nor exports.
func NewRecorder() *Recorder {
	return &Recorder{runID: id.NewRunID()}
}

// WithTable makes the recorder print every record to w.
func (r *Recorder) WithTable(w io.Writer) *Recorder {
	r.out = w
	return r
}

// WithDataRecorder makes the recorder export every record to dr.
func (r *Recorder) WithDataRecorder(dr datarecording.DataRecorder) *Recorder {
	dr.CreateTable(TableName, Row{})
	r.dataRecorder = dr

	return r
}

// RunID returns the ID that tags the exported rows of the current run.
func (r *Recorder) RunID() string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.runID
}

// Record appends a record to the log.
func (r *Recorder) Record(rec Record) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.out != nil {
		if len(r.records) == 0 {
			r.printHeader()
		}

		r.printRecord(rec)
	}

	if r.dataRecorder != nil {
		r.dataRecorder.InsertData(TableName,
			MakeRow(r.runID, len(r.records), rec))
	}

	r.records = append(r.records, rec)
}

// Records returns a copy of the log, in recording order.
func (r *Recorder) Records() []Record {
	r.lock.RLock()
	defer r.lock.RUnlock()

	records := make([]Record, len(r.records))
	copy(records, r.records)

	return records
}

// Len returns the number of records in the log.
func (r *Recorder) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.records)
}

// Reset clears the log and starts a new run. Rows already exported stay in
// the database under the previous run ID.
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records = nil
	r.runID = id.NewRunID()

	if r.dataRecorder != nil {
		r.dataRecorder.Flush()
	}
}

func (r *Recorder) printRecord(rec Record) {
	desc := rec.Description
	if len([]rune(desc)) >= maxDescriptionLen {
		desc = string([]rune(desc)[:maxDescriptionLen-3]) + "..."
	}

	r.printRow(rec.Time.String(), rec.Label, fmt.Sprint(rec.Value), desc)
}

func (r *Recorder) printHeader() {
	var sep, empty [4]string
	for i, w := range columnWidths {
		sep[i] = strings.Repeat("-", w)
		empty[i] = strings.Repeat(" ", w)
	}

	r.printRow(sep[:]...)
	r.printRow("time", "component", "value", "description")
	r.printRow(sep[:]...)
	r.printRow(empty[:]...)
}

func (r *Recorder) printRow(cells ...string) {
	fmt.Fprintf(r.out, "| %-*s | %-*s | %-*s | %-*s |\n",
		columnWidths[0], cells[0],
		columnWidths[1], cells[1],
		columnWidths[2], cells[2],
		columnWidths[3], cells[3])
}
