// Package tracing keeps the log of what happened during a simulation run.
package tracing

import (
	"fmt"

	"github.com/sarchlab/procsim/sim/timing"
)

// A Record is a timestamped observation made during a simulation.
type Record struct {
	Time        timing.Instant
	Label       string
	Value       any
	Description string
}

func (r Record) String() string {
	if r.Description == "" {
		return fmt.Sprintf("%s %s %v", r.Time, r.Label, r.Value)
	}

	return fmt.Sprintf("%s %s %v (%s)", r.Time, r.Label, r.Value,
		r.Description)
}

// A Row is the flat form of a Record that can be stored in a database.
type Row struct {
	Run         string
	Seq         int
	Time        float64
	TimeText    string
	Label       string
	Value       string
	Description string
}

// MakeRow flattens a Record. Seq is the position of the record in its run.
func MakeRow(run string, seq int, rec Record) Row {
	return Row{
		Run:         run,
		Seq:         seq,
		Time:        rec.Time.Float(),
		TimeText:    rec.Time.String(),
		Label:       rec.Label,
		Value:       fmt.Sprint(rec.Value),
		Description: rec.Description,
	}
}
