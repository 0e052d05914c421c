// Package id generates identifiers for tasks and simulation runs.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string

	// Reset restarts the sequence from the beginning.
	Reset()
}

// NewIDGenerator returns a generator that produces "1", "2", "3", ... so that
// repeated runs of the same model produce the same IDs.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

func (g *sequentialIDGenerator) Reset() {
	atomic.StoreUint64(&g.nextID, 0)
}

// NewRunID returns a globally unique ID to tell simulation runs apart in
// exported data.
func NewRunID() string {
	return xid.New().String()
}
