// Package naming gives simulation objects human-readable labels.
package naming

import (
	"strconv"
	"sync"
)

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name.
func (b NamedBase) Name() string {
	return b.name
}

func (b NamedBase) String() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase.
func MakeNamedBase(name string) NamedBase {
	return NamedBase{name: name}
}

// A Labeler hands out labels of the form "<Kind>.<index>". Each kind keeps
// its own counter, starting from 0.
type Labeler struct {
	lock     sync.Mutex
	counters map[string]int
}

// NewLabeler creates a Labeler with all counters at zero.
func NewLabeler() *Labeler {
	return &Labeler{counters: make(map[string]int)}
}

// Next returns the next label for the given kind.
func (l *Labeler) Next(kind string) string {
	l.lock.Lock()
	defer l.lock.Unlock()

	index := l.counters[kind]
	l.counters[kind] = index + 1

	return kind + "." + strconv.Itoa(index)
}

// Count returns how many labels have been handed out for a kind.
func (l *Labeler) Count(kind string) int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.counters[kind]
}

// Reset sets all counters back to zero.
func (l *Labeler) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.counters = make(map[string]int)
}
