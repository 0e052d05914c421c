package timing

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"
)

// ErrDomainMismatch is returned when an Instant and a Duration (or two
// Instants) that belong to different time domains are combined.
var ErrDomainMismatch = errors.New("time domain mismatch")

// A Domain tells how simulated time is represented.
type Domain int

// The supported time domains.
const (
	// Numeric time is a plain float64, with no unit attached.
	Numeric Domain = iota

	// Calendar time is a time.Time advanced by time.Duration steps.
	Calendar
)

func (d Domain) String() string {
	switch d {
	case Numeric:
		return "numeric"
	case Calendar:
		return "calendar"
	default:
		return "Domain(" + strconv.Itoa(int(d)) + ")"
	}
}

// An Instant is a point in simulated time. The zero value is the numeric
// instant 0.
type Instant struct {
	domain Domain
	num    float64
	cal    time.Time
}

// At returns a numeric Instant.
func At(v float64) Instant {
	return Instant{domain: Numeric, num: v}
}

// AtTime returns a calendar Instant.
func AtTime(t time.Time) Instant {
	return Instant{domain: Calendar, cal: t}
}

// Domain returns the domain of the instant.
func (i Instant) Domain() Domain {
	return i.domain
}

// Float returns the value of a numeric instant. Calendar instants return
// their Unix time in seconds.
func (i Instant) Float() float64 {
	if i.domain == Calendar {
		return float64(i.cal.UnixNano()) / 1e9
	}

	return i.num
}

// Time returns the timestamp of a calendar instant. Numeric instants return
// the zero time.
func (i Instant) Time() time.Time {
	return i.cal
}

// Add returns the instant that is d after i.
func (i Instant) Add(d Duration) (Instant, error) {
	if i.domain != d.domain {
		return Instant{}, fmt.Errorf(
			"%w: instant %s is %s but duration %s is %s",
			ErrDomainMismatch, i, i.domain, d, d.domain)
	}

	if i.domain == Calendar {
		return AtTime(i.cal.Add(d.cal)), nil
	}

	return At(i.num + d.num), nil
}

// Sub returns the duration between j and i, i.e., i - j.
func (i Instant) Sub(j Instant) (Duration, error) {
	if err := i.MustMatch(j); err != nil {
		return Duration{}, err
	}

	if i.domain == Calendar {
		return SpanOf(i.cal.Sub(j.cal)), nil
	}

	return Span(i.num - j.num), nil
}

// MustMatch returns ErrDomainMismatch if j is not in the same domain as i.
func (i Instant) MustMatch(j Instant) error {
	if i.domain != j.domain {
		return fmt.Errorf("%w: instant %s is %s but instant %s is %s",
			ErrDomainMismatch, i, i.domain, j, j.domain)
	}

	return nil
}

// Compare returns -1, 0, or 1 when i is before, equal to, or after j.
// Comparing instants from different domains panics.
func (i Instant) Compare(j Instant) int {
	if i.domain != j.domain {
		log.Panicf("cannot compare %s instant %s with %s instant %s",
			i.domain, i, j.domain, j)
	}

	if i.domain == Calendar {
		return i.cal.Compare(j.cal)
	}

	switch {
	case i.num < j.num:
		return -1
	case i.num > j.num:
		return 1
	default:
		return 0
	}
}

// Before tells if i happens strictly before j.
func (i Instant) Before(j Instant) bool {
	return i.Compare(j) < 0
}

// Equal tells if i and j are the same point in time.
func (i Instant) Equal(j Instant) bool {
	return i.Compare(j) == 0
}

func (i Instant) String() string {
	if i.domain == Calendar {
		return i.cal.Format("2006-01-02 15:04:05.999999999")
	}

	return strconv.FormatFloat(i.num, 'f', -1, 64)
}

// A Duration is an elapsed span of simulated time.
type Duration struct {
	domain Domain
	num    float64
	cal    time.Duration
}

// Span returns a numeric Duration.
func Span(v float64) Duration {
	return Duration{domain: Numeric, num: v}
}

// SpanOf returns a calendar Duration.
func SpanOf(d time.Duration) Duration {
	return Duration{domain: Calendar, cal: d}
}

// Domain returns the domain of the duration.
func (d Duration) Domain() Domain {
	return d.domain
}

// IsNegative tells if the duration points backwards in time.
func (d Duration) IsNegative() bool {
	if d.domain == Calendar {
		return d.cal < 0
	}

	return d.num < 0
}

func (d Duration) String() string {
	if d.domain == Calendar {
		return d.cal.String()
	}

	return strconv.FormatFloat(d.num, 'f', -1, 64)
}
