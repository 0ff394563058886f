package glucose

import (
	"fmt"
	"time"
)

const (
	DefaultLow        = 80  // 4.4 mmol/L
	DefaultHigh       = 240 // 13.3 mmol/L
	DefaultStaleAfter = 15 * time.Minute
)

// Range is the classification of a value against the thresholds.
type Range int

const (
	RangeInRange Range = iota
	RangeLow
	RangeHigh
)

func (r Range) String() string {
	switch r {
	case RangeLow:
		return "low"
	case RangeHigh:
		return "high"
	default:
		return "in_range"
	}
}

// Thresholds bound the in-range window in mg/dL.
type Thresholds struct {
	Low  int
	High int
}

// DefaultThresholds returns the 80-240 mg/dL window.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: DefaultLow, High: DefaultHigh}
}

// Validate requires 0 < Low < High.
func (t Thresholds) Validate() error {
	if t.Low <= 0 {
		return fmt.Errorf("low threshold must be positive, got %d", t.Low)
	}
	if t.High <= t.Low {
		return fmt.Errorf("high threshold %d must be above low threshold %d", t.High, t.Low)
	}
	return nil
}

// Classify places mgdl relative to the thresholds. Both bounds are out of range.
func (t Thresholds) Classify(mgdl int) Range {
	switch {
	case mgdl >= t.High:
		return RangeHigh
	case mgdl <= t.Low:
		return RangeLow
	default:
		return RangeInRange
	}
}

// IsStale reports whether ts is strictly older than threshold at now.
func IsStale(ts, now time.Time, threshold time.Duration) bool {
	return now.Sub(ts) > threshold
}

// Policy bundles the classification settings applied to each reading.
type Policy struct {
	Thresholds Thresholds
	StaleAfter time.Duration
}

// DefaultPolicy returns the default thresholds and a 15 minute staleness window.
func DefaultPolicy() Policy {
	return Policy{Thresholds: DefaultThresholds(), StaleAfter: DefaultStaleAfter}
}

// Reading is one sensor value with its derived classifications.
type Reading struct {
	Mgdl      int
	Mmol      float64
	Direction Direction
	Timestamp time.Time
	Range     Range
	Stale     bool
}

// NewReading derives mmol, range and staleness for a raw value.
func NewReading(mgdl int, dir Direction, ts, now time.Time, p Policy) Reading {
	return Reading{
		Mgdl:      mgdl,
		Mmol:      ToMmol(mgdl),
		Direction: dir,
		Timestamp: ts,
		Range:     p.Thresholds.Classify(mgdl),
		Stale:     IsStale(ts, now, p.StaleAfter),
	}
}

func (r Reading) InRange() bool { return r.Range == RangeInRange }

func (r Reading) IsLow() bool { return r.Range == RangeLow }

func (r Reading) IsHigh() bool { return r.Range == RangeHigh }

// Value formats the reading in the given unit.
func (r Reading) Value(u Unit) string {
	if u == UnitMgdl {
		return FormatMgdl(r.Mgdl)
	}
	return FormatMmol(r.Mgdl)
}

// Text renders the compact status string, e.g. "5.0→".
func (r Reading) Text(u Unit) string {
	return r.Value(u) + r.Direction.Glyph()
}

// Age returns how old the reading is at now.
func (r Reading) Age(now time.Time) time.Duration {
	return now.Sub(r.Timestamp)
}
