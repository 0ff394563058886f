package nightscout

import (
	"fmt"
	"time"

	"github.com/five82/glucobar/internal/glucose"
)

// TimestampLayout is the fixed wire format of dateString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Entry is a validated sensor entry.
type Entry struct {
	SGV       int
	Direction glucose.Direction
	Time      time.Time
}

// rawEntry mirrors the wire record; pointers detect missing fields.
type rawEntry struct {
	SGV        *int    `json:"sgv"`
	Direction  *string `json:"direction"`
	DateString *string `json:"dateString"`
}

// ParseTimestamp parses a dateString in the fixed layout as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse dateString %q: %w", value, err)
	}
	return ts.UTC(), nil
}

func (r rawEntry) validate() (Entry, error) {
	switch {
	case r.SGV == nil:
		return Entry{}, &ParseError{Reason: "missing sgv"}
	case r.Direction == nil:
		return Entry{}, &ParseError{Reason: "missing direction"}
	case r.DateString == nil:
		return Entry{}, &ParseError{Reason: "missing dateString"}
	}
	ts, err := ParseTimestamp(*r.DateString)
	if err != nil {
		return Entry{}, &ParseError{Reason: "bad dateString", Err: err}
	}
	return Entry{
		SGV:       *r.SGV,
		Direction: glucose.Direction(*r.Direction),
		Time:      ts,
	}, nil
}
