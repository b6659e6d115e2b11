package endpoint

import (
	"strconv"
	"time"

	"github.com/opd-ai/oscbridge/message"
)

// Clock is an interface for getting the current time.
// This allows injecting a fixed clock for deterministic log tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// timestampLayout is the UTC date and time preceding the milliseconds.
const timestampLayout = "2006-01-02 15:04:05"

// FormatMilliseconds zero-pads a millisecond count to three digits:
// 5 -> "005", 50 -> "050", 500 -> "500".
func FormatMilliseconds(ms int) string {
	s := strconv.Itoa(ms)
	switch {
	case ms < 0:
		return s
	case ms < 10:
		return "00" + s
	case ms < 100:
		return "0" + s
	default:
		return s
	}
}

// FormatEntry renders one log line:
//
//	2026-10-15 08:30:00.005 : /address v1 v2
func FormatEntry(t time.Time, p *message.Packet) string {
	t = t.UTC()
	return t.Format(timestampLayout) + "." +
		FormatMilliseconds(t.Nanosecond()/int(time.Millisecond)) +
		" : " + p.String()
}
