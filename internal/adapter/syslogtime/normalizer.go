package syslogtime

import (
	"errors"
	"fmt"
	"time"
)

// Device clocks report local time and the syslog header carries neither a
// year nor a zone. The fleet runs on IST (UTC+05:30); subtracting the offset
// yields the UTC event instant. Per-device offsets are not supported.
const sourceUTCOffset = 5*time.Hour + 30*time.Minute

// stampLen is the length of a "Jan _2 15:04:05" prefix.
const stampLen = len(time.Stamp)

// ErrUnrecognizedTimestamp reports a line that does not start with a
// MMM DD HH:MM:SS prefix. Callers substitute the current wall-clock time so
// the line is never dropped.
var ErrUnrecognizedTimestamp = errors.New("line does not start with a MMM DD HH:MM:SS timestamp")

// Normalize extracts the embedded event timestamp from a raw log line and
// returns it as a UTC instant whose millisecond field is set to seq. The
// year is assumed to be the current calendar year. Given the same line and
// the same seq, the result is always identical: seq is the only ordering
// signal for lines sharing a second.
func Normalize(line string, seq int) (time.Time, error) {
	if len(line) < stampLen {
		return time.Time{}, ErrUnrecognizedTimestamp
	}

	parsed, err := time.Parse(time.Stamp, line[:stampLen])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTimestamp, line[:stampLen])
	}

	local := time.Date(
		time.Now().Year(),
		parsed.Month(),
		parsed.Day(),
		parsed.Hour(),
		parsed.Minute(),
		parsed.Second(),
		seq*int(time.Millisecond),
		time.UTC,
	)

	return local.Add(-sourceUTCOffset), nil
}
