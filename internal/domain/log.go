package domain

import (
	"strings"
	"time"
)

// timestampLayout pins serialized timestamps to millisecond precision. The
// millisecond field carries the sequence hint, so it must survive the round
// trip even when it is zero.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// BucketKeyLayout is the hour-granularity grouping used both as the buffer
// filename and as the storage partition key.
const BucketKeyLayout = "2006-01-02-15"

// BucketFileSuffix is appended to a bucket key to form the buffer filename.
const BucketFileSuffix = ".log"

// LogEntry is the canonical record for one accepted device log line.
// Immutable once constructed; Message holds the raw line unmodified.
type LogEntry struct {
	DeviceID     string    `json:"device_id"`
	LogTimestamp Timestamp `json:"log_timestamp"`
	Message      string    `json:"message"`
}

// Timestamp is a time.Time that serializes as an ISO-8601 instant with a
// fixed three-digit millisecond field and a Z suffix.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC and wraps it for serialization.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(timestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	parsed, err := time.Parse(timestampLayout, strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// BucketKey returns the hour bucket an entry belongs to, derived from its
// event time in UTC.
func BucketKey(t time.Time) string {
	return t.UTC().Format(BucketKeyLayout)
}

// BucketFileName returns the buffer filename for a bucket key.
func BucketFileName(key string) string {
	return key + BucketFileSuffix
}
