package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampJSON(t *testing.T) {
	t.Run("Fixed Millisecond Precision", func(t *testing.T) {
		ts := NewTimestamp(time.Date(2025, time.September, 4, 7, 23, 1, 0, time.UTC))
		data, err := json.Marshal(ts)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `"2025-09-04T07:23:01.000Z"` {
			t.Errorf("unexpected serialization %s", data)
		}
	})

	t.Run("Round Trip Keeps The Sequence Hint", func(t *testing.T) {
		original := NewTimestamp(time.Date(2025, time.September, 4, 7, 23, 1, 7*int(time.Millisecond), time.UTC))
		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var got Timestamp
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !got.Equal(original.Time) {
			t.Errorf("round trip altered timestamp: %v != %v", got, original)
		}
	})
}

func TestBucketKey(t *testing.T) {
	eventTime := time.Date(2025, time.September, 4, 7, 59, 59, 999*int(time.Millisecond), time.UTC)
	if got := BucketKey(eventTime); got != "2025-09-04-07" {
		t.Errorf("expected 2025-09-04-07, got %s", got)
	}

	// Keys are always derived in UTC regardless of the location attached
	// to the time value.
	ist := time.FixedZone("IST", 5*3600+1800)
	if got := BucketKey(eventTime.In(ist)); got != "2025-09-04-07" {
		t.Errorf("expected UTC-derived key, got %s", got)
	}

	if got := BucketFileName("2025-09-04-07"); got != "2025-09-04-07.log" {
		t.Errorf("unexpected bucket filename %s", got)
	}
}
