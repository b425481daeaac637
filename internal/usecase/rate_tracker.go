package usecase

import (
	"math"
	"sync"
	"time"
)

// rateWindow is the sliding window the ingestion rate is computed over.
const rateWindow = 5 * time.Minute

// RateTracker counts ingestion calls over a sliding window. It backs the
// read-only rate endpoint; Prometheus counters cover everything else.
type RateTracker struct {
	mu    sync.Mutex
	marks []time.Time
}

// NewRateTracker creates a RateTracker.
func NewRateTracker() *RateTracker {
	return &RateTracker{}
}

// Mark records one ingestion call at the given instant.
func (r *RateTracker) Mark(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(now)
	r.marks = append(r.marks, now)
}

// PerMinute returns calls in the window divided by the window length in
// minutes, rounded to one decimal.
func (r *RateTracker) PerMinute(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(now)
	return math.Round(float64(len(r.marks))/rateWindow.Minutes()*10) / 10
}

func (r *RateTracker) prune(now time.Time) {
	cutoff := now.Add(-rateWindow)
	i := 0
	for i < len(r.marks) && !r.marks[i].After(cutoff) {
		i++
	}
	r.marks = r.marks[i:]
}
