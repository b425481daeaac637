package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/opslake/logship/internal/adapter/syslogtime"
	"github.com/opslake/logship/internal/domain"
)

// IngestResult reports the outcome of one accepted submission.
type IngestResult struct {
	LinesProcessed int `json:"lines_processed"`
	FilesWritten   int `json:"files_written"`
}

// IngestLogsUseCase normalizes raw device log lines, sequences lines that
// share a second, and buffers them into hourly bucket files.
type IngestLogsUseCase struct {
	buckets domain.BucketRepository
	rate    *RateTracker
	logger  *slog.Logger
}

// NewIngestLogsUseCase creates a new IngestLogsUseCase.
func NewIngestLogsUseCase(buckets domain.BucketRepository, rate *RateTracker, logger *slog.Logger) *IngestLogsUseCase {
	return &IngestLogsUseCase{
		buckets: buckets,
		rate:    rate,
		logger:  logger,
	}
}

// Ingest processes one submission of newline-separated raw lines from a
// device. Each line gets a normalized event timestamp whose millisecond
// field is a per-second sequence index assigned in input order, so lines
// sharing a second sort the way they arrived. Lines without a recognizable
// timestamp fall back to the current wall-clock time; no line is dropped.
// The submission succeeds or fails as a whole.
func (uc *IngestLogsUseCase) Ingest(ctx context.Context, deviceID, rawText string) (IngestResult, error) {
	// The counter map is scoped to this submission. Single-line calls go
	// through the same path, so all deployments share one accounting rule.
	seq := make(map[int64]int)
	groups := make(map[string][]domain.LogEntry)

	processed := 0
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		base, parseErr := syslogtime.Normalize(line, 0)
		if parseErr != nil {
			base = time.Now().UTC().Truncate(time.Second)
		}

		hint := seq[base.Unix()]
		seq[base.Unix()]++

		var eventTime time.Time
		if parseErr != nil {
			uc.logger.Debug("no parseable timestamp, using receive time",
				"device_id", deviceID, "error", parseErr)
			eventTime = base.Add(time.Duration(hint) * time.Millisecond)
		} else {
			eventTime, _ = syslogtime.Normalize(line, hint)
		}

		key := domain.BucketKey(eventTime)
		groups[key] = append(groups[key], domain.LogEntry{
			DeviceID:     deviceID,
			LogTimestamp: domain.NewTimestamp(eventTime),
			Message:      line,
		})
		processed++
	}

	if processed == 0 {
		return IngestResult{}, nil
	}

	for key, entries := range groups {
		if err := uc.buckets.AppendEntries(ctx, key, entries); err != nil {
			uc.logger.Error("failed to buffer log entries",
				"device_id", deviceID, "bucket", key, "error", err)
			return IngestResult{}, err
		}
	}

	uc.rate.Mark(time.Now())

	return IngestResult{
		LinesProcessed: processed,
		FilesWritten:   len(groups),
	}, nil
}
