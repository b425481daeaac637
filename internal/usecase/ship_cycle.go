package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/opslake/logship/internal/adapter/compress"
	"github.com/opslake/logship/internal/domain"
)

// ErrCycleRunning is returned when a cycle starts while the previous one is
// still active. The caller logs and waits for the next tick.
var ErrCycleRunning = errors.New("ship cycle already running")

// ErrInvalidBucketName reports a processing file whose name does not match
// the YYYY-MM-DD-HH bucket pattern; such files are quarantined, not uploaded.
var ErrInvalidBucketName = errors.New("bucket filename does not match YYYY-MM-DD-HH pattern")

var bucketFilePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(\d{2})\.log$`)

// ShipCycleUseCase orchestrates one ship cycle: sweep completed buckets into
// processing, then compress, upload and clean up each one, quarantining
// files that exhaust their retries.
type ShipCycleUseCase struct {
	buckets      domain.BucketRepository
	store        domain.ObjectStore
	status       domain.StatusRepository
	compressor   *compress.GzipCompressor
	logger       *slog.Logger
	keyPrefix    string
	maxRetries   int
	retryBackoff time.Duration

	// running is a plain in-process exclusion flag, not a distributed
	// lock. Correct only for a single-process deployment.
	running atomic.Bool
}

// NewShipCycleUseCase creates a new ShipCycleUseCase.
func NewShipCycleUseCase(
	buckets domain.BucketRepository,
	store domain.ObjectStore,
	status domain.StatusRepository,
	compressor *compress.GzipCompressor,
	logger *slog.Logger,
	keyPrefix string,
	maxRetries int,
	retryBackoff time.Duration,
) *ShipCycleUseCase {
	return &ShipCycleUseCase{
		buckets:      buckets,
		store:        store,
		status:       status,
		compressor:   compressor,
		logger:       logger,
		keyPrefix:    keyPrefix,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// RunCycle executes one sweep-and-ship cycle and records its lifecycle in
// the status repository. A cycle that starts while one is active is a no-op.
// Per-file failures mark the cycle failed but never abort it; the cycle runs
// unattended, so failures are reported through RunStatus rather than raised.
func (uc *ShipCycleUseCase) RunCycle(ctx context.Context) error {
	if !uc.running.CompareAndSwap(false, true) {
		uc.logger.Info("previous ship cycle still active, skipping")
		return ErrCycleRunning
	}
	defer uc.running.Store(false)

	started := time.Now().UTC()
	uc.writeStatus(ctx, domain.RunStatus{Status: domain.RunRunning, StartedAt: started})

	moved, err := uc.buckets.SweepCompleted(ctx, domain.BucketKey(started))
	if err != nil {
		uc.logger.Error("sweep failed", "error", err)
		uc.finishCycle(ctx, started, 0, err.Error())
		return err
	}
	if len(moved) == 0 {
		uc.finishCycle(ctx, started, 0, "")
		return nil
	}

	uc.logger.Info("ship cycle started", "files", len(moved))

	errorMessage := ""
	for _, filename := range moved {
		if err := uc.processFile(ctx, filename); err != nil {
			errorMessage = err.Error()
			uc.logger.Error("failed to ship bucket file", "file", filename, "error", err)
			continue
		}
		uc.logger.Info("bucket file shipped", "file", filename)
	}

	uc.finishCycle(ctx, started, len(moved), errorMessage)
	return nil
}

// processFile drives one bucket file to a terminal state: uploaded (deleted
// from processing) or quarantined (retained in the failed area).
func (uc *ShipCycleUseCase) processFile(ctx context.Context, filename string) error {
	key, err := uc.objectKey(filename)
	if err != nil {
		uc.quarantine(ctx, filename, err, 0)
		return err
	}

	gzPath, err := uc.compressor.CompressFile(uc.buckets.ProcessingPath(filename))
	if err != nil {
		// The file stays in processing and is retried next cycle.
		return fmt.Errorf("compress %s: %w", filename, err)
	}

	if err := uc.uploadWithRetry(ctx, key, gzPath); err != nil {
		uc.removeArtifact(gzPath)
		uc.quarantine(ctx, filename, err, uc.maxRetries)
		return fmt.Errorf("upload %s: %w", filename, err)
	}

	uc.removeArtifact(gzPath)
	if err := uc.buckets.RemoveProcessed(ctx, filename); err != nil {
		// The object is already durable; next cycle re-uploads under a
		// fresh key, which the partitioned layout tolerates.
		return fmt.Errorf("cleanup %s: %w", filename, err)
	}

	return nil
}

func (uc *ShipCycleUseCase) uploadWithRetry(ctx context.Context, key, sourcePath string) error {
	var lastErr error
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		err := uc.store.Upload(ctx, key, sourcePath)
		if err == nil {
			return nil
		}
		lastErr = err
		uc.logger.Warn("upload attempt failed", "key", key, "attempt", attempt, "error", err)
		if attempt == uc.maxRetries {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * uc.retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// objectKey derives the partitioned storage key from the bucket filename.
// The random suffix keeps keys distinct when more than one cycle per hour
// uploads data for the same bucket.
func (uc *ShipCycleUseCase) objectKey(filename string) (string, error) {
	m := bucketFilePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidBucketName, filename)
	}

	bucketKey := strings.TrimSuffix(filename, domain.BucketFileSuffix)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s/year=%s/month=%s/day=%s/hour=%s/%s_%s.log.gz",
		uc.keyPrefix, m[1], m[2], m[3], m[4], bucketKey, suffix), nil
}

// quarantine is best-effort cleanup: its own failure is logged, never
// cycle-fatal.
func (uc *ShipCycleUseCase) quarantine(ctx context.Context, filename string, cause error, attempts int) {
	record := domain.FailureRecord{
		FailedAt:      time.Now().UTC(),
		ErrorMessage:  cause.Error(),
		RetryAttempts: attempts,
	}
	if err := uc.buckets.Quarantine(ctx, filename, record); err != nil {
		uc.logger.Error("failed to quarantine bucket file", "file", filename, "error", err)
	}
}

func (uc *ShipCycleUseCase) removeArtifact(gzPath string) {
	if err := os.Remove(gzPath); err != nil {
		uc.logger.Warn("failed to remove compressed artifact", "path", gzPath, "error", err)
	}
}

func (uc *ShipCycleUseCase) finishCycle(ctx context.Context, started time.Time, filesProcessed int, errorMessage string) {
	finished := time.Now().UTC()
	st := domain.RunStatus{
		Status:          domain.RunSuccess,
		StartedAt:       started,
		FinishedAt:      finished,
		DurationSeconds: finished.Sub(started).Seconds(),
		FilesProcessed:  filesProcessed,
	}
	if errorMessage != "" {
		st.Status = domain.RunFailed
		st.ErrorMessage = errorMessage
	}
	uc.writeStatus(ctx, st)
}

func (uc *ShipCycleUseCase) writeStatus(ctx context.Context, st domain.RunStatus) {
	if err := uc.status.Write(ctx, st); err != nil {
		uc.logger.Error("failed to record cycle status", "status", st.Status, "error", err)
	}
}
