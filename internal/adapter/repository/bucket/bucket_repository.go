package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/opslake/logship/internal/domain"
)

const (
	incomingDirName   = "incoming"
	processingDirName = "processing"
	failedDirName     = "failed"

	metaFileSuffix = ".meta"

	filePerm = 0644
	dirPerm  = 0755
)

// Repository implements domain.BucketRepository on the local filesystem.
// Bucket files live in incoming/ while append-active, processing/ while
// being shipped, and failed/ once quarantined.
type Repository struct {
	incomingDir   string
	processingDir string
	failedDir     string
	logger        *slog.Logger

	// mu serializes appends so concurrent submissions targeting the same
	// bucket cannot interleave record groups.
	mu sync.Mutex
}

// NewRepository creates a Repository rooted at basePath, provisioning the
// incoming, processing and failed directories.
func NewRepository(basePath string, logger *slog.Logger) (*Repository, error) {
	r := &Repository{
		incomingDir:   filepath.Join(basePath, incomingDirName),
		processingDir: filepath.Join(basePath, processingDirName),
		failedDir:     filepath.Join(basePath, failedDirName),
		logger:        logger.With("component", "bucket_repository"),
	}

	for _, dir := range []string{r.incomingDir, r.processingDir, r.failedDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create bucket directory %s: %w", dir, err)
		}
	}

	return r, nil
}

// AppendEntries serializes the group to newline-delimited JSON and appends
// it to the incoming bucket file for key in a single write, syncing before
// returning so the caller can acknowledge the submission as durable.
func (r *Repository) AppendEntries(ctx context.Context, key string, entries []domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.incomingDir, domain.BucketFileName(key))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open bucket file %s: %w", path, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to bucket file %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync bucket file %s: %w", path, err)
	}

	return f.Close()
}

// SweepCompleted relocates every incoming bucket file except the one for
// currentKey into the processing area. Skipping the current hour is what
// keeps sweep safe against appends still arriving for that bucket.
func (r *Repository) SweepCompleted(ctx context.Context, currentKey string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dirEntries, err := os.ReadDir(r.incomingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read incoming directory: %w", err)
	}

	currentName := domain.BucketFileName(currentKey)
	var moved []string
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, domain.BucketFileSuffix) {
			continue
		}
		if name == currentName {
			continue
		}

		src := filepath.Join(r.incomingDir, name)
		dst := filepath.Join(r.processingDir, name)
		if err := moveFile(src, dst); err != nil {
			r.logger.Error("failed to move bucket file to processing, leaving for next sweep",
				"file", name, "error", err)
			continue
		}
		moved = append(moved, name)
	}

	return moved, nil
}

// ProcessingPath returns the absolute path of a file in the processing area.
func (r *Repository) ProcessingPath(filename string) string {
	return filepath.Join(r.processingDir, filename)
}

// RemoveProcessed deletes an uploaded bucket file from the processing area.
func (r *Repository) RemoveProcessed(ctx context.Context, filename string) error {
	path := filepath.Join(r.processingDir, filename)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove processed bucket file %s: %w", path, err)
	}
	return nil
}

// Quarantine moves a bucket file from processing to the failed area and
// writes its metadata sidecar next to it.
func (r *Repository) Quarantine(ctx context.Context, filename string, record domain.FailureRecord) error {
	src := filepath.Join(r.processingDir, filename)
	dst := filepath.Join(r.failedDir, filename)
	if err := moveFile(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to failed area: %w", filename, err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record for %s: %w", filename, err)
	}
	metaPath := dst + metaFileSuffix
	if err := os.WriteFile(metaPath, data, filePerm); err != nil {
		return fmt.Errorf("failed to write failure record %s: %w", metaPath, err)
	}

	r.logger.Warn("bucket file quarantined", "file", filename, "error", record.ErrorMessage)
	return nil
}

// moveFile renames src to dst, falling back to copy-then-delete when the
// rename fails (e.g. the areas live on different volumes).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s for copy: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	return os.Remove(src)
}
