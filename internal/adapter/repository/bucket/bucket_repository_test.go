package bucket

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/opslake/logship/internal/domain"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := NewRepository(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan %s: %v", path, err)
	}
	return lines
}

func TestRepository_AppendEntries(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	eventTime := time.Date(2025, time.September, 4, 7, 23, 1, 1*int(time.Millisecond), time.UTC)
	entries := []domain.LogEntry{
		{DeviceID: "unit-a", LogTimestamp: domain.NewTimestamp(eventTime.Add(-time.Millisecond)), Message: "Sep 04 12:53:01 unit-a boot"},
		{DeviceID: "unit-a", LogTimestamp: domain.NewTimestamp(eventTime), Message: "Sep 04 12:53:01 unit-a ready"},
	}

	if err := repo.AppendEntries(ctx, "2025-09-04-07", entries); err != nil {
		t.Fatalf("failed to append entries: %v", err)
	}

	lines := readLines(t, filepath.Join(repo.incomingDir, "2025-09-04-07.log"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	t.Run("Round Trip", func(t *testing.T) {
		var got domain.LogEntry
		if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
			t.Fatalf("failed to unmarshal persisted entry: %v", err)
		}
		if got.DeviceID != "unit-a" {
			t.Errorf("device_id altered: got %q", got.DeviceID)
		}
		if got.Message != "Sep 04 12:53:01 unit-a ready" {
			t.Errorf("message altered: got %q", got.Message)
		}
		if !got.LogTimestamp.Equal(eventTime) {
			t.Errorf("timestamp altered: got %v, want %v", got.LogTimestamp, eventTime)
		}
	})

	t.Run("Millisecond Precision Preserved", func(t *testing.T) {
		var raw map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &raw); err != nil {
			t.Fatalf("failed to unmarshal persisted entry: %v", err)
		}
		if raw["log_timestamp"] != "2025-09-04T07:23:01.000Z" {
			t.Errorf("expected fixed-precision timestamp, got %v", raw["log_timestamp"])
		}
	})
}

func TestRepository_AppendEntries_Concurrent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	eventTime := time.Date(2025, time.September, 4, 7, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries := []domain.LogEntry{
				{DeviceID: "unit-a", LogTimestamp: domain.NewTimestamp(eventTime), Message: "first of pair"},
				{DeviceID: "unit-a", LogTimestamp: domain.NewTimestamp(eventTime), Message: "second of pair"},
			}
			if err := repo.AppendEntries(ctx, "2025-09-04-07", entries); err != nil {
				t.Errorf("failed to append entries: %v", err)
			}
		}()
	}
	wg.Wait()

	lines := readLines(t, filepath.Join(repo.incomingDir, "2025-09-04-07.log"))
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	// Groups must never interleave: pairs stay adjacent.
	for i := 0; i < len(lines); i += 2 {
		var first, second domain.LogEntry
		if err := json.Unmarshal([]byte(lines[i]), &first); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if err := json.Unmarshal([]byte(lines[i+1]), &second); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i+1, err)
		}
		if first.Message != "first of pair" || second.Message != "second of pair" {
			t.Fatalf("record group interleaved at line %d: %q / %q", i, first.Message, second.Message)
		}
	}
}

func TestRepository_SweepCompleted(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"2025-09-04-06.log", "2025-09-04-07.log", "2025-09-04-08.log"} {
		if err := os.WriteFile(filepath.Join(repo.incomingDir, name), []byte("{}\n"), filePerm); err != nil {
			t.Fatalf("failed to seed bucket file: %v", err)
		}
	}

	moved, err := repo.SweepCompleted(ctx, "2025-09-04-08")
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("expected 2 moved files, got %d: %v", len(moved), moved)
	}

	t.Run("Current Hour Never Swept", func(t *testing.T) {
		if _, err := os.Stat(filepath.Join(repo.incomingDir, "2025-09-04-08.log")); err != nil {
			t.Errorf("current-hour bucket should remain in incoming: %v", err)
		}
		if _, err := os.Stat(filepath.Join(repo.processingDir, "2025-09-04-08.log")); !os.IsNotExist(err) {
			t.Error("current-hour bucket must not appear in processing")
		}
	})

	t.Run("Completed Buckets Relocated", func(t *testing.T) {
		for _, name := range []string{"2025-09-04-06.log", "2025-09-04-07.log"} {
			if _, err := os.Stat(repo.ProcessingPath(name)); err != nil {
				t.Errorf("expected %s in processing: %v", name, err)
			}
			if _, err := os.Stat(filepath.Join(repo.incomingDir, name)); !os.IsNotExist(err) {
				t.Errorf("expected %s gone from incoming", name)
			}
		}
	})

	t.Run("Empty Incoming Is Not An Error", func(t *testing.T) {
		moved, err := repo.SweepCompleted(ctx, "2025-09-04-08")
		if err != nil {
			t.Fatalf("sweep failed: %v", err)
		}
		if len(moved) != 0 {
			t.Errorf("expected no moves, got %v", moved)
		}
	})
}

func TestRepository_Quarantine(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	name := "2025-09-04-06.log"
	if err := os.WriteFile(repo.ProcessingPath(name), []byte("{}\n"), filePerm); err != nil {
		t.Fatalf("failed to seed processing file: %v", err)
	}

	record := domain.FailureRecord{
		FailedAt:      time.Now().UTC(),
		ErrorMessage:  "upload failed after retries",
		RetryAttempts: 3,
	}
	if err := repo.Quarantine(ctx, name, record); err != nil {
		t.Fatalf("quarantine failed: %v", err)
	}

	if _, err := os.Stat(repo.ProcessingPath(name)); !os.IsNotExist(err) {
		t.Error("quarantined file should be gone from processing")
	}
	if _, err := os.Stat(filepath.Join(repo.failedDir, name)); err != nil {
		t.Errorf("expected quarantined file in failed area: %v", err)
	}

	metaData, err := os.ReadFile(filepath.Join(repo.failedDir, name+metaFileSuffix))
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}
	var got domain.FailureRecord
	if err := json.Unmarshal(metaData, &got); err != nil {
		t.Fatalf("failed to unmarshal sidecar: %v", err)
	}
	if got.RetryAttempts != 3 {
		t.Errorf("expected retry_attempts 3, got %d", got.RetryAttempts)
	}
	if got.ErrorMessage != record.ErrorMessage {
		t.Errorf("expected error message %q, got %q", record.ErrorMessage, got.ErrorMessage)
	}
}

func TestRepository_RemoveProcessed(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	name := "2025-09-04-06.log"
	if err := os.WriteFile(repo.ProcessingPath(name), []byte("{}\n"), filePerm); err != nil {
		t.Fatalf("failed to seed processing file: %v", err)
	}

	if err := repo.RemoveProcessed(ctx, name); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(repo.ProcessingPath(name)); !os.IsNotExist(err) {
		t.Error("expected file removed from processing")
	}

	if err := repo.RemoveProcessed(ctx, name); err == nil {
		t.Error("expected error removing a missing file")
	}
}
