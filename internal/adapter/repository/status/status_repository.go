package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opslake/logship/internal/domain"
)

const (
	statusDirName  = "status"
	statusFileName = "run_status.json"

	filePerm = 0644
	dirPerm  = 0755
)

// Repository persists the latest ship cycle RunStatus as a single JSON file,
// replaced atomically on every transition so readers never observe a partial
// write.
type Repository struct {
	dir string
	mu  sync.Mutex
}

// NewRepository creates a Repository under basePath, provisioning the status
// directory.
func NewRepository(basePath string) (*Repository, error) {
	dir := filepath.Join(basePath, statusDirName)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create status directory %s: %w", dir, err)
	}
	return &Repository{dir: dir}, nil
}

// Write marshals the status to a temporary file and renames it over the
// well-known path.
func (r *Repository) Write(ctx context.Context, st domain.RunStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal run status: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, statusFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp status file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp status file: %w", err)
	}

	final := filepath.Join(r.dir, statusFileName)
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace status file %s: %w", final, err)
	}
	if err := os.Chmod(final, filePerm); err != nil {
		return fmt.Errorf("failed to chmod status file %s: %w", final, err)
	}

	return nil
}

// Read returns the last persisted status.
func (r *Repository) Read(ctx context.Context) (domain.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(r.dir, statusFileName))
	if err != nil {
		return domain.RunStatus{}, fmt.Errorf("failed to read status file: %w", err)
	}

	var st domain.RunStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.RunStatus{}, fmt.Errorf("failed to unmarshal status file: %w", err)
	}
	return st, nil
}
