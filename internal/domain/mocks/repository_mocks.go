package mocks

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/opslake/logship/internal/domain"
)

// MockBucketRepository is a mock implementation of domain.BucketRepository
// for testing.
type MockBucketRepository struct {
	mu            sync.Mutex
	Appended      map[string][]domain.LogEntry
	AppendedKeys  []string
	AppendErr     error
	SweepResult   []string
	SweepErr      error
	SweptKeys     []string
	Removed       []string
	RemoveErr     error
	Quarantined   map[string]domain.FailureRecord
	QuarantineErr error
	BasePath      string
}

func (m *MockBucketRepository) AppendEntries(ctx context.Context, key string, entries []domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if m.Appended == nil {
		m.Appended = make(map[string][]domain.LogEntry)
	}
	m.Appended[key] = append(m.Appended[key], entries...)
	m.AppendedKeys = append(m.AppendedKeys, key)
	return nil
}

func (m *MockBucketRepository) SweepCompleted(ctx context.Context, currentKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweptKeys = append(m.SweptKeys, currentKey)
	if m.SweepErr != nil {
		return nil, m.SweepErr
	}
	return m.SweepResult, nil
}

func (m *MockBucketRepository) ProcessingPath(filename string) string {
	return filepath.Join(m.BasePath, filename)
}

func (m *MockBucketRepository) RemoveProcessed(ctx context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Removed = append(m.Removed, filename)
	return nil
}

func (m *MockBucketRepository) Quarantine(ctx context.Context, filename string, record domain.FailureRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QuarantineErr != nil {
		return m.QuarantineErr
	}
	if m.Quarantined == nil {
		m.Quarantined = make(map[string]domain.FailureRecord)
	}
	m.Quarantined[filename] = record
	return nil
}

// MockObjectStore is a mock implementation of domain.ObjectStore for
// testing.
type MockObjectStore struct {
	mu              sync.Mutex
	UploadedKeys    []string
	UploadedContent map[string][]byte
	UploadCalls     int
	UploadErr       error
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, sourcePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadCalls++
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	if m.UploadedContent == nil {
		m.UploadedContent = make(map[string][]byte)
	}
	m.UploadedContent[key] = data
	m.UploadedKeys = append(m.UploadedKeys, key)
	return nil
}

// MockStatusRepository is a mock implementation of domain.StatusRepository
// for testing.
type MockStatusRepository struct {
	mu         sync.Mutex
	Written    []domain.RunStatus
	WriteErr   error
	ReadResult domain.RunStatus
	ReadErr    error
}

func (m *MockStatusRepository) Write(ctx context.Context, status domain.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, status)
	return nil
}

func (m *MockStatusRepository) Read(ctx context.Context) (domain.RunStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return domain.RunStatus{}, m.ReadErr
	}
	return m.ReadResult, nil
}
