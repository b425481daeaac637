package domain

import "context"

// BucketRepository manages the on-disk lifecycle of hourly bucket files
// across the incoming, processing and failed areas.
type BucketRepository interface {
	// AppendEntries durably appends a group of entries to the bucket file
	// for key in the incoming area, creating the file if absent. The whole
	// group is written in one append so concurrent submissions never
	// interleave partial records.
	AppendEntries(ctx context.Context, key string, entries []LogEntry) error

	// SweepCompleted moves every incoming bucket file whose key differs
	// from currentKey into the processing area and returns the moved
	// filenames. Files that fail to move are logged and left behind for
	// the next sweep.
	SweepCompleted(ctx context.Context, currentKey string) ([]string, error)

	// ProcessingPath returns the absolute path of a file in the
	// processing area.
	ProcessingPath(filename string) string

	// RemoveProcessed deletes an uploaded file from the processing area.
	RemoveProcessed(ctx context.Context, filename string) error

	// Quarantine moves a file from the processing area to the failed area
	// and writes its FailureRecord sidecar.
	Quarantine(ctx context.Context, filename string, record FailureRecord) error
}

// ObjectStore uploads compressed bucket files to durable object storage.
type ObjectStore interface {
	// Upload stores the file at sourcePath under the given object key.
	Upload(ctx context.Context, key string, sourcePath string) error
}

// StatusRepository persists the RunStatus of the latest ship cycle.
type StatusRepository interface {
	// Write atomically replaces the persisted status.
	Write(ctx context.Context, status RunStatus) error

	// Read returns the last persisted status.
	Read(ctx context.Context) (RunStatus, error)
}

// APIKeyRepository defines the interface for validating API keys.
type APIKeyRepository interface {
	// IsValid checks if the provided API key is valid and active.
	IsValid(ctx context.Context, key string) (bool, error)
}
