package apikey

import (
	"context"
	"strings"
)

// Repository validates API keys against a static set loaded from
// configuration. Key provisioning and rotation happen outside this service.
type Repository struct {
	keys map[string]struct{}
}

// NewRepository creates a Repository from a list of accepted keys. Blank
// entries are ignored.
func NewRepository(keys []string) *Repository {
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key != "" {
			keySet[key] = struct{}{}
		}
	}
	return &Repository{keys: keySet}
}

// IsValid reports whether the provided key is in the configured set.
func (r *Repository) IsValid(ctx context.Context, key string) (bool, error) {
	_, ok := r.keys[key]
	return ok, nil
}
