package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/biolink/internal/db/jsondb"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

// MemoryStorage is the purely in-memory backend: a jsondb cache that is
// never written to disk.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory store.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:         map[string]*user.User{},
				EmailToUserID: map[string]string{},
				Profiles:      map[string]*models.Profile{},
				UsernameToID:  map[string]string{},
				Links:         map[string]*models.Link{},
			},
		},
	}, nil
}

// Close discards nothing; there is no file behind the cache.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping reports the store as always reachable.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
