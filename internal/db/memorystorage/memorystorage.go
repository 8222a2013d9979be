package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/brainly/internal/db/jsondb"
)

// MemoryStorage keeps everything in process memory; data is lost on exit.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
