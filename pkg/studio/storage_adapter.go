package studio

import (
	"github.com/himanishpuri/studiokit/pkg/studio/storage"
)

// storageAdapter exposes storage.DBClient through the Storage interface.
type storageAdapter struct {
	*storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{DBClient: db}, nil
}
