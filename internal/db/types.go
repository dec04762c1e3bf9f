package db

import (
	"timeit/internal/benchmark"
)

// Store is a benchmark history store backed by a database or file.
type Store interface {
	benchmark.Store
	Close() error
}

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "json", "sqlite" or "postgres"
	ConnectionString string // File path for JSON and SQLite, DSN for Postgres
}

// fileStore adapts benchmark.FileStore to Store.
type fileStore struct {
	*benchmark.FileStore
}

func (fileStore) Close() error { return nil }
