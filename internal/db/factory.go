package db

import (
	"fmt"
	"strings"

	"timeit/internal/benchmark"
)

const (
	defaultJSONPath   = ".timeit/history.json"
	defaultSQLitePath = ".timeit/history.db"
)

// NewStore creates a new Store instance based on the provided configuration
func NewStore(config StoreConfig) (Store, error) {
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(config.ConnectionString)
	case "sqlite", "sqlite3":
		if config.ConnectionString == "" {
			config.ConnectionString = defaultSQLitePath
		}
		return NewSQLiteStore(config.ConnectionString)
	case "json", "":
		if config.ConnectionString == "" {
			config.ConnectionString = defaultJSONPath
		}
		fs, err := benchmark.NewFileStore(config.ConnectionString)
		if err != nil {
			return nil, err
		}
		return fileStore{fs}, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
