package config

import (
	"fmt"
	"strings"
)

var storeTypes = map[string]bool{
	"json":       true,
	"sqlite":     true,
	"sqlite3":    true,
	"postgres":   true,
	"postgresql": true,
}

// Validate returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errors []string

	if c.Repeat <= 0 {
		errors = append(errors, fmt.Sprintf("repeat must be positive, got: %d", c.Repeat))
	}
	if c.Number <= 0 {
		errors = append(errors, fmt.Sprintf("number must be positive, got: %d", c.Number))
	}
	if c.Threshold < 0 {
		errors = append(errors, fmt.Sprintf("threshold must not be negative, got: %v", c.Threshold))
	}
	if !storeTypes[strings.ToLower(c.Store.Type)] {
		errors = append(errors, fmt.Sprintf("store.type must be one of json, sqlite, postgres, got: %q", c.Store.Type))
	}
	if strings.HasPrefix(strings.ToLower(c.Store.Type), "postgres") && c.Store.Path == "" {
		errors = append(errors, "store.path must hold a DSN for postgres")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
