package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Backends lists the names accepted by Open.
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendNone}

// Open creates the named backend. location is a directory for file, a
// database path for sqlite and a redis:// URL for redis; an empty
// location uses DefaultDir.
func Open(ctx context.Context, backend, location string) (Cache, error) {
	switch backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if location == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			location = filepath.Join(dir, "layouts")
		}
		return NewFileCache(location)
	case BackendSQLite:
		if location == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			location = filepath.Join(dir, "cache.db")
		}
		return NewSQLiteCache(ctx, location)
	case BackendRedis:
		if location == "" {
			location = "redis://localhost:6379/0"
		}
		return NewRedisCache(ctx, location, DefaultRedisPrefix)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// DefaultDir returns $XDG_CACHE_HOME/proteomap or the OS user cache
// directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "proteomap"), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return filepath.Join(dir, "proteomap"), nil
}
