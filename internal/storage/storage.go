// Package storage provides the durable key-value scopes the credential store is
// persisted in. A scope is a flat string map; Clear wipes every key in it.
package storage

import (
	"fmt"
	"io"
	"strings"
)

// Scope is a synchronous, durable, single-origin key-value region.
type Scope interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Clear removes every key in the scope, not only the ones written by the caller.
	Clear() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend string
	Path    string
	Scope   string
}

// Open builds the configured scope. The returned closer must be called on shutdown.
func Open(opts Options) (Scope, io.Closer, error) {
	scope := strings.TrimSpace(opts.Scope)
	if scope == "" {
		scope = "default"
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemory(), nopCloser{}, nil
	case "", BackendFile:
		f, err := NewFile(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, nopCloser{}, nil
	case BackendLevelDB:
		db, err := OpenLevelDB(opts.Path, scope)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case BackendSQLite:
		db, err := OpenSQLite(opts.Path, scope)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
