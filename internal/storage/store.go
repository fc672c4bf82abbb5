// Package storage persists layouts between daemon runs.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/winsnap/internal/layout"
)

// ErrNotFound is returned when no layout is stored under an id.
var ErrNotFound = errors.New("layout not found")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store reads and writes layouts by id. Stored screens are plain values;
// callers re-link them to live screens by name.
type Store interface {
	Write(l *layout.Layout) error
	Read(id int) (*layout.Layout, error)
	// List returns the stored ids in ascending order.
	List() ([]int, error)
	Delete(id int) error
	Close() error
}

// Options selects and locates a store.
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
}

// Open creates the store named by opts.Backend. Empty paths fall back to
// locations under ~/.config/winsnap.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendJSON:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileStore(dir), nil
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			d, err := defaultConfigDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(d, "layouts.db")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func defaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winsnap"), nil
}

// DefaultDir is where the JSON store keeps layout files.
func DefaultDir() (string, error) {
	d, err := defaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "layouts"), nil
}
