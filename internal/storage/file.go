package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/winsnap/internal/layout"
)

// FileStore keeps one "<id>.json" file per layout in a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the layout files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id int) string {
	return filepath.Join(s.dir, strconv.Itoa(id)+".json")
}

// Write stores a layout, replacing any previous file for its id. The file is
// written to a temporary name first and renamed into place.
func (s *FileStore) Write(l *layout.Layout) error {
	if l == nil {
		return fmt.Errorf("layout is nil")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout %d: %w", l.ID, err)
	}

	path := s.path(l.ID)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for layout %d: %w", l.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write layout %d: %w", l.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write layout %d: %w", l.ID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace layout %d: %w", l.ID, err)
	}
	return nil
}

// Read loads a layout. Tiles whose file lacks a screen are dropped.
func (s *FileStore) Read(id int) (*layout.Layout, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read layout %d: %w", id, err)
	}

	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout %d: %w", id, err)
	}
	l.ID = id

	tiles := l.Tiles[:0]
	for _, t := range l.Tiles {
		if t == nil || t.Bounds.Screen == nil {
			continue
		}
		tiles = append(tiles, t)
	}
	l.Tiles = tiles
	return &l, nil
}

// List returns the ids of all layout files in ascending order. Files whose
// names are not integers are ignored.
func (s *FileStore) List() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// Delete removes a layout file.
func (s *FileStore) Delete(id int) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete layout %d: %w", id, err)
	}
	return nil
}

// Close is a no-op for file storage.
func (s *FileStore) Close() error {
	return nil
}
