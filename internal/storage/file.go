package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	fileSuffix = ".json"
	tempPrefix = ".tmp-"
)

// FileBackend stores one file per key inside a directory.
//
// File names are the query-escaped key plus ".json". Writes go to a temp
// file in the same directory and are renamed into place, so a reader never
// observes a partially written record.
type FileBackend struct {
	mu  sync.Mutex
	dir string
}

// OpenFile creates the directory if needed and returns a backend rooted there.
func OpenFile(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("open file backend: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the backend's root directory.
func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read record: %w", err)
	}
	return string(data), true, nil
}

func (f *FileBackend) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		cleanup()
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

func (f *FileBackend) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

func (f *FileBackend) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileBackend) Close() error {
	return nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.QueryEscape(key)+fileSuffix)
}
