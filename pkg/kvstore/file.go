package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File persists every key in one JSON object on disk. Each write replaces
// the file through a temporary file and rename, so a crash leaves either
// the previous or the new document.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile loads path, creating parent directories as needed.
// A missing file is treated as empty; an unreadable or corrupt one is an error.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}

	f := &File{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, errors.Join(ErrStorageFailed, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			return nil, errors.Join(ErrStorageFailed, fmt.Errorf("decode %s: %w", path, err))
		}
	}
	return f, nil
}

// Get returns the value under key, or nil when absent.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

// Set stores value under key and rewrites the file.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = string(value)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file if it was present.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
