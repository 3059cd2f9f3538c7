package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each document as <dir>/<key>.json. Writes go to a temp
// file first and are renamed into place, so a crash never leaves a
// half-written document behind.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var _ Store = (*FileStore)(nil)

func (f *FileStore) Get(key string) (json.RawMessage, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.getLocked(key)
}

func (f *FileStore) Set(key string, doc json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setLocked(key, doc)
}

func (f *FileStore) Update(fn func(view Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fileView{f})
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) getLocked(key string) (json.RawMessage, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", key, err)
	}
	return data, nil
}

func (f *FileStore) setLocked(key string, doc json.RawMessage) error {
	tmp, err := os.CreateTemp(f.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write document %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write document %q: %w", key, err)
	}
	if err := os.Rename(name, f.path(key)); err != nil {
		os.Remove(name)
		return fmt.Errorf("write document %q: %w", key, err)
	}
	return nil
}

type fileView struct{ f *FileStore }

func (v *fileView) Get(key string) (json.RawMessage, error)   { return v.f.getLocked(key) }
func (v *fileView) Set(key string, doc json.RawMessage) error { return v.f.setLocked(key, doc) }
func (v *fileView) Update(fn func(view Store) error) error    { return fn(v) }
