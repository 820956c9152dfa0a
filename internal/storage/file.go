package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotodo/gotodo/pkg/logger"
)

// ErrCorruptFile is returned by FileStorage reads when the file is not a
// JSON object. Writes replace such a file instead of failing.
var ErrCorruptFile = errors.New("failed to decode storage file")

// FileStorage persists all items as one JSON object on disk. Every write
// rewrites the whole file through a temp file and a rename, so a crash
// leaves either the old or the new content.
type FileStorage struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

var _ Storage = (*FileStorage)(nil)

// FileOption configures a FileStorage.
type FileOption func(*FileStorage)

// WithFileLogger sets the logger used to report a replaced corrupt file.
func WithFileLogger(log *logger.Logger) FileOption {
	return func(f *FileStorage) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFileStorage returns a store backed by the file at path. The file and
// its directory are created on first write.
func NewFileStorage(path string, opts ...FileOption) *FileStorage {
	f := &FileStorage{path: path, log: logger.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the backing file path.
func (f *FileStorage) Path() string {
	return f.path
}

// GetItem returns the value stored under key.
func (f *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

// SetItem stores value under key.
func (f *FileStorage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items, _, err := f.loadForWrite()
	if err != nil {
		return err
	}
	items[key] = value
	return f.save(items)
}

// RemoveItem deletes key. The file is left in place even when it becomes
// empty; a corrupt file is rewritten as empty.
func (f *FileStorage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items, corrupt, err := f.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok && !corrupt {
		return nil
	}
	delete(items, key)
	return f.save(items)
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	items := map[string]string{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return items, nil
}

// loadForWrite is load, except that a corrupt file counts as empty so the
// write that follows replaces it. corrupt reports that case.
func (f *FileStorage) loadForWrite() (items map[string]string, corrupt bool, err error) {
	items, err = f.load()
	if errors.Is(err, ErrCorruptFile) {
		f.log.Warn("storage file unreadable, replacing it", "path", f.path, "error", err.Error())
		return map[string]string{}, true, nil
	}
	return items, false, err
}

func (f *FileStorage) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
