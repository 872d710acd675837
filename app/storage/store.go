package storage

import (
	"adminctl/app/config"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const fileExt = ".json"

var keyRegexp = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Store is a small durable key/value store: one JSON file per key inside
// the state directory. Writes are atomic, a crash never leaves a torn file.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.StateDir)
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, oops.Errorf("failed to create state dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if !keyRegexp.MatchString(key) {
		return "", oops.With("key", key).Errorf("invalid storage key %q", key)
	}

	return filepath.Join(s.dir, key+fileExt), nil
}

// Get decodes the value stored under key into dst. The bool result is false
// when nothing is stored.
func (s *Store) Get(key string, dst any) (bool, error) {
	filePath, err := s.path(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(filePath)
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, oops.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, oops.With("key", key).Errorf("failed to decode %s: %w", key, err)
	}

	return true, nil
}

func (s *Store) Set(key string, value any) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return oops.With("key", key).Errorf("failed to encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomic.WriteFile(filePath, bytes.NewReader(data)); err != nil {
		return oops.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

func (s *Store) Remove(key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Errorf("failed to remove %s: %w", key, err)
	}

	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, oops.Errorf("failed to list state dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}

		key := strings.TrimSuffix(name, fileExt)
		if keyRegexp.MatchString(key) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Clear removes every stored key. Files not owned by the store are kept.
func (s *Store) Clear() error {
	keys, err := s.Keys()
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range keys {
		errs = append(errs, s.Remove(key))
	}

	return errors.Join(errs...)
}
