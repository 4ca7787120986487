// Package cache holds named blobs (session, sites) between invocations.
//
// Values are stored as JSON, one blob per key. A Put always replaces the
// whole value; there is no field-level update.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rileyhilliard/terminus/internal/errors"
)

// Well-known keys.
const (
	KeySession = "session"
	KeySites   = "sites"
)

// Store is a key to value store for named blobs.
type Store interface {
	// Get decodes the value stored under key into v. It reports false,
	// with a nil error, when nothing is stored.
	Get(key string, v any) (bool, error)

	// Put replaces the value stored under key.
	Put(key string, v any) error
}

// FileStore keeps each key in its own JSON file under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.New(errors.ErrCache,
			fmt.Sprintf("Invalid cache key %q", key),
			"Cache keys are plain names like 'session' or 'sites'")
	}
	return filepath.Join(s.Dir, key), nil
}

// Get implements Store.
func (s *FileStore) Get(key string, v any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrCache,
			fmt.Sprintf("Failed to read cached %s", key),
			"Check permissions on "+s.Dir)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrCache,
			fmt.Sprintf("Cached %s is corrupt", key),
			"Delete "+path+" and try again")
	}
	return true, nil
}

// Put implements Store. The value is written to a temp file and renamed
// into place so readers never see a partial blob.
func (s *FileStore) Put(key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			fmt.Sprintf("Failed to encode %s for the cache", key), "")
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			"Failed to create cache directory",
			"Check permissions on "+s.Dir)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+key+".*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			"Failed to write cache", "Check permissions on "+s.Dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()         //nolint:errcheck // already failing
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return errors.WrapWithCode(err, errors.ErrCache, "Failed to write cache", "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return errors.WrapWithCode(err, errors.ErrCache, "Failed to write cache", "")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return errors.WrapWithCode(err, errors.ErrCache, "Failed to write cache", "")
	}
	return nil
}

// MemoryStore is an in-process Store, used by tests and dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	writes map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		writes: make(map[string]int),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	data, ok := s.values[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrCache,
			fmt.Sprintf("Cached %s is corrupt", key), "")
	}
	return true, nil
}

// Put implements Store.
func (s *MemoryStore) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			fmt.Sprintf("Failed to encode %s for the cache", key), "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	s.writes[key]++
	return nil
}

// Writes returns how many times key has been written.
func (s *MemoryStore) Writes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[key]
}
