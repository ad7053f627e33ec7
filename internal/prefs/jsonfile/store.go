// Package jsonfile provides a prefs.Store kept in a single flat JSON object on disk.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/janpfeifer/GoMemory/internal/prefs"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"k8s.io/klog/v2"
)

// Store keeps the whole document in memory and rewrites the file on every change.
type Store struct {
	mu   sync.Mutex
	path string
	data []byte
}

var _ prefs.Store = (*Store)(nil)

// Open loads path, or starts an empty document if the file does not exist yet.
// A file that is not valid JSON is discarded.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	s := &Store{path: filepath.Clean(path), data: []byte("{}")}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	case !gjson.ValidBytes(data):
		klog.Warningf("jsonfile: %s is not valid JSON, starting empty", s.path)
	default:
		s.data = data
	}
	return s, nil
}

// Get returns the string stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := gjson.GetBytes(s.data, key)
	if !res.Exists() {
		return "", false, nil
	}
	return res.String(), true, nil
}

// SetAll sets all values and writes the file once.
func (s *Store) SetAll(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.data
	for k, v := range values {
		if err := checkKey(k); err != nil {
			return err
		}
		var err error
		if data, err = sjson.SetBytes(data, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return s.commit(data)
}

// Delete removes keys and writes the file once.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.data
	for _, k := range keys {
		if err := checkKey(k); err != nil {
			return err
		}
		var err error
		if data, err = sjson.DeleteBytes(data, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return s.commit(data)
}

// Close is a no-op: every change is already on disk.
func (s *Store) Close() error { return nil }

// commit replaces the file through a temporary file and a rename.
func (s *Store) commit(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	s.data = data
	return nil
}

// checkKey rejects keys that gjson would read as a path expression.
func checkKey(key string) error {
	if key == "" {
		return prefs.ErrInvalidKey
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q", prefs.ErrInvalidKey, key)
		}
	}
	return nil
}
