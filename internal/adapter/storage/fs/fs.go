// Package fs implements the artifact store on the local filesystem.
// Each key maps to a file under the root directory; slash-separated
// key segments become subdirectories.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// Store is a filesystem-backed key-value store rooted at a directory.
type Store struct {
	root string
}

// New creates the root directory if needed and returns the store.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("fs store: root directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs store: create root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// path maps a slash-separated key to a file path under the root.
func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("fs get %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fs get %s: %w", key, err)
	}
	return data, nil
}

// Put stores value under key, overwriting any previous value.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("fs put %s: %w", key, err)
	}
	if err := os.WriteFile(p, value, 0o644); err != nil {
		return fmt.Errorf("fs put %s: %w", key, err)
	}
	return nil
}

// Append appends value to the file under key, creating it if absent.
func (s *Store) Append(_ context.Context, key string, value []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("fs append %s: %w", key, err)
	}

	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fs append %s: %w", key, err)
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		return fmt.Errorf("fs append %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fs append %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fs delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fs exists %s: %w", key, err)
	}
	return true, nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(s.root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			// Root removed out from under us: nothing to list.
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs list %s: %w", prefix, err)
	}

	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error {
	return nil
}
