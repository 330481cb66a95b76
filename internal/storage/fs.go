package storage

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type FSStore struct{ base string }

var errBadKey = errors.New("invalid blob key")

// resolve maps a key to a path under base, rejecting keys that would
// escape it. Keys arrive straight off the /assets/* wildcard, so a
// leading .. is attacker-reachable, not a programming error.
func (s *FSStore) resolve(key string) (string, error) {
	if key == "" {
		return "", errBadKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errBadKey
	}
	return filepath.Join(s.base, clean), nil
}

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// PublicURL points at the gateway's asset route; the fs store serves
// through the app, not directly off disk.
func (s *FSStore) PublicURL(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return path.Join("/assets", key), nil
}
