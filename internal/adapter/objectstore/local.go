package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MediaPrefix is the HTTP path the router serves local videos from.
const MediaPrefix = "/media"

// LocalStore writes videos to a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the storage root.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Put writes body under key.
func (s *LocalStore) Put(ctx context.Context, key string, body io.ReadSeeker, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

// URL returns the path the router serves key from. Local links do not expire.
func (s *LocalStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}
	return MediaPrefix + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}
