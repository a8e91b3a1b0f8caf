// Package storage writes exported files to S3-compatible object storage or
// to the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore stores a named blob and returns where it was written
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Destination is a parsed export target: s3://bucket/key or a local path
type Destination struct {
	Bucket string // empty for local files
	Key    string
}

// IsS3 reports whether the destination is an object storage URI
func (d Destination) IsS3() bool {
	return d.Bucket != ""
}

// ParseDestination splits an export target into bucket and key
func ParseDestination(target string) (Destination, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Destination{}, errors.New("export destination is required")
	}
	if !strings.HasPrefix(target, "s3://") {
		return Destination{Key: target}, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return Destination{}, fmt.Errorf("invalid s3 destination %q: %w", target, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Destination{}, fmt.Errorf("s3 destination %q must name a bucket and a key", target)
	}
	return Destination{Bucket: u.Host, Key: key}, nil
}

// LocalStore writes objects below a base directory
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore. An empty baseDir keeps keys as given.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Put writes body to baseDir/key, creating parent directories
func (s *LocalStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	path := key
	if s.baseDir != "" {
		path = filepath.Join(s.baseDir, filepath.Clean("/"+key))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

var _ ObjectStore = (*LocalStore)(nil)
