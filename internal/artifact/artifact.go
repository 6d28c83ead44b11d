// Package artifact fetches model, preprocessor and dataset files from local
// disk, S3 or Google Cloud Storage.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no artifact exists under a key.
var ErrNotFound = errors.New("artifact not found")

// Source abstracts blob storage for artifacts. Keys are slash-separated
// paths relative to the source root, e.g. "models/primary/model.json".
type Source interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Options selects and configures a Source.
type Options struct {
	URI        string // directory, s3://bucket/prefix or gs://bucket/prefix
	S3Endpoint string
	S3Region   string
	CacheDir   string // when set, remote artifacts are kept here after the first fetch
}

// Open returns the Source for opts.URI.
func Open(ctx context.Context, opts Options) (Source, error) {
	var (
		src Source
		err error
	)
	switch {
	case strings.HasPrefix(opts.URI, "s3://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(opts.URI, "s3://"))
		src, err = NewS3Storage(ctx, S3Config{
			Bucket:   bucket,
			Prefix:   prefix,
			Region:   opts.S3Region,
			Endpoint: opts.S3Endpoint,
		})
	case strings.HasPrefix(opts.URI, "gs://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(opts.URI, "gs://"))
		src, err = NewGCSStorage(ctx, bucket, prefix)
	case strings.Contains(opts.URI, "://"):
		return nil, fmt.Errorf("unsupported artifact URI %q", opts.URI)
	default:
		return NewLocalStorage(opts.URI), nil
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheDir != "" {
		return NewCached(src, NewLocalStorage(opts.CacheDir)), nil
	}
	return src, nil
}

func splitBucket(s string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(s, "/")
	return bucket, strings.Trim(prefix, "/")
}

func joinKey(prefix, key string) string {
	key = strings.TrimPrefix(key, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// LocalStorage implements Source using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("empty artifact key")
	}
	return filepath.Join(s.BaseDir, clean), nil
}

// Get opens the artifact file.
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Put writes an artifact, creating parent directories.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Cached serves artifacts from a local copy, fetching from the remote
// source on a miss.
type Cached struct {
	remote Source
	local  *LocalStorage
}

// NewCached wraps remote with a local cache.
func NewCached(remote Source, local *LocalStorage) *Cached {
	return &Cached{remote: remote, local: local}
}

func (c *Cached) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if rc, err := c.local.Get(ctx, key); err == nil {
		return rc, nil
	}
	rc, err := c.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if err := c.local.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("cache %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put writes through to the remote source and refreshes the cache.
func (c *Cached) Put(ctx context.Context, key string, data []byte) error {
	if err := c.remote.Put(ctx, key, data); err != nil {
		return err
	}
	return c.local.Put(ctx, key, data)
}

// ReadAll fetches an artifact fully into memory.
func ReadAll(ctx context.Context, src Source, key string) ([]byte, error) {
	rc, err := src.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
