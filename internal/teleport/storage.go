package teleport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/platform/objectstore"
)

const parquetContentType = "application/vnd.apache.parquet"

// Storage reads and writes whole objects addressed by URL.
type Storage interface {
	Read(ctx context.Context, url string, opts map[string]string) ([]byte, error)
	Write(ctx context.Context, url string, data []byte, opts map[string]string) error
}

// bucketEnsurer is implemented by stores that can create missing buckets.
type bucketEnsurer interface {
	EnsureBucket(ctx context.Context, bucket string) error
}

// StoreFactory builds an S3 store from storage options.
type StoreFactory func(opts map[string]string) (objectstore.Store, error)

// URLStorage dispatches s3:// URLs to object storage and everything else to a
// local filesystem.
type URLStorage struct {
	FS       afero.Fs
	NewStore StoreFactory
}

func NewURLStorage(fs afero.Fs) *URLStorage {
	return &URLStorage{FS: fs, NewStore: newMinioStore}
}

func (s *URLStorage) Read(ctx context.Context, url string, opts map[string]string) ([]byte, error) {
	if bucket, key, ok := splitS3URL(url); ok {
		store, err := s.store(opts)
		if err != nil {
			return nil, err
		}
		body, _, err := store.Get(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", url, err)
		}
		defer func() { _ = body.Close() }()
		return io.ReadAll(body)
	}
	data, err := afero.ReadFile(s.FS, url)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

func (s *URLStorage) Write(ctx context.Context, url string, data []byte, opts map[string]string) error {
	if bucket, key, ok := splitS3URL(url); ok {
		store, err := s.store(opts)
		if err != nil {
			return err
		}
		if b, ok := store.(bucketEnsurer); ok {
			if err := b.EnsureBucket(ctx, bucket); err != nil {
				return fmt.Errorf("ensure bucket %s: %w", bucket, err)
			}
		}
		if err := store.Put(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), parquetContentType); err != nil {
			return fmt.Errorf("put %s: %w", url, err)
		}
		return nil
	}
	if err := s.FS.MkdirAll(filepath.Dir(url), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(url), err)
	}
	if err := afero.WriteFile(s.FS, url, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", url, err)
	}
	return nil
}

func (s *URLStorage) store(opts map[string]string) (objectstore.Store, error) {
	if s.NewStore == nil {
		return nil, errors.New("object storage not configured")
	}
	return s.NewStore(opts)
}

func splitS3URL(url string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(url, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key, bucket != "" && key != ""
}

func newMinioStore(opts map[string]string) (objectstore.Store, error) {
	endpoint, useSSL := objectstore.NormalizeEndpoint(opts["endpoint_url"], true)
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	return objectstore.NewMinioStore(objectstore.Config{
		Endpoint:     endpoint,
		AccessKey:    opts["key"],
		SecretKey:    opts["secret"],
		SessionToken: opts["token"],
		Region:       opts["region"],
		UseSSL:       useSSL,
	})
}
