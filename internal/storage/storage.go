// Package storage wraps the S3-compatible object store. It owns credential
// minting (presigned URLs) and listing; it never reads or writes object
// bytes itself; transfers go directly from the client to the store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dsarkar/galleria/internal/config"
	"github.com/dsarkar/galleria/internal/media"
)

const (
	// UploadURLTTL is how long a presigned write credential stays valid.
	UploadURLTTL = 5 * time.Minute

	// DownloadURLTTL is how long a presigned read URL stays valid. Read URLs
	// are regenerated on every listing and must not be cached beyond that.
	DownloadURLTTL = time.Hour
)

// ErrNotConfigured is returned when the store lacks required configuration.
// Operations fail fast with this instead of attempting a doomed call.
var ErrNotConfigured = errors.New("media storage not configured")

// ObjectInfo describes one stored object as reported by a listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// client is the subset of the minio API the store uses. Narrowed for tests.
type client interface {
	PresignedPutObject(ctx context.Context, bucketName, objectName string, expires time.Duration) (*url.URL, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Store mints time-limited credentials for a single bucket and lists the
// uploads/ namespace.
type Store struct {
	client client
	cfg    config.StorageConfig
}

// New creates a store from configuration. A missing endpoint or bucket
// returns ErrNotConfigured so callers can surface a configuration error.
func New(cfg config.StorageConfig) (*Store, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &Store{client: mc, cfg: cfg}, nil
}

// Bucket returns the configured destination bucket.
func (s *Store) Bucket() string {
	return s.cfg.Bucket
}

// PresignUpload returns a write credential for one destination key. The
// caller transfers bytes with a single PUT, setting the declared content
// type header itself.
func (s *Store) PresignUpload(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, key, UploadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presigning upload for %s: %w", key, err)
	}
	return u.String(), nil
}

// PresignDownload returns a fresh read URL for one object.
func (s *Store) PresignDownload(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, key, DownloadURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presigning download for %s: %w", key, err)
	}
	return u.String(), nil
}

// ObjectURL returns the canonical (unsigned) address of an object. It is
// informational; reads go through presigned URLs.
func (s *Store) ObjectURL(key string) string {
	scheme := "https"
	if !s.cfg.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, s.cfg.Bucket, s.cfg.Endpoint, key)
}

// List returns every object under the uploads/ prefix. All-or-nothing: any
// listing error fails the whole call, no partial listings are returned.
func (s *Store) List(ctx context.Context) ([]ObjectInfo, error) {
	objectCh := s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    media.KeyPrefix,
		Recursive: true,
	})

	var objects []ObjectInfo
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing objects: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}
