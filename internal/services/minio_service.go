package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig addresses one bucket on a MinIO (or other S3-compatible)
// server.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type minioObjectStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioObjectStore builds a path-style store. Setting Region keeps
// presigning local, with no bucket-location lookup.
func NewMinioObjectStore(cfg MinioConfig) (ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &minioObjectStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

func (m *minioObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignHeader(ctx, "PUT", m.bucket, key, ttl, nil, contentTypeHeader(contentType))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioObjectStore) PublicURL(key string) string {
	return m.baseURL + "/" + escapeKey(key)
}

func (m *minioObjectStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioObjectStore) KeyFromURL(rawURL string) (string, error) {
	return keyFromURL(rawURL, m.bucket)
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *minioObjectStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func contentTypeHeader(contentType string) http.Header {
	if strings.TrimSpace(contentType) == "" {
		return nil
	}
	return http.Header{"Content-Type": {contentType}}
}
