package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ObjectStore is where space images live. The service never moves image
// bytes; clients upload straight to the store with a presigned URL.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, error)
}

// escapeKey percent-encodes each segment of an object key for use in a URL
// path, keeping the separators.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// keyFromURL strips the scheme, host and optional bucket prefix from a
// public object URL.
func keyFromURL(rawURL, bucketPrefix string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucketPrefix != "" {
		key = strings.TrimPrefix(key, bucketPrefix+"/")
	}
	if key == "" {
		return "", fmt.Errorf("image url %q has no object key", rawURL)
	}
	return key, nil
}

type disabledObjectStore struct{}

// NewDisabledObjectStore returns a store that fails every operation with
// ErrObjectStoreDisabled.
func NewDisabledObjectStore() ObjectStore {
	return disabledObjectStore{}
}

func (disabledObjectStore) PresignPut(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrObjectStoreDisabled
}

func (disabledObjectStore) PublicURL(string) string { return "" }

func (disabledObjectStore) Delete(context.Context, string) error { return ErrObjectStoreDisabled }

func (disabledObjectStore) KeyFromURL(string) (string, error) { return "", ErrObjectStoreDisabled }
