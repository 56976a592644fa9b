package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Storage keeps binary objects addressed by slash separated keys.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

// cleanKey normalizes key and rejects traversal and empty keys.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Clean(key), nil
}

// DetectContentType sniffs the MIME type of data, ignoring parameters.
func DetectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	mt, _, _ := strings.Cut(ct, ";")
	return strings.TrimSpace(mt)
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
