// Package storage persists uploaded blobs by key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	ErrExists   = errors.New("blob already exists")
	ErrNotExist = errors.New("blob does not exist")
	ErrBadKey   = errors.New("invalid blob key")
)

// PublicPrefix is the URL path segment under which blobs are served.
const PublicPrefix = "uploads"

// BlobStore is durable write-once storage addressed by slash-separated keys.
type BlobStore interface {
	// Put stores r under key and fails with ErrExists if key is taken.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the blob under key and its size, or ErrNotExist.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Delete removes key, returning ErrNotExist if it was absent.
	Delete(ctx context.Context, key string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const (
	// MaxNameLen bounds a sanitized name so keys stay well under file system
	// name limits and the file_path column.
	MaxNameLen = 100
	maxExtLen  = 16
)

// SanitizeName reduces an uploaded file name to a single safe path segment
// of at most MaxNameLen bytes. A long name keeps its extension.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	clean := unsafeChars.ReplaceAllString(name, "_")
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "file"
	}
	if len(clean) <= MaxNameLen {
		return clean
	}
	ext := path.Ext(clean)
	if len(ext) > maxExtLen {
		ext = ""
	}
	base := strings.TrimRight(clean[:MaxNameLen-len(ext)], ".")
	if base == "" {
		base = "file"
	}
	return base + ext
}

// NewKey builds a time-prefixed key for an upload in the given feature area.
// A non-empty ext replaces whatever extension the original name carried.
func NewKey(feature, original, ext string, now time.Time) string {
	name := SanitizeName(original)
	if ext != "" {
		name = strings.TrimSuffix(name, path.Ext(name)) + ext
	}
	return fmt.Sprintf("%s/%d_%s", feature, now.UnixNano(), name)
}

// PublicPath is the path stored on rows and used by clients to fetch the blob.
func PublicPath(key string) string {
	return PublicPrefix + "/" + key
}

// KeyFromPublicPath reverses PublicPath.
func KeyFromPublicPath(p string) (string, bool) {
	key, ok := strings.CutPrefix(p, PublicPrefix+"/")
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
