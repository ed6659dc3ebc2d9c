package service

import (
	"achievify/internal/metrics"
	"achievify/internal/storage"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

// uploadPolicy is what a feature accepts.
type uploadPolicy struct {
	feature  string
	allowed  []string
	rejected string
}

var (
	timetablePolicy = uploadPolicy{
		feature:  "timetables",
		allowed:  []string{"image/png", "image/jpeg", "image/webp", "application/pdf"},
		rejected: "Only PNG/JPEG/WEBP or PDF allowed",
	}
	wallPolicy = uploadPolicy{
		feature:  "wall",
		allowed:  []string{"image/png", "image/jpeg", "image/webp"},
		rejected: "Only PNG/JPEG/WEBP images allowed",
	}
)

// Features lists the key prefixes blobs are written under.
func Features() []string {
	return []string{timetablePolicy.feature, wallPolicy.feature}
}

const putAttempts = 3

// Blobs writes and removes the files referenced by resource rows.
type Blobs struct {
	store   storage.BlobStore
	maxSize int64
	log     *logger.Loggers
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBlobs(store storage.BlobStore, maxSize int64, log *logger.Loggers, m *metrics.Metrics) *Blobs {
	return &Blobs{store: store, maxSize: maxSize, log: log, metrics: m, now: time.Now}
}

// mediaType reports which allowed type the declared content type names, if any.
func (p uploadPolicy) mediaType(declared string) (string, bool) {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", false
	}
	for _, a := range p.allowed {
		if strings.EqualFold(mt, a) {
			return a, true
		}
	}
	return "", false
}

// storedType reports which allowed type the sniffed content is.
func (p uploadPolicy) storedType(m *mimetype.MIME) (string, bool) {
	for _, a := range p.allowed {
		if m.Is(a) {
			return a, true
		}
	}
	return "", false
}

// extension is the file extension a blob of the given type is stored with.
func extension(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}

// ServedType picks the Content-Type for a stored blob from its leading
// bytes. Anything that is not an accepted upload type is served as an
// opaque download.
func ServedType(head []byte) string {
	detected := mimetype.Detect(head)
	for _, p := range []uploadPolicy{timetablePolicy, wallPolicy} {
		if t, ok := p.storedType(detected); ok {
			return t
		}
	}
	return "application/octet-stream"
}

// put validates u against p and writes it under a fresh unique key. It
// returns the public path and the sniffed media type to record on the row.
// The key's extension follows the content, never the client's file name.
func (b *Blobs) put(ctx context.Context, u *Upload, p uploadPolicy) (string, string, error) {
	if u.Size > b.maxSize {
		b.metrics.Uploads.WithLabelValues(p.feature, "rejected").Inc()
		return "", "", apperror.TooLarge("File too large")
	}
	declared, ok := p.mediaType(u.ContentType)
	if !ok {
		b.metrics.Uploads.WithLabelValues(p.feature, "rejected").Inc()
		return "", "", apperror.UnsupportedMedia(p.rejected)
	}
	detected, err := mimetype.DetectReader(u.Body)
	if err != nil {
		return "", "", fmt.Errorf("sniff upload: %w", err)
	}
	contentType, ok := p.storedType(detected)
	if !ok {
		b.metrics.Uploads.WithLabelValues(p.feature, "rejected").Inc()
		b.log.Security.Warn("Upload content does not match declared type",
			zap.String("declared", declared),
			zap.String("detected", detected.String()),
		)
		return "", "", apperror.UnsupportedMedia(p.rejected)
	}

	for attempt := 0; attempt < putAttempts; attempt++ {
		if _, err := u.Body.Seek(0, io.SeekStart); err != nil {
			return "", "", fmt.Errorf("rewind upload: %w", err)
		}
		key := storage.NewKey(p.feature, u.Filename, extension(contentType), b.now())
		err := b.store.Put(ctx, key, u.Body, u.Size, contentType)
		if errors.Is(err, storage.ErrExists) {
			continue
		}
		if err != nil {
			b.metrics.Uploads.WithLabelValues(p.feature, "failed").Inc()
			return "", "", fmt.Errorf("put blob: %w", err)
		}
		b.metrics.Uploads.WithLabelValues(p.feature, "stored").Inc()
		b.log.Audit.Info("Blob stored", zap.String("key", key), zap.Int64("size", u.Size))
		return storage.PublicPath(key), contentType, nil
	}
	b.metrics.Uploads.WithLabelValues(p.feature, "failed").Inc()
	return "", "", fmt.Errorf("put blob: no free key after %d attempts", putAttempts)
}

// remove deletes the blob behind a public path. Failures are logged and
// counted but never returned: the row is already gone.
func (b *Blobs) remove(ctx context.Context, feature, publicPath string) {
	key, ok := storage.KeyFromPublicPath(publicPath)
	if !ok {
		b.log.Error.Warn("Row referenced an invalid blob path", zap.String("path", publicPath))
		b.metrics.BlobDeleteFailure.WithLabelValues(feature).Inc()
		return
	}
	err := b.store.Delete(ctx, key)
	switch {
	case err == nil:
		b.log.Audit.Info("Blob deleted", zap.String("key", key))
	case errors.Is(err, storage.ErrNotExist):
		b.log.Error.Warn("Blob already missing", zap.String("key", key))
	default:
		b.log.Error.Warn("Blob delete failed", zap.String("key", key), zap.Error(err))
		b.metrics.BlobDeleteFailure.WithLabelValues(feature).Inc()
	}
}

// createWithBlob is the upload half of the owned-resource pattern: blob
// first, row second. A failed insert leaves the blob orphaned.
func createWithBlob[T any](ctx context.Context, b *Blobs, u *Upload, p uploadPolicy, insert func(path, mime string) (*T, error)) (*T, error) {
	path, contentType, err := b.put(ctx, u, p)
	if err != nil {
		return nil, err
	}
	row, err := insert(path, contentType)
	if err != nil {
		b.log.Error.Warn("Row insert failed after blob write", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return row, nil
}

// removeWithBlob deletes the row first and then, best-effort, the blob it
// referenced.
func removeWithBlob(ctx context.Context, b *Blobs, feature, notFound string, remove func() (*string, error)) error {
	path, err := remove()
	if err != nil {
		return storeError(err, notFound, "delete "+feature)
	}
	if path != nil {
		b.remove(ctx, feature, *path)
	}
	return nil
}
