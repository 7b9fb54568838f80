// Package upload classifies incoming course files by declared MIME type and
// stores them in the matching bucket directory.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "coursehub/internal/errors"
)

// Bucket names a storage destination.
type Bucket string

const (
	BucketPDF   Bucket = "pdf"
	BucketVideo Bucket = "video"
)

const (
	mimePDF         = "application/pdf"
	mimeVideoPrefix = "video/"

	// randomSuffixLimit bounds the random part of generated names.
	randomSuffixLimit = 1_000_000_000
)

// Buckets maps each bucket to a directory.
type Buckets struct {
	PDFDir   string
	VideoDir string
}

// Dir returns the directory for b.
func (b Buckets) Dir(bucket Bucket) string {
	switch bucket {
	case BucketPDF:
		return b.PDFDir
	case BucketVideo:
		return b.VideoDir
	default:
		return ""
	}
}

// StoredFile describes a file written by the router. It lives only for the
// duration of the request that produced it.
type StoredFile struct {
	DeclaredMimeType string
	OriginalName     string
	GeneratedName    string
	Bucket           Bucket
	Path             string
	Size             int64
}

// Classify picks the bucket for a declared MIME type. Parameters such as
// "; codecs=..." are ignored and matching is case-insensitive.
func Classify(declared string) (Bucket, error) {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		mediaType = parsed
	}
	switch {
	case mediaType == mimePDF:
		return BucketPDF, nil
	case strings.HasPrefix(mediaType, mimeVideoPrefix) && len(mediaType) > len(mimeVideoPrefix):
		return BucketVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFileType, declared)
	}
}

// GenerateName builds "<field>-<unix millis>-<random>[ext]" where ext is the
// original file's extension.
func GenerateName(field, original string, now time.Time, random int) string {
	return field + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(random) + filepath.Ext(original)
}

// Router stores uploads into bucket directories.
type Router struct {
	buckets Buckets
	now     func() time.Time
	random  func() int
}

// NewRouter creates a router over buckets.
func NewRouter(buckets Buckets) *Router {
	return &Router{
		buckets: buckets,
		now:     time.Now,
		random:  func() int { return rand.Intn(randomSuffixLimit) },
	}
}

// Buckets returns the router's bucket directories.
func (r *Router) Buckets() Buckets {
	return r.buckets
}

// EnsureDirs creates both bucket directories.
func (r *Router) EnsureDirs() error {
	for _, dir := range []string{r.buckets.PDFDir, r.buckets.VideoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create bucket dir %s: %w", dir, err)
		}
	}
	return nil
}

// Store classifies fh and writes it into its bucket under a generated name.
// Unsupported types are rejected before any file is created. Existing files
// are never overwritten.
func (r *Router) Store(ctx context.Context, field string, fh *multipart.FileHeader) (*StoredFile, error) {
	if fh == nil {
		return nil, apperrors.ErrMissingFile
	}
	declared := fh.Header.Get("Content-Type")
	bucket, err := Classify(declared)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := r.buckets.Dir(bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}

	name := GenerateName(field, fh.Filename, r.now(), r.random())
	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(dst, &ctxReader{ctx: ctx, r: src})
	if err == nil {
		err = dst.Sync()
	}
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	return &StoredFile{
		DeclaredMimeType: declared,
		OriginalName:     fh.Filename,
		GeneratedName:    name,
		Bucket:           bucket,
		Path:             filepath.ToSlash(path),
		Size:             written,
	}, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (r *Router) Remove(stored *StoredFile) error {
	if stored == nil {
		return nil
	}
	if err := os.Remove(filepath.FromSlash(stored.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", stored.Path, err)
	}
	return nil
}

// BucketOf reports which bucket directory path lives in.
func (r *Router) BucketOf(path string) (Bucket, bool) {
	dir := filepath.Clean(filepath.Dir(filepath.FromSlash(path)))
	for _, b := range []Bucket{BucketPDF, BucketVideo} {
		if dir == filepath.Clean(r.buckets.Dir(b)) {
			return b, true
		}
	}
	return "", false
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
