// Package storage keeps uploaded product media in a gocloud bucket and hands
// out public URLs for the stored keys.
package storage

import (
	"context"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

var ErrEmptyUpload = errors.New("upload is empty")

type Bucket struct {
	bucket     *blob.Bucket
	publicBase string
	local      bool
}

// Open accepts a gocloud bucket URL (mem://, file:///abs/dir, s3://...) or a
// plain directory path, which is created on demand.
func Open(ctx context.Context, bucketURL, publicBaseURL string) (*Bucket, error) {
	var (
		b     *blob.Bucket
		err   error
		local bool
	)
	if strings.Contains(bucketURL, "://") {
		b, err = blob.OpenBucket(ctx, bucketURL)
		local = strings.HasPrefix(bucketURL, "file://")
	} else {
		var dir string
		dir, err = filepath.Abs(bucketURL)
		if err == nil {
			b, err = fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
		}
		local = true
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %q", bucketURL)
	}
	return &Bucket{bucket: b, publicBase: strings.TrimRight(publicBaseURL, "/"), local: local}, nil
}

// Local reports whether media should be served by this process.
func (b *Bucket) Local() bool {
	return b.local
}

func (b *Bucket) Close() error {
	return b.bucket.Close()
}

// Upload stores r under a generated key "<uuid>.<ext>" and returns the
// public URL of the stored object.
func (b *Bucket) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := uuid.New().String() + extension(filename, contentType)

	w, err := b.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, "open upload writer")
	}
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return "", errors.Wrap(err, "write upload")
	}
	if n == 0 {
		w.Close()
		b.bucket.Delete(ctx, key)
		return "", ErrEmptyUpload
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "finish upload")
	}
	return b.PublicURL(key), nil
}

func (b *Bucket) PublicURL(key string) string {
	return b.publicBase + "/" + url.PathEscape(key)
}

// Open returns a reader for key; the caller closes it.
func (b *Bucket) Open(ctx context.Context, key string) (*blob.Reader, error) {
	r, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", key)
	}
	return r, nil
}

// IsNotFound reports a missing object.
func IsNotFound(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}

var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if ext, ok := mediaExtensions[contentType]; ok {
		return ext
	}
	if contentType != "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			return exts[0]
		}
	}
	return ".bin"
}
