// Package assets serves the static front-end bundle from a local directory or an S3 bucket.
package assets

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/isometry/traffic-dash/internal/controllers/aws"
	"github.com/pkg/errors"
)

// Dir returns the local directory dir as an asset source. Lookups are confined to dir:
// a symlink or ".." that leads outside of it reads as a missing file.
func Dir(dir string) (fs.FS, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open asset directory")
	}
	return rootFS{root.FS()}, nil
}

type rootFS struct {
	fs.FS
}

func (r rootFS) Open(name string) (fs.File, error) {
	f, err := r.FS.Open(name)
	if err == nil {
		return f, nil
	}
	// OS failures keep their cause; anything else is the root refusing the path.
	var errno syscall.Errno
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &errno) {
		return nil, err
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ObjectGetter reads a single object from a bucket.
type ObjectGetter interface {
	GetS3Object(ctx context.Context, bucket, key string) (*aws.Object, error)
}

// S3 is an asset source backed by the objects under Prefix in Bucket.
// It exposes files only: directories do not exist in it.
type S3 struct {
	ctx    context.Context
	getter ObjectGetter
	bucket string
	prefix string
}

// NewS3 returns an S3 asset source.
func NewS3(getter ObjectGetter, bucket, prefix string) *S3 {
	return &S3{
		ctx:    context.Background(),
		getter: getter,
		bucket: bucket,
		prefix: prefix,
	}
}

// WithContext returns a copy of the source whose reads are bound to ctx.
func (s *S3) WithContext(ctx context.Context) fs.FS {
	c := *s
	c.ctx = ctx
	return &c
}

// Open implements fs.FS.
func (s *S3) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	obj, err := s.getter.GetS3Object(s.ctx, s.bucket, path.Join(s.prefix, name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &s3File{
		Reader: bytes.NewReader(obj.Body),
		info: s3FileInfo{
			name:    path.Base(name),
			size:    int64(len(obj.Body)),
			modTime: obj.LastModified,
		},
	}, nil
}

type s3File struct {
	*bytes.Reader
	info s3FileInfo
}

func (f *s3File) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *s3File) Close() error               { return nil }

type s3FileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (i s3FileInfo) Name() string       { return i.name }
func (i s3FileInfo) Size() int64        { return i.size }
func (i s3FileInfo) Mode() fs.FileMode  { return 0o444 }
func (i s3FileInfo) ModTime() time.Time { return i.modTime }
func (i s3FileInfo) IsDir() bool        { return false }
func (i s3FileInfo) Sys() any           { return nil }
