// Package fileio is the file store boundary: it turns file locations into
// readable, seekable handles. Implementations cover local and in-memory
// filesystems (afero), S3-compatible object stores (minio) and a router that
// dispatches on the location scheme.
package fileio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when a location does not exist.
var ErrNotFound = errors.New("file not found")

// ErrUnsupportedScheme is returned for locations no store handles.
var ErrUnsupportedScheme = errors.New("unsupported location scheme")

// File is an open, byte-range readable file.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// InputFile is a handle to a file that can be opened for reading. Creating an
// InputFile does not touch the store.
type InputFile interface {
	Location() string
	Size(ctx context.Context) (int64, error)
	Open(ctx context.Context) (File, error)
}

// FileIO creates input files for locations.
type FileIO interface {
	NewInputFile(location string) (InputFile, error)
}

// Scheme returns the scheme of a location, or "" for a bare path.
func Scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	return location[:i]
}

// NewBytesInputFile returns an input file over data held in memory.
func NewBytesInputFile(location string, data []byte) InputFile {
	return &bytesInputFile{location: location, data: data}
}

type bytesInputFile struct {
	location string
	data     []byte
}

func (f *bytesInputFile) Location() string { return f.location }

func (f *bytesInputFile) Size(context.Context) (int64, error) {
	return int64(len(f.data)), nil
}

func (f *bytesInputFile) Open(context.Context) (File, error) {
	return nopCloser{bytes.NewReader(f.data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// ReadAll opens f and reads it fully.
func ReadAll(ctx context.Context, f InputFile) ([]byte, error) {
	r, err := f.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
