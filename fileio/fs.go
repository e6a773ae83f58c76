package fileio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

// FS is a FileIO over an afero filesystem. Locations are paths, optionally
// prefixed with "file://".
type FS struct {
	fs afero.Fs
}

// NewFS returns a FileIO over fsys.
func NewFS(fsys afero.Fs) *FS {
	return &FS{fs: fsys}
}

// NewLocalFS returns a FileIO over the operating system filesystem.
func NewLocalFS() *FS {
	return NewFS(afero.NewOsFs())
}

// NewMemFS returns a FileIO over a fresh in-memory filesystem.
func NewMemFS() *FS {
	return NewFS(afero.NewMemMapFs())
}

// Fs returns the underlying filesystem.
func (f *FS) Fs() afero.Fs { return f.fs }

// NewInputFile implements FileIO.
func (f *FS) NewInputFile(location string) (InputFile, error) {
	if s := Scheme(location); s != "" && s != "file" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, location)
	}
	return &fsInputFile{fs: f.fs, location: location, path: strings.TrimPrefix(location, "file://")}, nil
}

// WriteFile stores data at location, creating parent directories.
func (f *FS) WriteFile(location string, data []byte) error {
	path := strings.TrimPrefix(location, "file://")
	if i := strings.LastIndex(path, "/"); i > 0 {
		if err := f.fs.MkdirAll(path[:i], 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(f.fs, path, data, 0o644)
}

type fsInputFile struct {
	fs       afero.Fs
	location string
	path     string
}

func (f *fsInputFile) Location() string { return f.location }

func (f *fsInputFile) Size(context.Context) (int64, error) {
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return 0, wrapNotExist(f.location, err)
	}
	return info.Size(), nil
}

func (f *fsInputFile) Open(context.Context) (File, error) {
	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, wrapNotExist(f.location, err)
	}
	return file, nil
}

func wrapNotExist(location string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return err
}
