package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrDecryption wraps a failed batch decryption during reader construction.
	ErrDecryption = errors.New("decryption failed")

	// ErrInvalidUsage indicates a programming error, such as asking for the
	// backing file of a synthetic task.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrFileNotResolved is returned by lookups for locations that were not
	// part of the unit of work.
	ErrFileNotResolved = errors.New("file not resolved")

	// ErrReaderClosed is returned by file lookups on a closed reader.
	ErrReaderClosed = errors.New("reader closed")
)

// FileError is an I/O or decode failure attributed to one file.
type FileError struct {
	Location string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("error reading file %s: %v", e.Location, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// withLocation attributes err to location unless it already is.
func withLocation(location string, err error) error {
	var fe *FileError
	if errors.As(err, &fe) && fe.Location == location {
		return err
	}
	return &FileError{Location: location, Err: err}
}
