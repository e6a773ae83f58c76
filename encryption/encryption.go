// Package encryption turns encrypted input files into readable ones. Managers
// receive every file of a unit of work in one DecryptBatch call so that key
// material can be fetched from a key management service in a single round
// trip.
package encryption

import (
	"context"
	"errors"

	"github.com/hugr-lab/tablescan-go/fileio"
)

var (
	// ErrInvalidKeyMetadata indicates key metadata that cannot be parsed.
	ErrInvalidKeyMetadata = errors.New("invalid key metadata")

	// ErrDecrypt indicates ciphertext that failed authentication or a key
	// that could not be unwrapped.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrUnknownKey indicates a key id the key management service does not hold.
	ErrUnknownKey = errors.New("unknown key")
)

// EncryptedInputFile pairs a raw input file with the key metadata needed to
// decrypt it. Empty KeyMetadata marks a plaintext file.
type EncryptedInputFile struct {
	File        fileio.InputFile
	KeyMetadata []byte
}

// Location returns the raw file location.
func (e EncryptedInputFile) Location() string {
	return e.File.Location()
}

// Manager decrypts batches of files. The returned slice has one entry per
// input, in input order, each reporting the same location as its input.
// A failure for any file fails the whole batch.
type Manager interface {
	DecryptBatch(ctx context.Context, files []EncryptedInputFile) ([]fileio.InputFile, error)
}

// Plaintext is a Manager for unencrypted tables. It returns the raw files.
type Plaintext struct{}

// DecryptBatch implements Manager.
func (Plaintext) DecryptBatch(_ context.Context, files []EncryptedInputFile) ([]fileio.InputFile, error) {
	out := make([]fileio.InputFile, len(files))
	for i, f := range files {
		out[i] = f.File
	}
	return out, nil
}

// ManagerFunc adapts a function to Manager.
type ManagerFunc func(ctx context.Context, files []EncryptedInputFile) ([]fileio.InputFile, error)

// DecryptBatch implements Manager.
func (f ManagerFunc) DecryptBatch(ctx context.Context, files []EncryptedInputFile) ([]fileio.InputFile, error) {
	return f(ctx, files)
}
