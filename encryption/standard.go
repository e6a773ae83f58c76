package encryption

import (
	"context"
	"crypto/aes"
	"fmt"
	"log/slog"

	"github.com/hugr-lab/tablescan-go/fileio"
)

// gcmOverhead is the nonce plus tag length added to every encrypted file.
const gcmOverhead = 12 + aes.BlockSize

// Standard is a Manager for files encrypted with AES-GCM under per-file data
// keys. Data keys are unwrapped by the KMS in one call per batch; file
// contents are decrypted when a file is opened.
type Standard struct {
	kms    KeyManagementClient
	logger *slog.Logger
}

// NewStandard returns a manager backed by kms. A nil logger uses slog.Default().
func NewStandard(kms KeyManagementClient, logger *slog.Logger) *Standard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Standard{kms: kms, logger: logger}
}

// DecryptBatch implements Manager. Files with empty key metadata are returned
// unchanged.
func (s *Standard) DecryptBatch(ctx context.Context, files []EncryptedInputFile) ([]fileio.InputFile, error) {
	out := make([]fileio.InputFile, len(files))

	var (
		wrapped []WrappedKey
		pending []int
		metas   []KeyMetadata
	)
	for i, f := range files {
		if len(f.KeyMetadata) == 0 {
			out[i] = f.File
			continue
		}
		m, err := ParseKeyMetadata(f.KeyMetadata)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Location(), err)
		}
		wrapped = append(wrapped, WrappedKey{KeyID: m.KeyID, Wrapped: m.WrappedKey})
		pending = append(pending, i)
		metas = append(metas, m)
	}
	if len(wrapped) == 0 {
		return out, nil
	}

	s.logger.Debug("Unwrapping data keys", "files", len(files), "keys", len(wrapped))
	keys, err := s.kms.UnwrapKeys(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(keys) != len(wrapped) {
		return nil, fmt.Errorf("%w: kms returned %d keys for %d requests", ErrDecrypt, len(keys), len(wrapped))
	}

	for j, i := range pending {
		out[i] = &decryptedInputFile{raw: files[i].File, key: keys[j], aad: metas[j].AADPrefix}
	}
	return out, nil
}

type decryptedInputFile struct {
	raw fileio.InputFile
	key []byte
	aad []byte
}

func (f *decryptedInputFile) Location() string { return f.raw.Location() }

func (f *decryptedInputFile) Size(ctx context.Context) (int64, error) {
	n, err := f.raw.Size(ctx)
	if err != nil {
		return 0, err
	}
	if n < gcmOverhead {
		return 0, fmt.Errorf("%w: %s is too short", ErrDecrypt, f.Location())
	}
	return n - gcmOverhead, nil
}

func (f *decryptedInputFile) Open(ctx context.Context) (fileio.File, error) {
	blob, err := fileio.ReadAll(ctx, f.raw)
	if err != nil {
		return nil, err
	}
	plain, err := unseal(f.key, blob, f.aad)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Location(), err)
	}
	return fileio.NewBytesInputFile(f.Location(), plain).Open(ctx)
}
