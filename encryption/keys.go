package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/hugr-lab/tablescan-go/internal/serialize"
)

// KeySize is the length of data and master keys.
const KeySize = 32

// KeyMetadata is the decoded form of a file's key metadata blob.
type KeyMetadata struct {
	KeyID      string `msgpack:"kid"`
	WrappedKey []byte `msgpack:"wk"`
	AADPrefix  []byte `msgpack:"aad,omitempty"`
}

// Encode serializes the metadata.
func (m KeyMetadata) Encode() ([]byte, error) {
	return serialize.Encode(m)
}

// ParseKeyMetadata decodes a key metadata blob.
func ParseKeyMetadata(data []byte) (KeyMetadata, error) {
	var m KeyMetadata
	if err := serialize.Decode(data, &m); err != nil {
		return KeyMetadata{}, fmt.Errorf("%w: %v", ErrInvalidKeyMetadata, err)
	}
	if m.KeyID == "" || len(m.WrappedKey) == 0 {
		return KeyMetadata{}, fmt.Errorf("%w: missing key id or wrapped key", ErrInvalidKeyMetadata)
	}
	return m, nil
}

// WrappedKey is a data key encrypted under a master key.
type WrappedKey struct {
	KeyID   string
	Wrapped []byte
}

// KeyManagementClient unwraps data keys. UnwrapKeys returns one plaintext key
// per input, in input order.
type KeyManagementClient interface {
	UnwrapKeys(ctx context.Context, keys []WrappedKey) ([][]byte, error)
}

// LocalKMS is a KeyManagementClient holding master keys in memory. Key
// encryption keys are derived from master keys with HKDF-SHA256.
type LocalKMS struct {
	mu   sync.RWMutex
	keks map[string][]byte
}

// NewLocalKMS returns a KMS over the given master keys, keyed by id. Every
// master key must be KeySize bytes.
func NewLocalKMS(masterKeys map[string][]byte) (*LocalKMS, error) {
	k := &LocalKMS{keks: make(map[string][]byte, len(masterKeys))}
	for id, mk := range masterKeys {
		if err := k.AddMasterKey(id, mk); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// AddMasterKey registers a master key.
func (k *LocalKMS) AddMasterKey(id string, masterKey []byte) error {
	if len(masterKey) != KeySize {
		return fmt.Errorf("master key %q must be %d bytes, got %d", id, KeySize, len(masterKey))
	}
	kek := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte("tablescan kek "+id)), kek); err != nil {
		return fmt.Errorf("derive key encryption key: %w", err)
	}
	k.mu.Lock()
	k.keks[id] = kek
	k.mu.Unlock()
	return nil
}

// WrapKey encrypts a data key under master key id.
func (k *LocalKMS) WrapKey(id string, dataKey []byte) ([]byte, error) {
	kek, err := k.kek(id)
	if err != nil {
		return nil, err
	}
	return seal(kek, dataKey, []byte(id))
}

// UnwrapKeys implements KeyManagementClient.
func (k *LocalKMS) UnwrapKeys(_ context.Context, keys []WrappedKey) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, wk := range keys {
		kek, err := k.kek(wk.KeyID)
		if err != nil {
			return nil, err
		}
		dek, err := unseal(kek, wk.Wrapped, []byte(wk.KeyID))
		if err != nil {
			return nil, fmt.Errorf("unwrap key %q: %w", wk.KeyID, err)
		}
		out[i] = dek
	}
	return out, nil
}

func (k *LocalKMS) kek(id string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	kek, ok := k.keks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, id)
	}
	return kek, nil
}

// Encryptor produces encrypted file contents and matching key metadata.
type Encryptor struct {
	kms   *LocalKMS
	keyID string
}

// NewEncryptor returns an encryptor wrapping fresh data keys under keyID.
func NewEncryptor(kms *LocalKMS, keyID string) *Encryptor {
	return &Encryptor{kms: kms, keyID: keyID}
}

// Encrypt encrypts plaintext under a new random data key. It returns the
// file contents and the key metadata to store alongside the file.
func (e *Encryptor) Encrypt(plaintext []byte) (ciphertext, keyMetadata []byte, err error) {
	dek := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, nil, err
	}
	aad := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, aad); err != nil {
		return nil, nil, err
	}
	wrapped, err := e.kms.WrapKey(e.keyID, dek)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, err = seal(dek, plaintext, aad)
	if err != nil {
		return nil, nil, err
	}
	keyMetadata, err = KeyMetadata{KeyID: e.keyID, WrappedKey: wrapped, AADPrefix: aad}.Encode()
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, keyMetadata, nil
}

// seal encrypts with AES-GCM and returns nonce||ciphertext.
func seal(key, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

func unseal(key, blob, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes", KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
