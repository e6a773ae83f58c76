// Package serialize encodes values shipped between planners and executors:
// MessagePack for structure, ZStandard for size.
package serialize

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmpty is returned when decoding an empty payload.
var ErrEmpty = errors.New("empty payload")

var (
	codecOnce    sync.Once
	compressor   *Compressor
	decompressor *Decompressor
	codecErr     error
)

func codec() (*Compressor, *Decompressor, error) {
	codecOnce.Do(func() {
		if compressor, codecErr = NewCompressor(); codecErr != nil {
			return
		}
		decompressor, codecErr = NewDecompressor()
	})
	return compressor, decompressor, codecErr
}

// Encode serializes v into MessagePack.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return data, nil
}

// Decode deserializes MessagePack data into v, which must be a pointer.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return nil
}

// Marshal encodes v as MessagePack and compresses the result.
func Marshal(v any) ([]byte, error) {
	c, _, err := codec()
	if err != nil {
		return nil, err
	}
	data, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return c.Compress(data), nil
}

// Unmarshal reverses Marshal.
func Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	_, d, err := codec()
	if err != nil {
		return err
	}
	raw, err := d.Decompress(data)
	if err != nil {
		return err
	}
	return Decode(raw, v)
}
