package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// ErrCorrupt marks a record whose checksum or encoding is broken.
var ErrCorrupt = errors.New("corrupt record")

// encMode uses Core Deterministic Encoding so equal values produce
// identical bytes, with times as RFC 3339 text.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

// Package-level zstd coders; both are safe for concurrent EncodeAll
// and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err = opts.EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// encode turns v into a compressed payload and its checksum.
func encode(v any) (payload, sum []byte, err error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode cbor: %w", err)
	}
	payload = zstdEncoder.EncodeAll(raw, nil)
	h := blake3.Sum256(payload)
	return payload, h[:], nil
}

// decode verifies sum and decodes payload into v.
func decode(payload, sum []byte, v any) error {
	h := blake3.Sum256(payload)
	if !bytes.Equal(h[:], sum) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}
	if err := decMode.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode cbor: %v", ErrCorrupt, err)
	}
	return nil
}
