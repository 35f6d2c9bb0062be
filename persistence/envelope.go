package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/eigenverify/codec"
)

// Options controls how bundles are encoded.
type Options struct {
	Codec       codec.Codec
	Compression Compression
}

// Option configures Encode and Save.
type Option func(*Options)

// WithCodec selects the payload codec. Nil keeps codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c != nil {
			o.Codec = c
		}
	}
}

// WithCompression selects the payload compression.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// DefaultOptions returns go-json with ZSTD compression.
func DefaultOptions() Options {
	return Options{
		Codec:       codec.Default,
		Compression: CompressionZSTD,
	}
}

// Encode validates b and serializes it into a checksummed envelope.
func Encode(b *Bundle, opts ...Option) ([]byte, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	name := o.Codec.Name()
	if len(name) == 0 || len(name) > 255 {
		return nil, fmt.Errorf("%w: codec name %q", ErrUnknownCodec, name)
	}

	raw, err := o.Codec.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode bundle with %s: %w", name, err)
	}
	payload, err := compress(raw, o.Compression)
	if err != nil {
		return nil, fmt.Errorf("persistence: compress bundle with %s: %w", o.Compression, err)
	}

	h := Header{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: o.Compression,
		Codec:       name,
		PayloadLen:  uint64(len(payload)),
		Checksum:    CalculateChecksum(payload),
	}

	out := make([]byte, 0, h.Size()+len(payload))
	out = binary.LittleEndian.AppendUint32(out, h.Magic)
	out = binary.LittleEndian.AppendUint32(out, h.Version)
	out = append(out, byte(h.Compression), byte(len(h.Codec)))
	out = append(out, h.Codec...)
	out = binary.LittleEndian.AppendUint64(out, h.PayloadLen)
	out = binary.LittleEndian.AppendUint32(out, h.Checksum)
	out = append(out, payload...)
	return out, nil
}

// ReadHeader parses and validates the envelope header without touching the
// payload.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < fixedHeaderSize {
		return h, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	h.Magic = binary.LittleEndian.Uint32(data[0:])
	if h.Magic != MagicNumber {
		return h, fmt.Errorf("%w: %08x", ErrInvalidMagic, h.Magic)
	}
	h.Version = binary.LittleEndian.Uint32(data[4:])
	if h.Version != Version {
		return h, fmt.Errorf("%w: %08x", ErrInvalidVersion, h.Version)
	}
	h.Compression = Compression(data[8])
	if h.Compression > CompressionZSTD {
		return h, fmt.Errorf("%w: %d", ErrUnknownCompression, data[8])
	}

	nameLen := int(data[9])
	if len(data) < fixedHeaderSize+nameLen+trailerHeaderSize {
		return h, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, fixedHeaderSize+nameLen+trailerHeaderSize, len(data))
	}
	h.Codec = string(data[fixedHeaderSize : fixedHeaderSize+nameLen])

	off := fixedHeaderSize + nameLen
	h.PayloadLen = binary.LittleEndian.Uint64(data[off:])
	h.Checksum = binary.LittleEndian.Uint32(data[off+8:])
	return h, nil
}

// Decode parses an envelope produced by Encode. The checksum is verified
// before the payload is decompressed or decoded.
func Decode(data []byte) (*Bundle, Header, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, h, err
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	payload := data[h.Size():]
	if uint64(len(payload)) != h.PayloadLen {
		return nil, h, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrTruncated, len(payload), h.PayloadLen)
	}
	if err := VerifyChecksum(payload, h.Checksum); err != nil {
		return nil, h, err
	}

	raw, err := decompress(payload, h.Compression)
	if err != nil {
		return nil, h, fmt.Errorf("persistence: decompress %s payload: %w", h.Compression, err)
	}

	var b Bundle
	if err := c.Unmarshal(raw, &b); err != nil {
		return nil, h, fmt.Errorf("persistence: decode %s payload: %w", h.Codec, err)
	}
	if err := b.Validate(); err != nil {
		return nil, h, err
	}
	return &b, h, nil
}
