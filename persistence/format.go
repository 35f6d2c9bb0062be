package persistence

import "errors"

const (
	// MagicNumber identifies bundle files (ASCII: "EVB1")
	MagicNumber = 0x45564231
	// Version is the current envelope format version (v1.0.0)
	Version = 0x00010000

	// fixedHeaderSize covers magic, version, compression and codec-name-len.
	fixedHeaderSize = 4 + 4 + 1 + 1
	// trailerHeaderSize covers payload-len and crc32.
	trailerHeaderSize = 8 + 4
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrTruncated          = errors.New("truncated bundle")
)

// Header describes an encoded bundle.
type Header struct {
	Magic       uint32
	Version     uint32
	Compression Compression
	Codec       string
	PayloadLen  uint64
	Checksum    uint32
}

// Size returns the encoded header length in bytes.
func (h Header) Size() int {
	return fixedHeaderSize + len(h.Codec) + trailerHeaderSize
}
