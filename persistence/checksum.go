package persistence

import (
	"fmt"
	"hash/crc32"
)

// Checksum utilities for bundle integrity verification.
//
// CRC32 is NOT cryptographically secure. It detects accidental corruption
// in storage or transfer, not tampering.

// CRC32Table is the IEEE polynomial table for checksum computation.
var CRC32Table = crc32.MakeTable(crc32.IEEE)

// CalculateChecksum calculates CRC32 checksum of data.
func CalculateChecksum(data []byte) uint32 {
	return crc32.Checksum(data, CRC32Table)
}

// VerifyChecksum verifies that data matches the expected checksum.
func VerifyChecksum(data []byte, expected uint32) error {
	actual := CalculateChecksum(data)
	if actual != expected {
		return fmt.Errorf("%w: expected %08x, got %08x", ErrChecksumMismatch, expected, actual)
	}
	return nil
}
