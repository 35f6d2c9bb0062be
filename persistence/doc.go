// Package persistence serializes trained verifiers into self-describing,
// checksummed binary bundles and moves them through a blobstore.Store.
//
// # Envelope
//
// Every bundle starts with a fixed little-endian header:
//
//	[magic u32 "EVB1"][version u32][compression u8][codec-name-len u8]
//	[codec-name][payload-len u64][crc32 u32][payload]
//
// The payload is the codec-encoded Bundle, compressed with the algorithm named
// in the header. The CRC32 (IEEE) covers the stored payload bytes, so
// corruption is detected before decompression.
package persistence
