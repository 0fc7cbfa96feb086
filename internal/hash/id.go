// Package hash provides the xxHash64 helpers used for detector name IDs,
// store metadata checksums, and short provenance digests.
package hash

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
// Detector names hash to stable IDs with it.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum64 computes the xxHash64 of the given bytes.
// The exposure store checksums its metadata payload with it.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Hex returns the xxHash64 of data as a 16-character lowercase hex string.
// Provenance header values (method hashes, seed digests) use this form.
func Hex(data []byte) string {
	var b [8]byte
	sum := xxhash.Sum64(data)
	b[0] = byte(sum >> 56)
	b[1] = byte(sum >> 48)
	b[2] = byte(sum >> 40)
	b[3] = byte(sum >> 32)
	b[4] = byte(sum >> 24)
	b[5] = byte(sum >> 16)
	b[6] = byte(sum >> 8)
	b[7] = byte(sum)

	return hex.EncodeToString(b[:])
}
