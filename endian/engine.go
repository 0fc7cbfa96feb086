// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines the standard library's ByteOrder and AppendByteOrder interfaces
// into a single EndianEngine so plane codecs and section structs can take one
// engine value for both in-place writes and appends.
//
// Two byte orders appear in this repository: FITS payloads and binary-table
// rows are big-endian by standard, while the exposure store defaults to the
// little-endian engine (matching the common host order):
//
//	engine := endian.GetBigEndianEngine()    // FITS HDU payloads
//	engine := endian.GetLittleEndianEngine() // exposure store sections
//
// All returned engines are immutable, stateless, and safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it, so an engine can
// be compared directly against those package values.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness determines the host's native byte order from a fixed
// integer value.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. A little-endian host stores the LSB (0x00) first,
	// a big-endian host the MSB (0x01).
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// IsNativeBigEndian reports whether the host is big-endian.
func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
// Plane codecs use this to pick bulk-copy fast paths.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
