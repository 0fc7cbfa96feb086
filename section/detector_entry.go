package section

import (
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
)

// DetectorEntry records where one detector's layer entry table sits in the
// index section. It is a fixed size of 16 bytes.
//
// The human-readable detector name ("1-1", "3-2.E") lives in the JSON
// metadata section; the binary index refers to it by hash only.
type DetectorEntry struct {
	// DetectorID is the xxHash64 hash of the detector name string.
	//
	// Offset: 0, Size: 8 bytes
	DetectorID uint64

	// EntryOffset is the byte offset of this detector's layer entry table,
	// relative to the start of the index section.
	//
	// Offset: 8, Size: 4 bytes
	EntryOffset uint32

	// LayerCount is the number of layers stored for this detector.
	//
	// Offset: 12, Size: 2 bytes (store as uint16 on disk)
	//
	// NOTE: In memory, we use int to avoid frequent type conversions.
	// A detector carries at most the six known layer types.
	LayerCount int
}

// Bytes returns the detector entry as a byte slice using the specified
// endian engine.
func (e *DetectorEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [DetectorEntrySize]byte // stack allocation, it's faster than heap allocation
	engine.PutUint64(b[0:8], e.DetectorID)
	engine.PutUint32(b[8:12], e.EntryOffset)
	engine.PutUint16(b[12:14], uint16(e.LayerCount)) //nolint: gosec
	// bytes 14-15 reserved, zero

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// This is the most efficient method when writing multiple entries
// sequentially.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 16 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 16)
func (e *DetectorEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint64(data[offset:offset+8], e.DetectorID)
	engine.PutUint32(data[offset+8:offset+12], e.EntryOffset)
	engine.PutUint16(data[offset+12:offset+14], uint16(e.LayerCount)) //nolint: gosec
	data[offset+14] = 0
	data[offset+15] = 0

	return offset + DetectorEntrySize
}

// ParseDetectorEntry parses a DetectorEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the entry (must be at least 16 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - DetectorEntry: Parsed entry
//   - error: ErrInvalidIndexEntrySize if data is too short
func ParseDetectorEntry(data []byte, engine endian.EndianEngine) (DetectorEntry, error) {
	if len(data) < DetectorEntrySize {
		return DetectorEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return DetectorEntry{
		DetectorID:  engine.Uint64(data[0:8]),
		EntryOffset: engine.Uint32(data[8:12]),
		LayerCount:  int(engine.Uint16(data[12:14])),
	}, nil
}
