package section

import (
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
)

// ChunkEntry records where one compressed row-band chunk sits in the payload
// section. It is a fixed size of 12 bytes and uses delta offset encoding for
// space efficiency.
//
// Delta Offset Encoding:
//   - First chunk of a layer: Stores the absolute offset from payload start
//   - Subsequent chunks: Stores delta = (current_offset - previous_offset)
//   - Decoding: Absolute offsets reconstructed by accumulating deltas
//
// Since a layer's chunks are laid out back to back, every delta equals the
// previous chunk's compressed length, which keeps deltas well inside uint32
// range even for multi-gigabyte stores.
type ChunkEntry struct {
	// CompressedOffset stores the delta offset (in bytes) from the previous
	// chunk's compressed offset.
	// First chunk: absolute offset from payload section start
	// Subsequent chunks: delta = (current_offset - previous_offset)
	// Decoder reconstructs: absolute_offset[i] = absolute_offset[i-1] + delta[i]
	//
	// Offset: 0, Size: 4 bytes (store as uint32 on disk)
	//
	// NOTE: After decoding, this field contains the ABSOLUTE offset (not
	// delta). The absolute offset can exceed uint32 range for large stores,
	// so we use int64 (not uint32) in memory. On disk, deltas are stored as
	// uint32 (4 bytes) to save space.
	CompressedOffset int64

	// CompressedLength is the byte length of the compressed chunk payload.
	//
	// Offset: 4, Size: 4 bytes
	CompressedLength uint32

	// RawLength is the byte length of the chunk payload after decompression,
	// before the plane encoding is undone. Readers use it to size
	// decompression buffers.
	//
	// Offset: 8, Size: 4 bytes
	RawLength uint32
}

// Bytes returns the chunk entry as a byte slice using the specified endian
// engine.
//
// It can only be used during encoding when the offset field still holds a
// delta that fits in uint32 range. After decoding, offsets are absolute and
// should not be written back using this method.
func (e *ChunkEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [ChunkEntrySize]byte
	engine.PutUint32(b[0:4], uint32(e.CompressedOffset)) //nolint: gosec
	engine.PutUint32(b[4:8], e.CompressedLength)
	engine.PutUint32(b[8:12], e.RawLength)

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 12 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 12)
func (e *ChunkEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], uint32(e.CompressedOffset)) //nolint: gosec
	engine.PutUint32(data[offset+4:offset+8], e.CompressedLength)
	engine.PutUint32(data[offset+8:offset+12], e.RawLength)

	return offset + ChunkEntrySize
}

// ParseChunkEntry parses a ChunkEntry from a byte slice.
//
// The returned entry still carries the on-disk delta offset; the caller
// accumulates deltas into absolute offsets while walking a chunk table.
//
// Parameters:
//   - data: Byte slice containing the entry (must be at least 12 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - ChunkEntry: Parsed entry
//   - error: ErrInvalidIndexEntrySize if data is too short
func ParseChunkEntry(data []byte, engine endian.EndianEngine) (ChunkEntry, error) {
	if len(data) < ChunkEntrySize {
		return ChunkEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return ChunkEntry{
		CompressedOffset: int64(engine.Uint32(data[0:4])),
		CompressedLength: engine.Uint32(data[4:8]),
		RawLength:        engine.Uint32(data[8:12]),
	}, nil
}
