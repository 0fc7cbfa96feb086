package section

import (
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/format"
)

// LayerEntry records the shape and chunk table location of one stored plane.
// It is a fixed size of 24 bytes.
type LayerEntry struct {
	// Layer identifies the plane kind (Sci, Rms, Flg, Wgt, Bkg, Seg).
	//
	// Offset: 0, Size: 1 byte
	Layer format.LayerType

	// Pixel is the pixel type of the stored plane. It is redundant with the
	// layer type's canonical pixel type and exists so a reader can size
	// buffers without consulting the layer mapping.
	//
	// Offset: 1, Size: 1 byte
	Pixel format.PixelType

	// Width is the plane width in pixels.
	//
	// Offset: 4, Size: 4 bytes
	Width uint32

	// Height is the plane height in pixels.
	//
	// Offset: 8, Size: 4 bytes
	Height uint32

	// ChunkCount is the number of row-band chunks the plane was split into.
	//
	// Offset: 12, Size: 4 bytes
	ChunkCount uint32

	// ChunkTableOffset is the byte offset of this layer's chunk entry table,
	// relative to the start of the index section.
	//
	// Offset: 16, Size: 4 bytes
	ChunkTableOffset uint32
}

// Bytes returns the layer entry as a byte slice using the specified endian
// engine.
func (e *LayerEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [LayerEntrySize]byte
	b[0] = uint8(e.Layer)
	b[1] = uint8(e.Pixel)
	// bytes 2-3 reserved, zero
	engine.PutUint32(b[4:8], e.Width)
	engine.PutUint32(b[8:12], e.Height)
	engine.PutUint32(b[12:16], e.ChunkCount)
	engine.PutUint32(b[16:20], e.ChunkTableOffset)
	// bytes 20-23 reserved, zero

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 24 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 24)
func (e *LayerEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	copy(data[offset:offset+LayerEntrySize], e.Bytes(engine))

	return offset + LayerEntrySize
}

// ParseLayerEntry parses a LayerEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the entry (must be at least 24 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - LayerEntry: Parsed entry
//   - error: ErrInvalidIndexEntrySize if data is too short, or
//     ErrInvalidHeaderFlags for an unknown layer or pixel type
func ParseLayerEntry(data []byte, engine endian.EndianEngine) (LayerEntry, error) {
	if len(data) < LayerEntrySize {
		return LayerEntry{}, errs.ErrInvalidIndexEntrySize
	}

	e := LayerEntry{
		Layer:            format.LayerType(data[0]),
		Pixel:            format.PixelType(data[1]),
		Width:            engine.Uint32(data[4:8]),
		Height:           engine.Uint32(data[8:12]),
		ChunkCount:       engine.Uint32(data[12:16]),
		ChunkTableOffset: engine.Uint32(data[16:20]),
	}

	if !e.Layer.IsValid() || !e.Pixel.IsValid() {
		return LayerEntry{}, errs.ErrInvalidHeaderFlags
	}

	return e, nil
}
