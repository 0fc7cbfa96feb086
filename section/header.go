package section

import (
	"github.com/astrofold/shearkit/errs"
)

// StoreHeader represents the fixed-size header section at the start of an
// exposure store.
type StoreHeader struct {
	// Version is the store format version, currently always FormatVersion.
	Version uint8 // byte offset 4
	// DetectorCount is the number of detectors stored, max 65535 in practice
	// (the VIS focal plane has 36 or 144).
	DetectorCount uint32 // byte offset 8-11
	// ChunkRows is the row-band height planes were chunked with.
	ChunkRows uint32 // byte offset 12-15
	// MetadataOffset is the byte offset to the start of the JSON metadata
	// section. It sits right after the header.
	MetadataOffset uint64 // byte offset 16-23
	// IndexOffset is the byte offset to the start of the index section
	// (detector entries, layer entries, chunk entries).
	IndexOffset uint64 // byte offset 24-31
	// PayloadOffset is the byte offset to the start of the compressed chunk
	// payload section.
	PayloadOffset uint64 // byte offset 32-39
	// MetadataChecksum is the xxhash64 digest of the raw metadata section.
	MetadataChecksum uint64 // byte offset 40-47

	// Flag is a packed field for various flags and the magic number.
	Flag StoreFlag // byte offset 0-3
}

// NewStoreHeader creates a new StoreHeader with default flags.
// The counts and section offsets are set when the encoder finishes.
func NewStoreHeader() *StoreHeader {
	return &StoreHeader{
		Version:        FormatVersion,
		Flag:           NewStoreFlag(),
		MetadataOffset: HeaderSize,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 48 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 48 bytes, flag validation
//     errors, or ErrUnsupportedVersion
func (h *StoreHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// Parse options first to determine endianness (always little-endian for
	// the Options field itself)
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.Encoding = data[2]
	h.Flag.Codec = data[3]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	h.Version = data[4]
	if h.Version != FormatVersion {
		return errs.ErrUnsupportedVersion
	}

	engine := h.Flag.GetEndianEngine()

	h.DetectorCount = engine.Uint32(data[8:12])
	h.ChunkRows = engine.Uint32(data[12:16])
	h.MetadataOffset = engine.Uint64(data[16:24])
	h.IndexOffset = engine.Uint64(data[24:32])
	h.PayloadOffset = engine.Uint64(data[32:40])
	h.MetadataChecksum = engine.Uint64(data[40:48])

	return nil
}

// Bytes serializes the StoreHeader into a byte slice.
func (h *StoreHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	engine.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.Encoding
	b[3] = h.Flag.Codec
	b[4] = h.Version
	// bytes 5-7 reserved, zero
	engine.PutUint32(b[8:12], h.DetectorCount)
	engine.PutUint32(b[12:16], h.ChunkRows)
	engine.PutUint64(b[16:24], h.MetadataOffset)
	engine.PutUint64(b[24:32], h.IndexOffset)
	engine.PutUint64(b[32:40], h.PayloadOffset)
	engine.PutUint64(b[40:48], h.MetadataChecksum)

	return b
}

// ParseStoreHeader parses a StoreHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 48 bytes)
//
// Returns:
//   - StoreHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrUnsupportedVersion, or flag validation
//     errors
func ParseStoreHeader(data []byte) (StoreHeader, error) {
	if len(data) < HeaderSize {
		return StoreHeader{}, errs.ErrInvalidHeaderSize
	}

	h := StoreHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return StoreHeader{}, err
	}

	return h, nil
}
