package section

const (
	// Bit masks for the Options flag word
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicStoreV1Opt is the version 1 magic number of the exposure store
	// format, carried in bits 4-15 of the Options flag word.
	MagicStoreV1Opt = 0xE510

	// FormatVersion is the store format version this build writes and reads.
	FormatVersion = 1
)

// Fixed section sizes in the store file.
const (
	HeaderSize        = 48 // fixed store header size in bytes
	DetectorEntrySize = 16 // fixed detector index entry size in bytes
	LayerEntrySize    = 24 // fixed layer index entry size in bytes
	ChunkEntrySize    = 12 // fixed chunk index entry size in bytes

	// DefaultChunkRows is the default row-band height of a chunk. At the
	// 4096-pixel detector width a 256-row float band is 4 MiB raw.
	DefaultChunkRows = 256
)
