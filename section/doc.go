// Package section defines the low-level binary structures and constants of
// the exposure store format.
//
// It handles binary serialization/deserialization of the store header, flag
// word, and index entries, ensuring a consistent byte-level representation
// across platforms. All structures are fixed-size with explicit byte-offset
// layouts, enabling O(1) index lookups and single-pass encoding.
//
// # Store Structure
//
// An exposure store consists of fixed-size sections followed by the
// compressed chunk payloads:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (48 bytes, fixed)                                │
//	│  - Flag (4 bytes): magic, endianness, encoding, codec   │
//	│  - Version, DetectorCount, ChunkRows                    │
//	│  - Metadata / index / payload offsets                   │
//	│  - xxhash64 checksum of the metadata section            │
//	├─────────────────────────────────────────────────────────┤
//	│ Metadata (variable)                                     │
//	│  - JSON: detector names, per-detector FITS headers,     │
//	│    WCS headers, global header                           │
//	├─────────────────────────────────────────────────────────┤
//	│ Index (fixed per entry)                                 │
//	│  - DetectorEntry × N (16 bytes each)                    │
//	│  - per detector: LayerEntry × M (24 bytes each)         │
//	│  - per layer: ChunkEntry × K (12 bytes each)            │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (variable)                                      │
//	│  - Encoded + compressed row-band chunks, back to back   │
//	└─────────────────────────────────────────────────────────┘
//
// # Flag Format
//
// The flag word packs into the first 4 header bytes:
//
//	Byte 0-1 (Options, 16 bits, always little-endian on disk):
//	  Bit 1: Endianness (0=little-endian, 1=big-endian)
//	  Bits 4-15: Magic number (0xE510)
//
//	Byte 2: Integer-layer encoding (0x1=Raw, 0x2=Delta)
//	Byte 3: Chunk compression (0x1=None, 0x2=Zstd, 0x3=S2, 0x4=LZ4)
//
// All other multi-byte fields use the byte order the endianness bit selects.
//
// # Delta Offset Encoding
//
// Chunk entries store delta offsets instead of absolute payload offsets; the
// decoder reconstructs absolute offsets by accumulating deltas while walking
// a layer's chunk table. Since chunks of a layer are contiguous, each delta
// is simply the previous chunk's compressed length.
//
// Most users should interact with the exposure package instead of using
// section directly.
package section
