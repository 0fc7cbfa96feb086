// Package compress provides compression and decompression codecs for encoded
// pixel chunk payloads.
//
// The exposure store applies a two-stage strategy to every detector layer:
//
//  1. Encoding: exploits per-plane structure (raw words for floats,
//     zigzag+varint deltas for integer flags and segmentation IDs)
//  2. Compression: further reduces encoded chunks using general-purpose
//     algorithms
//
// This package implements the second stage, supporting multiple algorithms:
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are stateless values obtained from GetCodec or CreateCodec and are
// safe for concurrent use; pooled encoder instances live inside the package.
//
// # Algorithm Selection Guide
//
// Detector layers compress very differently. Science, noise, weight, and
// background planes hold noisy IEEE 754 floats whose mantissa bits defeat
// dictionary coders, so gains there are modest. Flag and segmentation planes
// are dominated by runs of identical integers; after delta encoding they are
// mostly zero bytes and collapse under any codec.
//
// | Workload                          | Recommended | Reason                      |
// |-----------------------------------|-------------|-----------------------------|
// | Archival of full exposures        | Zstd        | Best compression ratio      |
// | Write-once, stamp-read-many       | S2          | Balanced speed and ratio    |
// | Interactive stamp extraction      | LZ4         | Fastest decompression       |
// | Already-compressed archives       | None        | No double compression       |
//
// # Error Handling
//
// Compression errors are rare. Decompression errors indicate corrupted data
// or a codec mismatch against the store header, and are wrapped with context
// for debugging. Chunk-level integrity is ultimately verified by the store's
// metadata checksum, not by per-codec CRCs.
//
// # Integration with the Exposure Store
//
// The exposure package uses this package internally. Configure compression
// via encoder options:
//
//	encoder, _ := exposure.NewEncoder(
//	    exposure.WithCompression(format.CompressionZstd),
//	)
//
// Decoders detect the correct algorithm from the store header; no
// configuration is needed on the read path.
package compress
