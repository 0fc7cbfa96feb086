package compress

// ZstdCompressor provides Zstandard compression for pixel chunk payloads.
//
// This compressor is designed for scenarios where compression ratio is more
// important than compression speed, making it ideal for:
//   - Archival of full VIS exposures (36 detectors x 6 layers)
//   - Network transfer of exposure stores between processing nodes
//   - Delta-encoded flag and segmentation planes, which shrink dramatically
//
// Performance characteristics:
//   - Compression: ~5-20 ns/byte (depending on compression level)
//   - Decompression: ~2-5 ns/byte
//   - Compression ratio: 10:1 or better for delta-encoded integer planes,
//     1.1-1.5:1 for noisy float science pixels
//   - Memory usage: Moderate (pooled encoder/decoder instances)
//
// The default implementation is the pure-Go klauspost encoder, so plain
// `go build` works on every host. Building with `-tags cgozstd` swaps in the
// cgo gozstd bindings for higher throughput at the same wire format.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(chunkPayload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
