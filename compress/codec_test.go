package compress

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/format"
)

// deltaLikePayload mimics a delta-encoded flag plane: long zero runs with
// occasional varint spikes.
func deltaLikePayload(size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i += 97 {
		data[i] = byte(i % 251)
	}

	return data
}

// floatLikePayload mimics a raw science plane: noisy little-endian float32
// words around a sky background level.
func floatLikePayload(count int) []byte {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 0, count*4)
	for i := 0; i < count; i++ {
		v := float32(100.0 + rng.NormFloat64()*3.5)
		bits := math.Float32bits(v)
		data = append(data, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}

	return data
}

func allCompressionTypes() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"delta-like": deltaLikePayload(64 * 1024),
		"float-like": floatLikePayload(16 * 1024),
		"tiny":       {0x42},
	}

	for _, ct := range allCompressionTypes() {
		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				codec, err := GetCodec(ct)
				require.NoError(t, err)

				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.True(t, bytes.Equal(payload, decompressed),
					"round trip mismatch for %s on %s payload", ct, name)
			})
		}
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, ct := range allCompressionTypes() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		decompressed, err := codec.Decompress(compressed)
		require.NoError(t, err)
		assert.Empty(t, decompressed)
	}
}

func TestDeltaPayloadCompresses(t *testing.T) {
	payload := deltaLikePayload(256 * 1024)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)
		assert.Less(t, len(compressed), len(payload)/4,
			"%s should collapse zero-run payloads", ct)
	}
}

func TestNoOpSharesInput(t *testing.T) {
	codec := NewNoOpCompressor()
	payload := []byte{1, 2, 3}

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)
	assert.Equal(t, &payload[0], &compressed[0], "no-op must not copy")
}

func TestDecompressCorruptedData(t *testing.T) {
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0x02, 0x03}

	zstdCodec := NewZstdCompressor()
	_, err := zstdCodec.Decompress(garbage)
	assert.Error(t, err, "zstd should reject data without a frame header")

	s2Codec := NewS2Compressor()
	_, err = s2Codec.Decompress(garbage)
	assert.Error(t, err, "s2 should reject invalid block data")
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range allCompressionTypes() {
		codec, err := CreateCodec(ct, "layer")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(format.CompressionType(0xF), "layer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer")
}

func TestGetCodecUnknownType(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0))
	require.Error(t, err)
}

func TestCompressionStats(t *testing.T) {
	var stats CompressionStats
	stats.Algorithm = format.CompressionZstd

	stats.Add(1000, 250)
	stats.Add(1000, 250)

	assert.Equal(t, int64(2000), stats.OriginalSize)
	assert.Equal(t, int64(500), stats.CompressedSize)
	assert.InDelta(t, 0.25, stats.CompressionRatio(), 1e-12)
	assert.InDelta(t, 75.0, stats.SpaceSavings(), 1e-12)
}

func TestCompressionStatsZeroOriginal(t *testing.T) {
	var stats CompressionStats
	assert.Equal(t, 0.0, stats.CompressionRatio())
	assert.Equal(t, 100.0, stats.SpaceSavings())
}
