package rawenc

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

func TestInt64DeltaRoundTrip(t *testing.T) {
	values := []int64{0, -1, -1, 5, 5, 5, 1000000, -1000000, math.MaxInt32}

	data := AppendInt64Delta(nil, values)
	require.NotEmpty(t, data)

	decoded := make([]int64, len(values))
	require.NoError(t, DecodeInt64Delta(decoded, data))
	assert.Equal(t, values, decoded)
}

func TestInt32DeltaRoundTrip(t *testing.T) {
	values := []int32{0, -1, math.MinInt32, math.MaxInt32, 17, 17, 18}

	data := AppendInt32Delta(nil, values)
	require.NotEmpty(t, data)

	decoded := make([]int32, len(values))
	require.NoError(t, DecodeInt32Delta(decoded, data))
	assert.Equal(t, values, decoded)
}

func TestDeltaKnownBytes(t *testing.T) {
	// Zigzag maps 0 -> 0, -1 -> 1, 1 -> 2.
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, AppendInt64Delta(nil, []int64{0, 0, 0}))
	assert.Equal(t, []byte{0x01}, AppendInt64Delta(nil, []int64{-1}))
	assert.Equal(t, []byte{0x02}, AppendInt64Delta(nil, []int64{1}))

	// A run of equal values is the first value followed by zero deltas.
	assert.Equal(t, []byte{0x0E, 0x00, 0x00}, AppendInt32Delta(nil, []int32{7, 7, 7}))
}

func TestDeltaRunCompressesToOneBytePerValue(t *testing.T) {
	values := make([]int32, 100)
	for i := range values {
		values[i] = 42
	}

	data := AppendInt32Delta(nil, values)
	assert.Len(t, data, 100)
	assert.Equal(t, bytes.Repeat([]byte{0x00}, 99), data[1:])
}

func TestDeltaEmptyValues(t *testing.T) {
	dst := []byte{0xAA}
	assert.Equal(t, dst, AppendInt32Delta(dst, nil))
	assert.Equal(t, dst, AppendInt64Delta(dst, nil))

	require.NoError(t, DecodeInt32Delta(nil, nil))
	require.NoError(t, DecodeInt64Delta(nil, nil))
}

func TestDecodeDeltaTruncated(t *testing.T) {
	data := AppendInt64Delta(nil, []int64{1, 2, 3})

	decoded := make([]int64, 4)
	err := DecodeInt64Delta(decoded, data)
	require.ErrorIs(t, err, errs.ErrTruncatedData)
}

func TestDecodeDeltaTrailingBytes(t *testing.T) {
	data := AppendInt32Delta(nil, []int32{1, 2, 3})
	data = append(data, 0x00)

	decoded := make([]int32, 3)
	err := DecodeInt32Delta(decoded, data)
	require.ErrorIs(t, err, errs.ErrInvalidPayloadSize)
}

func TestDecodeDeltaMalformedVarint(t *testing.T) {
	// Continuation bit set on every byte never terminates a varint.
	data := bytes.Repeat([]byte{0xFF}, 12)

	decoded := make([]int64, 1)
	err := DecodeInt64Delta(decoded, data)
	require.ErrorIs(t, err, errs.ErrTruncatedData)
}

func TestDecodeInt32DeltaLossyCast(t *testing.T) {
	data := AppendInt64Delta(nil, []int64{math.MaxInt32 + 1})

	decoded := make([]int32, 1)
	err := DecodeInt32Delta(decoded, data)
	require.ErrorIs(t, err, errs.ErrLossyCast)
}

func BenchmarkAppendInt32Delta(b *testing.B) {
	// Flag-plane like data: long runs with occasional spikes.
	values := make([]int32, 4096)
	for i := range values {
		if i%97 == 0 {
			values[i] = int32(i)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := AppendInt32Delta(nil, values)
		if len(data) == 0 {
			b.Fatal("empty output")
		}
	}
}

func BenchmarkDecodeInt32Delta(b *testing.B) {
	values := make([]int32, 4096)
	for i := range values {
		if i%97 == 0 {
			values[i] = int32(i)
		}
	}
	data := AppendInt32Delta(nil, values)
	dst := make([]int32, len(values))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := DecodeInt32Delta(dst, data); err != nil {
			b.Fatal(err)
		}
	}
}
