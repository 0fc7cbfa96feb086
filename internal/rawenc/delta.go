package rawenc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
)

// AppendInt64Delta appends values to dst as a zigzag+varint delta stream and
// returns the extended slice.
//
// Stream layout:
//   - value[0]: zigzag+varint of the value itself (delta from zero)
//   - value[i]: zigzag+varint of value[i] - value[i-1]
//
// There is no second difference stage: flag and segmentation planes are
// dominated by runs of identical values, and plain deltas already map those
// to runs of zero bytes for the compressor. A run of equal values costs one
// byte per pixel before compression.
func AppendInt64Delta(dst []byte, values []int64) []byte {
	prev := int64(0)
	for _, v := range values {
		delta := v - prev
		zigzag := uint64((delta << 1) ^ (delta >> 63)) //nolint:gosec
		dst = appendUvarint(dst, zigzag)
		prev = v
	}

	return dst
}

// AppendInt32Delta appends values to dst as a zigzag+varint delta stream and
// returns the extended slice.
//
// Deltas are widened to 64 bits before encoding, so differences spanning the
// full int32 range cannot overflow.
func AppendInt32Delta(dst []byte, values []int32) []byte {
	prev := int64(0)
	for _, v := range values {
		delta := int64(v) - prev
		zigzag := uint64((delta << 1) ^ (delta >> 63)) //nolint:gosec
		dst = appendUvarint(dst, zigzag)
		prev = int64(v)
	}

	return dst
}

// DecodeInt64Delta fills dst by replaying the delta stream in data.
//
// The stream must contain exactly len(dst) values: a stream that ends early
// reports errs.ErrTruncatedData, trailing bytes report
// errs.ErrInvalidPayloadSize.
func DecodeInt64Delta(dst []int64, data []byte) error {
	offset := 0
	cur := int64(0)

	for i := range dst {
		zigzag, next, ok := decodeUvarint(data, offset)
		if !ok {
			return fmt.Errorf("%w: delta stream ends at value %d of %d", errs.ErrTruncatedData, i, len(dst))
		}
		offset = next

		cur += decodeZigZag(zigzag)
		dst[i] = cur
	}

	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after delta stream", errs.ErrInvalidPayloadSize, len(data)-offset)
	}

	return nil
}

// DecodeInt32Delta fills dst by replaying the delta stream in data.
//
// Running values are accumulated in 64 bits and checked against the int32
// range before narrowing, so corrupt streams report errs.ErrLossyCast instead
// of wrapping silently.
func DecodeInt32Delta(dst []int32, data []byte) error {
	offset := 0
	cur := int64(0)

	for i := range dst {
		zigzag, next, ok := decodeUvarint(data, offset)
		if !ok {
			return fmt.Errorf("%w: delta stream ends at value %d of %d", errs.ErrTruncatedData, i, len(dst))
		}
		offset = next

		cur += decodeZigZag(zigzag)
		if cur < math.MinInt32 || cur > math.MaxInt32 {
			return fmt.Errorf("%w: value %d outside int32 range", errs.ErrLossyCast, cur)
		}
		dst[i] = int32(cur)
	}

	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after delta stream", errs.ErrInvalidPayloadSize, len(data)-offset)
	}

	return nil
}

func appendUvarint(dst []byte, value uint64) []byte {
	if value <= 0x7F {
		return append(dst, byte(value))
	}

	return binary.AppendUvarint(dst, value)
}

// decodeUvarint decodes a varint from data starting at offset, with inline
// fast paths for the one- and two-byte encodings that dominate delta streams.
//
// Returns the decoded value, the offset past the varint, and whether decoding
// succeeded.
func decodeUvarint(data []byte, offset int) (uint64, int, bool) {
	if offset >= len(data) {
		return 0, offset, false
	}

	cur := offset
	b0 := data[cur]
	cur++
	if b0 < 0x80 {
		return uint64(b0), cur, true
	}

	if cur >= len(data) {
		return 0, offset, false
	}

	b1 := data[cur]
	cur++
	value := uint64(b0&0x7f) | uint64(b1&0x7f)<<7
	if b1 < 0x80 {
		return value, cur, true
	}

	shift := uint(14)
	for i := 2; i < binary.MaxVarintLen64; i++ {
		if cur >= len(data) {
			return 0, offset, false
		}

		b := data[cur]
		cur++
		value |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return value, cur, true
		}
		shift += 7
	}

	return 0, offset, false
}

// decodeZigZag reverses zigzag encoding using branchless bit operations.
func decodeZigZag(value uint64) int64 {
	return int64((value >> 1) ^ -(value & 1)) //nolint:gosec
}
