// Package rawenc implements the chunk payload codecs for the exposure store.
//
// Two encodings exist: raw fixed-width words in a configurable byte order,
// and a zigzag+varint delta stream for integer planes whose values change
// slowly along a row (mask flags, segmentation IDs). Encoded payloads are
// handed to the compress package before they reach disk, so the delta codec
// aims at producing long zero runs rather than minimal size by itself.
//
// The FITS codec reuses the raw functions with the big-endian engine; the
// exposure store uses the little-endian engine.
package rawenc

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
)

// AppendFloat32 appends the fixed-width binary representation of values to
// dst in the engine's byte order and returns the extended slice.
//
// When the engine matches the host byte order, all values are appended with a
// single bulk copy; otherwise each 4-byte word is rewritten individually.
func AppendFloat32(dst []byte, values []float32, engine endian.EndianEngine) []byte {
	if len(values) == 0 {
		return dst
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*4)
		return append(dst, src...)
	}

	for _, v := range values {
		dst = engine.AppendUint32(dst, math.Float32bits(v))
	}

	return dst
}

// AppendFloat64 appends the fixed-width binary representation of values to
// dst in the engine's byte order and returns the extended slice.
func AppendFloat64(dst []byte, values []float64, engine endian.EndianEngine) []byte {
	if len(values) == 0 {
		return dst
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*8)
		return append(dst, src...)
	}

	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// AppendInt32 appends the fixed-width binary representation of values to dst
// in the engine's byte order and returns the extended slice.
func AppendInt32(dst []byte, values []int32, engine endian.EndianEngine) []byte {
	if len(values) == 0 {
		return dst
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*4)
		return append(dst, src...)
	}

	for _, v := range values {
		dst = engine.AppendUint32(dst, uint32(v)) //nolint:gosec
	}

	return dst
}

// AppendInt64 appends the fixed-width binary representation of values to dst
// in the engine's byte order and returns the extended slice.
func AppendInt64(dst []byte, values []int64, engine endian.EndianEngine) []byte {
	if len(values) == 0 {
		return dst
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*8)
		return append(dst, src...)
	}

	for _, v := range values {
		dst = engine.AppendUint64(dst, uint64(v)) //nolint:gosec
	}

	return dst
}

// AppendUint8 appends values to dst unchanged. It exists so single-byte FITS
// payloads go through the same codec surface as the wider pixel types.
func AppendUint8(dst []byte, values []uint8, _ endian.EndianEngine) []byte {
	return append(dst, values...)
}

// AppendInt16 appends the fixed-width binary representation of values to dst
// in the engine's byte order and returns the extended slice.
func AppendInt16(dst []byte, values []int16, engine endian.EndianEngine) []byte {
	if len(values) == 0 {
		return dst
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*2)
		return append(dst, src...)
	}

	for _, v := range values {
		dst = engine.AppendUint16(dst, uint16(v)) //nolint:gosec
	}

	return dst
}

// DecodeFloat32 fills dst from the raw payload in data.
//
// The payload length must be exactly 4*len(dst) bytes. A shorter payload
// reports errs.ErrTruncatedData, a longer one errs.ErrInvalidPayloadSize.
//
// When the engine matches the host byte order, the payload is copied into dst
// in bulk through a byte view of dst itself, so data may sit at any alignment.
func DecodeFloat32(dst []float32, data []byte, engine endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 4); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
		copy(out, data)

		return nil
	}

	for i := range dst {
		dst[i] = math.Float32frombits(engine.Uint32(data[i*4 : i*4+4]))
	}

	return nil
}

// DecodeFloat64 fills dst from the raw payload in data.
//
// The payload length must be exactly 8*len(dst) bytes.
func DecodeFloat64(dst []float64, data []byte, engine endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 8); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
		copy(out, data)

		return nil
	}

	for i := range dst {
		dst[i] = math.Float64frombits(engine.Uint64(data[i*8 : i*8+8]))
	}

	return nil
}

// DecodeInt32 fills dst from the raw payload in data.
//
// The payload length must be exactly 4*len(dst) bytes.
func DecodeInt32(dst []int32, data []byte, engine endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 4); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
		copy(out, data)

		return nil
	}

	for i := range dst {
		dst[i] = int32(engine.Uint32(data[i*4 : i*4+4])) //nolint:gosec
	}

	return nil
}

// DecodeInt64 fills dst from the raw payload in data.
//
// The payload length must be exactly 8*len(dst) bytes.
func DecodeInt64(dst []int64, data []byte, engine endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 8); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
		copy(out, data)

		return nil
	}

	for i := range dst {
		dst[i] = int64(engine.Uint64(data[i*8 : i*8+8])) //nolint:gosec
	}

	return nil
}

// DecodeUint8 fills dst from the raw payload in data.
func DecodeUint8(dst []uint8, data []byte, _ endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 1); err != nil {
		return err
	}

	copy(dst, data)

	return nil
}

// DecodeInt16 fills dst from the raw payload in data.
//
// The payload length must be exactly 2*len(dst) bytes.
func DecodeInt16(dst []int16, data []byte, engine endian.EndianEngine) error {
	if err := checkPayloadSize(len(data), len(dst), 2); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
		copy(out, data)

		return nil
	}

	for i := range dst {
		dst[i] = int16(engine.Uint16(data[i*2 : i*2+2])) //nolint:gosec
	}

	return nil
}

func checkPayloadSize(got, count, width int) error {
	want := count * width
	if got == want {
		return nil
	}

	if got < want {
		return fmt.Errorf("%w: payload %d bytes, want %d", errs.ErrTruncatedData, got, want)
	}

	return fmt.Errorf("%w: payload %d bytes, want %d", errs.ErrInvalidPayloadSize, got, want)
}
