package section

import (
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/format"
)

// StoreFlag represents the packed flag field of the store header.
type StoreFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is reserved, must be set to 0.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 2-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the store format:
	//   - 0xE510 (0b1110_0101_0001_0000): Exposure store format v1
	Options uint16

	// Encoding is an enum indicating the plane encoding used for integer
	// layers in this store. Float layers are always raw.
	Encoding uint8
	// Codec is an enum indicating the chunk compression used in this store.
	Codec uint8
}

var validEncodings = map[uint8]struct{}{
	uint8(format.TypeRaw):   {},
	uint8(format.TypeDelta): {},
}

var validCodecs = map[uint8]struct{}{
	uint8(format.CompressionNone): {},
	uint8(format.CompressionZstd): {},
	uint8(format.CompressionS2):   {},
	uint8(format.CompressionLZ4):  {},
}

// NewStoreFlag creates a new StoreFlag with default settings: little-endian,
// delta encoding for integer layers and zstd chunk compression.
func NewStoreFlag() StoreFlag {
	flag := StoreFlag{
		Options:  MagicStoreV1Opt,
		Encoding: uint8(format.TypeDelta),
		Codec:    uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the store payload is little-endian.
func (f StoreFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the store payload is big-endian.
func (f StoreFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *StoreFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *StoreFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f StoreFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IntEncoding returns the plane encoding applied to integer layers.
func (f StoreFlag) IntEncoding() format.EncodingType {
	return format.EncodingType(f.Encoding)
}

// SetIntEncoding sets the plane encoding applied to integer layers.
func (f *StoreFlag) SetIntEncoding(enc format.EncodingType) {
	f.Encoding = uint8(enc)
}

// Compression returns the chunk compression type.
func (f StoreFlag) Compression() format.CompressionType {
	return format.CompressionType(f.Codec)
}

// SetCompression sets the chunk compression type.
func (f *StoreFlag) SetCompression(compression format.CompressionType) {
	f.Codec = uint8(compression)
}

// IsValidMagicNumber checks if the magic number is valid.
func (f StoreFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicStoreV1Opt
}

// Validate checks if the flag word contains valid values.
func (f StoreFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidMagic
	}

	if _, ok := validEncodings[f.Encoding]; !ok {
		return errs.ErrInvalidHeaderFlags
	}

	if _, ok := validCodecs[f.Codec]; !ok {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f StoreFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
