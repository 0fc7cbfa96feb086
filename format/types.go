package format

import (
	"fmt"
	"strings"

	"github.com/astrofold/shearkit/errs"
)

type (
	LayerType       uint8
	PixelType       uint8
	EncodingType    uint8
	CompressionType uint8
)

const (
	LayerSci LayerType = 0x1 // LayerSci represents the science pixel layer.
	LayerRms LayerType = 0x2 // LayerRms represents the noise RMS layer.
	LayerFlg LayerType = 0x3 // LayerFlg represents the bitmask flag layer.
	LayerWgt LayerType = 0x4 // LayerWgt represents the pixel weight layer.
	LayerBkg LayerType = 0x5 // LayerBkg represents the background layer.
	LayerSeg LayerType = 0x6 // LayerSeg represents the segmentation map layer.

	PixelFloat32 PixelType = 0x1 // PixelFloat32 represents IEEE 754 single-precision pixels.
	PixelInt32   PixelType = 0x2 // PixelInt32 represents 32-bit signed integer pixels.
	PixelInt64   PixelType = 0x3 // PixelInt64 represents 64-bit signed integer pixels.

	TypeRaw   EncodingType = 0x1 // TypeRaw represents raw fixed-width words.
	TypeDelta EncodingType = 0x2 // TypeDelta represents zigzag+varint delta encoding.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (l LayerType) String() string {
	switch l {
	case LayerSci:
		return "SCI"
	case LayerRms:
		return "RMS"
	case LayerFlg:
		return "FLG"
	case LayerWgt:
		return "WGT"
	case LayerBkg:
		return "BKG"
	case LayerSeg:
		return "SEG"
	default:
		return "Unknown"
	}
}

// IsValid reports whether l is one of the six known layer types.
func (l LayerType) IsValid() bool {
	return l >= LayerSci && l <= LayerSeg
}

// PixelType returns the pixel type detector layers of this kind carry:
// integer flags for FLG, 64-bit segmentation IDs for SEG, and
// single-precision floats for everything else.
func (l LayerType) PixelType() PixelType {
	switch l {
	case LayerFlg:
		return PixelInt32
	case LayerSeg:
		return PixelInt64
	default:
		return PixelFloat32
	}
}

// ParseLayerType converts a layer name such as "SCI" or "seg" to its
// LayerType. Matching is case-insensitive.
func ParseLayerType(name string) (LayerType, error) {
	switch strings.ToUpper(name) {
	case "SCI":
		return LayerSci, nil
	case "RMS":
		return LayerRms, nil
	case "FLG":
		return LayerFlg, nil
	case "WGT":
		return LayerWgt, nil
	case "BKG":
		return LayerBkg, nil
	case "SEG":
		return LayerSeg, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownLayer, name)
	}
}

func (p PixelType) String() string {
	switch p {
	case PixelFloat32:
		return "Float32"
	case PixelInt32:
		return "Int32"
	case PixelInt64:
		return "Int64"
	default:
		return "Unknown"
	}
}

// IsValid reports whether p is one of the known pixel types.
func (p PixelType) IsValid() bool {
	return p >= PixelFloat32 && p <= PixelInt64
}

// Size returns the number of bytes one pixel of this type occupies in a raw
// payload, or 0 for an unknown type.
func (p PixelType) Size() int {
	switch p {
	case PixelFloat32, PixelInt32:
		return 4
	case PixelInt64:
		return 8
	default:
		return 0
	}
}

func (e EncodingType) String() string {
	switch e {
	case TypeRaw:
		return "Raw"
	case TypeDelta:
		return "Delta"
	default:
		return "Unknown"
	}
}

// IsValid reports whether e is a known encoding type.
func (e EncodingType) IsValid() bool {
	return e == TypeRaw || e == TypeDelta
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}
