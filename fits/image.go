package fits

import (
	"fmt"

	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/internal/rawenc"
)

// bigEndian is the payload byte order mandated by FITS.
var bigEndian = endian.GetBigEndianEngine()

// Image is an image HDU payload: a 2D array stored big-endian at one of the
// FITS pixel types.
//
// Pixels are kept in on-disk form and converted by the typed accessors, so
// decoding a file never converts planes the caller does not touch. Storage
// is row-major with x fastest, matching the Plane layout in pix.
type Image struct {
	// Bitpix is the FITS pixel type code: 8, 16, 32, 64 for unsigned byte
	// and signed integers, -32, -64 for floats.
	Bitpix int
	// Width is NAXIS1, the x extent.
	Width int
	// Height is NAXIS2, the y extent.
	Height int

	data []byte
}

// bitpixSize returns the pixel width in bytes for a BITPIX code.
func bitpixSize(bitpix int) (int, error) {
	switch bitpix {
	case 8:
		return 1, nil
	case 16:
		return 2, nil
	case 32, -32:
		return 4, nil
	case 64, -64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: BITPIX %d", errs.ErrInvalidPixelType, bitpix)
	}
}

func newImage(bitpix, width, height, count int) (*Image, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
	}

	if count != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", errs.ErrInvalidShape, count, width, height)
	}

	size, _ := bitpixSize(bitpix)

	return &Image{
		Bitpix: bitpix,
		Width:  width,
		Height: height,
		data:   make([]byte, 0, count*size),
	}, nil
}

// NewImageUint8 builds a BITPIX 8 image from row-major values.
func NewImageUint8(width, height int, values []uint8) (*Image, error) {
	img, err := newImage(8, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendUint8(img.data, values, bigEndian)

	return img, nil
}

// NewImageInt16 builds a BITPIX 16 image from row-major values.
func NewImageInt16(width, height int, values []int16) (*Image, error) {
	img, err := newImage(16, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendInt16(img.data, values, bigEndian)

	return img, nil
}

// NewImageInt32 builds a BITPIX 32 image from row-major values.
func NewImageInt32(width, height int, values []int32) (*Image, error) {
	img, err := newImage(32, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendInt32(img.data, values, bigEndian)

	return img, nil
}

// NewImageInt64 builds a BITPIX 64 image from row-major values.
func NewImageInt64(width, height int, values []int64) (*Image, error) {
	img, err := newImage(64, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendInt64(img.data, values, bigEndian)

	return img, nil
}

// NewImageFloat32 builds a BITPIX -32 image from row-major values.
func NewImageFloat32(width, height int, values []float32) (*Image, error) {
	img, err := newImage(-32, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendFloat32(img.data, values, bigEndian)

	return img, nil
}

// NewImageFloat64 builds a BITPIX -64 image from row-major values.
func NewImageFloat64(width, height int, values []float64) (*Image, error) {
	img, err := newImage(-64, width, height, len(values))
	if err != nil {
		return nil, err
	}
	img.data = rawenc.AppendFloat64(img.data, values, bigEndian)

	return img, nil
}

// Bytes returns the raw big-endian payload.
func (img *Image) Bytes() []byte {
	return img.data
}

// Uint8s decodes a BITPIX 8 payload.
func (img *Image) Uint8s() ([]uint8, error) {
	if img.Bitpix != 8 {
		return nil, fmt.Errorf("%w: BITPIX %d, want 8", errs.ErrInvalidPixelType, img.Bitpix)
	}

	out := make([]uint8, img.Width*img.Height)
	if err := rawenc.DecodeUint8(out, img.data, bigEndian); err != nil {
		return nil, err
	}

	return out, nil
}

// Int32s decodes an integer payload of at most 32 bits, widening BITPIX 8
// and 16 losslessly.
func (img *Image) Int32s() ([]int32, error) {
	out := make([]int32, img.Width*img.Height)

	switch img.Bitpix {
	case 8:
		raw, err := img.Uint8s()
		if err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = int32(v)
		}

	case 16:
		raw := make([]int16, img.Width*img.Height)
		if err := rawenc.DecodeInt16(raw, img.data, bigEndian); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = int32(v)
		}

	case 32:
		if err := rawenc.DecodeInt32(out, img.data, bigEndian); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: BITPIX %d, want 8, 16 or 32", errs.ErrInvalidPixelType, img.Bitpix)
	}

	return out, nil
}

// Int64s decodes any integer payload, widening narrower types losslessly.
func (img *Image) Int64s() ([]int64, error) {
	if img.Bitpix == 64 {
		out := make([]int64, img.Width*img.Height)
		if err := rawenc.DecodeInt64(out, img.data, bigEndian); err != nil {
			return nil, err
		}

		return out, nil
	}

	narrow, err := img.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: BITPIX %d, want an integer type", errs.ErrInvalidPixelType, img.Bitpix)
	}

	out := make([]int64, len(narrow))
	for i, v := range narrow {
		out[i] = int64(v)
	}

	return out, nil
}

// Float32s decodes a BITPIX -32 payload.
func (img *Image) Float32s() ([]float32, error) {
	if img.Bitpix != -32 {
		return nil, fmt.Errorf("%w: BITPIX %d, want -32", errs.ErrInvalidPixelType, img.Bitpix)
	}

	out := make([]float32, img.Width*img.Height)
	if err := rawenc.DecodeFloat32(out, img.data, bigEndian); err != nil {
		return nil, err
	}

	return out, nil
}

// Float64s decodes a float payload, widening BITPIX -32 losslessly.
func (img *Image) Float64s() ([]float64, error) {
	switch img.Bitpix {
	case -64:
		out := make([]float64, img.Width*img.Height)
		if err := rawenc.DecodeFloat64(out, img.data, bigEndian); err != nil {
			return nil, err
		}

		return out, nil

	case -32:
		raw, err := img.Float32s()
		if err != nil {
			return nil, err
		}

		out := make([]float64, len(raw))
		for i, v := range raw {
			out[i] = float64(v)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("%w: BITPIX %d, want -32 or -64", errs.ErrInvalidPixelType, img.Bitpix)
	}
}
