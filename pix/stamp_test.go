package pix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/mask"
	"github.com/astrofold/shearkit/wcs"
)

func TestExtractStampInBounds(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	stamp, err := img.ExtractStamp(5, 5, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, stamp.Width())
	assert.Equal(t, 4, stamp.Height())

	x, y := stamp.Offset()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 3.0, y)

	// Stamp pixel (i, j) is parent pixel (3+i, 3+j); the ramp encodes the
	// parent coordinates.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, float32((3+i)*10+3+j), stamp.Data().At(i, j))
		}
	}

	// In-bounds stamps are views: writes propagate both ways.
	stamp.Data().Set(0, 0, -1)
	assert.Equal(t, float32(-1), img.Data().At(3, 3))
	img.Data().Set(4, 4, -2)
	assert.Equal(t, float32(-2), stamp.Data().At(1, 1))

	// No mask bits set, no WCS inherited, empty header.
	for _, v := range stamp.Mask().Values() {
		assert.Zero(t, v)
	}
	assert.Nil(t, stamp.WCS())
	assert.Zero(t, stamp.Header().Len())
}

func TestExtractStampRectangular(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	stamp, err := img.ExtractStamp(5, 5, 6, WithHeight(2))
	require.NoError(t, err)

	assert.Equal(t, 6, stamp.Width())
	assert.Equal(t, 2, stamp.Height())

	x, y := stamp.Offset()
	assert.Equal(t, 2.0, x)
	assert.Equal(t, 4.0, y)
}

func TestExtractStampSExtractorConvention(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	numpy, err := img.ExtractStamp(5, 5, 4)
	require.NoError(t, err)

	// SExtractor positions sit half a pixel above numpy positions.
	sex, err := img.ExtractStamp(5.5, 5.5, 4, WithIndexConv(IndexConvSExtractor))
	require.NoError(t, err)

	assert.True(t, numpy.Equal(sex))
}

func TestExtractStampPartiallyOutOfBounds(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	stamp, err := img.ExtractStamp(0, 0, 4)
	require.NoError(t, err)

	x, y := stamp.Offset()
	assert.Equal(t, -2.0, x)
	assert.Equal(t, -2.0, y)

	// The parent's corner 2x2 lands in the stamp's top-right quadrant.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			px, py := i-2, j-2

			if px >= 0 && py >= 0 {
				assert.Equal(t, float32(px*10+py), stamp.Data().At(i, j))
				assert.Zero(t, stamp.Mask().At(i, j))
				assert.Equal(t, float32(1), stamp.Noisemap().At(i, j))
				assert.Equal(t, float32(1), stamp.Weight().At(i, j))
			} else {
				assert.Zero(t, stamp.Data().At(i, j))
				assert.Equal(t, int32(mask.OffImage), stamp.Mask().At(i, j))
				assert.Zero(t, stamp.Noisemap().At(i, j))
				assert.Equal(t, SegmapUnassigned, stamp.Segmap().At(i, j))
				assert.Zero(t, stamp.Weight().At(i, j))
			}
		}
	}

	// Out-of-bounds stamps are copies, not views.
	stamp.Data().Set(2, 2, -1)
	assert.Equal(t, float32(0), img.Data().At(0, 0))
}

func TestExtractStampEntirelyOutOfBounds(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	stamp, err := img.ExtractStamp(50, 50, 4)
	require.NoError(t, err)

	for _, v := range stamp.Mask().Values() {
		assert.Equal(t, int32(mask.OffImage), v)
	}
	for _, v := range stamp.Data().Values() {
		assert.Zero(t, v)
	}
}

func TestExtractStampFillOverrides(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	stamp, err := img.ExtractStamp(-10, -10, 2,
		WithDataFill(-9),
		WithMaskFill(int32(mask.BadPixel)),
		WithNoisemapFill(2),
		WithSegmapFill(SegmapOther),
		WithBackgroundFill(3),
		WithWeightFill(0.5),
	)
	require.NoError(t, err)

	assert.Equal(t, float32(-9), stamp.Data().At(0, 0))
	assert.Equal(t, int32(mask.BadPixel), stamp.Mask().At(0, 0))
	assert.Equal(t, float32(2), stamp.Noisemap().At(0, 0))
	assert.Equal(t, SegmapOther, stamp.Segmap().At(0, 0))
	assert.Equal(t, float32(3), stamp.Background().At(0, 0))
	assert.Equal(t, float32(0.5), stamp.Weight().At(0, 0))
}

func TestExtractStampOffsetsAccumulate(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	first, err := img.ExtractStamp(5, 5, 4)
	require.NoError(t, err)

	second, err := first.ExtractStamp(2, 2, 2)
	require.NoError(t, err)

	// Offsets chain back to the outermost frame.
	x, y := second.Offset()
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 4.0, y)
	assert.Equal(t, float32(44), second.Data().At(0, 0))
}

func TestExtractStampKeepHeader(t *testing.T) {
	header := fits.NewHeader()
	require.NoError(t, header.SetString("OBSID", "OBS-1", ""))

	img, err := New(rampPlane(t, 10, 10), WithHeader(header))
	require.NoError(t, err)

	plain, err := img.ExtractStamp(5, 5, 2)
	require.NoError(t, err)
	assert.Zero(t, plain.Header().Len())

	kept, err := img.ExtractStamp(5, 5, 2, KeepHeader())
	require.NoError(t, err)

	obsid, err := kept.Header().GetString("OBSID")
	require.NoError(t, err)
	assert.Equal(t, "OBS-1", obsid)

	// The stamp header is a clone, not the parent's.
	require.NoError(t, kept.Header().SetString("OBSID", "OBS-2", ""))
	obsid, err = img.Header().GetString("OBSID")
	require.NoError(t, err)
	assert.Equal(t, "OBS-1", obsid)
}

func TestExtractStampValidation(t *testing.T) {
	img, err := New(rampPlane(t, 10, 10))
	require.NoError(t, err)

	_, err = img.ExtractStamp(5, 5, 0)
	require.ErrorIs(t, err, errs.ErrInvalidStampSize)

	_, err = img.ExtractStamp(5, 5, 4, WithHeight(-1))
	require.ErrorIs(t, err, errs.ErrInvalidStampSize)

	_, err = img.ExtractStamp(5, 5, 4, WithIndexConv(IndexConv(9)))
	require.ErrorIs(t, err, errs.ErrInvalidIndexConv)
}

func TestExtractWCSStamp(t *testing.T) {
	header := fits.NewHeader()
	require.NoError(t, header.SetString("OBSID", "OBS-1", ""))

	w := wcs.NewDefaultWCS()

	img, err := New(rampPlane(t, 10, 10), WithHeader(header), WithWCS(w))
	require.NoError(t, err)

	stamp, err := img.ExtractWCSStamp(2.6, 3.1)
	require.NoError(t, err)

	assert.Equal(t, 1, stamp.Width())
	assert.Equal(t, 1, stamp.Height())
	assert.Same(t, w, stamp.WCS())
	assert.Equal(t, float32(23), stamp.Data().At(0, 0))

	x, y := stamp.Offset()
	assert.Equal(t, 2.0, x)
	assert.Equal(t, 3.0, y)

	obsid, err := stamp.Header().GetString("OBSID")
	require.NoError(t, err)
	assert.Equal(t, "OBS-1", obsid)
}

func TestExtractWCSStampRequiresWCS(t *testing.T) {
	img, err := New(rampPlane(t, 4, 4))
	require.NoError(t, err)

	_, err = img.ExtractWCSStamp(2, 2)
	require.ErrorIs(t, err, errs.ErrNoWCS)
}
