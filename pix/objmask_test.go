package pix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/mask"
)

// objMaskImage builds a 4x1 image exercising every object-mask case:
//
//	x=0: clean pixel of the target object
//	x=1: clean unassigned pixel
//	x=2: clean pixel of another object
//	x=3: target-object pixel flagged as cosmic ray
func objMaskImage(t *testing.T, segID int64) *Image {
	t.Helper()

	data, err := NewPlane[float32](4, 1)
	require.NoError(t, err)

	seg, err := PlaneFromValues(4, 1, []int64{segID, SegmapUnassigned, segID + 1, segID})
	require.NoError(t, err)

	pixMask, err := PlaneFromValues(4, 1, []int32{0, 0, 0, int32(mask.CosmicRay)})
	require.NoError(t, err)

	img, err := New(data, WithSegmap(seg), WithMask(pixMask))
	require.NoError(t, err)

	return img
}

func TestGetObjectMask(t *testing.T) {
	const segID = int64(10)
	img := objMaskImage(t, segID)

	got, err := img.GetObjectMask(segID)
	require.NoError(t, err)

	assert.False(t, got.At(0, 0), "clean target pixel stays usable")
	assert.False(t, got.At(1, 0), "unassigned pixel stays usable by default")
	assert.True(t, got.At(2, 0), "other object's pixel is rejected")
	assert.True(t, got.At(3, 0), "bad pixel is rejected even on the target")
}

func TestGetObjectMaskUnassigned(t *testing.T) {
	const segID = int64(10)
	img := objMaskImage(t, segID)

	got, err := img.GetObjectMask(segID, MaskUnassigned())
	require.NoError(t, err)

	assert.False(t, got.At(0, 0))
	assert.True(t, got.At(1, 0), "unassigned pixel is rejected under MaskUnassigned")
}

func TestGetObjectMaskSuspect(t *testing.T) {
	const segID = int64(10)
	img := objMaskImage(t, segID)
	img.Mask().Set(0, 0, int32(mask.NearEdge))

	// Suspect flags pass by default.
	got, err := img.GetObjectMask(segID)
	require.NoError(t, err)
	assert.False(t, got.At(0, 0))

	got, err = img.GetObjectMask(segID, MaskSuspect())
	require.NoError(t, err)
	assert.True(t, got.At(0, 0))
}

func TestGetObjectMaskInterpolatedStaysUsable(t *testing.T) {
	const segID = int64(10)
	img := objMaskImage(t, segID)
	img.Mask().Set(0, 0, int32(mask.InterpolatedPixel))

	got, err := img.GetObjectMask(segID, MaskSuspect())
	require.NoError(t, err)
	assert.False(t, got.At(0, 0))
}
