package pix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/wcs"
)

// visWCS builds a VIS-like TAN projection centered near the middle of a
// 10x10 test image.
func visWCS() *wcs.WCS {
	const scale = 0.1 / 3600

	return &wcs.WCS{
		CRPix1: 5,
		CRPix2: 5,
		CRVal1: 52.35,
		CRVal2: -28.75,
		CD:     [2][2]float64{{-scale, 0}, {0, scale}},
		CType1: "RA---TAN",
		CType2: "DEC--TAN",
		CUnit1: "deg",
		CUnit2: "deg",
	}
}

func TestCoordsRequireWCS(t *testing.T) {
	img, err := New(rampPlane(t, 4, 4))
	require.NoError(t, err)

	_, _, err = img.Pix2World(1, 1, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, _, err = img.World2Pix(52.35, -28.75, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.Pix2WorldTransform(1, 1, 0, 0, true, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.World2PixTransform(52.35, -28.75, 0, 0, true, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.Pix2WorldRotation(1, 1, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.World2PixRotation(52.35, -28.75, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.Pix2WorldDecomposition(1, 1, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)

	_, err = img.World2PixDecomposition(52.35, -28.75, 0)
	require.ErrorIs(t, err, errs.ErrNoWCS)
}

func TestPix2WorldMatchesWCS(t *testing.T) {
	w := visWCS()

	img, err := New(rampPlane(t, 10, 10), WithWCS(w))
	require.NoError(t, err)

	wantRA, wantDec := w.Pix2World(4, 4, 0)

	ra, dec, err := img.Pix2World(4, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, wantRA, ra)
	assert.Equal(t, wantDec, dec)

	x, y, err := img.World2Pix(ra, dec, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, x, 1e-8)
	assert.InDelta(t, 4.0, y, 1e-8)
}

func TestCoordsCorrectForOffset(t *testing.T) {
	w := visWCS()

	img, err := New(rampPlane(t, 10, 10), WithWCS(w))
	require.NoError(t, err)

	wantRA, wantDec, err := img.Pix2World(6, 7, 0)
	require.NoError(t, err)

	// A stamp's local coordinates map through the parent-frame offset. The
	// stamp does not inherit the WCS, so it is attached explicitly.
	stamp, err := img.ExtractStamp(6, 7, 4)
	require.NoError(t, err)
	stamp.SetWCS(w)

	offX, offY := stamp.Offset()
	ra, dec, err := stamp.Pix2World(6-offX, 7-offY, 0)
	require.NoError(t, err)
	assert.InDelta(t, wantRA, ra, 1e-12)
	assert.InDelta(t, wantDec, dec, 1e-12)

	x, y, err := stamp.World2Pix(ra, dec, 0)
	require.NoError(t, err)
	assert.InDelta(t, 6-offX, x, 1e-8)
	assert.InDelta(t, 7-offY, y, 1e-8)
}

func TestTransformDelegatesWithOffset(t *testing.T) {
	w := visWCS()

	img, err := New(rampPlane(t, 10, 10), WithWCS(w), WithOffset(3, 2))
	require.NoError(t, err)

	want, err := w.Pix2WorldTransform(7, 6, 0, 0, true, 0)
	require.NoError(t, err)

	got, err := img.Pix2WorldTransform(4, 4, 0, 0, true, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantRot, err := w.Pix2WorldRotation(7, 6, 0)
	require.NoError(t, err)

	gotRot, err := img.Pix2WorldRotation(4, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, wantRot, gotRot)
}

func TestDecompositionDelegates(t *testing.T) {
	w := visWCS()

	img, err := New(rampPlane(t, 10, 10), WithWCS(w))
	require.NoError(t, err)

	dec, err := img.Pix2WorldDecomposition(5, 5, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.1/3600, dec.Scale, 1e-6)
	// The flipped RA axis cancels against the -cos(dec) spatial scaling.
	assert.False(t, dec.Flip)

	inv, err := img.World2PixDecomposition(52.35, -28.75, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 3600/0.1, inv.Scale, 1e-6)
}
