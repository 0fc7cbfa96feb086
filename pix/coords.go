package pix

import (
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/wcs"
)

// Coordinate delegation to the attached WCS. Every method corrects pixel
// coordinates by the image offset first, so stamps extracted from a frame
// can transform in the parent frame's WCS without any bookkeeping by the
// caller.

// Pix2World converts stamp-local pixel coordinates to world coordinates in
// degrees.
//
// Returns:
//   - ra, dec: The world coordinates
//   - error: errs.ErrNoWCS when no WCS is attached
func (img *Image) Pix2World(x, y float64, origin int) (ra, dec float64, err error) {
	if img.wcs == nil {
		return 0, 0, errs.ErrNoWCS
	}

	ra, dec = img.wcs.Pix2World(x+img.offsetX, y+img.offsetY, origin)

	return ra, dec, nil
}

// World2Pix converts world coordinates in degrees to stamp-local pixel
// coordinates.
//
// Returns:
//   - x, y: The pixel coordinates
//   - error: errs.ErrNoWCS, or the projection errors of wcs.World2Pix
func (img *Image) World2Pix(ra, dec float64, origin int) (x, y float64, err error) {
	if img.wcs == nil {
		return 0, 0, errs.ErrNoWCS
	}

	x, y, err = img.wcs.World2Pix(ra, dec, origin)
	if err != nil {
		return 0, 0, err
	}

	return x - img.offsetX, y - img.offsetY, nil
}

// Pix2WorldTransform returns the local linearized pixel-to-world transform
// at the given stamp-local position. See wcs.Pix2WorldTransform for the
// step and spatialRA semantics.
func (img *Image) Pix2WorldTransform(x, y, dx, dy float64, spatialRA bool, origin int) ([2][2]float64, error) {
	if img.wcs == nil {
		return [2][2]float64{}, errs.ErrNoWCS
	}

	return img.wcs.Pix2WorldTransform(x+img.offsetX, y+img.offsetY, dx, dy, spatialRA, origin)
}

// World2PixTransform returns the local linearized world-to-pixel transform
// at the given world position.
func (img *Image) World2PixTransform(ra, dec, dra, ddec float64, spatialRA bool, origin int) ([2][2]float64, error) {
	if img.wcs == nil {
		return [2][2]float64{}, errs.ErrNoWCS
	}

	return img.wcs.World2PixTransform(ra, dec, dra, ddec, spatialRA, origin)
}

// Pix2WorldRotation returns the rotation-only part of the local
// pixel-to-world transform at the given stamp-local position.
func (img *Image) Pix2WorldRotation(x, y float64, origin int) ([2][2]float64, error) {
	if img.wcs == nil {
		return [2][2]float64{}, errs.ErrNoWCS
	}

	return img.wcs.Pix2WorldRotation(x+img.offsetX, y+img.offsetY, origin)
}

// World2PixRotation returns the rotation-only part of the local
// world-to-pixel transform at the given world position.
func (img *Image) World2PixRotation(ra, dec float64, origin int) ([2][2]float64, error) {
	if img.wcs == nil {
		return [2][2]float64{}, errs.ErrNoWCS
	}

	return img.wcs.World2PixRotation(ra, dec, origin)
}

// Pix2WorldDecomposition returns the scale/rotation/flip decomposition of
// the local pixel-to-world transform at the given stamp-local position.
func (img *Image) Pix2WorldDecomposition(x, y float64, origin int) (*wcs.Decomposition, error) {
	if img.wcs == nil {
		return nil, errs.ErrNoWCS
	}

	return img.wcs.Pix2WorldDecomposition(x+img.offsetX, y+img.offsetY, origin)
}

// World2PixDecomposition returns the scale/rotation/flip decomposition of
// the local world-to-pixel transform at the given world position.
func (img *Image) World2PixDecomposition(ra, dec float64, origin int) (*wcs.Decomposition, error) {
	if img.wcs == nil {
		return nil, errs.ErrNoWCS
	}

	return img.wcs.World2PixDecomposition(ra, dec, origin)
}
