package wcs

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/stats"
)

// Pix2WorldTransform computes the local linearization of the pixel-to-world
// mapping at (x, y) by forward finite differences:
//
//	[[ dra/dx ,  dra/dy ],
//	 [ ddec/dx, ddec/dy ]]
//
// With spatialRA the RA row is scaled by -cos(dec), giving the transform for
// the locally flat (-ra·cos(dec), dec) coordinates shear is defined in.
//
// Parameters:
//   - x, y: Pixel coordinates of the linearization point
//   - dx, dy: Finite-difference steps in pixels; 0 selects DefaultPixStep
//   - spatialRA: Scale the RA row by -cos(dec)
//   - origin: Pixel origin convention, as in Pix2World
//
// Returns:
//   - [2][2]float64: The local transformation matrix
//   - error: errs.ErrInvalidStep for a negative step
func (w *WCS) Pix2WorldTransform(x, y, dx, dy float64, spatialRA bool, origin int) ([2][2]float64, error) {
	var m [2][2]float64

	if dx == 0 {
		dx = DefaultPixStep
	}
	if dy == 0 {
		dy = DefaultPixStep
	}
	if dx < 0 || dy < 0 {
		return m, fmt.Errorf("%w: dx=%g, dy=%g", errs.ErrInvalidStep, dx, dy)
	}

	ra0, dec0 := w.Pix2World(x, y, origin)
	raPx, decPx := w.Pix2World(x+dx, y, origin)
	raPy, decPy := w.Pix2World(x, y+dy, origin)

	raScale := 1.0
	if spatialRA {
		raScale = -math.Cos(dec0 / degPerRad)
	}

	m[0][0] = raScale * wrapDegrees(raPx-ra0) / dx
	m[0][1] = raScale * wrapDegrees(raPy-ra0) / dy
	m[1][0] = (decPx - dec0) / dx
	m[1][1] = (decPy - dec0) / dy

	return m, nil
}

// World2PixTransform computes the local linearization of the world-to-pixel
// mapping at (ra, dec) by forward finite differences:
//
//	[[ dx/dra , dx/ddec ],
//	 [ dy/dra , dy/ddec ]]
//
// With spatialRA the RA column is divided by -cos(dec), the inverse of the
// scaling Pix2WorldTransform applies, so the two matrices stay inverses of
// each other.
//
// Parameters:
//   - ra, dec: World coordinates of the linearization point, in degrees
//   - dra, ddec: Finite-difference steps in degrees; 0 selects DefaultWorldStep
//   - spatialRA: Divide the RA column by -cos(dec)
//   - origin: Pixel origin convention applied to the returned pixel steps
//
// Returns:
//   - [2][2]float64: The local transformation matrix
//   - error: errs.ErrInvalidStep for a negative step, errs.ErrNearPole when
//     spatialRA is requested with |cos(dec)| <= 0.01, or a projection error
//     from World2Pix
func (w *WCS) World2PixTransform(ra, dec, dra, ddec float64, spatialRA bool, origin int) ([2][2]float64, error) {
	var m [2][2]float64

	if dra == 0 {
		dra = DefaultWorldStep
	}
	if ddec == 0 {
		ddec = DefaultWorldStep
	}
	if dra < 0 || ddec < 0 {
		return m, fmt.Errorf("%w: dra=%g, ddec=%g", errs.ErrInvalidStep, dra, ddec)
	}

	raScale := 1.0
	if spatialRA {
		cosDec := math.Cos(dec / degPerRad)
		if math.Abs(cosDec) <= minPoleCos {
			return m, fmt.Errorf("%w: dec=%g", errs.ErrNearPole, dec)
		}
		raScale = -cosDec
	}

	x0, y0, err := w.World2Pix(ra, dec, origin)
	if err != nil {
		return m, err
	}

	xPra, yPra, err := w.World2Pix(ra+dra, dec, origin)
	if err != nil {
		return m, err
	}

	xPdec, yPdec, err := w.World2Pix(ra, dec+ddec, origin)
	if err != nil {
		return m, err
	}

	m[0][0] = (xPra - x0) / (dra * raScale)
	m[0][1] = (xPdec - x0) / ddec
	m[1][0] = (yPra - y0) / (dra * raScale)
	m[1][1] = (yPdec - y0) / ddec

	return m, nil
}

// Pix2WorldRotation returns the rotation part of the local pixel-to-world
// transform at (x, y): the spatial-RA transform normalized by the square
// root of the absolute determinant. For the nearly conformal transforms a
// TAN WCS produces this is a rotation matrix up to finite-difference noise;
// a reflection keeps its -1 determinant.
//
// Returns:
//   - [2][2]float64: The normalized matrix
//   - error: errs.ErrSingularTransform for a zero determinant, or an error
//     from Pix2WorldTransform
func (w *WCS) Pix2WorldRotation(x, y float64, origin int) ([2][2]float64, error) {
	m, err := w.Pix2WorldTransform(x, y, 0, 0, true, origin)
	if err != nil {
		return m, err
	}

	return normalizeByDet(m)
}

// World2PixRotation returns the rotation part of the local world-to-pixel
// transform at (ra, dec), the inverse rotation of Pix2WorldRotation.
//
// Returns:
//   - [2][2]float64: The normalized matrix
//   - error: errs.ErrSingularTransform for a zero determinant, or an error
//     from World2PixTransform
func (w *WCS) World2PixRotation(ra, dec float64, origin int) ([2][2]float64, error) {
	m, err := w.World2PixTransform(ra, dec, 0, 0, true, origin)
	if err != nil {
		return m, err
	}

	return normalizeByDet(m)
}

// Decomposition is the scale/rotation split of a local WCS transform.
type Decomposition struct {
	// Scale is the isotropic scale factor, sqrt of the absolute determinant.
	// For a pixel-to-world transform this is the pixel scale in degrees.
	Scale float64
	// Angle is the rotation angle in degrees, measured from the +x axis.
	Angle float64
	// Flip reports a reflection (negative determinant).
	Flip bool
}

// Pix2WorldDecomposition splits the local pixel-to-world transform at (x, y)
// into scale, rotation angle, and flip.
//
// Returns:
//   - *Decomposition: The decomposition
//   - error: errs.ErrSingularTransform when the transform cannot be
//     decomposed, or an error from Pix2WorldTransform
func (w *WCS) Pix2WorldDecomposition(x, y float64, origin int) (*Decomposition, error) {
	m, err := w.Pix2WorldTransform(x, y, 0, 0, true, origin)
	if err != nil {
		return nil, err
	}

	return decompose(m)
}

// World2PixDecomposition splits the local world-to-pixel transform at
// (ra, dec) into scale, rotation angle, and flip.
//
// Returns:
//   - *Decomposition: The decomposition
//   - error: errs.ErrSingularTransform when the transform cannot be
//     decomposed, or an error from World2PixTransform
func (w *WCS) World2PixDecomposition(ra, dec float64, origin int) (*Decomposition, error) {
	m, err := w.World2PixTransform(ra, dec, 0, 0, true, origin)
	if err != nil {
		return nil, err
	}

	return decompose(m)
}

// normalizeByDet divides m by sqrt(|det(m)|).
func normalizeByDet(m [2][2]float64) ([2][2]float64, error) {
	det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
	if det == 0 {
		return m, fmt.Errorf("%w: zero determinant", errs.ErrSingularTransform)
	}

	norm := math.Sqrt(math.Abs(det))
	for i := range m {
		for j := range m[i] {
			m[i][j] /= norm
		}
	}

	return m, nil
}

// decompose splits m into isotropic scale, rotation angle, and flip using
// the column-norm decomposition from stats.
func decompose(m [2][2]float64) (*Decomposition, error) {
	det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
	if det == 0 {
		return nil, fmt.Errorf("%w: zero determinant", errs.ErrSingularTransform)
	}

	flip := det < 0
	if flip {
		// Undo the reflection on the x column so the remaining factor is a
		// pure rotation.
		m[0][0], m[1][0] = -m[0][0], -m[1][0]
	}

	_, rotation, err := stats.DecomposeTransform(m)
	if err != nil {
		return nil, err
	}

	return &Decomposition{
		Scale: math.Sqrt(math.Abs(det)),
		Angle: math.Atan2(rotation[1][0], rotation[0][0]) * degPerRad,
		Flip:  flip,
	}, nil
}

// wrapDegrees maps an angle difference onto (-180, 180], keeping forward
// differences finite across the RA wrap at 0/360.
func wrapDegrees(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}

	return d
}
