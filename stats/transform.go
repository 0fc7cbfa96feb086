package stats

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
)

// DecomposeTransform splits a translation-free 2x2 transformation matrix into
// a scale matrix and a rotation matrix, such that m = rotation·scale up to
// the column normalization used here.
//
// The scale factors are the column norms of m, so the rotation matrix has
// unit columns. A reflection in m stays in the rotation factor, whose
// determinant is then -1; callers that need the flip separated out test the
// determinant sign.
//
// Parameters:
//   - m: Transformation matrix, for example a WCS CD matrix
//
// Returns:
//   - scale: diag(s0, s1) with s0, s1 the column norms of m
//   - rotation: m with each column divided by its norm
//   - error: errs.ErrSingularTransform when a column of m is zero
func DecomposeTransform(m [2][2]float64) (scale, rotation [2][2]float64, err error) {
	s0 := math.Hypot(m[0][0], m[1][0])
	s1 := math.Hypot(m[0][1], m[1][1])

	if s0 == 0 || s1 == 0 {
		return scale, rotation, fmt.Errorf("%w: zero column norm (s0=%g, s1=%g)",
			errs.ErrSingularTransform, s0, s1)
	}

	scale = [2][2]float64{
		{s0, 0},
		{0, s1},
	}

	rotation = [2][2]float64{
		{m[0][0] / s0, m[0][1] / s1},
		{m[1][0] / s0, m[1][1] / s1},
	}

	return scale, rotation, nil
}
