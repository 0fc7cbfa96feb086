package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

func TestDecomposeTransformPureRotation(t *testing.T) {
	theta := math.Pi / 6
	cos, sin := math.Cos(theta), math.Sin(theta)

	m := [2][2]float64{
		{cos, -sin},
		{sin, cos},
	}

	scale, rotation, err := DecomposeTransform(m)
	require.NoError(t, err)

	require.InDelta(t, 1.0, scale[0][0], 1e-12)
	require.InDelta(t, 1.0, scale[1][1], 1e-12)
	require.InDelta(t, 0.0, scale[0][1], 1e-12)
	require.InDelta(t, 0.0, scale[1][0], 1e-12)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.InDelta(t, m[i][j], rotation[i][j], 1e-12)
		}
	}
}

func TestDecomposeTransformScaleAndRotation(t *testing.T) {
	theta := 0.7
	cos, sin := math.Cos(theta), math.Sin(theta)
	s0, s1 := 2.0, 0.5

	// m = R(theta) * diag(s0, s1)
	m := [2][2]float64{
		{s0 * cos, -s1 * sin},
		{s0 * sin, s1 * cos},
	}

	scale, rotation, err := DecomposeTransform(m)
	require.NoError(t, err)

	require.InDelta(t, s0, scale[0][0], 1e-12)
	require.InDelta(t, s1, scale[1][1], 1e-12)

	require.InDelta(t, cos, rotation[0][0], 1e-12)
	require.InDelta(t, -sin, rotation[0][1], 1e-12)
	require.InDelta(t, sin, rotation[1][0], 1e-12)
	require.InDelta(t, cos, rotation[1][1], 1e-12)

	// Rotation columns are unit vectors.
	require.InDelta(t, 1.0, math.Hypot(rotation[0][0], rotation[1][0]), 1e-12)
	require.InDelta(t, 1.0, math.Hypot(rotation[0][1], rotation[1][1]), 1e-12)

	// rotation * scale rebuilds m.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			rebuilt := rotation[i][0]*scale[0][j] + rotation[i][1]*scale[1][j]
			require.InDelta(t, m[i][j], rebuilt, 1e-12)
		}
	}
}

func TestDecomposeTransformFlip(t *testing.T) {
	// A reflection stays in the rotation factor with determinant -1.
	m := [2][2]float64{
		{3, 0},
		{0, -4},
	}

	scale, rotation, err := DecomposeTransform(m)
	require.NoError(t, err)

	require.InDelta(t, 3.0, scale[0][0], 1e-12)
	require.InDelta(t, 4.0, scale[1][1], 1e-12)

	det := rotation[0][0]*rotation[1][1] - rotation[0][1]*rotation[1][0]
	require.InDelta(t, -1.0, det, 1e-12)
}

func TestDecomposeTransformSingular(t *testing.T) {
	m := [2][2]float64{
		{0, 1},
		{0, 2},
	}

	_, _, err := DecomposeTransform(m)
	assert.ErrorIs(t, err, errs.ErrSingularTransform)
}
