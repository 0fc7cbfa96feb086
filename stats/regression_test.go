package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

// Reference vector cross-checked against GSL's gsl_fit_wlinear.
var (
	refX    = []float64{1, 2, 4, 8, 7}
	refY    = []float64{10, 11, 9, 7, 12}
	refYErr = []float64{0.1, 0.2, 0.1, 0.2, 0.4}
)

func TestFitLineReferenceVector(t *testing.T) {
	r, err := FitLine(refX, refY, refYErr)
	require.NoError(t, err)

	require.InDelta(t, -0.34995112414467133, r.Slope, 1e-12)
	require.InDelta(t, 10.54740957966764, r.Intercept, 1e-12)
	require.InDelta(t, 0.028311906106274067, r.SlopeErr, 1e-12)
	require.InDelta(t, 0.1076724332578932, r.InterceptErr, 1e-12)
	require.InDelta(t, -0.0024828934506353857, r.Covar, 1e-12)
}

func TestFitLineUnweightedMatchesSimpleRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 5, 7}

	r, err := FitLine(x, y, nil)
	require.NoError(t, err)

	require.InDelta(t, 2.0, r.Slope, 1e-12)
	require.InDelta(t, 1.0, r.Intercept, 1e-12)
	assert.False(t, math.IsInf(r.SlopeErr, 0))
	assert.False(t, math.IsNaN(r.InterceptErr))
	assert.Positive(t, r.SlopeErr)
	assert.Positive(t, r.InterceptErr)
}

func TestCollectLengthMismatch(t *testing.T) {
	_, err := Collect([]float64{1, 2}, []float64{1}, nil)
	require.ErrorIs(t, err, errs.ErrLengthMismatch)

	_, err = Collect([]float64{1, 2}, []float64{1, 2}, []float64{0.1})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestCollectSkipsNaNSamples(t *testing.T) {
	nan := math.NaN()

	// The NaN sample must vanish entirely: same fit as without it.
	s, err := Collect([]float64{1, 2, 3, 4}, []float64{2, 4, nan, 8}, nil)
	require.NoError(t, err)

	require.InDelta(t, 3.0, s.W, 1e-12)

	r := s.Regress()
	require.InDelta(t, 2.0, r.Slope, 1e-12)
	require.InDelta(t, 0.0, r.Intercept, 1e-12)

	// A NaN error bar drops its sample the same way.
	s2, err := Collect([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, []float64{1, 1, nan, 1})
	require.NoError(t, err)
	require.InDelta(t, 3.0, s2.W, 1e-12)
}

func TestCollectAllNaNIsDegenerate(t *testing.T) {
	nan := math.NaN()

	s, err := Collect([]float64{1, 2, 3}, []float64{nan, nan, nan}, nil)
	require.NoError(t, err)

	assert.Zero(t, s.W)
	assert.Zero(t, s.Xm)
	assert.Zero(t, s.X2m)
	assert.Zero(t, s.Ym)
	assert.Zero(t, s.XYm)

	r := s.Regress()
	assert.True(t, math.IsInf(r.Slope, 1))
	assert.True(t, math.IsNaN(r.Intercept))
	assert.True(t, math.IsInf(r.SlopeErr, 1))
	assert.True(t, math.IsNaN(r.InterceptErr))
	assert.True(t, math.IsNaN(r.Covar))
}

func TestCollectEmptyIsDegenerate(t *testing.T) {
	s, err := Collect(nil, nil, nil)
	require.NoError(t, err)

	assert.Zero(t, s.W)
	assert.Zero(t, s.Xm)
}

func TestRegressZeroXSpread(t *testing.T) {
	s, err := Collect([]float64{5, 5, 5}, []float64{1, 2, 3}, nil)
	require.NoError(t, err)

	r := s.Regress()
	assert.True(t, math.IsInf(r.Slope, 1))
	assert.True(t, math.IsNaN(r.Intercept))
	assert.True(t, math.IsInf(r.SlopeErr, 1))
	assert.True(t, math.IsNaN(r.InterceptErr))
	assert.True(t, math.IsNaN(r.Covar))
}

func TestCombineMatchesSinglePass(t *testing.T) {
	full, err := Collect(refX, refY, refYErr)
	require.NoError(t, err)

	first, err := Collect(refX[:2], refY[:2], refYErr[:2])
	require.NoError(t, err)

	second, err := Collect(refX[2:], refY[2:], refYErr[2:])
	require.NoError(t, err)

	combined := Combine([]*LinearStats{first, second})

	require.InDelta(t, full.W, combined.W, 1e-9)
	require.InDelta(t, full.Xm, combined.Xm, 1e-9)
	require.InDelta(t, full.X2m, combined.X2m, 1e-9)
	require.InDelta(t, full.Ym, combined.Ym, 1e-9)
	require.InDelta(t, full.XYm, combined.XYm, 1e-9)

	// And the fit off the merged statistics matches the single-pass fit.
	r := combined.Regress()
	require.InDelta(t, -0.34995112414467133, r.Slope, 1e-9)
	require.InDelta(t, 10.54740957966764, r.Intercept, 1e-9)
}

func TestCombineOrderIndependent(t *testing.T) {
	first, err := Collect(refX[:2], refY[:2], refYErr[:2])
	require.NoError(t, err)

	second, err := Collect(refX[2:], refY[2:], refYErr[2:])
	require.NoError(t, err)

	ab := Combine([]*LinearStats{first, second})
	ba := Combine([]*LinearStats{second, first})

	require.InDelta(t, ab.W, ba.W, 1e-12)
	require.InDelta(t, ab.Xm, ba.Xm, 1e-12)
	require.InDelta(t, ab.X2m, ba.X2m, 1e-12)
	require.InDelta(t, ab.Ym, ba.Ym, 1e-12)
	require.InDelta(t, ab.XYm, ba.XYm, 1e-12)
}

func TestCombineSingleIsIdentity(t *testing.T) {
	s, err := Collect(refX, refY, refYErr)
	require.NoError(t, err)

	combined := Combine([]*LinearStats{s})

	require.InDelta(t, s.W, combined.W, 1e-12)
	require.InDelta(t, s.Xm, combined.Xm, 1e-12)
	require.InDelta(t, s.X2m, combined.X2m, 1e-12)
	require.InDelta(t, s.Ym, combined.Ym, 1e-12)
	require.InDelta(t, s.XYm, combined.XYm, 1e-12)
}

func TestCombineEmptyAndNilEntries(t *testing.T) {
	combined := Combine(nil)
	assert.Zero(t, combined.W)
	assert.Zero(t, combined.Xm)

	combined = Combine([]*LinearStats{nil, nil})
	assert.Zero(t, combined.W)

	s, err := Collect(refX, refY, refYErr)
	require.NoError(t, err)

	combined = Combine([]*LinearStats{nil, s, nil})
	require.InDelta(t, s.W, combined.W, 1e-12)
	require.InDelta(t, s.Xm, combined.Xm, 1e-12)
}

func TestRegressionResultSigmas(t *testing.T) {
	r := &RegressionResult{
		Slope:        2.0,
		SlopeErr:     0.5,
		Intercept:    -3.0,
		InterceptErr: 1.5,
	}

	require.InDelta(t, 4.0, r.SlopeSigma(), 1e-12)
	require.InDelta(t, 2.0, r.InterceptSigma(), 1e-12)
}

func TestRegressionResultString(t *testing.T) {
	r := &RegressionResult{Slope: 1, Intercept: 2, SlopeErr: 0.1, InterceptErr: 0.2, Covar: 0.01}
	s := r.String()

	assert.Contains(t, s, "Slope")
	assert.Contains(t, s, "Intercept")
}
