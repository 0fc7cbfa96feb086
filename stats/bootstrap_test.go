package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

// A fixed noisy line around y = 10.2 + 0.3x with quoted errors of 0.5.
var (
	bootX = []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	bootY = []float64{
		10.41, 10.06, 10.92, 11.68, 11.07,
		11.75, 11.50, 12.57, 12.47, 13.30,
	}
	bootYErr = []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
)

func TestFitLineBootstrapDeterministic(t *testing.T) {
	first, err := FitLineBootstrap(bootX, bootY, bootYErr)
	require.NoError(t, err)

	second, err := FitLineBootstrap(bootX, bootY, bootYErr)
	require.NoError(t, err)

	require.Equal(t, first.Slope, second.Slope)
	require.Equal(t, first.Intercept, second.Intercept)
	require.Equal(t, first.SlopeErr, second.SlopeErr)
	require.Equal(t, first.InterceptErr, second.InterceptErr)
	require.Equal(t, first.Covar, second.Covar)
}

func TestFitLineBootstrapCentralValuesAnalytic(t *testing.T) {
	analytic, err := FitLine(bootX, bootY, bootYErr)
	require.NoError(t, err)

	boot, err := FitLineBootstrap(bootX, bootY, bootYErr)
	require.NoError(t, err)

	require.Equal(t, analytic.Slope, boot.Slope)
	require.Equal(t, analytic.Intercept, boot.Intercept)
}

func TestFitLineBootstrapErrorsNearAnalytic(t *testing.T) {
	analytic, err := FitLine(bootX, bootY, bootYErr)
	require.NoError(t, err)

	boot, err := FitLineBootstrap(bootX, bootY, bootYErr)
	require.NoError(t, err)

	// Resampled spreads estimate the same uncertainty as the analytic
	// propagation; on well-behaved input they agree to well within 5x.
	assert.Greater(t, boot.SlopeErr, analytic.SlopeErr/5)
	assert.Less(t, boot.SlopeErr, analytic.SlopeErr*5)
	assert.Greater(t, boot.InterceptErr, analytic.InterceptErr/5)
	assert.Less(t, boot.InterceptErr, analytic.InterceptErr*5)
	assert.False(t, math.IsNaN(boot.Covar))
}

func TestFitLineBootstrapSeedChangesErrors(t *testing.T) {
	def, err := FitLineBootstrap(bootX, bootY, bootYErr)
	require.NoError(t, err)

	other, err := FitLineBootstrap(bootX, bootY, bootYErr, WithBootstrapSeed(5678))
	require.NoError(t, err)

	// Central values stay analytic; the resampled errors move with the seed.
	require.Equal(t, def.Slope, other.Slope)
	assert.NotEqual(t, def.SlopeErr, other.SlopeErr)
}

func TestFitLineBootstrapSampleCountOption(t *testing.T) {
	_, err := FitLineBootstrap(bootX, bootY, bootYErr, WithBootstrapSamples(1))
	require.ErrorIs(t, err, errs.ErrInvalidSampleCount)

	r, err := FitLineBootstrap(bootX, bootY, bootYErr, WithBootstrapSamples(200))
	require.NoError(t, err)
	assert.Positive(t, r.SlopeErr)
}

func TestFitLineBootstrapLengthMismatch(t *testing.T) {
	_, err := FitLineBootstrap([]float64{1, 2}, []float64{1}, nil)
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestFitLineBootstrapEmptyInput(t *testing.T) {
	r, err := FitLineBootstrap(nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, math.IsInf(r.Slope, 1))
	assert.True(t, math.IsNaN(r.Intercept))
}

func TestFitLineBootstrapDegenerateKeepsAnalyticErrors(t *testing.T) {
	// Zero x-spread: every resample is degenerate, so no spread can be
	// measured and the analytic sentinels survive.
	r, err := FitLineBootstrap([]float64{5, 5, 5}, []float64{1, 2, 3}, nil)
	require.NoError(t, err)

	assert.True(t, math.IsInf(r.Slope, 1))
	assert.True(t, math.IsInf(r.SlopeErr, 1))
	assert.True(t, math.IsNaN(r.InterceptErr))
}

func TestFitLineBootstrapNilYErr(t *testing.T) {
	r, err := FitLineBootstrap(bootX, bootY, nil)
	require.NoError(t, err)

	assert.Positive(t, r.SlopeErr)
	assert.Positive(t, r.InterceptErr)
}
