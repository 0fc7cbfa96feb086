package stats

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/internal/pool"
)

// Bootstrap resampling defaults. Both are fixed constants so calibration
// pipelines reproduce bit-identical error bars run over run.
const (
	// DefaultBootstrapSeed seeds the resampling RNG.
	DefaultBootstrapSeed int64 = 1234
	// DefaultBootstrapSamples is the number of resampled datasets.
	DefaultBootstrapSamples = 50
)

// bootstrapConfig holds the resampling parameters applied by FitLineBootstrap.
type bootstrapConfig struct {
	seed    int64
	samples int
}

// BootstrapOption configures FitLineBootstrap.
type BootstrapOption = options.Option[*bootstrapConfig]

// WithBootstrapSeed overrides the resampling seed (default
// DefaultBootstrapSeed).
func WithBootstrapSeed(seed int64) BootstrapOption {
	return options.NoError(func(cfg *bootstrapConfig) {
		cfg.seed = seed
	})
}

// WithBootstrapSamples overrides the number of resampled datasets (default
// DefaultBootstrapSamples).
//
// Returns an option that fails with errs.ErrInvalidSampleCount for counts
// below 2, since a spread needs at least two fits.
func WithBootstrapSamples(samples int) BootstrapOption {
	return options.New(func(cfg *bootstrapConfig) error {
		if samples < 2 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidSampleCount, samples)
		}

		cfg.samples = samples

		return nil
	})
}

// FitLineBootstrap fits a weighted line with bootstrap error bars.
//
// The central Slope and Intercept come from the analytic fit over the full
// sample, exactly as FitLine returns them. The errors are replaced by the
// spread of analytic fits across resampled datasets: each resample draws
// len(x) samples with replacement, SlopeErr and InterceptErr are the
// population standard deviations of the resample slopes and intercepts, and
// Covar is their covariance. Use it when the per-point yErr values cannot be
// trusted as accurate or independent.
//
// Degenerate resamples (for example a draw that repeats one x value) are
// skipped. If fewer than two finite resample fits remain, or the input is
// empty, the analytic errors are kept.
//
// Deterministic for a fixed seed.
//
// Parameters:
//   - x: Independent variable samples
//   - y: Dependent variable samples
//   - yErr: Optional per-sample errors on y; nil means unit weights
//   - opts: Optional seed and sample-count overrides
//
// Returns:
//   - *RegressionResult: Analytic central values with bootstrap errors
//   - error: errs.ErrLengthMismatch for mismatched slices,
//     errs.ErrInvalidSampleCount from WithBootstrapSamples
//
// Example:
//
//	result, err := stats.FitLineBootstrap(trueShear, measShear, nil,
//	    stats.WithBootstrapSamples(200))
func FitLineBootstrap(x, y, yErr []float64, opts ...BootstrapOption) (*RegressionResult, error) {
	cfg := bootstrapConfig{
		seed:    DefaultBootstrapSeed,
		samples: DefaultBootstrapSamples,
	}

	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	result, err := FitLine(x, y, yErr)
	if err != nil {
		return nil, err
	}

	n := len(x)
	if n == 0 {
		return result, nil
	}

	rng := rand.New(rand.NewSource(cfg.seed))

	rx, releaseX := pool.GetFloat64Slice(n)
	defer releaseX()

	ry, releaseY := pool.GetFloat64Slice(n)
	defer releaseY()

	var re []float64
	if yErr != nil {
		var releaseE func()

		re, releaseE = pool.GetFloat64Slice(n)
		defer releaseE()
	}

	slopes := make([]float64, 0, cfg.samples)
	intercepts := make([]float64, 0, cfg.samples)

	for sample := 0; sample < cfg.samples; sample++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			rx[i] = x[j]
			ry[i] = y[j]

			if re != nil {
				re[i] = yErr[j]
			}
		}

		// Lengths match by construction, so Collect cannot fail here.
		s, _ := Collect(rx, ry, re)
		r := s.Regress()

		if math.IsInf(r.Slope, 0) || math.IsNaN(r.Slope) || math.IsNaN(r.Intercept) {
			continue
		}

		slopes = append(slopes, r.Slope)
		intercepts = append(intercepts, r.Intercept)
	}

	if len(slopes) < 2 {
		return result, nil
	}

	result.SlopeErr = popStdDev(slopes)
	result.InterceptErr = popStdDev(intercepts)
	result.Covar = stat.Covariance(slopes, intercepts, nil)

	return result, nil
}

// popStdDev is the population (not sample) standard deviation, the spread
// definition bootstrap error bars use.
func popStdDev(xs []float64) float64 {
	return math.Sqrt(stat.MomentAbout(2, xs, stat.Mean(xs, nil), nil))
}
