package stats

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
)

// LinearStats holds the sufficient statistics of an inverse-variance weighted
// least-squares line fit, following GSL's gsl_fit_wlinear formulation.
//
// Two LinearStats built from different sample batches can be merged with
// Combine without revisiting the raw samples, which is how per-batch
// calibration runs are reduced to a single fit.
//
// Invariant: W >= 0 for statistics built by Collect, and whenever W == 0 all
// means are 0 (the degenerate no-data state, never NaN).
//
// Fields:
//   - W: Summed weight of all accumulated samples
//   - Xm: Weighted mean of x
//   - X2m: Weighted mean of x²
//   - Ym: Weighted mean of y
//   - XYm: Weighted mean of x·y
type LinearStats struct {
	// W is the summed weight.
	W float64
	// Xm is the weighted mean of x.
	Xm float64
	// X2m is the weighted mean of x squared.
	X2m float64
	// Ym is the weighted mean of y.
	Ym float64
	// XYm is the weighted mean of the product x*y.
	XYm float64
}

// RegressionResult holds a fitted line and its propagated errors.
//
// Degenerate fits are expressed through sentinel values rather than errors:
// zero x-spread yields Slope = +Inf and Intercept = NaN, and zero total weight
// additionally yields SlopeErr = +Inf, InterceptErr = NaN, Covar = NaN.
// Callers branch on math.IsInf / math.IsNaN.
//
// Fields:
//   - Slope: Fitted slope of y on x
//   - Intercept: Fitted intercept
//   - SlopeErr: One-sigma error on the slope
//   - InterceptErr: One-sigma error on the intercept
//   - Covar: Covariance of slope with intercept
type RegressionResult struct {
	// Slope is the fitted slope.
	Slope float64
	// Intercept is the fitted intercept.
	Intercept float64
	// SlopeErr is the one-sigma slope error.
	SlopeErr float64
	// InterceptErr is the one-sigma intercept error.
	InterceptErr float64
	// Covar is the slope-intercept covariance.
	Covar float64
}

// Collect accumulates weighted regression statistics from one sample batch.
//
// Weights are w_i = yErr_i^-2, or 1 for every sample when yErr is nil.
// Summation is NaN-aware: a sample with NaN anywhere (x, y, or yErr)
// contributes neither weight nor terms, so a batch with failed measurements
// keeps its valid ones. If the summed weight comes out <= 0 (empty input,
// all-NaN samples, all-zero weights) the means are all set to 0 instead of
// dividing by zero.
//
// Parameters:
//   - x: Independent variable samples (for shear calibration, the true shear)
//   - y: Dependent variable samples (the measured shear)
//   - yErr: Optional per-sample errors on y; nil means unit weights
//
// Returns:
//   - *LinearStats: Accumulated statistics
//   - error: errs.ErrLengthMismatch if the slices disagree in length
//
// Example:
//
//	s, err := stats.Collect(trueShear, measShear, measErr)
//	if err != nil {
//	    return err
//	}
//	result := s.Regress()
func Collect(x, y, yErr []float64) (*LinearStats, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(x)=%d, len(y)=%d", errs.ErrLengthMismatch, len(x), len(y))
	}

	if yErr != nil && len(yErr) != len(y) {
		return nil, fmt.Errorf("%w: len(y)=%d, len(yErr)=%d", errs.ErrLengthMismatch, len(y), len(yErr))
	}

	var sw, sx, sx2, sy, sxy float64

	for i := range x {
		w := 1.0
		if yErr != nil {
			w = 1.0 / (yErr[i] * yErr[i])
		}

		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsNaN(w) {
			continue
		}

		sw += w
		sx += x[i] * w
		sx2 += x[i] * x[i] * w
		sy += y[i] * w
		sxy += x[i] * y[i] * w
	}

	s := &LinearStats{W: sw}
	if sw > 0 {
		s.Xm = sx / sw
		s.X2m = sx2 / sw
		s.Ym = sy / sw
		s.XYm = sxy / sw
	}

	return s, nil
}

// Combine merges per-batch statistics into one, as if every sample had been
// accumulated in a single Collect pass. Weights add plainly; each mean is the
// weight-average of the inputs' means. Nil entries are skipped, and an empty
// or all-nil list yields the degenerate zero statistics.
//
// Parameters:
//   - list: Statistics from independent batches, in any order
//
// Returns:
//   - *LinearStats: The merged statistics
func Combine(list []*LinearStats) *LinearStats {
	combined := &LinearStats{}

	var sx, sx2, sy, sxy float64

	for _, s := range list {
		if s == nil {
			continue
		}

		combined.W += s.W
		sx = nanAdd(sx, s.Xm*s.W)
		sx2 = nanAdd(sx2, s.X2m*s.W)
		sy = nanAdd(sy, s.Ym*s.W)
		sxy = nanAdd(sxy, s.XYm*s.W)
	}

	if combined.W > 0 {
		combined.Xm = sx / combined.W
		combined.X2m = sx2 / combined.W
		combined.Ym = sy / combined.W
		combined.XYm = sxy / combined.W
	}

	return combined
}

// Regress derives the fitted line from the accumulated statistics.
//
// With dx2m = X2m - Xm² (the weighted x-variance) and dxym = XYm - Xm·Ym,
// the fit is Slope = dxym/dx2m, Intercept = Ym - Xm·Slope, with
// SlopeErr = sqrt(1/(W·dx2m)), InterceptErr = sqrt((1 + Xm²/dx2m)/W) and
// Covar = -Xm/(W·dx2m).
//
// Degenerate statistics never produce an error. dx2m <= 0 (no x-spread)
// yields Slope = +Inf, Intercept = NaN; dx2m <= 0 or W == 0 yields
// SlopeErr = +Inf, InterceptErr = NaN, Covar = NaN.
//
// Returns:
//   - *RegressionResult: The fitted line, possibly carrying sentinel values
func (s *LinearStats) Regress() *RegressionResult {
	dx2m := s.X2m - s.Xm*s.Xm
	dxym := s.XYm - s.Xm*s.Ym

	r := &RegressionResult{}

	if dx2m <= 0 {
		r.Slope = math.Inf(1)
		r.Intercept = math.NaN()
	} else {
		r.Slope = dxym / dx2m
		r.Intercept = s.Ym - s.Xm*r.Slope
	}

	if dx2m <= 0 || s.W == 0 {
		r.SlopeErr = math.Inf(1)
		r.InterceptErr = math.NaN()
		r.Covar = math.NaN()
	} else {
		r.SlopeErr = math.Sqrt(1.0 / (s.W * dx2m))
		r.InterceptErr = math.Sqrt((1.0 + s.Xm*s.Xm/dx2m) / s.W)
		r.Covar = -s.Xm / (s.W * dx2m)
	}

	return r
}

// FitLine runs the analytic weighted fit in one call: Collect then Regress.
//
// Parameters:
//   - x: Independent variable samples
//   - y: Dependent variable samples
//   - yErr: Optional per-sample errors on y; nil means unit weights
//
// Returns:
//   - *RegressionResult: The fitted line
//   - error: errs.ErrLengthMismatch if the slices disagree in length
func FitLine(x, y, yErr []float64) (*RegressionResult, error) {
	s, err := Collect(x, y, yErr)
	if err != nil {
		return nil, err
	}

	return s.Regress(), nil
}

// SlopeSigma reports how many error bars the slope sits away from zero.
func (r *RegressionResult) SlopeSigma() float64 {
	return math.Abs(r.Slope) / r.SlopeErr
}

// InterceptSigma reports how many error bars the intercept sits away from zero.
func (r *RegressionResult) InterceptSigma() float64 {
	return math.Abs(r.Intercept) / r.InterceptErr
}

// String returns a string representation of the result.
func (r *RegressionResult) String() string {
	return fmt.Sprintf("RegressionResult{Slope: %.6g ± %.6g, Intercept: %.6g ± %.6g, Covar: %.6g}",
		r.Slope, r.SlopeErr, r.Intercept, r.InterceptErr, r.Covar)
}

// nanAdd adds v to sum, treating NaN as zero. Infinities pass through.
func nanAdd(sum, v float64) float64 {
	if math.IsNaN(v) {
		return sum
	}

	return sum + v
}
