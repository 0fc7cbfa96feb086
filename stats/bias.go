package stats

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/internal/options"
)

// Requirement targets on the shear bias, from the mission's calibration
// error budget.
const (
	// DefaultMTarget is the multiplicative bias tolerance |M|.
	DefaultMTarget = 1e-4
	// DefaultCTarget is the additive bias tolerance |C|.
	DefaultCTarget = 5e-6
)

// biasConfig holds the requirement targets applied by NewBiasMeasurement.
type biasConfig struct {
	mTarget float64
	cTarget float64
}

// BiasOption configures NewBiasMeasurement.
type BiasOption = options.Option[*biasConfig]

// WithMTarget overrides the multiplicative bias target (default
// DefaultMTarget).
func WithMTarget(target float64) BiasOption {
	return options.NoError(func(cfg *biasConfig) {
		cfg.mTarget = target
	})
}

// WithCTarget overrides the additive bias target (default DefaultCTarget).
func WithCTarget(target float64) BiasOption {
	return options.NoError(func(cfg *biasConfig) {
		cfg.cTarget = target
	})
}

// BiasMeasurement expresses a calibration fit as multiplicative and additive
// shear bias against requirement targets.
//
// An unbiased estimator regresses onto the identity line, so M = Slope - 1
// and C = Intercept. Errors and the covariance carry over from the fit
// unchanged.
//
// Fields:
//   - M, MErr: Multiplicative bias and its one-sigma error
//   - C, CErr: Additive bias and its one-sigma error
//   - MCCovar: Covariance of M with C
//   - MTarget, CTarget: Requirement tolerances the sigmas are measured against
type BiasMeasurement struct {
	// M is the multiplicative bias (slope - 1).
	M float64
	// MErr is the one-sigma error on M.
	MErr float64
	// C is the additive bias (intercept).
	C float64
	// CErr is the one-sigma error on C.
	CErr float64
	// MCCovar is the covariance of M with C.
	MCCovar float64
	// MTarget is the requirement tolerance on |M|.
	MTarget float64
	// CTarget is the requirement tolerance on |C|.
	CTarget float64
}

// NewBiasMeasurement derives bias measurements from a regression of measured
// shear on true shear. Targets default to the mission requirement values;
// override them with WithMTarget / WithCTarget when assessing against a
// different budget.
//
// Parameters:
//   - r: Fitted regression, typically from FitLine or Combine(...).Regress()
//   - opts: Optional target overrides
//
// Returns:
//   - *BiasMeasurement: The bias assessment
//
// Example:
//
//	bias := stats.NewBiasMeasurement(result)
//	if bias.MSigma() > 0 {
//	    log.Printf("multiplicative bias out of tolerance by %.1f sigma", bias.MSigma())
//	}
func NewBiasMeasurement(r *RegressionResult, opts ...BiasOption) *BiasMeasurement {
	cfg := biasConfig{
		mTarget: DefaultMTarget,
		cTarget: DefaultCTarget,
	}

	// Both bias options are infallible.
	_ = options.Apply(&cfg, opts...)

	return &BiasMeasurement{
		M:       r.Slope - 1,
		MErr:    r.SlopeErr,
		C:       r.Intercept,
		CErr:    r.InterceptErr,
		MCCovar: r.Covar,
		MTarget: cfg.mTarget,
		CTarget: cfg.cTarget,
	}
}

// MSigma reports how many error bars |M| sits beyond the target tolerance.
// Measurements within tolerance report exactly 0, never a negative value.
func (b *BiasMeasurement) MSigma() float64 {
	return sigmaOverTarget(b.M, b.MErr, b.MTarget)
}

// CSigma reports how many error bars |C| sits beyond the target tolerance.
// Measurements within tolerance report exactly 0, never a negative value.
func (b *BiasMeasurement) CSigma() float64 {
	return sigmaOverTarget(b.C, b.CErr, b.CTarget)
}

// String returns a string representation of the measurement.
func (b *BiasMeasurement) String() string {
	return fmt.Sprintf("BiasMeasurement{M: %.6g ± %.6g (%.2f sigma), C: %.6g ± %.6g (%.2f sigma)}",
		b.M, b.MErr, b.MSigma(), b.C, b.CErr, b.CSigma())
}

// sigmaOverTarget measures the excess of |value| over |target| in units of
// err, floored at zero.
func sigmaOverTarget(value, err, target float64) float64 {
	diff := math.Abs(value) - math.Abs(target)
	if diff > 0 {
		return diff / err
	}

	return 0
}
