// Package stats provides the shear bias statistics toolkit: inverse-variance
// weighted linear regression, bias measurements against mission requirements,
// BFD moment solves, and bootstrap error estimation.
//
// # Overview
//
// Shear calibration regresses measured shear against true (simulated) shear.
// For an unbiased estimator the fit is the identity line, so results are
// expressed as a multiplicative bias M = slope - 1 and an additive bias
// C = intercept, each with a propagated error and a requirement target.
//
// The regression follows GSL's gsl_fit_wlinear formulation with weights
// w = yErr^-2. NaN samples are skipped rather than poisoning the sums, since
// shear estimates for individual objects legitimately fail.
//
// # Accumulate, then combine
//
// Calibration runs are distributed: each batch of simulations produces a
// LinearStats value (five floats), and batches are merged later without
// access to the raw points:
//
//	perBatch := make([]*stats.LinearStats, 0, nBatches)
//	for _, batch := range batches {
//	    s, err := stats.Collect(batch.TrueShear, batch.MeasuredShear, batch.ShearErr)
//	    if err != nil {
//	        return err
//	    }
//	    perBatch = append(perBatch, s)
//	}
//
//	result := stats.Combine(perBatch).Regress()
//	bias := stats.NewBiasMeasurement(result)
//	fmt.Printf("M = %.6f ± %.6f (%.1f sigma over target)\n", bias.M, bias.MErr, bias.MSigma())
//
// The combined statistics reproduce exactly the regression a single pass over
// all points would give: weights add, and the means merge weight-averaged.
//
// # BFD moments
//
// The Bayesian Fourier Domain method does not produce per-object shear
// estimates; it accumulates a 4-vector b and a symmetric 4x4 matrix A of
// moment sums. BFDSums carries those sums, CombineBFDSums adds them
// field-wise, and SolveBFDSums solves the normal equations A·p = b for the
// requested shear component.
//
// # Bootstrap errors
//
// When per-object errors are untrusted, FitLineBootstrap keeps the analytic
// central values but replaces the error bars with the spread of fits over
// with-replacement resamples. Resampling is seeded and reproducible.
package stats
