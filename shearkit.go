// Package shearkit provides support code for weak-lensing shear measurement:
// weighted shear-bias regression, pixel containers with postage-stamp
// extraction, FITS image and table I/O, TAN projection WCS, and a chunked
// binary store for whole VIS exposures.
//
// # Core Features
//
//   - Weighted linear regression with mergeable sufficient statistics
//   - Multiplicative/additive bias measurements against requirement targets
//   - Science images with aligned mask, noisemap, segmentation, background,
//     and weight planes, plus padded stamp extraction
//   - Pure-Go FITS reading and writing (images, binary tables, headers)
//   - Chunked exposure store with per-band compression (Zstd, S2, LZ4)
//
// # Shear Bias
//
// Regress measured shear on true shear and express the fit as bias:
//
//	result, _ := shearkit.FitLine(trueShear, measShear, measErr)
//	bias := shearkit.NewBiasMeasurement(result)
//	fmt.Printf("m = %g +/- %g\n", bias.M, bias.MErr)
//
// Statistics from independent batches merge before fitting:
//
//	s1, _ := stats.Collect(x1, y1, nil)
//	s2, _ := stats.Collect(x2, y2, nil)
//	result := stats.Combine([]*stats.LinearStats{s1, s2}).Regress()
//
// # Exposure Stores
//
// Convert a VIS exposure's FITS products into one store and read stamps back
// without decompressing whole detector planes:
//
//	store, _ := shearkit.ConvertExposure(det, bkg, wgt, seg)
//	dec, _ := shearkit.NewExposureDecoder(store)
//	img, _ := dec.Stamp("1-1", 2113.2, 1855.9, 384, 384)
//
// # Package Structure
//
// This package provides thin top-level wrappers around the most common entry
// points. For fine-grained control, use the stats, pix, fits, wcs, table,
// exposure, photo, and fileio packages directly.
package shearkit

import (
	"github.com/astrofold/shearkit/exposure"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/hash"
	"github.com/astrofold/shearkit/pix"
	"github.com/astrofold/shearkit/stats"
)

// FitLine runs a weighted linear regression of y on x in one call.
//
// Weights are yErr^-2, or unit weights when yErr is nil; NaN samples are
// skipped. Degenerate fits come back with sentinel values (Inf/NaN fields)
// rather than errors, matching stats.FitLine.
//
// Parameters:
//   - x: Independent variable samples (for shear calibration, the true shear)
//   - y: Dependent variable samples (the measured shear)
//   - yErr: Optional per-sample errors on y; nil means unit weights
//
// Returns:
//   - *stats.RegressionResult: Fitted slope, intercept, errors, covariance
//   - error: errs.ErrLengthMismatch if the slices disagree in length
func FitLine(x, y, yErr []float64) (*stats.RegressionResult, error) {
	return stats.FitLine(x, y, yErr)
}

// FitLineBootstrap fits a line with bootstrap-resampled error estimates,
// for samples whose errors are unknown or correlated.
//
// Parameters:
//   - x, y, yErr: Samples as for FitLine
//   - opts: stats.WithBootstrapSamples, stats.WithBootstrapSeed
//
// Returns:
//   - *stats.RegressionResult: Fit with bootstrap spreads as errors
//   - error: errs.ErrLengthMismatch or errs.ErrInvalidSampleCount
func FitLineBootstrap(x, y, yErr []float64, opts ...stats.BootstrapOption) (*stats.RegressionResult, error) {
	return stats.FitLineBootstrap(x, y, yErr, opts...)
}

// NewBiasMeasurement expresses a shear calibration fit as multiplicative
// bias M = slope - 1 and additive bias C = intercept, assessed against the
// requirement targets.
//
// Parameters:
//   - r: Fitted regression, typically from FitLine
//   - opts: stats.WithMTarget, stats.WithCTarget
//
// Returns:
//   - *stats.BiasMeasurement: The bias assessment
func NewBiasMeasurement(r *stats.RegressionResult, opts ...stats.BiasOption) *stats.BiasMeasurement {
	return stats.NewBiasMeasurement(r, opts...)
}

// NewImage builds a science image from a float32 plane and optional aligned
// planes.
//
// Parameters:
//   - data: Science plane; the image takes ownership
//   - opts: pix.WithMask, pix.WithNoisemap, pix.WithSegmap, pix.WithWCS, ...
//
// Returns:
//   - *pix.Image: The assembled image
//   - error: errs.ErrShapeMismatch if an attached plane disagrees in shape
//
// Example:
//
//	img, err := shearkit.NewImage(sci,
//	    pix.WithMask(flags),
//	    pix.WithNoisemap(rms),
//	)
//	stamp, err := img.ExtractStamp(2113.2, 1855.9, 384)
func NewImage(data *pix.Plane[float32], opts ...pix.ImageOption) (*pix.Image, error) {
	return pix.New(data, opts...)
}

// ReadFITS reads and decodes a FITS file from disk.
//
// Parameters:
//   - path: File to read
//
// Returns:
//   - *fits.File: Decoded HDU list
//   - error: I/O or FITS format errors
func ReadFITS(path string) (*fits.File, error) {
	return fits.ReadFile(path)
}

// NewExposureEncoder creates an encoder for building a chunked exposure
// store detector by detector.
//
// Parameters:
//   - opts: exposure.WithChunkRows, exposure.WithCompression, ...
//
// Returns:
//   - *exposure.Encoder: The created encoder
//   - error: An error if an option is invalid
//
// Example:
//
//	enc, _ := shearkit.NewExposureEncoder(exposure.WithCompression(format.CompressionLZ4))
//	enc.StartDetector("1-1")
//	enc.AddLayer(format.LayerSci, sci)
//	enc.EndDetector()
//	store, _ := enc.Finish()
func NewExposureEncoder(opts ...exposure.EncoderOption) (*exposure.Encoder, error) {
	return exposure.NewEncoder(opts...)
}

// NewExposureDecoder creates a decoder for reading an exposure store.
//
// The decoder parses the header, metadata, and index eagerly and reads
// payload chunks on demand, so stamps touch only the row bands they overlap.
//
// Parameters:
//   - data: Complete store bytes
//
// Returns:
//   - *exposure.Decoder: The created decoder
//   - error: An error if the store is malformed
func NewExposureDecoder(data []byte) (*exposure.Decoder, error) {
	return exposure.NewDecoder(data)
}

// ConvertExposure converts a VIS exposure FITS set into a store in one call.
//
// Parameters:
//   - det: DET file bytes (sci/rms/flg extension triplets)
//   - bkg, wgt, seg: Optional companion file bytes, nil to skip that layer
//   - opts: Encoder options
//
// Returns:
//   - []byte: The encoded store
//   - error: FITS or encoder errors
func ConvertExposure(det, bkg, wgt, seg []byte, opts ...exposure.EncoderOption) ([]byte, error) {
	return exposure.ConvertFITS(det, bkg, wgt, seg, opts...)
}

// DetectorID converts a detector name to its 64-bit hash identifier, as
// stored in exposure store index entries.
//
// The hash is deterministic xxHash64; the store keeps the names alongside in
// its metadata section, so IDs never need reversing.
//
// Parameters:
//   - name: Detector name, e.g. "1-1" or "4-2.F"
//
// Returns:
//   - uint64: The hash identifier
func DetectorID(name string) uint64 {
	return hash.ID(name)
}
