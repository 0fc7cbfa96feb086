// Package photo implements the photometric conversions of the VIS imaging
// chain: magnitude/flux with the mission zeropoints, electron/ADU gain
// conversions, and the per-pixel noise model used to build default noise
// maps.
package photo

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
)

// Mission photometric zeropoints, in AB magnitudes for one second of
// exposure.
const (
	// MagVisZeropoint is the VIS band zeropoint.
	MagVisZeropoint = 25.6527
	// MagIZeropoint is the I band zeropoint.
	MagIZeropoint = 25.3884
)

// Detector defaults, used when image headers carry no calibration values.
const (
	// DefaultGain is the detector gain in electrons per ADU.
	DefaultGain = 3.1
	// DefaultReadNoise is the detector read noise in electrons per pixel.
	DefaultReadNoise = 4.5
	// DefaultPixelScale is the VIS pixel scale in arcsec per pixel.
	DefaultPixelScale = 0.1

	// DetectorWidth and DetectorHeight are the VIS detector dimensions in
	// pixels.
	DetectorWidth  = 4096
	DetectorHeight = 4136
)

// FluxFromMag converts a magnitude to a flux (expected electron count per
// second) relative to the given zeropoint.
func FluxFromMag(mag, zeropoint float64) float64 {
	return math.Pow(10, 0.4*(zeropoint-mag))
}

// MagFromFlux converts a flux to a magnitude relative to the given
// zeropoint.
//
// Returns:
//   - float64: The magnitude
//   - error: errs.ErrInvalidFlux for a non-positive flux
func MagFromFlux(flux, zeropoint float64) (float64, error) {
	if flux <= 0 {
		return 0, fmt.Errorf("%w: %g", errs.ErrInvalidFlux, flux)
	}

	return zeropoint - 2.5*math.Log10(flux), nil
}

// CountFromMagVis returns the expected electron count of a VIS-band source
// over the given exposure time in seconds.
func CountFromMagVis(mag, expTime float64) float64 {
	return expTime * FluxFromMag(mag, MagVisZeropoint)
}

// MagVisFromCount returns the VIS-band magnitude of an electron count over
// the given exposure time in seconds.
func MagVisFromCount(count, expTime float64) (float64, error) {
	return MagFromFlux(count/expTime, MagVisZeropoint)
}

// CountFromMagI returns the expected electron count of an I-band source over
// the given exposure time in seconds.
func CountFromMagI(mag, expTime float64) float64 {
	return expTime * FluxFromMag(mag, MagIZeropoint)
}

// MagIFromCount returns the I-band magnitude of an electron count over the
// given exposure time in seconds.
func MagIFromCount(count, expTime float64) (float64, error) {
	return MagFromFlux(count/expTime, MagIZeropoint)
}

// ADUFromCount converts an electron count to ADU with the given gain
// (e-/ADU).
func ADUFromCount(count, gain float64) float64 {
	return count / gain
}

// CountFromADU converts an intensity in ADU to an electron count with the
// given gain (e-/ADU).
func CountFromADU(adu, gain float64) float64 {
	return adu * gain
}

// SkyLevelADUPerPixel converts a sky level per square arcsecond to a level
// per pixel for the given pixel scale (arcsec/pixel).
func SkyLevelADUPerPixel(skyADUPerSqArcsec, pixelScale float64) float64 {
	return skyADUPerSqArcsec * pixelScale * pixelScale
}

// SkyLevelCountPerPixel converts a sky level per square arcsecond to an
// electron count per pixel.
func SkyLevelCountPerPixel(skyADUPerSqArcsec, pixelScale, gain float64) float64 {
	return CountFromADU(SkyLevelADUPerPixel(skyADUPerSqArcsec, pixelScale), gain)
}

// CountLambdaPerPixel returns the Poisson expectation of a pixel in
// electrons: the pixel's own expected counts plus the sky level.
func CountLambdaPerPixel(pixelADU, skyADUPerSqArcsec, pixelScale, gain float64) float64 {
	return CountFromADU(pixelADU, gain) + SkyLevelCountPerPixel(skyADUPerSqArcsec, pixelScale, gain)
}

// ReadNoiseADUPerPixel converts the read noise from electrons to ADU.
func ReadNoiseADUPerPixel(readNoiseCount, gain float64) float64 {
	return readNoiseCount / gain
}

// VarADUPerPixel returns the total noise variance of a pixel in ADU²:
// Poisson variance of source plus sky, converted through the gain twice,
// plus the squared read noise.
func VarADUPerPixel(pixelADU, skyADUPerSqArcsec, readNoiseCount, pixelScale, gain float64) float64 {
	lambda := CountLambdaPerPixel(pixelADU, skyADUPerSqArcsec, pixelScale, gain)
	poisson := lambda / (gain * gain)

	readNoise := ReadNoiseADUPerPixel(readNoiseCount, gain)

	return poisson + readNoise*readNoise
}

// SigmaADUPerPixel returns the total noise sigma of a pixel in ADU.
func SigmaADUPerPixel(pixelADU, skyADUPerSqArcsec, readNoiseCount, pixelScale, gain float64) float64 {
	return math.Sqrt(VarADUPerPixel(pixelADU, skyADUPerSqArcsec, readNoiseCount, pixelScale, gain))
}
