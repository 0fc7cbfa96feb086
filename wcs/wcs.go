// Package wcs implements the TAN (gnomonic) world coordinate transform used
// by VIS detector images.
//
// A WCS maps pixel coordinates to celestial RA/Dec through a CD matrix and a
// tangent-plane projection around the reference point. The supported subset
// is what the pipeline's detector headers actually carry: CRPIXn, CRVALn, a
// CD matrix (or the CDELT/PC form, normalized to CD on read), CTYPEn and
// CUNITn. All angles are degrees.
package wcs

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
)

// Default finite-difference steps for the local transform helpers.
const (
	// DefaultPixStep is the pixel step for pixel-to-world linearization.
	DefaultPixStep = 0.1
	// DefaultWorldStep is the RA/Dec step in degrees (0.01 arcsec) for
	// world-to-pixel linearization.
	DefaultWorldStep = 0.01 / 3600
)

// minPoleCos is the |cos(dec)| floor below which spatial-RA scaling is
// considered degenerate.
const minPoleCos = 0.01

const degPerRad = 180 / math.Pi

// WCS is a TAN projection with a CD matrix.
//
// CRPix coordinates follow the FITS convention: the center of the first
// pixel is (1, 1). The Pix2World/World2Pix origin argument selects whether
// caller coordinates use that convention (origin 1) or zero-based array
// coordinates (origin 0), exactly as astropy defines it.
type WCS struct {
	// CRPix1, CRPix2 are the reference pixel coordinates (1-based).
	CRPix1, CRPix2 float64
	// CRVal1, CRVal2 are RA and Dec at the reference pixel, in degrees.
	CRVal1, CRVal2 float64
	// CD is the linear transform from pixel offsets to intermediate world
	// coordinates in degrees: CD[row][col], rows are (RA-like, Dec-like).
	CD [2][2]float64
	// CType1, CType2 are the axis types, normally RA---TAN and DEC--TAN.
	CType1, CType2 string
	// CUnit1, CUnit2 are the axis units, normally deg.
	CUnit1, CUnit2 string
}

// NewDefaultWCS returns the identity-scale TAN stub installed by
// Image.AddDefaultWCS: reference at the first pixel, reference coordinates
// (0, 0), and a unit CD matrix.
func NewDefaultWCS() *WCS {
	return &WCS{
		CRPix1: 1,
		CRPix2: 1,
		CD:     [2][2]float64{{1, 0}, {0, 1}},
		CType1: "RA---TAN",
		CType2: "DEC--TAN",
		CUnit1: "deg",
		CUnit2: "deg",
	}
}

// wcsKeywords lists every header keyword the codec owns, in write order.
var wcsKeywords = []string{
	"WCSAXES", "CRPIX1", "CRPIX2", "CRVAL1", "CRVAL2",
	"CD1_1", "CD1_2", "CD2_1", "CD2_2",
	"CDELT1", "CDELT2", "PC1_1", "PC1_2", "PC2_1", "PC2_2",
	"CTYPE1", "CTYPE2", "CUNIT1", "CUNIT2",
}

// HasWCS reports whether a header carries enough keywords to attempt
// FromHeader: both reference coordinates must be present.
func HasWCS(h *fits.Header) bool {
	return h != nil && h.Has("CRVAL1") && h.Has("CRVAL2")
}

// Strip removes every WCS keyword from a header. The FITS reader applies it
// after FromHeader so the reconstructed transform does not linger as loose
// metadata.
func Strip(h *fits.Header) {
	for _, keyword := range wcsKeywords {
		h.Delete(keyword)
	}
}

// FromHeader reconstructs a WCS from standard FITS keywords.
//
// The CD matrix is taken directly from CDi_j when present. Otherwise the
// CDELT/PC form is normalized: CD = diag(CDELT1, CDELT2) · PC, with PC
// defaulting to the identity. Missing CRPIXn default to 0 (astropy's
// convention for sparse headers); missing CRVALn are an error.
//
// Returns:
//   - *WCS: The reconstructed transform
//   - error: errs.ErrMissingWCSKeyword when neither CD nor CDELT is present
//     or a reference coordinate is absent
func FromHeader(h *fits.Header) (*WCS, error) {
	w := &WCS{
		CType1: "RA---TAN",
		CType2: "DEC--TAN",
		CUnit1: "deg",
		CUnit2: "deg",
	}

	var err error

	if w.CRVal1, err = h.GetFloat("CRVAL1"); err != nil {
		return nil, fmt.Errorf("%w: CRVAL1", errs.ErrMissingWCSKeyword)
	}
	if w.CRVal2, err = h.GetFloat("CRVAL2"); err != nil {
		return nil, fmt.Errorf("%w: CRVAL2", errs.ErrMissingWCSKeyword)
	}

	w.CRPix1, _ = h.GetFloat("CRPIX1")
	w.CRPix2, _ = h.GetFloat("CRPIX2")

	if s, err := h.GetString("CTYPE1"); err == nil && s != "" {
		w.CType1 = s
	}
	if s, err := h.GetString("CTYPE2"); err == nil && s != "" {
		w.CType2 = s
	}
	if s, err := h.GetString("CUNIT1"); err == nil && s != "" {
		w.CUnit1 = s
	}
	if s, err := h.GetString("CUNIT2"); err == nil && s != "" {
		w.CUnit2 = s
	}

	if h.Has("CD1_1") || h.Has("CD1_2") || h.Has("CD2_1") || h.Has("CD2_2") {
		w.CD[0][0], _ = h.GetFloat("CD1_1")
		w.CD[0][1], _ = h.GetFloat("CD1_2")
		w.CD[1][0], _ = h.GetFloat("CD2_1")
		w.CD[1][1], _ = h.GetFloat("CD2_2")

		return w, nil
	}

	if !h.Has("CDELT1") || !h.Has("CDELT2") {
		return nil, fmt.Errorf("%w: no CD matrix and no CDELT1/CDELT2", errs.ErrMissingWCSKeyword)
	}

	cdelt1, _ := h.GetFloat("CDELT1")
	cdelt2, _ := h.GetFloat("CDELT2")

	pc := [2][2]float64{{1, 0}, {0, 1}}
	if h.Has("PC1_1") || h.Has("PC1_2") || h.Has("PC2_1") || h.Has("PC2_2") {
		pc[0][0], _ = h.GetFloat("PC1_1")
		pc[0][1], _ = h.GetFloat("PC1_2")
		pc[1][0], _ = h.GetFloat("PC2_1")
		pc[1][1], _ = h.GetFloat("PC2_2")
	}

	w.CD = [2][2]float64{
		{cdelt1 * pc[0][0], cdelt1 * pc[0][1]},
		{cdelt2 * pc[1][0], cdelt2 * pc[1][1]},
	}

	return w, nil
}

// ToHeader writes the transform into a header in the CD form.
//
// Any stale CDELT/PC keywords are removed first, so FromHeader(ToHeader(w))
// always reads back the CD matrix it wrote.
func (w *WCS) ToHeader(h *fits.Header) error {
	Strip(h)

	if err := h.SetInt("WCSAXES", 2, "number of WCS axes"); err != nil {
		return err
	}
	if err := h.SetFloat("CRPIX1", w.CRPix1, "reference pixel x"); err != nil {
		return err
	}
	if err := h.SetFloat("CRPIX2", w.CRPix2, "reference pixel y"); err != nil {
		return err
	}
	if err := h.SetFloat("CRVAL1", w.CRVal1, "[deg] RA at reference pixel"); err != nil {
		return err
	}
	if err := h.SetFloat("CRVAL2", w.CRVal2, "[deg] Dec at reference pixel"); err != nil {
		return err
	}
	if err := h.SetFloat("CD1_1", w.CD[0][0], ""); err != nil {
		return err
	}
	if err := h.SetFloat("CD1_2", w.CD[0][1], ""); err != nil {
		return err
	}
	if err := h.SetFloat("CD2_1", w.CD[1][0], ""); err != nil {
		return err
	}
	if err := h.SetFloat("CD2_2", w.CD[1][1], ""); err != nil {
		return err
	}
	if err := h.SetString("CTYPE1", w.CType1, "projection type"); err != nil {
		return err
	}
	if err := h.SetString("CTYPE2", w.CType2, "projection type"); err != nil {
		return err
	}
	if err := h.SetString("CUNIT1", w.CUnit1, ""); err != nil {
		return err
	}

	return h.SetString("CUNIT2", w.CUnit2, "")
}

// Pix2World converts pixel coordinates to RA/Dec in degrees.
//
// Parameters:
//   - x, y: Pixel coordinates
//   - origin: 0 for zero-based array coordinates, 1 for FITS coordinates
func (w *WCS) Pix2World(x, y float64, origin int) (ra, dec float64) {
	// Shift caller coordinates to the FITS 1-based frame.
	px := x + float64(1-origin) - w.CRPix1
	py := y + float64(1-origin) - w.CRPix2

	// Intermediate world coordinates in degrees, then radians.
	xi := (w.CD[0][0]*px + w.CD[0][1]*py) / degPerRad
	eta := (w.CD[1][0]*px + w.CD[1][1]*py) / degPerRad

	ra0 := w.CRVal1 / degPerRad
	dec0 := w.CRVal2 / degPerRad

	sinDec0, cosDec0 := math.Sincos(dec0)

	// Inverse gnomonic projection about the reference point.
	d := cosDec0 - eta*sinDec0

	ra = (ra0 + math.Atan2(xi, d)) * degPerRad
	dec = math.Atan2(sinDec0+eta*cosDec0, math.Hypot(xi, d)) * degPerRad

	ra = math.Mod(ra+360, 360)

	return ra, dec
}

// World2Pix converts RA/Dec in degrees to pixel coordinates.
//
// Returns:
//   - x, y: Pixel coordinates in the requested origin convention
//   - error: errs.ErrSingularTransform when the CD matrix cannot be
//     inverted, errs.ErrNearPole when the coordinates project behind the
//     tangent plane
func (w *WCS) World2Pix(ra, dec float64, origin int) (x, y float64, err error) {
	det := w.CD[0][0]*w.CD[1][1] - w.CD[0][1]*w.CD[1][0]
	if det == 0 {
		return 0, 0, fmt.Errorf("%w: CD matrix determinant is zero", errs.ErrSingularTransform)
	}

	ra0 := w.CRVal1 / degPerRad
	dec0 := w.CRVal2 / degPerRad

	sinDec0, cosDec0 := math.Sincos(dec0)
	sinDec, cosDec := math.Sincos(dec / degPerRad)
	sinDRA, cosDRA := math.Sincos(ra/degPerRad - ra0)

	// Forward gnomonic projection about the reference point.
	denom := sinDec*sinDec0 + cosDec*cosDec0*cosDRA
	if denom <= 0 {
		return 0, 0, fmt.Errorf("%w: coordinates (%g, %g) are more than 90 degrees from the projection center",
			errs.ErrNearPole, ra, dec)
	}

	xi := cosDec * sinDRA / denom * degPerRad
	eta := (sinDec*cosDec0 - cosDec*sinDec0*cosDRA) / denom * degPerRad

	// Invert the CD matrix onto the intermediate coordinates.
	px := (w.CD[1][1]*xi - w.CD[0][1]*eta) / det
	py := (w.CD[0][0]*eta - w.CD[1][0]*xi) / det

	x = px + w.CRPix1 - float64(1-origin)
	y = py + w.CRPix2 - float64(1-origin)

	return x, y, nil
}
