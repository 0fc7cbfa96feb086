// Package fits implements the FITS 4.0 subset the shear pipeline reads and
// writes: image HDUs for detector planes and binary tables for statistics.
//
// # Layout
//
// A FITS file is a sequence of HDUs (header-data units). Every HDU starts
// with a header of 80-byte ASCII cards padded to a multiple of the 2880-byte
// block size, followed by a big-endian data payload padded the same way:
//
//	card:   KEYWORD = value / comment          (80 bytes, fixed format)
//	header: cards ... END, space-padded        (n x 2880 bytes)
//	data:   big-endian array or table rows     (m x 2880 bytes)
//
// The codec is byte-exact: Encode output decodes to an equal File, and files
// written by the usual astronomy stacks decode as long as they stay inside
// the supported subset (fixed-format cards, BITPIX 8/16/32/64/-32/-64 images,
// binary tables with scalar E/D/J/K and fixed-width A columns).
//
// Structural keywords (SIMPLE, XTENSION, BITPIX, NAXISn, PCOUNT, GCOUNT,
// EXTEND, EXTNAME, TFIELDS, TTYPEn/TFORMn/TUNITn) are owned by the codec: the
// encoder writes them from the HDU contents and the decoder strips them, so
// the Header a caller sees holds only semantic metadata. Long-string
// continuation (CONTINUE), variable-length arrays, and BSCALE/BZERO scaling
// are not supported.
//
// # Example
//
//	f := fits.NewFile()
//	f.Append(&fits.HDU{Image: fits.NewImageFloat32(w, h, pixels)})
//	f.Append(&fits.HDU{Name: "MASK", Image: fits.NewImageInt32(w, h, maskPixels)})
//
//	if err := fits.WriteFile("exposure.fits", f); err != nil {
//	    return err
//	}
package fits
