package exposure

import (
	"fmt"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/format"
	"github.com/astrofold/shearkit/pix"
	"github.com/astrofold/shearkit/wcs"
)

// quadrants maps the quadrant cycle of the 144-detector focal plane layout.
var quadrants = [4]string{"E", "F", "G", "H"}

// DetectorNames builds the detector name list for a focal plane with the
// given detector count: "1-1" through "6-6" for the 36-CCD layout, or
// "1-1.E" through "6-6.H" for the 144-quadrant layout.
//
// Returns:
//   - []string: The names, in HDU order
//   - error: errs.ErrInvalidDetectorCount for any other count
func DetectorNames(count int) ([]string, error) {
	names := make([]string, 0, count)

	switch count {
	case 36:
		for k := 0; k < count; k++ {
			names = append(names, fmt.Sprintf("%d-%d", k/6+1, k%6+1))
		}
	case 144:
		for k := 0; k < count; k++ {
			names = append(names, fmt.Sprintf("%d-%d.%s", (k/4)/6+1, (k/4)%6+1, quadrants[k%4]))
		}
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidDetectorCount, count)
	}

	return names, nil
}

// ConvertFITS converts a set of FITS files holding one VIS exposure into an
// exposure store.
//
// The det file carries sci/rms/flg extension triplets, one per detector;
// leading non-data HDUs are skipped by taking the HDU count modulo 3. The
// bkg, wgt, and seg files carry one extension per detector, aligned from the
// tail so leading empty HDUs are skipped too. Any of bkg, wgt, seg may be
// nil, in which case that layer is simply not stored.
//
// The det file's primary header becomes the store's global header; each
// detector keeps its sci extension header and the WCS read from it.
//
// Parameters:
//   - det: DET VIS FITS bytes (sci/rms/flg triplets)
//   - bkg, wgt, seg: Background, weight, and segmentation FITS bytes, or nil
//   - opts: Encoder options (chunk rows, compression, ...)
//
// Returns:
//   - []byte: The encoded store
//   - error: FITS decoding errors, errs.ErrInvalidDetectorCount, or
//     encoder errors
func ConvertFITS(det, bkg, wgt, seg []byte, opts ...EncoderOption) ([]byte, error) {
	detFile, err := fits.Decode(det)
	if err != nil {
		return nil, fmt.Errorf("failed to decode detector file: %w", err)
	}

	nDet := len(detFile.HDUs) / 3
	skip := len(detFile.HDUs) % 3

	names, err := DetectorNames(nDet)
	if err != nil {
		return nil, err
	}

	bkgHDUs, err := tailHDUs(bkg, nDet, "background")
	if err != nil {
		return nil, err
	}
	wgtHDUs, err := tailHDUs(wgt, nDet, "weight")
	if err != nil {
		return nil, err
	}
	segHDUs, err := tailHDUs(seg, nDet, "segmentation")
	if err != nil {
		return nil, err
	}

	// The first HDU's header becomes the global header, whether or not it is
	// a data HDU.
	encOpts := opts
	if detFile.HDUs[0].Header != nil {
		encOpts = append(encOpts, WithGlobalHeader(detFile.HDUs[0].Header))
	}

	enc, err := NewEncoder(encOpts...)
	if err != nil {
		return nil, err
	}

	for k, name := range names {
		sci := detFile.HDUs[skip+3*k]
		rms := detFile.HDUs[skip+3*k+1]
		flg := detFile.HDUs[skip+3*k+2]

		detOpts := []DetectorOption{}
		if sci.Header != nil {
			detOpts = append(detOpts, WithDetectorHeader(sci.Header))
			if wcs.HasWCS(sci.Header) {
				w, err := wcs.FromHeader(sci.Header)
				if err != nil {
					return nil, fmt.Errorf("detector %q: %w", name, err)
				}
				detOpts = append(detOpts, WithDetectorWCS(w))
			}
		}

		if err := enc.StartDetector(name, detOpts...); err != nil {
			return nil, err
		}

		if err := addFloatLayer(enc, format.LayerSci, name, sci); err != nil {
			return nil, err
		}
		if err := addFloatLayer(enc, format.LayerRms, name, rms); err != nil {
			return nil, err
		}
		if err := addFlagLayer(enc, name, flg); err != nil {
			return nil, err
		}
		if bkgHDUs != nil {
			if err := addFloatLayer(enc, format.LayerBkg, name, bkgHDUs[k]); err != nil {
				return nil, err
			}
		}
		if wgtHDUs != nil {
			if err := addFloatLayer(enc, format.LayerWgt, name, wgtHDUs[k]); err != nil {
				return nil, err
			}
		}
		if segHDUs != nil {
			if err := addSegLayer(enc, name, segHDUs[k]); err != nil {
				return nil, err
			}
		}

		if err := enc.EndDetector(); err != nil {
			return nil, err
		}
	}

	return enc.Finish()
}

// tailHDUs decodes an optional per-detector FITS file and returns its last
// count HDUs, skipping any leading empty or metadata HDUs.
func tailHDUs(data []byte, count int, what string) ([]*fits.HDU, error) {
	if data == nil {
		return nil, nil
	}

	f, err := fits.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s file: %w", what, err)
	}

	if len(f.HDUs) < count {
		return nil, fmt.Errorf("%w: %s file has %d HDUs for %d detectors",
			errs.ErrInvalidDetectorCount, what, len(f.HDUs), count)
	}

	return f.HDUs[len(f.HDUs)-count:], nil
}

// addFloatLayer adds one float FITS extension as a store layer.
func addFloatLayer(enc *Encoder, layer format.LayerType, det string, hdu *fits.HDU) error {
	if hdu.Image == nil {
		return fmt.Errorf("%w: %s extension of detector %q has no image", errs.ErrWrongHDUType, layer, det)
	}

	values, err := hdu.Image.Float32s()
	if err != nil {
		return fmt.Errorf("%s extension of detector %q: %w", layer, det, err)
	}

	plane, err := pix.PlaneFromValues(hdu.Image.Width, hdu.Image.Height, values)
	if err != nil {
		return err
	}

	return enc.AddLayer(layer, plane)
}

// addFlagLayer adds the flag FITS extension, widening 8- and 16-bit payloads
// to the int32 flag plane type.
func addFlagLayer(enc *Encoder, det string, hdu *fits.HDU) error {
	if hdu.Image == nil {
		return fmt.Errorf("%w: %s extension of detector %q has no image", errs.ErrWrongHDUType, format.LayerFlg, det)
	}

	values, err := hdu.Image.Int32s()
	if err != nil {
		return fmt.Errorf("%s extension of detector %q: %w", format.LayerFlg, det, err)
	}

	plane, err := pix.PlaneFromValues(hdu.Image.Width, hdu.Image.Height, values)
	if err != nil {
		return err
	}

	return enc.AddLayer(format.LayerFlg, plane)
}

// addSegLayer adds the segmentation FITS extension, widening any integer
// payload to the int64 segmentation plane type.
func addSegLayer(enc *Encoder, det string, hdu *fits.HDU) error {
	if hdu.Image == nil {
		return fmt.Errorf("%w: %s extension of detector %q has no image", errs.ErrWrongHDUType, format.LayerSeg, det)
	}

	values, err := hdu.Image.Int64s()
	if err != nil {
		return fmt.Errorf("%s extension of detector %q: %w", format.LayerSeg, det, err)
	}

	plane, err := pix.PlaneFromValues(hdu.Image.Width, hdu.Image.Height, values)
	if err != nil {
		return err
	}

	return enc.AddLayer(format.LayerSeg, plane)
}
