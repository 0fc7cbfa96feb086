package pix

import (
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/mask"
)

// objectMaskConfig collects the optional GetObjectMask arguments.
type objectMaskConfig struct {
	maskSuspect    bool
	maskUnassigned bool
}

// ObjectMaskOption configures GetObjectMask.
type ObjectMaskOption = options.Option[*objectMaskConfig]

// MaskSuspect also masks pixels flagged suspect, not just bad ones.
func MaskSuspect() ObjectMaskOption {
	return options.NoError(func(cfg *objectMaskConfig) {
		cfg.maskSuspect = true
	})
}

// MaskUnassigned also masks pixels the segmentation map assigns to no
// object.
func MaskUnassigned() ObjectMaskOption {
	return options.NoError(func(cfg *objectMaskConfig) {
		cfg.maskUnassigned = true
	})
}

// GetObjectMask builds a boolean rejection mask for measuring the object
// with the given segmentation ID.
//
// A pixel is masked when its pixel-mask flags make it unusable (bad, or
// suspect too under MaskSuspect), or when the segmentation map assigns it
// to a different object. Unassigned pixels pass unless MaskUnassigned is
// given.
//
// Returns:
//   - *Plane[bool]: true where the pixel must be rejected
//   - error: the options error, if any
func (img *Image) GetObjectMask(segID int64, opts ...ObjectMaskOption) (*Plane[bool], error) {
	var cfg objectMaskConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	flagged := mask.IsMaskedBad
	if cfg.maskSuspect {
		flagged = mask.IsMaskedSuspectOrBad
	}

	out, _ := NewPlane[bool](img.Width(), img.Height())
	for y := 0; y < img.Height(); y++ {
		maskRow := img.mask.Row(y)
		segRow := img.segmap.Row(y)
		outRow := out.Row(y)

		for x := range outRow {
			if flagged(mask.Mask(maskRow[x])) {
				outRow[x] = true
				continue
			}

			seg := segRow[x]
			if seg == segID {
				continue
			}
			outRow[x] = cfg.maskUnassigned || seg != SegmapUnassigned
		}
	}

	return out, nil
}
