package exposure

import (
	"fmt"
	"math"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/format"
	"github.com/astrofold/shearkit/mask"
	"github.com/astrofold/shearkit/pix"
)

// Stamp reads a postage stamp centered on (x, y) from a stored detector and
// assembles it into an image.
//
// The Sci layer becomes the image data; Rms, Flg, Bkg, Wgt, and Seg become
// the noisemap, mask, background, weight, and segmentation planes when the
// detector stores them. Only the row-band chunks the stamp intersects are
// decompressed.
//
// Stamps overlapping the detector edge are padded the way stamp extraction
// pads: zero data, off-image mask flags, zero noisemap and background and
// weight, unassigned segmentation. The image offset records the stamp's
// lower-left corner in detector pixels, and the detector's header and WCS
// are attached when stored.
//
// Parameters:
//   - det: Detector name
//   - x, y: Stamp center in detector pixels
//   - width, height: Stamp extent, must be >= 1
//
// Returns:
//   - *pix.Image: The assembled stamp
//   - error: ErrUnknownDetector, ErrInvalidStampSize, ErrRegionOutOfBounds
//     when the stamp misses the detector entirely, or a decoding error
func (d *Decoder) Stamp(det string, x, y float64, width, height int) (*pix.Image, error) {
	di, err := d.detector(det)
	if err != nil {
		return nil, err
	}

	sci, ok := di.layers[format.LayerSci]
	if !ok {
		return nil, fmt.Errorf("%w: detector %q has no %s layer", errs.ErrUnknownLayer, det, format.LayerSci)
	}

	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidStampSize, width, height)
	}

	planeWidth := int(sci.entry.Width)
	planeHeight := int(sci.entry.Height)

	xmin := int(math.Round(x - float64(width)/2))
	ymin := int(math.Round(y - float64(height)/2))
	xmax := xmin + width
	ymax := ymin + height

	// Overlap with the detector.
	ox0 := max(xmin, 0)
	oy0 := max(ymin, 0)
	ox1 := min(xmax, planeWidth)
	oy1 := min(ymax, planeHeight)

	if ox0 >= ox1 || oy0 >= oy1 {
		return nil, fmt.Errorf("%w: stamp (%g,%g)+%dx%d misses %dx%d detector",
			errs.ErrRegionOutOfBounds, x, y, width, height, planeWidth, planeHeight)
	}

	data, err := stampPlane[float32](d, det, format.LayerSci, xmin, ymin, width, height, ox0, oy0, ox1, oy1, 0)
	if err != nil {
		return nil, err
	}

	opts := []pix.ImageOption{pix.WithOffset(float64(xmin), float64(ymin))}

	if d.HasLayer(det, format.LayerRms) {
		noisemap, err := stampPlane[float32](d, det, format.LayerRms, xmin, ymin, width, height, ox0, oy0, ox1, oy1, 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pix.WithNoisemap(noisemap))
	}

	if d.HasLayer(det, format.LayerFlg) {
		flags, err := stampPlane[int32](d, det, format.LayerFlg, xmin, ymin, width, height, ox0, oy0, ox1, oy1, int32(mask.OffImage))
		if err != nil {
			return nil, err
		}
		opts = append(opts, pix.WithMask(flags))
	}

	if d.HasLayer(det, format.LayerSeg) {
		seg, err := stampPlane[int64](d, det, format.LayerSeg, xmin, ymin, width, height, ox0, oy0, ox1, oy1, pix.SegmapUnassigned)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pix.WithSegmap(seg))
	}

	if d.HasLayer(det, format.LayerBkg) {
		bkg, err := stampPlane[float32](d, det, format.LayerBkg, xmin, ymin, width, height, ox0, oy0, ox1, oy1, 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pix.WithBackground(bkg))
	}

	if d.HasLayer(det, format.LayerWgt) {
		wgt, err := stampPlane[float32](d, det, format.LayerWgt, xmin, ymin, width, height, ox0, oy0, ox1, oy1, 0)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pix.WithWeight(wgt))
	}

	if header, err := d.DetectorHeader(det); err != nil {
		return nil, err
	} else if header != nil {
		opts = append(opts, pix.WithHeader(header))
	}

	if w, err := d.DetectorWCS(det); err != nil {
		return nil, err
	} else if w != nil {
		opts = append(opts, pix.WithWCS(w))
	}

	return pix.New(data, opts...)
}

// stampPlane reads the overlap region of one layer and embeds it into a
// fill-padded stamp plane.
func stampPlane[T LayerPixel](d *Decoder, det string, layer format.LayerType,
	xmin, ymin, width, height, ox0, oy0, ox1, oy1 int, fill T,
) (*pix.Plane[T], error) {
	region, err := LayerRegion[T](d, det, layer, ox0, oy0, ox1-ox0, oy1-oy0)
	if err != nil {
		return nil, err
	}

	// Fully interior stamp: the region is the stamp.
	if ox0 == xmin && oy0 == ymin && ox1-ox0 == width && oy1-oy0 == height {
		return region, nil
	}

	out, err := pix.FullPlane(width, height, fill)
	if err != nil {
		return nil, err
	}

	for y := oy0; y < oy1; y++ {
		copy(out.Row(y-ymin)[ox0-xmin:], region.Row(y-oy0))
	}

	return out, nil
}
