package pix

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/mask"
)

// IndexConv selects the pixel-center convention used to interpret stamp
// positions.
type IndexConv byte

const (
	// IndexConvNumpy treats the bottom-left pixel as spanning (0,0) to
	// (1,1), centered on (0.5, 0.5).
	IndexConvNumpy IndexConv = iota + 1
	// IndexConvSExtractor follows SExtractor and DS9, where the bottom-left
	// pixel spans (0.5, 0.5) to (1.5, 1.5) and is centered on (1, 1).
	IndexConvSExtractor
)

// shift returns the coordinate shift applied before boundary rounding.
func (c IndexConv) shift() (float64, error) {
	switch c {
	case IndexConvNumpy:
		return 0.0, nil
	case IndexConvSExtractor:
		return 0.5, nil
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidIndexConv, c)
	}
}

// stampConfig collects the optional ExtractStamp arguments. The fill values
// default to the ones an off-image pixel gets: zero data, noise, background
// and weight, an OffImage mask, and an unassigned segmentation value.
type stampConfig struct {
	height     int
	indexConv  IndexConv
	keepHeader bool

	dataFill       float32
	maskFill       int32
	noisemapFill   float32
	segmapFill     int64
	backgroundFill float32
	weightFill     float32
}

// StampOption configures ExtractStamp.
type StampOption = options.Option[*stampConfig]

// WithHeight sets the stamp height, making the stamp rectangular. By
// default the stamp is square.
func WithHeight(height int) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.height = height
	})
}

// WithIndexConv selects the indexing convention (default IndexConvNumpy).
func WithIndexConv(conv IndexConv) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.indexConv = conv
	})
}

// KeepHeader gives the stamp a clone of the parent header instead of an
// empty one.
func KeepHeader() StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.keepHeader = true
	})
}

// WithDataFill overrides the data value of off-image stamp pixels
// (default 0).
func WithDataFill(v float32) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.dataFill = v
	})
}

// WithMaskFill overrides the mask value of off-image stamp pixels (default
// the OffImage flag).
func WithMaskFill(v int32) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.maskFill = v
	})
}

// WithNoisemapFill overrides the noisemap value of off-image stamp pixels
// (default 0).
func WithNoisemapFill(v float32) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.noisemapFill = v
	})
}

// WithSegmapFill overrides the segmentation value of off-image stamp pixels
// (default SegmapUnassigned).
func WithSegmapFill(v int64) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.segmapFill = v
	})
}

// WithBackgroundFill overrides the background value of off-image stamp
// pixels (default 0).
func WithBackgroundFill(v float32) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.backgroundFill = v
	})
}

// WithWeightFill overrides the weight value of off-image stamp pixels
// (default 0, excluding them from measurement).
func WithWeightFill(v float32) StampOption {
	return options.NoError(func(cfg *stampConfig) {
		cfg.weightFill = v
	})
}

// ExtractStamp extracts a width x height postage stamp centered on (x, y).
//
// A stamp fully inside the image is built from shared-memory views, so
// writes to it reach the parent. A stamp that sticks out of the image is an
// independent copy whose off-image pixels carry the fill values; a stamp
// with no overlap at all comes back entirely filled, with a warning on the
// image logger.
//
// The stamp's offset is the parent offset plus the stamp origin, so nested
// extraction keeps the offset anchored in the outermost frame. The stamp
// does not inherit the parent WCS; use the offset with the parent's WCS, or
// ExtractWCSStamp when only coordinates are needed.
//
// Returns:
//   - *Image: The stamp
//   - error: errs.ErrInvalidStampSize or errs.ErrInvalidIndexConv
func (img *Image) ExtractStamp(x, y float64, width int, opts ...StampOption) (*Image, error) {
	cfg := stampConfig{
		indexConv:  IndexConvNumpy,
		maskFill:   int32(mask.OffImage),
		segmapFill: SegmapUnassigned,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	height := cfg.height
	if height == 0 {
		height = width
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidStampSize, width, height)
	}

	shift, err := cfg.indexConv.shift()
	if err != nil {
		return nil, err
	}

	xmin := int(math.Round(x - float64(width)/2 - shift))
	ymin := int(math.Round(y - float64(height)/2 - shift))
	xmax := xmin + width
	ymax := ymin + height

	var header *fits.Header
	if cfg.keepHeader {
		header = img.header.Clone()
	}

	offsetX := img.offsetX + float64(xmin)
	offsetY := img.offsetY + float64(ymin)

	if xmin >= 0 && xmax <= img.Width() && ymin >= 0 && ymax <= img.Height() {
		return img.viewStamp(xmin, ymin, width, height, header, offsetX, offsetY)
	}

	return img.filledStamp(xmin, ymin, width, height, &cfg, header, offsetX, offsetY)
}

// viewStamp builds a stamp of shared-memory views for fully in-bounds
// extraction.
func (img *Image) viewStamp(xmin, ymin, width, height int, header *fits.Header, offsetX, offsetY float64) (*Image, error) {
	data, err := img.data.SubPlane(xmin, ymin, width, height)
	if err != nil {
		return nil, err
	}

	maskView, _ := img.mask.SubPlane(xmin, ymin, width, height)
	noisemap, _ := img.noisemap.SubPlane(xmin, ymin, width, height)
	segmap, _ := img.segmap.SubPlane(xmin, ymin, width, height)
	background, _ := img.background.SubPlane(xmin, ymin, width, height)
	weight, _ := img.weight.SubPlane(xmin, ymin, width, height)

	return New(data,
		WithMask(maskView),
		WithNoisemap(noisemap),
		WithSegmap(segmap),
		WithBackground(background),
		WithWeight(weight),
		WithHeader(header),
		WithOffset(offsetX, offsetY),
		WithLogger(img.logger),
	)
}

// filledStamp builds an independent stamp for extraction reaching outside
// the image, copying the overlap and filling the rest.
func (img *Image) filledStamp(xmin, ymin, width, height int, cfg *stampConfig, header *fits.Header, offsetX, offsetY float64) (*Image, error) {
	data, _ := FullPlane(width, height, cfg.dataFill)
	maskPlane, _ := FullPlane(width, height, cfg.maskFill)
	noisemap, _ := FullPlane(width, height, cfg.noisemapFill)
	segmap, _ := FullPlane(width, height, cfg.segmapFill)
	background, _ := FullPlane(width, height, cfg.backgroundFill)
	weight, _ := FullPlane(width, height, cfg.weightFill)

	overlapXMin := max(xmin, 0)
	overlapYMin := max(ymin, 0)
	overlapXMax := min(xmin+width, img.Width())
	overlapYMax := min(ymin+height, img.Height())

	if overlapXMin >= overlapXMax || overlapYMin >= overlapYMax {
		img.logger.Warn("extracted stamp is entirely outside the image",
			zap.Int("xmin", xmin), zap.Int("ymin", ymin),
			zap.Int("width", width), zap.Int("height", height),
			zap.Int("imageWidth", img.Width()), zap.Int("imageHeight", img.Height()))
	} else {
		for sy := overlapYMin; sy < overlapYMax; sy++ {
			dy := sy - ymin
			copyRow(data.Row(dy), img.data.Row(sy), overlapXMin, overlapXMax, xmin)
			copyRow(maskPlane.Row(dy), img.mask.Row(sy), overlapXMin, overlapXMax, xmin)
			copyRow(noisemap.Row(dy), img.noisemap.Row(sy), overlapXMin, overlapXMax, xmin)
			copyRow(segmap.Row(dy), img.segmap.Row(sy), overlapXMin, overlapXMax, xmin)
			copyRow(background.Row(dy), img.background.Row(sy), overlapXMin, overlapXMax, xmin)
			copyRow(weight.Row(dy), img.weight.Row(sy), overlapXMin, overlapXMax, xmin)
		}
	}

	return New(data,
		WithMask(maskPlane),
		WithNoisemap(noisemap),
		WithSegmap(segmap),
		WithBackground(background),
		WithWeight(weight),
		WithHeader(header),
		WithOffset(offsetX, offsetY),
		WithLogger(img.logger),
	)
}

// copyRow copies source columns [srcXMin, srcXMax) into the destination row
// shifted by -xmin.
func copyRow[T any](dst, src []T, srcXMin, srcXMax, xmin int) {
	copy(dst[srcXMin-xmin:srcXMax-xmin], src[srcXMin:srcXMax])
}

// ExtractWCSStamp extracts a minimal 1x1 stamp at (x, y) that keeps the
// parent's WCS and header, for callers that need coordinate transforms at an
// object's position without its pixel data. The offset points at the
// extracted pixel so the WCS applies unchanged.
//
// Returns:
//   - *Image: The stamp
//   - error: errs.ErrNoWCS when the image has no WCS attached
func (img *Image) ExtractWCSStamp(x, y float64) (*Image, error) {
	if img.wcs == nil {
		return nil, errs.ErrNoWCS
	}

	stamp, err := img.ExtractStamp(x, y, 1, KeepHeader())
	if err != nil {
		return nil, err
	}
	stamp.SetWCS(img.wcs)

	return stamp, nil
}
