package pix

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/photo"
	"github.com/astrofold/shearkit/wcs"
)

// Segmentation map sentinels. They follow the catalog convention the rest of
// the pipeline writes, and stamp fills can override them per call.
const (
	// SegmapUnassigned marks a pixel not assigned to any object.
	SegmapUnassigned int64 = 0
	// SegmapOther marks a pixel assigned to an unspecified other object.
	SegmapOther int64 = -1
)

// DefaultStampSize is the stamp width and height used when a caller gives
// none.
const DefaultStampSize = 384

// Header keywords owned by this package.
const (
	// KeyOffsetX persists the x pixel offset into the parent frame.
	KeyOffsetX = "SHEIOFX"
	// KeyOffsetY persists the y pixel offset into the parent frame.
	KeyOffsetY = "SHEIOFY"
	// KeyGain is the detector gain in e-/ADU, read by AddDefaultNoisemap.
	KeyGain = "GAIN"
	// KeyReadNoise is the detector read noise in e-, read by
	// AddDefaultNoisemap.
	KeyReadNoise = "RDNOISE"
)

// Image bundles a science pixel plane with its co-registered auxiliary
// planes and metadata.
//
// All six planes always exist and share one shape: construction fills any
// plane the caller does not provide with its documented default (zero mask,
// unit noisemap, unassigned segmentation, zero background, unit weight).
// The shape is immutable after construction.
type Image struct {
	data       *Plane[float32]
	mask       *Plane[int32]
	noisemap   *Plane[float32]
	segmap     *Plane[int64]
	background *Plane[float32]
	weight     *Plane[float32]

	header  *fits.Header
	offsetX float64
	offsetY float64
	wcs     *wcs.WCS

	logger *zap.Logger
}

// imageConfig collects the optional construction arguments.
type imageConfig struct {
	mask       *Plane[int32]
	noisemap   *Plane[float32]
	segmap     *Plane[int64]
	background *Plane[float32]
	weight     *Plane[float32]
	header     *fits.Header
	offsetX    float64
	offsetY    float64
	wcs        *wcs.WCS
	logger     *zap.Logger
}

// ImageOption configures New.
type ImageOption = options.Option[*imageConfig]

// WithMask provides the int32 pixel mask plane (default all zero).
func WithMask(p *Plane[int32]) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.mask = p
	})
}

// WithNoisemap provides the noise sigma plane (default all one).
func WithNoisemap(p *Plane[float32]) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.noisemap = p
	})
}

// WithSegmap provides the segmentation map plane (default all
// SegmapUnassigned).
func WithSegmap(p *Plane[int64]) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.segmap = p
	})
}

// WithBackground provides the background level plane (default all zero).
func WithBackground(p *Plane[float32]) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.background = p
	})
}

// WithWeight provides the pixel weight plane (default all one).
func WithWeight(p *Plane[float32]) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.weight = p
	})
}

// WithHeader provides the metadata header (default empty).
func WithHeader(h *fits.Header) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.header = h
	})
}

// WithOffset sets the pixel offset of this image inside its parent frame.
func WithOffset(x, y float64) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.offsetX = x
		cfg.offsetY = y
	})
}

// WithWCS attaches a world coordinate transform.
func WithWCS(w *wcs.WCS) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.wcs = w
	})
}

// WithLogger sets the logger warnings are emitted on (default a no-op
// logger; the library core stays quiet unless asked).
func WithLogger(l *zap.Logger) ImageOption {
	return options.NoError(func(cfg *imageConfig) {
		cfg.logger = l
	})
}

// New creates an Image around the mandatory data plane.
//
// Every provided auxiliary plane must match the data plane's shape exactly;
// omitted planes get their documented defaults.
//
// Returns:
//   - *Image: The new image
//   - error: errs.ErrInvalidShape for a nil data plane,
//     errs.ErrShapeMismatch naming the offending plane otherwise
func New(data *Plane[float32], opts ...ImageOption) (*Image, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: data plane is nil", errs.ErrInvalidShape)
	}

	var cfg imageConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	img := &Image{
		data:    data,
		header:  cfg.header,
		offsetX: cfg.offsetX,
		offsetY: cfg.offsetY,
		wcs:     cfg.wcs,
		logger:  cfg.logger,
	}

	if img.header == nil {
		img.header = fits.NewHeader()
	}
	if img.logger == nil {
		img.logger = zap.NewNop()
	}

	width, height := data.Width(), data.Height()

	if err := checkShape("mask", cfg.mask, width, height); err != nil {
		return nil, err
	}
	if err := checkShape("noisemap", cfg.noisemap, width, height); err != nil {
		return nil, err
	}
	if err := checkShape("segmentation_map", cfg.segmap, width, height); err != nil {
		return nil, err
	}
	if err := checkShape("background_map", cfg.background, width, height); err != nil {
		return nil, err
	}
	if err := checkShape("weight_map", cfg.weight, width, height); err != nil {
		return nil, err
	}

	img.mask = cfg.mask
	img.noisemap = cfg.noisemap
	img.segmap = cfg.segmap
	img.background = cfg.background
	img.weight = cfg.weight

	if img.mask == nil {
		img.mask, _ = NewPlane[int32](width, height)
	}
	if img.noisemap == nil {
		img.noisemap, _ = FullPlane[float32](width, height, 1)
	}
	if img.segmap == nil {
		img.segmap, _ = FullPlane(width, height, SegmapUnassigned)
	}
	if img.background == nil {
		img.background, _ = NewPlane[float32](width, height)
	}
	if img.weight == nil {
		img.weight, _ = FullPlane[float32](width, height, 1)
	}

	return img, nil
}

// checkShape validates one auxiliary plane against the data shape.
func checkShape[T any](name string, p *Plane[T], width, height int) error {
	if p == nil {
		return nil
	}

	if p.Width() != width || p.Height() != height {
		return fmt.Errorf("%w: %s is %dx%d, data is %dx%d",
			errs.ErrShapeMismatch, name, p.Width(), p.Height(), width, height)
	}

	return nil
}

// Width returns the x extent shared by all planes.
func (img *Image) Width() int {
	return img.data.Width()
}

// Height returns the y extent shared by all planes.
func (img *Image) Height() int {
	return img.data.Height()
}

// Data returns the science pixel plane.
func (img *Image) Data() *Plane[float32] {
	return img.data
}

// Mask returns the pixel mask plane.
func (img *Image) Mask() *Plane[int32] {
	return img.mask
}

// Noisemap returns the noise sigma plane.
func (img *Image) Noisemap() *Plane[float32] {
	return img.noisemap
}

// Segmap returns the segmentation map plane.
func (img *Image) Segmap() *Plane[int64] {
	return img.segmap
}

// Background returns the background level plane.
func (img *Image) Background() *Plane[float32] {
	return img.background
}

// Weight returns the pixel weight plane.
func (img *Image) Weight() *Plane[float32] {
	return img.weight
}

// Header returns the metadata header.
func (img *Image) Header() *fits.Header {
	return img.header
}

// Offset returns the pixel offset of this image inside its parent frame.
func (img *Image) Offset() (x, y float64) {
	return img.offsetX, img.offsetY
}

// SetOffset updates the pixel offset.
func (img *Image) SetOffset(x, y float64) {
	img.offsetX = x
	img.offsetY = y
}

// WCS returns the attached world coordinate transform, nil when absent.
func (img *Image) WCS() *wcs.WCS {
	return img.wcs
}

// SetWCS attaches or detaches a world coordinate transform.
func (img *Image) SetWCS(w *wcs.WCS) {
	img.wcs = w
}

// SetHeader replaces the metadata header. A nil header installs an empty
// one.
func (img *Image) SetHeader(h *fits.Header) {
	if h == nil {
		h = fits.NewHeader()
	}
	img.header = h
}

// SetData replaces the science plane. The image shape is immutable, so the
// new plane must match it exactly.
//
// Returns:
//   - error: errs.ErrShapeMismatch (or errs.ErrInvalidShape for nil)
func (img *Image) SetData(p *Plane[float32]) error {
	if p == nil {
		return fmt.Errorf("%w: data plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("data", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.data = p

	return nil
}

// SetMask replaces the mask plane, which must match the image shape.
func (img *Image) SetMask(p *Plane[int32]) error {
	if p == nil {
		return fmt.Errorf("%w: mask plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("mask", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.mask = p

	return nil
}

// SetNoisemap replaces the noisemap plane, which must match the image shape.
func (img *Image) SetNoisemap(p *Plane[float32]) error {
	if p == nil {
		return fmt.Errorf("%w: noisemap plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("noisemap", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.noisemap = p

	return nil
}

// SetSegmap replaces the segmentation map plane, which must match the image
// shape.
func (img *Image) SetSegmap(p *Plane[int64]) error {
	if p == nil {
		return fmt.Errorf("%w: segmentation_map plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("segmentation_map", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.segmap = p

	return nil
}

// SetBackground replaces the background plane, which must match the image
// shape.
func (img *Image) SetBackground(p *Plane[float32]) error {
	if p == nil {
		return fmt.Errorf("%w: background_map plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("background_map", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.background = p

	return nil
}

// SetWeight replaces the weight plane, which must match the image shape.
func (img *Image) SetWeight(p *Plane[float32]) error {
	if p == nil {
		return fmt.Errorf("%w: weight_map plane is nil", errs.ErrInvalidShape)
	}

	if err := checkShape("weight_map", p, img.Width(), img.Height()); err != nil {
		return err
	}
	img.weight = p

	return nil
}

// AddDefaultMask resets the mask plane to all zero. Without force the
// existing plane is kept; a forced replacement logs a warning.
func (img *Image) AddDefaultMask(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing mask with default")
	img.mask, _ = NewPlane[int32](img.Width(), img.Height())
}

// AddDefaultNoisemap replaces the noisemap with the detector noise model:
// the read-noise floor in ADU plus the Poisson term of the background
// plane. Gain and read noise come from the GAIN/RDNOISE header keywords
// when present, else the mission defaults. Without force the existing plane
// is kept.
func (img *Image) AddDefaultNoisemap(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing noisemap with default")

	gain, err := img.header.GetFloat(KeyGain)
	if err != nil || gain <= 0 {
		gain = photo.DefaultGain
	}

	readNoise, err := img.header.GetFloat(KeyReadNoise)
	if err != nil || readNoise < 0 {
		readNoise = photo.DefaultReadNoise
	}

	floor := float32(photo.ReadNoiseADUPerPixel(readNoise, gain))

	noisemap, _ := NewPlane[float32](img.Width(), img.Height())
	for y := 0; y < img.Height(); y++ {
		bkg := img.background.Row(y)
		out := noisemap.Row(y)
		for x := range out {
			out[x] = floor + float32(math.Sqrt(math.Max(float64(bkg[x]), 0)/gain))
		}
	}
	img.noisemap = noisemap
}

// AddDefaultSegmap resets the segmentation map to all SegmapUnassigned.
// Without force the existing plane is kept.
func (img *Image) AddDefaultSegmap(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing segmentation map with default")
	img.segmap, _ = FullPlane(img.Width(), img.Height(), SegmapUnassigned)
}

// AddDefaultBackground resets the background plane to all zero. Without
// force the existing plane is kept.
func (img *Image) AddDefaultBackground(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing background map with default")
	img.background, _ = NewPlane[float32](img.Width(), img.Height())
}

// AddDefaultWeight resets the weight plane to all one. Without force the
// existing plane is kept.
func (img *Image) AddDefaultWeight(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing weight map with default")
	img.weight, _ = FullPlane[float32](img.Width(), img.Height(), 1)
}

// AddDefaultHeader resets the header to empty. Without force the existing
// header is kept.
func (img *Image) AddDefaultHeader(force bool) {
	if !force {
		return
	}

	img.logger.Warn("overwriting existing header with default")
	img.header = fits.NewHeader()
}

// AddDefaultWCS attaches the identity-scale TAN stub. A missing WCS is
// always filled in; replacing an existing one requires force and logs a
// warning.
func (img *Image) AddDefaultWCS(force bool) {
	if img.wcs != nil {
		if !force {
			return
		}
		img.logger.Warn("overwriting existing WCS with default")
	}

	img.wcs = wcs.NewDefaultWCS()
}

// Equal reports whether two images hold identical planes, offsets, and WCS
// parameters. Headers are not compared. NaN pixels compare unequal, like
// NaN itself.
func (img *Image) Equal(other *Image) bool {
	if other == nil {
		return false
	}

	if img.offsetX != other.offsetX || img.offsetY != other.offsetY {
		return false
	}

	if (img.wcs == nil) != (other.wcs == nil) {
		return false
	}
	if img.wcs != nil && *img.wcs != *other.wcs {
		return false
	}

	return EqualPlanes(img.data, other.data) &&
		EqualPlanes(img.mask, other.mask) &&
		EqualPlanes(img.noisemap, other.noisemap) &&
		EqualPlanes(img.segmap, other.segmap) &&
		EqualPlanes(img.background, other.background) &&
		EqualPlanes(img.weight, other.weight)
}

// String returns a short human-readable summary.
func (img *Image) String() string {
	wcsState := "no WCS"
	if img.wcs != nil {
		wcsState = "WCS attached"
	}

	return fmt.Sprintf("Image(%dx%d, offset (%g, %g), %s)",
		img.Width(), img.Height(), img.offsetX, img.offsetY, wcsState)
}
