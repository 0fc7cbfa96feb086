package pix

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/wcs"
)

// Extension names of the auxiliary planes in a science frame file.
const (
	ExtMask       = "MASK"
	ExtNoisemap   = "NOISEMAP"
	ExtSegmap     = "SEGMAP"
	ExtBackground = "BKGMAP"
	ExtWeight     = "WGTMAP"
)

// encodeConfig collects the optional FITS writing arguments.
type encodeConfig struct {
	dataOnly  bool
	overwrite bool
}

// EncodeOption configures ToFITS, EncodeFITS and WriteFITS.
type EncodeOption = options.Option[*encodeConfig]

// DataOnly writes only the primary science HDU, dropping the auxiliary
// plane extensions.
func DataOnly() EncodeOption {
	return options.NoError(func(cfg *encodeConfig) {
		cfg.dataOnly = true
	})
}

// Overwrite lets WriteFITS replace an existing file.
func Overwrite() EncodeOption {
	return options.NoError(func(cfg *encodeConfig) {
		cfg.overwrite = true
	})
}

// ToFITS renders the image as a FITS file structure: the science plane and
// metadata in the primary HDU, the auxiliary planes as named image
// extensions.
//
// The primary header carries the image header's cards plus the serialized
// WCS (when attached) and the pixel offset under the SHEIOFX/SHEIOFY
// keywords, so a round trip restores all image state.
func (img *Image) ToFITS(opts ...EncodeOption) (*fits.File, error) {
	var cfg encodeConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	header := img.header.Clone()

	if err := header.SetFloat(KeyOffsetX, img.offsetX, "x pixel offset in parent frame"); err != nil {
		return nil, err
	}
	if err := header.SetFloat(KeyOffsetY, img.offsetY, "y pixel offset in parent frame"); err != nil {
		return nil, err
	}

	if img.wcs != nil {
		if err := img.wcs.ToHeader(header); err != nil {
			return nil, err
		}
	} else {
		wcs.Strip(header)
	}

	data, err := fits.NewImageFloat32(img.Width(), img.Height(), img.data.Values())
	if err != nil {
		return nil, err
	}

	f := fits.NewFile()
	f.Append(&fits.HDU{Header: header, Image: data})

	if cfg.dataOnly {
		return f, nil
	}

	width, height := img.Width(), img.Height()

	maskImg, err := fits.NewImageInt32(width, height, img.mask.Values())
	if err != nil {
		return nil, err
	}
	noiseImg, err := fits.NewImageFloat32(width, height, img.noisemap.Values())
	if err != nil {
		return nil, err
	}
	segImg, err := fits.NewImageInt64(width, height, img.segmap.Values())
	if err != nil {
		return nil, err
	}
	bkgImg, err := fits.NewImageFloat32(width, height, img.background.Values())
	if err != nil {
		return nil, err
	}
	wgtImg, err := fits.NewImageFloat32(width, height, img.weight.Values())
	if err != nil {
		return nil, err
	}

	f.Append(&fits.HDU{Name: ExtMask, Image: maskImg})
	f.Append(&fits.HDU{Name: ExtNoisemap, Image: noiseImg})
	f.Append(&fits.HDU{Name: ExtSegmap, Image: segImg})
	f.Append(&fits.HDU{Name: ExtBackground, Image: bkgImg})
	f.Append(&fits.HDU{Name: ExtWeight, Image: wgtImg})

	return f, nil
}

// EncodeFITS renders the image as FITS bytes.
func (img *Image) EncodeFITS(opts ...EncodeOption) ([]byte, error) {
	f, err := img.ToFITS(opts...)
	if err != nil {
		return nil, err
	}

	return f.Encode()
}

// WriteFITS writes the image to a FITS file at path. Pass Overwrite to
// replace an existing file.
func (img *Image) WriteFITS(path string, opts ...EncodeOption) error {
	var cfg encodeConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}

	f, err := img.ToFITS(opts...)
	if err != nil {
		return err
	}

	var writeOpts []fits.WriteOption
	if cfg.overwrite {
		writeOpts = append(writeOpts, fits.WithOverwrite())
	}

	return fits.WriteFile(path, f, writeOpts...)
}

// planeSource names an alternate file and extension for one auxiliary
// plane.
type planeSource struct {
	path string
	ext  string
}

// readConfig collects the optional FITS reading arguments.
type readConfig struct {
	logger     *zap.Logger
	mask       planeSource
	noisemap   planeSource
	segmap     planeSource
	background planeSource
	weight     planeSource
}

// ReadOption configures FromFITS, DecodeFITS and ReadFITS.
type ReadOption = options.Option[*readConfig]

// WithReadLogger sets the logger decode warnings are emitted on; it also
// becomes the logger of the resulting image.
func WithReadLogger(l *zap.Logger) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.logger = l
	})
}

// WithMaskFrom reads the mask plane from another FITS file. An empty ext
// keeps the standard extension name; an empty path keeps the main file.
func WithMaskFrom(path, ext string) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.mask = planeSource{path: path, ext: ext}
	})
}

// WithNoisemapFrom reads the noisemap plane from another FITS file.
func WithNoisemapFrom(path, ext string) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.noisemap = planeSource{path: path, ext: ext}
	})
}

// WithSegmapFrom reads the segmentation map plane from another FITS file.
func WithSegmapFrom(path, ext string) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.segmap = planeSource{path: path, ext: ext}
	})
}

// WithBackgroundFrom reads the background plane from another FITS file.
func WithBackgroundFrom(path, ext string) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.background = planeSource{path: path, ext: ext}
	})
}

// WithWeightFrom reads the weight plane from another FITS file.
func WithWeightFrom(path, ext string) ReadOption {
	return options.NoError(func(cfg *readConfig) {
		cfg.weight = planeSource{path: path, ext: ext}
	})
}

// ReadFITS reads an image from a FITS file, reassembling offset, WCS and
// the auxiliary planes written by WriteFITS. Missing plane extensions get
// their construction defaults. Per-plane options redirect individual planes
// to other files or extension names.
func ReadFITS(path string, opts ...ReadOption) (*Image, error) {
	cfg, err := applyReadConfig(opts)
	if err != nil {
		return nil, err
	}

	main, err := fits.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cache := map[string]*fits.File{path: main}
	resolve := func(p string) (*fits.File, error) {
		if p == "" {
			return main, nil
		}
		if f, ok := cache[p]; ok {
			return f, nil
		}

		f, err := fits.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cache[p] = f

		return f, nil
	}

	return imageFromFITS(main, cfg, resolve)
}

// DecodeFITS reads an image from in-memory FITS bytes. Per-plane file
// redirection options still read their alternate files from disk.
func DecodeFITS(data []byte, opts ...ReadOption) (*Image, error) {
	cfg, err := applyReadConfig(opts)
	if err != nil {
		return nil, err
	}

	main, err := fits.Decode(data)
	if err != nil {
		return nil, err
	}

	cache := map[string]*fits.File{}
	resolve := func(p string) (*fits.File, error) {
		if p == "" {
			return main, nil
		}
		if f, ok := cache[p]; ok {
			return f, nil
		}

		f, err := fits.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cache[p] = f

		return f, nil
	}

	return imageFromFITS(main, cfg, resolve)
}

// FromFITS builds an image from an already decoded single FITS file.
func FromFITS(f *fits.File, opts ...ReadOption) (*Image, error) {
	cfg, err := applyReadConfig(opts)
	if err != nil {
		return nil, err
	}

	return imageFromFITS(f, cfg, func(p string) (*fits.File, error) {
		if p != "" {
			return nil, fmt.Errorf("%w: plane source %q in an in-memory read", errs.ErrHDUNotFound, p)
		}

		return f, nil
	})
}

func applyReadConfig(opts []ReadOption) (*readConfig, error) {
	cfg := readConfig{}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &cfg, nil
}

// imageFromFITS assembles an Image from the primary HDU of main and the
// plane extensions located through resolve.
func imageFromFITS(main *fits.File, cfg *readConfig, resolve func(string) (*fits.File, error)) (*Image, error) {
	primary := main.Primary()
	if primary == nil || primary.Image == nil {
		return nil, fmt.Errorf("%w: primary HDU has no image payload", errs.ErrWrongHDUType)
	}

	values, err := primary.Image.Float32s()
	if err != nil {
		return nil, fmt.Errorf("decode primary: %w", err)
	}

	data, err := PlaneFromValues(primary.Image.Width, primary.Image.Height, values)
	if err != nil {
		return nil, err
	}

	header := fits.NewHeader()
	if primary.Header != nil {
		header = primary.Header.Clone()
	}

	var offsetX, offsetY float64
	if v, err := header.GetFloat(KeyOffsetX); err == nil {
		offsetX = v
		header.Delete(KeyOffsetX)
	}
	if v, err := header.GetFloat(KeyOffsetY); err == nil {
		offsetY = v
		header.Delete(KeyOffsetY)
	}

	var imgWCS *wcs.WCS
	if wcs.HasWCS(header) {
		imgWCS, err = wcs.FromHeader(header)
		if err != nil {
			return nil, err
		}
		wcs.Strip(header)
	}

	imgOpts := []ImageOption{
		WithHeader(header),
		WithOffset(offsetX, offsetY),
		WithWCS(imgWCS),
		WithLogger(cfg.logger),
	}

	maskPlane, err := loadPlane(cfg, resolve, cfg.mask, ExtMask, decodeMaskPlane)
	if err != nil {
		return nil, err
	}
	if maskPlane != nil {
		imgOpts = append(imgOpts, WithMask(maskPlane))
	}

	noisemap, err := loadPlane(cfg, resolve, cfg.noisemap, ExtNoisemap, decodeFloatPlane)
	if err != nil {
		return nil, err
	}
	if noisemap != nil {
		imgOpts = append(imgOpts, WithNoisemap(noisemap))
	}

	segmap, err := loadPlane(cfg, resolve, cfg.segmap, ExtSegmap, decodeSegmapPlane)
	if err != nil {
		return nil, err
	}
	if segmap != nil {
		imgOpts = append(imgOpts, WithSegmap(segmap))
	}

	background, err := loadPlane(cfg, resolve, cfg.background, ExtBackground, decodeFloatPlane)
	if err != nil {
		return nil, err
	}
	if background != nil {
		imgOpts = append(imgOpts, WithBackground(background))
	}

	weight, err := loadPlane(cfg, resolve, cfg.weight, ExtWeight, decodeFloatPlane)
	if err != nil {
		return nil, err
	}
	if weight != nil {
		imgOpts = append(imgOpts, WithWeight(weight))
	}

	return New(data, imgOpts...)
}

// loadPlane locates one auxiliary plane extension and decodes it. A missing
// extension in the main file is not an error (the plane gets its default);
// a missing extension in an explicitly named alternate file is.
func loadPlane[T any](cfg *readConfig, resolve func(string) (*fits.File, error), src planeSource, defaultExt string, decode func(*readConfig, *fits.Image) (*Plane[T], error)) (*Plane[T], error) {
	f, err := resolve(src.path)
	if err != nil {
		return nil, err
	}

	ext := src.ext
	if ext == "" {
		ext = defaultExt
	}

	hdu, err := f.ByName(ext)
	if err != nil {
		if src.path == "" && src.ext == "" {
			return nil, nil
		}

		return nil, err
	}

	if hdu.Image == nil {
		return nil, fmt.Errorf("%w: extension %s has no image payload", errs.ErrWrongHDUType, ext)
	}

	return decode(cfg, hdu.Image)
}

// decodeFloatPlane decodes a BITPIX -32 extension.
func decodeFloatPlane(_ *readConfig, img *fits.Image) (*Plane[float32], error) {
	values, err := img.Float32s()
	if err != nil {
		return nil, err
	}

	return PlaneFromValues(img.Width, img.Height, values)
}

// decodeMaskPlane decodes an integer extension into the int32 mask plane,
// widening BITPIX 8/16 with a warning and range-checking BITPIX 64.
func decodeMaskPlane(cfg *readConfig, img *fits.Image) (*Plane[int32], error) {
	switch {
	case img.Bitpix == 64:
		wide, err := img.Int64s()
		if err != nil {
			return nil, err
		}

		values := make([]int32, len(wide))
		for i, v := range wide {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: mask value %d does not fit int32", errs.ErrLossyCast, v)
			}
			values[i] = int32(v)
		}

		return PlaneFromValues(img.Width, img.Height, values)

	case img.Bitpix == 8 || img.Bitpix == 16:
		cfg.logger.Warn("widening narrow mask payload to int32", zap.Int("bitpix", img.Bitpix))
		fallthrough

	default:
		values, err := img.Int32s()
		if err != nil {
			return nil, err
		}

		return PlaneFromValues(img.Width, img.Height, values)
	}
}

// decodeSegmapPlane decodes an integer extension into the int64
// segmentation plane, widening narrower types losslessly.
func decodeSegmapPlane(_ *readConfig, img *fits.Image) (*Plane[int64], error) {
	values, err := img.Int64s()
	if err != nil {
		return nil, err
	}

	return PlaneFromValues(img.Width, img.Height, values)
}
