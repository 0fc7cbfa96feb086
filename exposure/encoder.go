package exposure

import (
	"fmt"

	"github.com/astrofold/shearkit/compress"
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/format"
	"github.com/astrofold/shearkit/internal/hash"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/internal/pool"
	"github.com/astrofold/shearkit/internal/rawenc"
	"github.com/astrofold/shearkit/pix"
	"github.com/astrofold/shearkit/section"
	"github.com/astrofold/shearkit/wcs"
)

// Encoder encodes detector planes into the exposure store format.
//
// The lifecycle is strict: StartDetector, one AddLayer per plane kind,
// EndDetector, repeated per detector, then a single Finish. Violating the
// order returns an error and leaves the encoder unchanged.
//
// Note: The Encoder is NOT thread-safe and NOT reusable. After calling
// Finish, a new encoder must be created for further encoding.
type Encoder struct {
	header *section.StoreHeader
	engine endian.EndianEngine
	codec  compress.Codec

	chunkRows int

	globalHeader *fits.Header

	detectors []*detectorBuilder
	cur       *detectorBuilder
	usedNames map[string]struct{}

	stats compress.CompressionStats
}

// detectorBuilder accumulates one detector between StartDetector and
// EndDetector.
type detectorBuilder struct {
	meta   DetectorMeta
	layers []*layerBuilder

	// plane shape, locked by the first layer
	width  int
	height int
}

// hasLayer reports whether the detector already holds a layer of this type.
func (d *detectorBuilder) hasLayer(layer format.LayerType) bool {
	for _, l := range d.layers {
		if l.entry.Layer == layer {
			return true
		}
	}

	return false
}

// layerBuilder holds one encoded plane: its index entry plus the compressed
// chunk payloads in row-band order.
type layerBuilder struct {
	entry  section.LayerEntry
	chunks []section.ChunkEntry
	data   [][]byte
}

// encoderConfig collects the optional encoder arguments.
type encoderConfig struct {
	chunkRows    int
	compression  format.CompressionType
	intEncoding  format.EncodingType
	bigEndian    bool
	globalHeader *fits.Header
}

// EncoderOption configures NewEncoder.
type EncoderOption = options.Option[*encoderConfig]

// WithChunkRows sets the row-band height planes are chunked with
// (default section.DefaultChunkRows).
func WithChunkRows(rows int) EncoderOption {
	return options.New(func(cfg *encoderConfig) error {
		if rows < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidChunkRows, rows)
		}
		cfg.chunkRows = rows

		return nil
	})
}

// WithCompression sets the chunk compression codec (default Zstd).
func WithCompression(c format.CompressionType) EncoderOption {
	return options.New(func(cfg *encoderConfig) error {
		if !c.IsValid() {
			return fmt.Errorf("%w: compression %s", errs.ErrInvalidHeaderFlags, c)
		}
		cfg.compression = c

		return nil
	})
}

// WithIntEncoding sets the plane encoding for integer layers (default Delta).
// Float layers are always raw.
func WithIntEncoding(enc format.EncodingType) EncoderOption {
	return options.New(func(cfg *encoderConfig) error {
		if !enc.IsValid() {
			return fmt.Errorf("%w: encoding %s", errs.ErrInvalidHeaderFlags, enc)
		}
		cfg.intEncoding = enc

		return nil
	})
}

// WithBigEndian switches payload byte order to big-endian. The default is
// little-endian, matching the common host order.
func WithBigEndian() EncoderOption {
	return options.NoError(func(cfg *encoderConfig) {
		cfg.bigEndian = true
	})
}

// WithGlobalHeader attaches an exposure-level FITS header to the store
// metadata.
func WithGlobalHeader(h *fits.Header) EncoderOption {
	return options.NoError(func(cfg *encoderConfig) {
		cfg.globalHeader = h
	})
}

// NewEncoder creates a new exposure store encoder.
//
// Returns:
//   - *Encoder: New encoder ready for StartDetector
//   - error: Configuration error if invalid options provided
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := encoderConfig{
		chunkRows:   section.DefaultChunkRows,
		compression: format.CompressionZstd,
		intEncoding: format.TypeDelta,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	header := section.NewStoreHeader()
	header.ChunkRows = uint32(cfg.chunkRows) //nolint: gosec
	header.Flag.SetCompression(cfg.compression)
	header.Flag.SetIntEncoding(cfg.intEncoding)
	if cfg.bigEndian {
		header.Flag.WithBigEndian()
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		header:       header,
		engine:       header.Flag.GetEndianEngine(),
		codec:        codec,
		chunkRows:    cfg.chunkRows,
		globalHeader: cfg.globalHeader,
		usedNames:    make(map[string]struct{}),
		stats:        compress.CompressionStats{Algorithm: cfg.compression},
	}, nil
}

// detectorConfig collects the optional StartDetector arguments.
type detectorConfig struct {
	header *fits.Header
	wcs    *wcs.WCS
}

// DetectorOption configures StartDetector.
type DetectorOption = options.Option[*detectorConfig]

// WithDetectorHeader attaches the detector's FITS header to the store
// metadata.
func WithDetectorHeader(h *fits.Header) DetectorOption {
	return options.NoError(func(cfg *detectorConfig) {
		cfg.header = h
	})
}

// WithDetectorWCS attaches the detector's WCS to the store metadata, stored
// as header cards.
func WithDetectorWCS(w *wcs.WCS) DetectorOption {
	return options.NoError(func(cfg *detectorConfig) {
		cfg.wcs = w
	})
}

// StartDetector begins encoding a new detector with the given name.
//
// Parameters:
//   - name: Detector name, unique within the store ("1-1", "3-2.E", ...)
//   - opts: Optional detector header and WCS for the metadata section
//
// Returns:
//   - error: ErrDetectorAlreadyStarted if a detector is still open, or
//     ErrDuplicateDetector if the name was already encoded
func (e *Encoder) StartDetector(name string, opts ...DetectorOption) error {
	if e.cur != nil {
		return fmt.Errorf("%w: detector %q is still open", errs.ErrDetectorAlreadyStarted, e.cur.meta.Name)
	}

	if _, exists := e.usedNames[name]; exists {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateDetector, name)
	}

	var cfg detectorConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}

	meta := DetectorMeta{Name: name}

	var err error
	if meta.Header, err = headerToCards(cfg.header); err != nil {
		return fmt.Errorf("failed to encode header for detector %q: %w", name, err)
	}

	if cfg.wcs != nil {
		wcsHeader := fits.NewHeader()
		if err := cfg.wcs.ToHeader(wcsHeader); err != nil {
			return fmt.Errorf("failed to encode WCS for detector %q: %w", name, err)
		}
		if meta.WCSHeader, err = headerToCards(wcsHeader); err != nil {
			return err
		}
	}

	e.usedNames[name] = struct{}{}
	e.cur = &detectorBuilder{meta: meta}

	return nil
}

// AddLayer encodes one plane of the open detector.
//
// The plane's concrete type must match the layer's pixel type:
// *pix.Plane[float32] for Sci/Rms/Wgt/Bkg, *pix.Plane[int32] for Flg, and
// *pix.Plane[int64] for Seg. All layers of a detector must share one shape,
// locked by the first layer added.
//
// Parameters:
//   - layer: Layer type this plane represents
//   - plane: The pixel plane
//
// Returns:
//   - error: ErrNoDetectorStarted, ErrUnknownLayer, ErrDuplicateLayer,
//     ErrInvalidPixelType for a plane of the wrong type, ErrShapeMismatch,
//     or a compression error
func (e *Encoder) AddLayer(layer format.LayerType, plane any) error {
	if e.cur == nil {
		return errs.ErrNoDetectorStarted
	}

	if !layer.IsValid() {
		return fmt.Errorf("%w: layer 0x%x", errs.ErrUnknownLayer, uint8(layer))
	}

	if e.cur.hasLayer(layer) {
		return fmt.Errorf("%w: %s already added to detector %q", errs.ErrDuplicateLayer, layer, e.cur.meta.Name)
	}

	var (
		lb  *layerBuilder
		err error
	)

	switch p := plane.(type) {
	case *pix.Plane[float32]:
		if layer.PixelType() != format.PixelFloat32 {
			return fmt.Errorf("%w: layer %s wants %s, got float32 plane",
				errs.ErrInvalidPixelType, layer, layer.PixelType())
		}
		lb, err = e.encodeLayer(layer, p.Width(), p.Height(), func(y0, y1 int, dst []byte) []byte {
			for y := y0; y < y1; y++ {
				dst = rawenc.AppendFloat32(dst, p.Row(y), e.engine)
			}

			return dst
		})
	case *pix.Plane[int32]:
		if layer.PixelType() != format.PixelInt32 {
			return fmt.Errorf("%w: layer %s wants %s, got int32 plane",
				errs.ErrInvalidPixelType, layer, layer.PixelType())
		}
		lb, err = e.encodeLayer(layer, p.Width(), p.Height(), func(y0, y1 int, dst []byte) []byte {
			if e.header.Flag.IntEncoding() == format.TypeDelta {
				// One continuous delta stream per row band; the decoder
				// replays a whole chunk with a single accumulator.
				band := make([]int32, 0, (y1-y0)*p.Width())
				for y := y0; y < y1; y++ {
					band = append(band, p.Row(y)...)
				}

				return rawenc.AppendInt32Delta(dst, band)
			}

			for y := y0; y < y1; y++ {
				dst = rawenc.AppendInt32(dst, p.Row(y), e.engine)
			}

			return dst
		})
	case *pix.Plane[int64]:
		if layer.PixelType() != format.PixelInt64 {
			return fmt.Errorf("%w: layer %s wants %s, got int64 plane",
				errs.ErrInvalidPixelType, layer, layer.PixelType())
		}
		lb, err = e.encodeLayer(layer, p.Width(), p.Height(), func(y0, y1 int, dst []byte) []byte {
			if e.header.Flag.IntEncoding() == format.TypeDelta {
				band := make([]int64, 0, (y1-y0)*p.Width())
				for y := y0; y < y1; y++ {
					band = append(band, p.Row(y)...)
				}

				return rawenc.AppendInt64Delta(dst, band)
			}

			for y := y0; y < y1; y++ {
				dst = rawenc.AppendInt64(dst, p.Row(y), e.engine)
			}

			return dst
		})
	default:
		return fmt.Errorf("%w: unsupported plane type %T", errs.ErrInvalidPixelType, plane)
	}

	if err != nil {
		return err
	}

	e.cur.layers = append(e.cur.layers, lb)

	return nil
}

// encodeLayer splits a plane into row-band chunks, encodes each band with
// appendRows, and compresses the bands independently.
func (e *Encoder) encodeLayer(layer format.LayerType, width, height int, appendRows func(y0, y1 int, dst []byte) []byte) (*layerBuilder, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d plane for layer %s", errs.ErrInvalidShape, width, height, layer)
	}

	if e.cur.width == 0 {
		e.cur.width = width
		e.cur.height = height
	} else if width != e.cur.width || height != e.cur.height {
		return nil, fmt.Errorf("%w: layer %s is %dx%d, detector %q is %dx%d",
			errs.ErrShapeMismatch, layer, width, height, e.cur.meta.Name, e.cur.width, e.cur.height)
	}

	chunkCount := (height + e.chunkRows - 1) / e.chunkRows

	lb := &layerBuilder{
		entry: section.LayerEntry{
			Layer:      layer,
			Pixel:      layer.PixelType(),
			Width:      uint32(width),      //nolint: gosec
			Height:     uint32(height),     //nolint: gosec
			ChunkCount: uint32(chunkCount), //nolint: gosec
		},
		chunks: make([]section.ChunkEntry, 0, chunkCount),
		data:   make([][]byte, 0, chunkCount),
	}

	// One pooled staging buffer per layer, reset per chunk; only the
	// compressed bytes outlive the loop.
	raw := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(raw)

	for y0 := 0; y0 < height; y0 += e.chunkRows {
		y1 := y0 + e.chunkRows
		if y1 > height {
			y1 = height
		}

		raw.Reset()
		raw.Grow((y1 - y0) * width * layer.PixelType().Size())
		raw.B = appendRows(y0, y1, raw.B)

		compressed, err := e.codec.Compress(raw.B)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %s chunk rows %d-%d: %w", layer, y0, y1-1, err)
		}

		e.stats.Add(raw.Len(), len(compressed))

		lb.chunks = append(lb.chunks, section.ChunkEntry{
			CompressedLength: uint32(len(compressed)), //nolint: gosec
			RawLength:        uint32(raw.Len()),       //nolint: gosec
		})
		lb.data = append(lb.data, compressed)
	}

	return lb, nil
}

// EndDetector completes the open detector.
//
// Returns:
//   - error: ErrNoDetectorStarted or ErrNoLayersAdded
func (e *Encoder) EndDetector() error {
	if e.cur == nil {
		return errs.ErrNoDetectorStarted
	}

	if len(e.cur.layers) == 0 {
		return fmt.Errorf("%w: detector %q", errs.ErrNoLayersAdded, e.cur.meta.Name)
	}

	e.detectors = append(e.detectors, e.cur)
	e.cur = nil

	return nil
}

// Stats returns the accumulated compression statistics.
func (e *Encoder) Stats() compress.CompressionStats {
	return e.stats
}

// Finish finalizes the encoding and returns the complete store.
//
// Returns:
//   - []byte: Complete store with header, metadata, index, and payloads
//   - error: ErrDetectorNotEnded if a detector is still open,
//     ErrNoDetectorsAdded if no detectors were encoded, or an encoding error
func (e *Encoder) Finish() ([]byte, error) {
	if e.cur != nil {
		return nil, fmt.Errorf("%w: detector %q", errs.ErrDetectorNotEnded, e.cur.meta.Name)
	}

	if len(e.detectors) == 0 {
		return nil, errs.ErrNoDetectorsAdded
	}

	meta := Metadata{Detectors: make([]DetectorMeta, 0, len(e.detectors))}
	for _, d := range e.detectors {
		meta.Detectors = append(meta.Detectors, d.meta)
	}

	var err error
	if meta.GlobalHeader, err = headerToCards(e.globalHeader); err != nil {
		return nil, fmt.Errorf("failed to encode global header: %w", err)
	}

	metaPayload, checksum, err := meta.encode()
	if err != nil {
		return nil, err
	}

	// Index layout: detector entries first, then per detector its layer
	// entries followed by its chunk tables. All internal offsets are
	// relative to the index section start.
	indexSize := len(e.detectors) * section.DetectorEntrySize
	payloadSize := 0
	for _, d := range e.detectors {
		indexSize += len(d.layers) * section.LayerEntrySize
		for _, l := range d.layers {
			indexSize += len(l.chunks) * section.ChunkEntrySize
			for _, c := range l.chunks {
				payloadSize += int(c.CompressedLength)
			}
		}
	}

	header := *e.header // shallow copy, keeps the encoder's header pristine
	header.DetectorCount = uint32(len(e.detectors)) //nolint: gosec
	header.MetadataOffset = section.HeaderSize
	header.MetadataChecksum = checksum
	header.IndexOffset = uint64(section.HeaderSize + len(metaPayload))
	header.PayloadOffset = header.IndexOffset + uint64(indexSize)

	store := make([]byte, section.HeaderSize+len(metaPayload)+indexSize+payloadSize)

	offset := copy(store, header.Bytes())
	offset += copy(store[offset:], metaPayload)

	// entryCursor walks the space past the detector entry table.
	entryCursor := len(e.detectors) * section.DetectorEntrySize
	payloadCursor := 0

	for i, d := range e.detectors {
		detEntry := section.DetectorEntry{
			DetectorID:  hash.ID(d.meta.Name),
			EntryOffset: uint32(entryCursor), //nolint: gosec
			LayerCount:  len(d.layers),
		}
		detEntry.WriteToSlice(store[offset:], i*section.DetectorEntrySize, e.engine)

		// Layer entries precede the detector's chunk tables.
		chunkCursor := entryCursor + len(d.layers)*section.LayerEntrySize

		for j, l := range d.layers {
			l.entry.ChunkTableOffset = uint32(chunkCursor) //nolint: gosec
			l.entry.WriteToSlice(store[offset:], entryCursor+j*section.LayerEntrySize, e.engine)

			lastOffset := 0
			for k := range l.chunks {
				// First chunk stores its absolute payload offset, the rest
				// store deltas; back-to-back layout makes each delta the
				// previous chunk's compressed length.
				l.chunks[k].CompressedOffset = int64(payloadCursor - lastOffset)
				lastOffset = payloadCursor

				chunkCursor = l.chunks[k].WriteToSlice(store[offset:], chunkCursor, e.engine)

				payloadCursor += copy(store[int(header.PayloadOffset)+payloadCursor:], l.data[k])
			}
		}

		entryCursor = chunkCursor
	}

	return store, nil
}
