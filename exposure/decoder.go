package exposure

import (
	"fmt"

	"github.com/astrofold/shearkit/compress"
	"github.com/astrofold/shearkit/endian"
	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/format"
	"github.com/astrofold/shearkit/internal/hash"
	"github.com/astrofold/shearkit/internal/rawenc"
	"github.com/astrofold/shearkit/pix"
	"github.com/astrofold/shearkit/section"
	"github.com/astrofold/shearkit/wcs"
)

// Decoder reads exposure stores.
//
// The header, metadata, and index are parsed eagerly by NewDecoder; chunk
// payloads are decompressed lazily, one chunk at a time, so region and stamp
// reads touch only the row bands they intersect.
//
// The Decoder holds a reference to the input slice and is safe for
// concurrent reads as long as the input is not mutated.
type Decoder struct {
	data   []byte
	header section.StoreHeader
	engine endian.EndianEngine
	codec  compress.Codec
	meta   *Metadata

	order     []string
	detectors map[string]*detectorIndex
}

// detectorIndex is the parsed index of one detector.
type detectorIndex struct {
	meta   DetectorMeta
	order  []format.LayerType
	layers map[format.LayerType]*layerIndex
}

// layerIndex is the parsed index of one stored plane. Chunk entries hold
// absolute payload offsets, reconstructed from the on-disk deltas.
type layerIndex struct {
	entry  section.LayerEntry
	chunks []section.ChunkEntry
}

// LayerInfo summarizes one stored plane for tooling.
type LayerInfo struct {
	Layer          format.LayerType
	Pixel          format.PixelType
	Width          int
	Height         int
	ChunkCount     int
	CompressedSize int64
	RawSize        int64
}

// NewDecoder parses the header, metadata, and index of an exposure store.
//
// Parameters:
//   - data: Complete store bytes; the decoder keeps a reference
//
// Returns:
//   - *Decoder: Decoder ready for layer and stamp reads
//   - error: Header validation errors, ErrMetadataChecksum, or index
//     corruption errors
func NewDecoder(data []byte) (*Decoder, error) {
	header, err := section.ParseStoreHeader(data)
	if err != nil {
		return nil, err
	}

	if header.IndexOffset > uint64(len(data)) || header.PayloadOffset > uint64(len(data)) ||
		header.MetadataOffset > header.IndexOffset || header.IndexOffset > header.PayloadOffset {
		return nil, fmt.Errorf("%w: section offsets exceed %d bytes", errs.ErrTruncatedData, len(data))
	}

	meta, err := decodeMetadata(data[header.MetadataOffset:header.IndexOffset], header.MetadataChecksum)
	if err != nil {
		return nil, err
	}

	if len(meta.Detectors) != int(header.DetectorCount) {
		return nil, fmt.Errorf("%w: metadata lists %d detectors, header says %d",
			errs.ErrMetadataChecksum, len(meta.Detectors), header.DetectorCount)
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		data:      data,
		header:    header,
		engine:    header.Flag.GetEndianEngine(),
		codec:     codec,
		meta:      meta,
		detectors: make(map[string]*detectorIndex, header.DetectorCount),
	}

	if err := d.parseIndex(); err != nil {
		return nil, err
	}

	return d, nil
}

// parseIndex walks the detector, layer, and chunk entry tables, resolving
// hashed detector IDs back to the names the metadata carries.
func (d *Decoder) parseIndex() error {
	index := d.data[d.header.IndexOffset:d.header.PayloadOffset]

	for i, dm := range d.meta.Detectors {
		entry, err := section.ParseDetectorEntry(index[i*section.DetectorEntrySize:], d.engine)
		if err != nil {
			return err
		}

		if entry.DetectorID != hash.ID(dm.Name) {
			return fmt.Errorf("%w: index entry %d does not hash to detector %q",
				errs.ErrMetadataChecksum, i, dm.Name)
		}

		det := &detectorIndex{
			meta:   dm,
			layers: make(map[format.LayerType]*layerIndex, entry.LayerCount),
		}

		for j := 0; j < entry.LayerCount; j++ {
			offset := int(entry.EntryOffset) + j*section.LayerEntrySize
			layerEntry, err := section.ParseLayerEntry(index[offset:], d.engine)
			if err != nil {
				return err
			}

			li := &layerIndex{
				entry:  layerEntry,
				chunks: make([]section.ChunkEntry, 0, layerEntry.ChunkCount),
			}

			absolute := int64(0)
			for k := 0; k < int(layerEntry.ChunkCount); k++ {
				chunkOffset := int(layerEntry.ChunkTableOffset) + k*section.ChunkEntrySize
				chunk, err := section.ParseChunkEntry(index[chunkOffset:], d.engine)
				if err != nil {
					return err
				}

				// Accumulate deltas into absolute payload offsets.
				absolute += chunk.CompressedOffset
				chunk.CompressedOffset = absolute
				li.chunks = append(li.chunks, chunk)
			}

			det.order = append(det.order, layerEntry.Layer)
			det.layers[layerEntry.Layer] = li
		}

		d.order = append(d.order, dm.Name)
		d.detectors[dm.Name] = det
	}

	return nil
}

// Detectors returns the stored detector names in index order.
func (d *Decoder) Detectors() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)

	return out
}

// ChunkRows returns the row-band height the store was chunked with.
func (d *Decoder) ChunkRows() int {
	return int(d.header.ChunkRows)
}

// Compression returns the store's chunk compression type.
func (d *Decoder) Compression() format.CompressionType {
	return d.header.Flag.Compression()
}

// GlobalHeader returns the exposure-level FITS header, or nil when the store
// carries none.
func (d *Decoder) GlobalHeader() (*fits.Header, error) {
	return cardsToHeader(d.meta.GlobalHeader)
}

// detector looks up a detector index by name.
func (d *Decoder) detector(det string) (*detectorIndex, error) {
	di, ok := d.detectors[det]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownDetector, det)
	}

	return di, nil
}

// layer looks up a layer index for a detector.
func (d *Decoder) layer(det string, layer format.LayerType) (*layerIndex, error) {
	di, err := d.detector(det)
	if err != nil {
		return nil, err
	}

	li, ok := di.layers[layer]
	if !ok {
		return nil, fmt.Errorf("%w: detector %q has no %s layer", errs.ErrUnknownLayer, det, layer)
	}

	return li, nil
}

// Layers returns the layer types a detector stores, in index order.
func (d *Decoder) Layers(det string) ([]format.LayerType, error) {
	di, err := d.detector(det)
	if err != nil {
		return nil, err
	}

	out := make([]format.LayerType, len(di.order))
	copy(out, di.order)

	return out, nil
}

// HasLayer reports whether the detector stores a layer of this type.
func (d *Decoder) HasLayer(det string, layer format.LayerType) bool {
	di, ok := d.detectors[det]
	if !ok {
		return false
	}
	_, ok = di.layers[layer]

	return ok
}

// LayerInfo returns the shape and size summary of one stored plane.
func (d *Decoder) LayerInfo(det string, layer format.LayerType) (LayerInfo, error) {
	li, err := d.layer(det, layer)
	if err != nil {
		return LayerInfo{}, err
	}

	info := LayerInfo{
		Layer:      li.entry.Layer,
		Pixel:      li.entry.Pixel,
		Width:      int(li.entry.Width),
		Height:     int(li.entry.Height),
		ChunkCount: len(li.chunks),
	}
	for _, c := range li.chunks {
		info.CompressedSize += int64(c.CompressedLength)
		info.RawSize += int64(c.RawLength)
	}

	return info, nil
}

// DetectorHeader returns the detector's FITS header from the metadata
// section, or nil when none was stored.
func (d *Decoder) DetectorHeader(det string) (*fits.Header, error) {
	di, err := d.detector(det)
	if err != nil {
		return nil, err
	}

	return cardsToHeader(di.meta.Header)
}

// DetectorWCS returns the detector's WCS from the metadata section, or nil
// when none was stored.
func (d *Decoder) DetectorWCS(det string) (*wcs.WCS, error) {
	di, err := d.detector(det)
	if err != nil {
		return nil, err
	}

	if len(di.meta.WCSHeader) == 0 {
		return nil, nil
	}

	h, err := cardsToHeader(di.meta.WCSHeader)
	if err != nil {
		return nil, err
	}

	return wcs.FromHeader(h)
}

// chunk decompresses one row-band chunk of a layer.
func (d *Decoder) chunk(li *layerIndex, k int) ([]byte, error) {
	c := li.chunks[k]

	start := d.header.PayloadOffset + uint64(c.CompressedOffset) //nolint: gosec
	end := start + uint64(c.CompressedLength)
	if end > uint64(len(d.data)) {
		return nil, fmt.Errorf("%w: chunk %d ends at %d of %d bytes", errs.ErrTruncatedData, k, end, len(d.data))
	}

	raw, err := d.codec.Decompress(d.data[start:end])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress chunk %d: %w", k, err)
	}

	if len(raw) != int(c.RawLength) {
		return nil, fmt.Errorf("%w: chunk %d decompressed to %d bytes, index says %d",
			errs.ErrInvalidPayloadSize, k, len(raw), c.RawLength)
	}

	return raw, nil
}

// decodeChunkRows decodes one decompressed chunk into rows of dst.
//
// dst must hold rows*width values. The chunk covers plane rows
// [k*chunkRows, k*chunkRows+rows).
func decodeChunkRows[T LayerPixel](d *Decoder, li *layerIndex, k, rows int, dst []T) error {
	raw, err := d.chunk(li, k)
	if err != nil {
		return err
	}

	delta := d.header.Flag.IntEncoding() == format.TypeDelta

	switch out := any(dst).(type) {
	case []float32:
		return rawenc.DecodeFloat32(out, raw, d.engine)
	case []int32:
		if delta {
			return rawenc.DecodeInt32Delta(out, raw)
		}

		return rawenc.DecodeInt32(out, raw, d.engine)
	case []int64:
		if delta {
			return rawenc.DecodeInt64Delta(out, raw)
		}

		return rawenc.DecodeInt64(out, raw, d.engine)
	default:
		return fmt.Errorf("%w: %T", errs.ErrInvalidPixelType, dst)
	}
}

// LayerPixel constrains the pixel types planes can store.
type LayerPixel interface {
	float32 | int32 | int64
}

// checkPixelType verifies that T matches the stored pixel type of a layer.
func checkPixelType[T LayerPixel](li *layerIndex) error {
	var want format.PixelType
	switch any(*new(T)).(type) {
	case float32:
		want = format.PixelFloat32
	case int32:
		want = format.PixelInt32
	case int64:
		want = format.PixelInt64
	}

	if li.entry.Pixel != want {
		return fmt.Errorf("%w: layer %s stores %s pixels", errs.ErrInvalidPixelType, li.entry.Layer, li.entry.Pixel)
	}

	return nil
}

// Layer reads one full plane from the store.
//
// The type parameter must match the layer's pixel type: float32 for
// Sci/Rms/Wgt/Bkg, int32 for Flg, int64 for Seg.
//
// Returns:
//   - *pix.Plane[T]: The decoded plane
//   - error: ErrUnknownDetector, ErrUnknownLayer, ErrInvalidPixelType, or a
//     payload decoding error
func Layer[T LayerPixel](d *Decoder, det string, layer format.LayerType) (*pix.Plane[T], error) {
	li, err := d.layer(det, layer)
	if err != nil {
		return nil, err
	}

	if err := checkPixelType[T](li); err != nil {
		return nil, err
	}

	width := int(li.entry.Width)
	height := int(li.entry.Height)
	chunkRows := int(d.header.ChunkRows)

	values := make([]T, width*height)
	for k := range li.chunks {
		y0 := k * chunkRows
		rows := chunkRows
		if y0+rows > height {
			rows = height - y0
		}

		if err := decodeChunkRows(d, li, k, rows, values[y0*width:(y0+rows)*width]); err != nil {
			return nil, err
		}
	}

	return pix.PlaneFromValues(width, height, values)
}

// LayerRegion reads a rectangular region of a plane, decompressing only the
// row-band chunks the region intersects.
//
// Parameters:
//   - det, layer: The stored plane to read
//   - x0, y0: Lower-left corner of the region, in plane pixels
//   - width, height: Region extent
//
// Returns:
//   - *pix.Plane[T]: The decoded region
//   - error: ErrRegionOutOfBounds when the region is not fully inside the
//     plane, plus the Layer error set
func LayerRegion[T LayerPixel](d *Decoder, det string, layer format.LayerType, x0, y0, width, height int) (*pix.Plane[T], error) {
	li, err := d.layer(det, layer)
	if err != nil {
		return nil, err
	}

	if err := checkPixelType[T](li); err != nil {
		return nil, err
	}

	planeWidth := int(li.entry.Width)
	planeHeight := int(li.entry.Height)

	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
	}
	if x0 < 0 || y0 < 0 || x0+width > planeWidth || y0+height > planeHeight {
		return nil, fmt.Errorf("%w: region (%d,%d)+%dx%d outside %dx%d plane",
			errs.ErrRegionOutOfBounds, x0, y0, width, height, planeWidth, planeHeight)
	}

	chunkRows := int(d.header.ChunkRows)

	out, err := pix.NewPlane[T](width, height)
	if err != nil {
		return nil, err
	}

	// Chunks are full-width row bands: decode each intersecting band once and
	// copy the region's columns out of it.
	firstChunk := y0 / chunkRows
	lastChunk := (y0 + height - 1) / chunkRows

	rowBuf := make([]T, 0)
	for k := firstChunk; k <= lastChunk; k++ {
		bandY0 := k * chunkRows
		rows := chunkRows
		if bandY0+rows > planeHeight {
			rows = planeHeight - bandY0
		}

		if cap(rowBuf) < rows*planeWidth {
			rowBuf = make([]T, rows*planeWidth)
		}
		band := rowBuf[:rows*planeWidth]

		if err := decodeChunkRows(d, li, k, rows, band); err != nil {
			return nil, err
		}

		for y := bandY0; y < bandY0+rows; y++ {
			if y < y0 || y >= y0+height {
				continue
			}

			src := band[(y-bandY0)*planeWidth+x0 : (y-bandY0)*planeWidth+x0+width]
			copy(out.Row(y-y0), src)
		}
	}

	return out, nil
}
