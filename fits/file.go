package fits

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/internal/pool"
)

// HDU is one header-data unit: semantic metadata plus an image or table
// payload. At most one of Image and Table may be set; both nil makes a
// header-only HDU.
//
// Structural keywords never appear in Header: the encoder derives them from
// the payload and the decoder strips them.
type HDU struct {
	// Name is the extension name (EXTNAME), empty for the primary HDU.
	Name string
	// Header holds the semantic metadata, nil for none.
	Header *Header
	// Image is the image payload, nil for table or header-only HDUs.
	Image *Image
	// Table is the binary-table payload, nil otherwise.
	Table *BinTable
}

// File is an ordered list of HDUs. The first HDU encodes as the primary.
type File struct {
	HDUs []*HDU
}

// NewFile creates an empty file.
func NewFile() *File {
	return &File{}
}

// Append adds an HDU at the end.
func (f *File) Append(hdu *HDU) {
	f.HDUs = append(f.HDUs, hdu)
}

// Primary returns the first HDU, or nil for an empty file.
func (f *File) Primary() *HDU {
	if len(f.HDUs) == 0 {
		return nil
	}

	return f.HDUs[0]
}

// ByName returns the first HDU with the given extension name.
//
// Returns:
//   - *HDU: The matching HDU
//   - error: errs.ErrHDUNotFound when absent
func (f *File) ByName(name string) (*HDU, error) {
	for _, hdu := range f.HDUs {
		if hdu.Name == name {
			return hdu, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrHDUNotFound, name)
}

// Encode renders the file as FITS bytes.
//
// Returns:
//   - []byte: The encoded file, a multiple of BlockSize long
//   - error: errs.ErrHDUNotFound for an empty file, errs.ErrWrongHDUType
//     for an HDU with both payloads or a table in the primary slot
func (f *File) Encode() ([]byte, error) {
	return f.AppendTo(nil)
}

// AppendTo appends the encoded file to dst and returns the extended slice.
// WriteFile uses this with a pooled block buffer so encoding on the write
// path reuses scratch memory across calls.
//
// Returns:
//   - []byte: dst with the encoded file appended
//   - error: As for Encode
func (f *File) AppendTo(dst []byte) ([]byte, error) {
	if len(f.HDUs) == 0 {
		return nil, fmt.Errorf("%w: file has no HDUs", errs.ErrHDUNotFound)
	}

	out := dst

	for i, hdu := range f.HDUs {
		var err error

		out, err = encodeHDU(out, hdu, i == 0, len(f.HDUs) > 1)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Decode parses FITS bytes into a File.
//
// Returns:
//   - *File: The decoded HDU list
//   - error: errs.ErrInvalidBlockSize, errs.ErrUnterminatedHeader,
//     errs.ErrTruncatedData, or a card/keyword error from a malformed header
func Decode(data []byte) (*File, error) {
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidBlockSize, len(data))
	}

	f := NewFile()

	for offset := 0; offset < len(data); {
		hdu, n, err := decodeHDU(data[offset:], offset == 0)
		if err != nil {
			return nil, err
		}

		f.Append(hdu)
		offset += n
	}

	return f, nil
}

// ReadFile reads and decodes a FITS file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Decode(data)
}

// writeConfig holds the flags applied by WriteFile.
type writeConfig struct {
	overwrite bool
}

// WriteOption configures WriteFile.
type WriteOption = options.Option[*writeConfig]

// WithOverwrite lets WriteFile replace an existing file instead of failing
// with errs.ErrFileExists.
func WithOverwrite() WriteOption {
	return options.NoError(func(cfg *writeConfig) {
		cfg.overwrite = true
	})
}

// WriteFile encodes and writes a FITS file. Without WithOverwrite an
// existing target fails with errs.ErrFileExists.
func WriteFile(path string, f *File, opts ...WriteOption) error {
	var cfg writeConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}

	buf := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(buf)

	data, err := f.AppendTo(buf.Bytes())
	if err != nil {
		return err
	}
	buf.B = data

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !cfg.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", errs.ErrFileExists, path)
		}

		return fmt.Errorf("write %s: %w", path, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return file.Close()
}

// structuralKeywords are owned by the codec and never pass through to or
// from user headers.
var structuralKeywords = []string{
	"SIMPLE", "XTENSION", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2",
	"PCOUNT", "GCOUNT", "EXTEND", "EXTNAME", "TFIELDS",
}

// encodeHDU appends one HDU: structural cards, user cards, payload.
func encodeHDU(dst []byte, hdu *HDU, primary, multiHDU bool) ([]byte, error) {
	if hdu.Image != nil && hdu.Table != nil {
		return nil, fmt.Errorf("%w: HDU %q has both image and table payloads", errs.ErrWrongHDUType, hdu.Name)
	}

	if primary && hdu.Table != nil {
		return nil, fmt.Errorf("%w: binary table cannot be the primary HDU", errs.ErrWrongHDUType)
	}

	sh := NewHeader()

	var payload []byte

	switch {
	case hdu.Table != nil:
		t := hdu.Table
		sh.SetString("XTENSION", "BINTABLE", "binary table extension")
		sh.SetInt("BITPIX", 8, "8-bit bytes")
		sh.SetInt("NAXIS", 2, "2-dimensional table")
		sh.SetInt("NAXIS1", int64(t.rowWidth), "bytes per row")
		sh.SetInt("NAXIS2", int64(t.NumRows()), "number of rows")
		sh.SetInt("PCOUNT", 0, "no heap")
		sh.SetInt("GCOUNT", 1, "one group")
		sh.SetInt("TFIELDS", int64(t.NumCols()), "number of columns")

		for i := range t.columns {
			n := strconv.Itoa(i + 1)
			sh.SetString("TTYPE"+n, t.columns[i].Name, "")
			sh.SetString("TFORM"+n, t.columns[i].Form, "")
			if t.columns[i].Unit != "" {
				sh.SetString("TUNIT"+n, t.columns[i].Unit, "")
			}
		}

		payload = t.rawRows()

	case hdu.Image != nil:
		img := hdu.Image
		if _, err := bitpixSize(img.Bitpix); err != nil {
			return nil, err
		}

		if primary {
			sh.SetBool("SIMPLE", true, "conforms to FITS standard")
		} else {
			sh.SetString("XTENSION", "IMAGE", "image extension")
		}
		sh.SetInt("BITPIX", int64(img.Bitpix), "pixel type")
		sh.SetInt("NAXIS", 2, "2-dimensional image")
		sh.SetInt("NAXIS1", int64(img.Width), "x extent")
		sh.SetInt("NAXIS2", int64(img.Height), "y extent")

		payload = img.data

	default:
		if primary {
			sh.SetBool("SIMPLE", true, "conforms to FITS standard")
		} else {
			sh.SetString("XTENSION", "IMAGE", "image extension")
		}
		sh.SetInt("BITPIX", 8, "no data")
		sh.SetInt("NAXIS", 0, "no data")
	}

	if primary && multiHDU {
		sh.SetBool("EXTEND", true, "extensions follow")
	}

	if !primary {
		sh.SetInt("PCOUNT", 0, "no heap")
		sh.SetInt("GCOUNT", 1, "one group")
	}

	if hdu.Name != "" {
		sh.SetString("EXTNAME", hdu.Name, "extension name")
	}

	if hdu.Header != nil {
		for _, c := range hdu.Header.cards {
			if isStructural(c.Keyword) {
				continue
			}
			sh.appendCard(c)
		}
	}

	dst, err := sh.encode(dst)
	if err != nil {
		return nil, err
	}

	dst = append(dst, payload...)
	for len(dst)%BlockSize != 0 {
		dst = append(dst, 0)
	}

	return dst, nil
}

// decodeHDU parses one HDU and returns it with the bytes consumed.
func decodeHDU(data []byte, primary bool) (*HDU, int, error) {
	h, hn, err := decodeHeader(data)
	if err != nil {
		return nil, 0, err
	}

	if primary {
		if !h.Has("SIMPLE") {
			return nil, 0, fmt.Errorf("%w: SIMPLE in primary header", errs.ErrKeywordNotFound)
		}

		return decodeImagePayload(h, data, hn)
	}

	xtension, err := h.GetString("XTENSION")
	if err != nil {
		return nil, 0, err
	}

	switch xtension {
	case "IMAGE":
		return decodeImagePayload(h, data, hn)
	case "BINTABLE":
		return decodeTablePayload(h, data, hn)
	default:
		return nil, 0, fmt.Errorf("%w: XTENSION %q", errs.ErrWrongHDUType, xtension)
	}
}

// decodeImagePayload finishes an image (or header-only) HDU.
func decodeImagePayload(h *Header, data []byte, hn int) (*HDU, int, error) {
	naxis, err := h.GetInt("NAXIS")
	if err != nil {
		return nil, 0, err
	}

	hdu := &HDU{}

	consumed := hn

	if naxis != 0 {
		if naxis != 2 {
			return nil, 0, fmt.Errorf("%w: NAXIS %d, want 0 or 2", errs.ErrInvalidShape, naxis)
		}

		bitpix, err := h.GetInt("BITPIX")
		if err != nil {
			return nil, 0, err
		}

		size, err := bitpixSize(int(bitpix))
		if err != nil {
			return nil, 0, err
		}

		width, err := h.GetInt("NAXIS1")
		if err != nil {
			return nil, 0, err
		}

		height, err := h.GetInt("NAXIS2")
		if err != nil {
			return nil, 0, err
		}

		if width < 1 || height < 1 {
			return nil, 0, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
		}

		payloadLen := int(width) * int(height) * size
		padded := paddedLen(payloadLen)

		if hn+padded > len(data) {
			return nil, 0, fmt.Errorf("%w: image payload needs %d bytes, %d remain",
				errs.ErrTruncatedData, padded, len(data)-hn)
		}

		pixels := make([]byte, payloadLen)
		copy(pixels, data[hn:hn+payloadLen])

		hdu.Image = &Image{
			Bitpix: int(bitpix),
			Width:  int(width),
			Height: int(height),
			data:   pixels,
		}
		consumed += padded
	}

	finishHeader(hdu, h)

	return hdu, consumed, nil
}

// decodeTablePayload finishes a binary-table HDU.
func decodeTablePayload(h *Header, data []byte, hn int) (*HDU, int, error) {
	pcount, err := h.GetInt("PCOUNT")
	if err != nil {
		return nil, 0, err
	}
	if pcount != 0 {
		return nil, 0, fmt.Errorf("%w: PCOUNT %d (heap data unsupported)", errs.ErrInvalidColumnForm, pcount)
	}

	tfields, err := h.GetInt("TFIELDS")
	if err != nil {
		return nil, 0, err
	}

	rowWidth, err := h.GetInt("NAXIS1")
	if err != nil {
		return nil, 0, err
	}

	nrows, err := h.GetInt("NAXIS2")
	if err != nil {
		return nil, 0, err
	}

	columns := make([]Column, tfields)
	for i := range columns {
		n := strconv.Itoa(i + 1)

		form, err := h.GetString("TFORM" + n)
		if err != nil {
			return nil, 0, err
		}

		name, _ := h.GetString("TTYPE" + n)
		unit, _ := h.GetString("TUNIT" + n)

		columns[i] = Column{Name: name, Form: form, Unit: unit}

		h.Delete("TTYPE" + n)
		h.Delete("TFORM" + n)
		h.Delete("TUNIT" + n)
	}

	t, err := NewBinTable(columns)
	if err != nil {
		return nil, 0, err
	}

	if t.rowWidth != int(rowWidth) {
		return nil, 0, fmt.Errorf("%w: NAXIS1 %d does not match %d-byte rows",
			errs.ErrSchemaMismatch, rowWidth, t.rowWidth)
	}

	payloadLen := int(rowWidth) * int(nrows)
	padded := paddedLen(payloadLen)

	if hn+padded > len(data) {
		return nil, 0, fmt.Errorf("%w: table payload needs %d bytes, %d remain",
			errs.ErrTruncatedData, padded, len(data)-hn)
	}

	rows := make([]byte, payloadLen)
	copy(rows, data[hn:hn+payloadLen])

	if err := t.setRawRows(rows); err != nil {
		return nil, 0, err
	}

	hdu := &HDU{Table: t}
	finishHeader(hdu, h)

	return hdu, hn + padded, nil
}

// finishHeader strips structural keywords and installs the user header.
func finishHeader(hdu *HDU, h *Header) {
	if name, err := h.GetString("EXTNAME"); err == nil {
		hdu.Name = name
	}

	for _, keyword := range structuralKeywords {
		h.Delete(keyword)
	}

	hdu.Header = h
}

func isStructural(keyword string) bool {
	for _, k := range structuralKeywords {
		if k == keyword {
			return true
		}
	}

	return false
}

// paddedLen rounds a payload length up to a whole number of blocks.
func paddedLen(n int) int {
	if rem := n % BlockSize; rem != 0 {
		return n + BlockSize - rem
	}

	return n
}
