package fits

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

func testFile(t *testing.T) *File {
	t.Helper()

	sci := make([]float32, 12)
	for i := range sci {
		sci[i] = float32(i) * 0.5
	}

	flg := make([]int32, 12)
	flg[5] = 3

	primaryImg, err := NewImageFloat32(4, 3, sci)
	require.NoError(t, err)

	maskImg, err := NewImageInt32(4, 3, flg)
	require.NoError(t, err)

	ph := NewHeader()
	require.NoError(t, ph.SetFloat("SHEIOFX", 10.0, "x offset"))
	require.NoError(t, ph.SetFloat("SHEIOFY", 20.0, "y offset"))

	table, err := NewBinTable([]Column{
		{Name: "RUN_ID", Form: "20A"},
		{Name: "W1", Form: "E"},
	})
	require.NoError(t, err)
	require.NoError(t, table.AppendRow("run-1", float32(2.5)))

	f := NewFile()
	f.Append(&HDU{Header: ph, Image: primaryImg})
	f.Append(&HDU{Name: "MASK", Image: maskImg})
	f.Append(&HDU{Name: "STATS", Table: table})

	return f
}

func TestFileEncodeDecodeRoundTrip(t *testing.T) {
	f := testFile(t)

	data, err := f.Encode()
	require.NoError(t, err)
	require.Zero(t, len(data)%BlockSize)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.HDUs, 3)

	primary := decoded.Primary()
	require.NotNil(t, primary.Image)
	assert.Equal(t, -32, primary.Image.Bitpix)
	assert.Equal(t, 4, primary.Image.Width)
	assert.Equal(t, 3, primary.Image.Height)

	sci, err := primary.Image.Float32s()
	require.NoError(t, err)
	assert.Equal(t, float32(5.5), sci[11])

	// User metadata survives, structural keywords do not.
	ofx, err := primary.Header.GetFloat("SHEIOFX")
	require.NoError(t, err)
	assert.Equal(t, 10.0, ofx)
	assert.False(t, primary.Header.Has("SIMPLE"))
	assert.False(t, primary.Header.Has("BITPIX"))
	assert.False(t, primary.Header.Has("NAXIS"))
	assert.False(t, primary.Header.Has("EXTEND"))

	maskHDU, err := decoded.ByName("MASK")
	require.NoError(t, err)
	require.NotNil(t, maskHDU.Image)

	flg, err := maskHDU.Image.Int32s()
	require.NoError(t, err)
	assert.Equal(t, int32(3), flg[5])

	statsHDU, err := decoded.ByName("STATS")
	require.NoError(t, err)
	require.NotNil(t, statsHDU.Table)
	require.Equal(t, 1, statsHDU.Table.NumRows())

	run, err := statsHDU.Table.StringAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run)

	w1, err := statsHDU.Table.Float32At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), w1)
}

func TestFileRoundTripIsStable(t *testing.T) {
	f := testFile(t)

	first, err := f.Encode()
	require.NoError(t, err)

	decoded, err := Decode(first)
	require.NoError(t, err)

	second, err := decoded.Encode()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFileAppendTo(t *testing.T) {
	f := testFile(t)

	plain, err := f.Encode()
	require.NoError(t, err)

	// Appending after existing bytes leaves them intact, so WriteFile can
	// encode into a reused buffer.
	prefix := []byte("xyz")
	appended, err := f.AppendTo(append([]byte(nil), prefix...))
	require.NoError(t, err)
	assert.Equal(t, prefix, appended[:len(prefix)])
	assert.Equal(t, plain, appended[len(prefix):])

	_, err = NewFile().AppendTo(nil)
	require.ErrorIs(t, err, errs.ErrHDUNotFound)
}

func TestFileHeaderOnlyPrimary(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetString("ORIGIN", "shearkit", ""))

	f := NewFile()
	f.Append(&HDU{Header: h})

	data, err := f.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.HDUs, 1)
	assert.Nil(t, decoded.Primary().Image)
	assert.Nil(t, decoded.Primary().Table)

	origin, err := decoded.Primary().Header.GetString("ORIGIN")
	require.NoError(t, err)
	assert.Equal(t, "shearkit", origin)
}

func TestFileByNameMissing(t *testing.T) {
	f := testFile(t)
	_, err := f.ByName("NOISEMAP")
	require.ErrorIs(t, err, errs.ErrHDUNotFound)
}

func TestEncodeErrors(t *testing.T) {
	_, err := NewFile().Encode()
	require.ErrorIs(t, err, errs.ErrHDUNotFound)

	table, err := NewBinTable([]Column{{Name: "W1", Form: "E"}})
	require.NoError(t, err)

	f := NewFile()
	f.Append(&HDU{Table: table})
	_, err = f.Encode()
	require.ErrorIs(t, err, errs.ErrWrongHDUType)

	img, err := NewImageFloat32(1, 1, []float32{0})
	require.NoError(t, err)

	f = NewFile()
	f.Append(&HDU{Image: img, Table: table})
	_, err = f.Encode()
	require.ErrorIs(t, err, errs.ErrWrongHDUType)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)

	_, err = Decode(make([]byte, 100))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)

	f := testFile(t)
	data, err := f.Encode()
	require.NoError(t, err)

	// Chop off the last payload block.
	_, err = Decode(data[:len(data)-BlockSize])
	require.ErrorIs(t, err, errs.ErrTruncatedData)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.fits")

	f := testFile(t)
	require.NoError(t, WriteFile(path, f))

	// A second write without overwrite fails, with overwrite succeeds.
	err := WriteFile(path, f)
	require.ErrorIs(t, err, errs.ErrFileExists)
	require.NoError(t, WriteFile(path, f, WithOverwrite()))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, decoded.HDUs, 3)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.fits"))
	require.Error(t, err)
}
