package fits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
)

func TestHeaderTypedAccess(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetString("CTYPE1", "RA---TAN", ""))
	require.NoError(t, h.SetInt("NDET", 36, "detector count"))
	require.NoError(t, h.SetFloat("GAIN", 3.1, "e-/ADU"))
	require.NoError(t, h.SetBool("CALIB", true, ""))

	s, err := h.GetString("CTYPE1")
	require.NoError(t, err)
	assert.Equal(t, "RA---TAN", s)

	i, err := h.GetInt("NDET")
	require.NoError(t, err)
	assert.Equal(t, int64(36), i)

	f, err := h.GetFloat("GAIN")
	require.NoError(t, err)
	assert.InDelta(t, 3.1, f, 1e-12)

	b, err := h.GetBool("CALIB")
	require.NoError(t, err)
	assert.True(t, b)

	// Integer cards promote to float losslessly.
	f, err = h.GetFloat("NDET")
	require.NoError(t, err)
	assert.InDelta(t, 36.0, f, 0)
}

func TestHeaderLookupErrors(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetString("METHOD", "KSB", ""))

	_, err := h.GetString("ABSENT")
	require.ErrorIs(t, err, errs.ErrKeywordNotFound)

	_, err = h.GetInt("METHOD")
	require.ErrorIs(t, err, errs.ErrWrongValueType)

	_, err = h.GetFloat("METHOD")
	require.ErrorIs(t, err, errs.ErrWrongValueType)

	_, err = h.GetBool("METHOD")
	require.ErrorIs(t, err, errs.ErrWrongValueType)
}

func TestHeaderSetReplacesInPlace(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetInt("A", 1, ""))
	require.NoError(t, h.SetInt("B", 2, ""))
	require.NoError(t, h.SetInt("A", 10, "replaced"))

	require.Equal(t, 2, h.Len())

	cards := h.Cards()
	assert.Equal(t, "A", cards[0].Keyword)
	assert.Equal(t, int64(10), cards[0].Value)
	assert.Equal(t, "B", cards[1].Keyword)
}

func TestHeaderDelete(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetInt("A", 1, ""))
	require.NoError(t, h.SetInt("B", 2, ""))

	assert.True(t, h.Delete("A"))
	assert.False(t, h.Delete("A"))
	assert.False(t, h.Has("A"))

	// Lookup still works after reindexing.
	i, err := h.GetInt("B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), i)
}

func TestHeaderCommentaryAccumulates(t *testing.T) {
	h := NewHeader()
	h.AppendComment("first")
	h.AppendComment("second")
	h.AppendHistory("resampled")

	assert.Equal(t, 3, h.Len())
}

func TestHeaderClone(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetInt("A", 1, ""))

	c := h.Clone()
	require.NoError(t, c.SetInt("A", 2, ""))
	require.NoError(t, c.SetInt("B", 3, ""))

	i, err := h.GetInt("A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), i)
	assert.False(t, h.Has("B"))
}

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetBool("SIMPLE", true, "conforms to FITS standard"))
	require.NoError(t, h.SetInt("BITPIX", -32, ""))
	require.NoError(t, h.SetFloat("CRVAL1", 52.5, "deg"))
	require.NoError(t, h.SetString("CTYPE1", "RA---TAN", ""))
	h.AppendComment("written by shearkit")

	data, err := h.encode(nil)
	require.NoError(t, err)
	require.Zero(t, len(data)%BlockSize)

	decoded, n, err := decodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, h.Cards(), decoded.Cards())
}

func TestHeaderEncodeSpillsIntoSecondBlock(t *testing.T) {
	h := NewHeader()

	// A block holds 36 cards; 40 plus END forces two blocks.
	for i := 0; i < 40; i++ {
		require.NoError(t, h.SetInt(keywordN("KEY", i), int64(i), ""))
	}

	data, err := h.encode(nil)
	require.NoError(t, err)
	require.Equal(t, 2*BlockSize, len(data))

	decoded, _, err := decodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Len())
}

func TestDecodeHeaderErrors(t *testing.T) {
	_, _, err := decodeHeader(make([]byte, 100))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)

	// A full block of spaces has no END card.
	block := make([]byte, BlockSize)
	for i := range block {
		block[i] = ' '
	}
	_, _, err = decodeHeader(block)
	require.ErrorIs(t, err, errs.ErrUnterminatedHeader)
}

func keywordN(prefix string, i int) string {
	const digits = "0123456789"
	return prefix + string([]byte{digits[i/10%10], digits[i%10]})
}
