package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
)

// minimalSchema is a tiny format for exercising the engine without the
// bias-statistics machinery.
var minimalSchema = &Schema{
	Version: "1.0",
	Def:     "test.minimal",
	HDUName: "MINIMAL",
	Columns: []Column{
		{Name: "LABEL", Form: "8A", Optional: true},
		{Name: "VAL", Form: "E"},
	},
	MetaKeys: []string{"PURPOSE"},
}

func TestNewTableWritesFormatIdentity(t *testing.T) {
	tbl, err := New(minimalSchema)
	require.NoError(t, err)

	version, err := tbl.Meta().GetString(KeyVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.0", version)

	def, err := tbl.Meta().GetString(KeyDef)
	require.NoError(t, err)
	assert.Equal(t, "test.minimal", def)

	// Optional columns are absent unless requested.
	assert.False(t, tbl.HasColumn("LABEL"))
	assert.True(t, tbl.HasColumn("VAL"))
}

func TestNewTableOptionalColumns(t *testing.T) {
	tbl, err := New(minimalSchema, "LABEL")
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("LABEL"))

	_, err = New(minimalSchema, "NOSUCH")
	require.ErrorIs(t, err, errs.ErrUnknownColumn)

	// Required columns cannot be requested as optional.
	_, err = New(minimalSchema, "VAL")
	require.ErrorIs(t, err, errs.ErrUnknownColumn)
}

func TestTableRowAccess(t *testing.T) {
	tbl, err := New(minimalSchema, "LABEL")
	require.NoError(t, err)

	require.NoError(t, tbl.AppendRow("run-a", float32(1.5)))
	require.NoError(t, tbl.AppendRow("run-b", float32(-2)))
	assert.Equal(t, 2, tbl.NumRows())

	label, err := tbl.StringAt(1, "LABEL")
	require.NoError(t, err)
	assert.Equal(t, "run-b", label)

	val, err := tbl.Float32At(0, "VAL")
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), val)

	_, err = tbl.Float32At(0, "NOSUCH")
	require.ErrorIs(t, err, errs.ErrUnknownColumn)
}

func TestTableFileRoundTrip(t *testing.T) {
	tbl, err := New(minimalSchema)
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow(float32(3.25)))

	encoded, err := tbl.ToFile().Encode()
	require.NoError(t, err)

	f, err := fits.Decode(encoded)
	require.NoError(t, err)

	back, err := FromFile(minimalSchema, f)
	require.NoError(t, err)
	assert.Equal(t, 1, back.NumRows())

	val, err := back.Float32At(0, "VAL")
	require.NoError(t, err)
	assert.Equal(t, float32(3.25), val)
}

func TestValidate(t *testing.T) {
	good, err := fits.NewBinTable([]fits.Column{{Name: "VAL", Form: "E"}})
	require.NoError(t, err)
	require.NoError(t, Validate(minimalSchema, &fits.HDU{Name: "MINIMAL", Table: good}))

	// Undeclared column.
	alien, err := fits.NewBinTable([]fits.Column{
		{Name: "VAL", Form: "E"},
		{Name: "EXTRA", Form: "E"},
	})
	require.NoError(t, err)
	require.ErrorIs(t, Validate(minimalSchema, &fits.HDU{Table: alien}), errs.ErrSchemaMismatch)

	// Wrong form.
	wrongForm, err := fits.NewBinTable([]fits.Column{{Name: "VAL", Form: "D"}})
	require.NoError(t, err)
	require.ErrorIs(t, Validate(minimalSchema, &fits.HDU{Table: wrongForm}), errs.ErrSchemaMismatch)

	// Missing required column.
	empty, err := fits.NewBinTable([]fits.Column{{Name: "LABEL", Form: "8A"}})
	require.NoError(t, err)
	require.ErrorIs(t, Validate(minimalSchema, &fits.HDU{Table: empty}), errs.ErrSchemaMismatch)

	// Foreign format identity.
	header := fits.NewHeader()
	require.NoError(t, header.SetString(KeyDef, "other.format", ""))
	require.ErrorIs(t,
		Validate(minimalSchema, &fits.HDU{Header: header, Table: good}),
		errs.ErrSchemaMismatch)

	// Non-table HDU.
	require.ErrorIs(t, Validate(minimalSchema, &fits.HDU{}), errs.ErrWrongHDUType)
}

func TestFromHDURejectsInvalid(t *testing.T) {
	_, err := FromHDU(minimalSchema, &fits.HDU{Name: "MINIMAL"})
	require.ErrorIs(t, err, errs.ErrWrongHDUType)
}
