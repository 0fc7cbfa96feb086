// Package table implements data-driven FITS table formats: a generic schema
// engine (ordered column and metadata-key declarations validated against
// binary tables) plus the concrete bias-statistics format used to persist
// shear calibration runs.
//
// Each format is one Schema value, not a type hierarchy: the engine handles
// construction, validation, row access and FITS round trips for all of them.
package table

import (
	"fmt"
	"slices"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
)

// Metadata keywords shared by every table format.
const (
	// KeyVersion carries the format version string.
	KeyVersion = "FITS_VER"
	// KeyDef carries the format definition name.
	KeyDef = "FITS_DEF"
)

// Column declares one table column.
type Column struct {
	// Name is the column label (TTYPEn).
	Name string
	// Form is the FITS TFORM code, e.g. "E" or "20A".
	Form string
	// Unit is the physical unit, empty for dimensionless columns.
	Unit string
	// Optional marks columns a table may omit.
	Optional bool
}

// Schema declares a table format: its identity, column register, and the
// metadata keys its header carries beyond KeyVersion/KeyDef.
type Schema struct {
	// Version is the format version string.
	Version string
	// Def is the format definition name.
	Def string
	// HDUName is the extension name tables of this format are stored under.
	HDUName string
	// Columns is the ordered column register.
	Columns []Column
	// MetaKeys lists the format-specific metadata keywords, in write order.
	MetaKeys []string
}

// Column returns the declaration of the named column.
//
// Returns:
//   - Column: The declaration
//   - error: errs.ErrUnknownColumn when the schema does not declare it
func (s *Schema) Column(name string) (Column, error) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, nil
		}
	}

	return Column{}, fmt.Errorf("%w: %q in format %s", errs.ErrUnknownColumn, name, s.Def)
}

// Table is one instance of a schema: a binary table plus its metadata
// header.
type Table struct {
	schema *Schema
	meta   *fits.Header
	data   *fits.BinTable
}

// New creates an empty table of the given format. Optional columns are
// omitted unless named in optionalColumns; required columns are always
// present, in schema order.
//
// Returns:
//   - *Table: The new table
//   - error: errs.ErrUnknownColumn for an optionalColumns name the schema
//     does not declare as optional
func New(schema *Schema, optionalColumns ...string) (*Table, error) {
	for _, name := range optionalColumns {
		c, err := schema.Column(name)
		if err != nil {
			return nil, err
		}
		if !c.Optional {
			return nil, fmt.Errorf("%w: column %q is not optional", errs.ErrUnknownColumn, name)
		}
	}

	var cols []fits.Column
	for _, c := range schema.Columns {
		if c.Optional && !slices.Contains(optionalColumns, c.Name) {
			continue
		}
		cols = append(cols, fits.Column{Name: c.Name, Form: c.Form})
	}

	data, err := fits.NewBinTable(cols)
	if err != nil {
		return nil, err
	}

	meta := fits.NewHeader()
	if err := meta.SetString(KeyVersion, schema.Version, "format version"); err != nil {
		return nil, err
	}
	if err := meta.SetString(KeyDef, schema.Def, "format definition"); err != nil {
		return nil, err
	}

	return &Table{schema: schema, meta: meta, data: data}, nil
}

// Schema returns the table's format declaration.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Meta returns the metadata header.
func (t *Table) Meta() *fits.Header {
	return t.meta
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.data.NumRows()
}

// HasColumn reports whether the table instance carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, err := t.data.ColumnIndex(name)
	return err == nil
}

// AppendRow appends one row. Values are given in the order of the table's
// present columns.
func (t *Table) AppendRow(values ...any) error {
	return t.data.AppendRow(values...)
}

// Float32At returns the float32 cell at (row, column name).
func (t *Table) Float32At(row int, name string) (float32, error) {
	col, err := t.data.ColumnIndex(name)
	if err != nil {
		return 0, err
	}

	return t.data.Float32At(row, col)
}

// StringAt returns the string cell at (row, column name), trailing pad
// stripped.
func (t *Table) StringAt(row int, name string) (string, error) {
	col, err := t.data.ColumnIndex(name)
	if err != nil {
		return "", err
	}

	return t.data.StringAt(row, col)
}

// ToHDU renders the table as a FITS extension HDU named by the schema.
func (t *Table) ToHDU() *fits.HDU {
	return &fits.HDU{
		Name:   t.schema.HDUName,
		Header: t.meta.Clone(),
		Table:  t.data,
	}
}

// ToFile renders the table as a complete FITS file: a header-only primary
// followed by the table extension.
func (t *Table) ToFile() *fits.File {
	f := fits.NewFile()
	f.Append(&fits.HDU{Header: fits.NewHeader()})
	f.Append(t.ToHDU())

	return f
}

// WriteFile writes the table to a FITS file at path.
func (t *Table) WriteFile(path string, opts ...fits.WriteOption) error {
	return fits.WriteFile(path, t.ToFile(), opts...)
}

// FromHDU adopts a decoded FITS HDU as a table of the given format,
// validating it first.
//
// Returns:
//   - *Table: The table
//   - error: errs.ErrWrongHDUType for a non-table HDU, or a validation
//     error from Validate
func FromHDU(schema *Schema, hdu *fits.HDU) (*Table, error) {
	if hdu.Table == nil {
		return nil, fmt.Errorf("%w: HDU %q has no table payload", errs.ErrWrongHDUType, hdu.Name)
	}

	if err := Validate(schema, hdu); err != nil {
		return nil, err
	}

	meta := fits.NewHeader()
	if hdu.Header != nil {
		meta = hdu.Header.Clone()
	}

	return &Table{schema: schema, meta: meta, data: hdu.Table}, nil
}

// FromFile locates the schema's extension in a decoded FITS file and adopts
// it.
func FromFile(schema *Schema, f *fits.File) (*Table, error) {
	hdu, err := f.ByName(schema.HDUName)
	if err != nil {
		return nil, err
	}

	return FromHDU(schema, hdu)
}

// ReadFile reads a table of the given format from a FITS file at path.
func ReadFile(schema *Schema, path string) (*Table, error) {
	f, err := fits.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return FromFile(schema, f)
}

// Validate checks a table HDU against a schema: every required column must
// be present with its declared form, every present column must be declared,
// and the header's format identity (when present) must match.
//
// Returns:
//   - error: errs.ErrSchemaMismatch naming the first violation
func Validate(schema *Schema, hdu *fits.HDU) error {
	if hdu.Table == nil {
		return fmt.Errorf("%w: HDU %q has no table payload", errs.ErrWrongHDUType, hdu.Name)
	}

	present := hdu.Table.Columns()

	for _, c := range present {
		decl, err := schema.Column(c.Name)
		if err != nil {
			return fmt.Errorf("%w: undeclared column %q", errs.ErrSchemaMismatch, c.Name)
		}
		if decl.Form != c.Form {
			return fmt.Errorf("%w: column %q has form %s, format %s declares %s",
				errs.ErrSchemaMismatch, c.Name, c.Form, schema.Def, decl.Form)
		}
	}

	for _, decl := range schema.Columns {
		if decl.Optional {
			continue
		}

		if !slices.ContainsFunc(present, func(c fits.Column) bool { return c.Name == decl.Name }) {
			return fmt.Errorf("%w: required column %q missing", errs.ErrSchemaMismatch, decl.Name)
		}
	}

	if hdu.Header != nil && hdu.Header.Has(KeyDef) {
		def, err := hdu.Header.GetString(KeyDef)
		if err != nil {
			return err
		}
		if def != schema.Def {
			return fmt.Errorf("%w: table definition %q, want %q", errs.ErrSchemaMismatch, def, schema.Def)
		}
	}

	return nil
}
