package fits

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/astrofold/shearkit/errs"
)

// Column describes one binary-table column.
//
// Form is the FITS TFORM code. The supported subset is scalar 'E' (float32),
// 'D' (float64), 'J' (int32), 'K' (int64), and fixed-width 'nA' (an ASCII
// string of n characters).
type Column struct {
	// Name is the column name (TTYPE).
	Name string
	// Form is the column format (TFORM).
	Form string
	// Unit is the optional physical unit (TUNIT).
	Unit string
}

// width returns the cell width in bytes and the type character.
func (c *Column) width() (int, byte, error) {
	form := strings.TrimSpace(c.Form)
	if form == "" {
		return 0, 0, fmt.Errorf("%w: column %s has empty form", errs.ErrInvalidColumnForm, c.Name)
	}

	kind := form[len(form)-1]
	repeat := 1

	if digits := form[:len(form)-1]; digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("%w: column %s form %q", errs.ErrInvalidColumnForm, c.Name, c.Form)
		}
		repeat = n
	}

	switch kind {
	case 'A':
		return repeat, kind, nil
	case 'E', 'J':
		if repeat != 1 {
			return 0, 0, fmt.Errorf("%w: column %s: arrays are not supported", errs.ErrInvalidColumnForm, c.Name)
		}
		return 4, kind, nil
	case 'D', 'K':
		if repeat != 1 {
			return 0, 0, fmt.Errorf("%w: column %s: arrays are not supported", errs.ErrInvalidColumnForm, c.Name)
		}
		return 8, kind, nil
	default:
		return 0, 0, fmt.Errorf("%w: column %s form %q", errs.ErrInvalidColumnForm, c.Name, c.Form)
	}
}

// BinTable is a binary-table HDU payload.
//
// Rows are stored exactly as on disk: fixed width, big-endian, concatenated.
// Typed accessors decode single cells, so reading one column of a large
// table never touches the rest.
type BinTable struct {
	columns  []Column
	offsets  []int
	widths   []int
	kinds    []byte
	rowWidth int
	data     []byte
}

// NewBinTable creates an empty table with the given columns.
//
// Returns:
//   - *BinTable: The empty table
//   - error: errs.ErrInvalidColumnForm for an unsupported TFORM
func NewBinTable(columns []Column) (*BinTable, error) {
	t := &BinTable{
		columns: make([]Column, len(columns)),
		offsets: make([]int, len(columns)),
		widths:  make([]int, len(columns)),
		kinds:   make([]byte, len(columns)),
	}
	copy(t.columns, columns)

	offset := 0
	for i := range t.columns {
		width, kind, err := t.columns[i].width()
		if err != nil {
			return nil, err
		}

		t.offsets[i] = offset
		t.widths[i] = width
		t.kinds[i] = kind
		offset += width
	}
	t.rowWidth = offset

	return t, nil
}

// Columns returns a copy of the column descriptions.
func (t *BinTable) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)

	return out
}

// NumRows returns the number of rows.
func (t *BinTable) NumRows() int {
	if t.rowWidth == 0 {
		return 0
	}

	return len(t.data) / t.rowWidth
}

// NumCols returns the number of columns.
func (t *BinTable) NumCols() int {
	return len(t.columns)
}

// ColumnIndex returns the index of a named column.
//
// Returns:
//   - int: The column index
//   - error: errs.ErrUnknownColumn when absent
func (t *BinTable) ColumnIndex(name string) (int, error) {
	for i := range t.columns {
		if t.columns[i].Name == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", errs.ErrUnknownColumn, name)
}

// AppendRow appends one row. Values map positionally onto the columns and
// must be float32 for 'E', float64 for 'D', int32 for 'J', int64 for 'K',
// and string for 'nA' (at most n bytes; shorter strings pad with spaces).
//
// Returns:
//   - error: errs.ErrSchemaMismatch for a wrong value count or cell type
func (t *BinTable) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", errs.ErrSchemaMismatch, len(values), len(t.columns))
	}

	row := make([]byte, 0, t.rowWidth)

	for i, value := range values {
		var err error

		row, err = t.appendCell(row, i, value)
		if err != nil {
			return err
		}
	}

	t.data = append(t.data, row...)

	return nil
}

func (t *BinTable) appendCell(row []byte, col int, value any) ([]byte, error) {
	mismatch := func() error {
		return fmt.Errorf("%w: column %s (form %s) cannot hold %T",
			errs.ErrSchemaMismatch, t.columns[col].Name, t.columns[col].Form, value)
	}

	switch t.kinds[col] {
	case 'E':
		v, ok := value.(float32)
		if !ok {
			return nil, mismatch()
		}
		return bigEndian.AppendUint32(row, math.Float32bits(v)), nil

	case 'D':
		v, ok := value.(float64)
		if !ok {
			return nil, mismatch()
		}
		return bigEndian.AppendUint64(row, math.Float64bits(v)), nil

	case 'J':
		v, ok := value.(int32)
		if !ok {
			return nil, mismatch()
		}
		return bigEndian.AppendUint32(row, uint32(v)), nil //nolint:gosec

	case 'K':
		v, ok := value.(int64)
		if !ok {
			return nil, mismatch()
		}
		return bigEndian.AppendUint64(row, uint64(v)), nil //nolint:gosec

	case 'A':
		v, ok := value.(string)
		if !ok {
			return nil, mismatch()
		}
		if len(v) > t.widths[col] {
			return nil, fmt.Errorf("%w: column %s: string %q exceeds %d bytes",
				errs.ErrSchemaMismatch, t.columns[col].Name, v, t.widths[col])
		}
		row = append(row, v...)
		for i := len(v); i < t.widths[col]; i++ {
			row = append(row, ' ')
		}
		return row, nil

	default:
		return nil, mismatch()
	}
}

// cell returns the raw bytes of one cell after bounds checks.
func (t *BinTable) cell(row, col int, kind byte) ([]byte, error) {
	if col < 0 || col >= len(t.columns) {
		return nil, fmt.Errorf("%w: column index %d", errs.ErrUnknownColumn, col)
	}

	if t.kinds[col] != kind {
		return nil, fmt.Errorf("%w: column %s holds form %s",
			errs.ErrWrongValueType, t.columns[col].Name, t.columns[col].Form)
	}

	if row < 0 || row >= t.NumRows() {
		return nil, fmt.Errorf("%w: row %d of %d", errs.ErrSchemaMismatch, row, t.NumRows())
	}

	start := row*t.rowWidth + t.offsets[col]

	return t.data[start : start+t.widths[col]], nil
}

// Float32At reads an 'E' cell.
func (t *BinTable) Float32At(row, col int) (float32, error) {
	raw, err := t.cell(row, col, 'E')
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(bigEndian.Uint32(raw)), nil
}

// Float64At reads a 'D' cell.
func (t *BinTable) Float64At(row, col int) (float64, error) {
	raw, err := t.cell(row, col, 'D')
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bigEndian.Uint64(raw)), nil
}

// Int32At reads a 'J' cell.
func (t *BinTable) Int32At(row, col int) (int32, error) {
	raw, err := t.cell(row, col, 'J')
	if err != nil {
		return 0, err
	}

	return int32(bigEndian.Uint32(raw)), nil //nolint:gosec
}

// Int64At reads a 'K' cell.
func (t *BinTable) Int64At(row, col int) (int64, error) {
	raw, err := t.cell(row, col, 'K')
	if err != nil {
		return 0, err
	}

	return int64(bigEndian.Uint64(raw)), nil //nolint:gosec
}

// StringAt reads an 'nA' cell with the on-disk space padding trimmed.
func (t *BinTable) StringAt(row, col int) (string, error) {
	raw, err := t.cell(row, col, 'A')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(string(raw), " "), nil
}

// rawRows returns the packed row bytes.
func (t *BinTable) rawRows() []byte {
	return t.data
}

// setRawRows installs decoded row bytes after a length check.
func (t *BinTable) setRawRows(data []byte) error {
	if t.rowWidth > 0 && len(data)%t.rowWidth != 0 {
		return fmt.Errorf("%w: %d bytes for %d-byte rows", errs.ErrTruncatedData, len(data), t.rowWidth)
	}

	t.data = data

	return nil
}
