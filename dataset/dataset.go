// Package dataset provides the tabular datasets experiments are run on, and the gateway used to load and save them
// as CSV files.
package dataset

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dataset is an ordered list of named columns and rows of scalar cells. Cells are kept exactly as they were read so
// that a dataset can be written back out unchanged; numeric views are parsed on demand.
//
// A dataset is not modified once created. Operations that change the shape of a dataset return a new one.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// missing lists the cell values treated as missing when a numeric view is requested.
var missing = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// IsMissing reports whether a cell represents a missing value.
func IsMissing(cell string) bool {
	_, ok := missing[strings.TrimSpace(cell)]
	return ok
}

// New creates a dataset from column names and rows. Every row must have one cell per column and column names must
// be unique. The inputs are copied.
func New(columns []string, rows [][]string) (*Dataset, error) {
	d := &Dataset{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]string, len(rows)),
	}
	for i, c := range d.columns {
		if _, ok := d.index[c]; ok {
			return nil, errors.Errorf("duplicate column %q", c)
		}
		d.index[c] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
		d.rows[i] = append([]string(nil), row...)
	}
	return d, nil
}

// MustNew is like New but panics on error. It is intended for tests and literals.
func MustNew(columns []string, rows [][]string) *Dataset {
	d, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return d
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.columns...)
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Width is the number of columns.
func (d *Dataset) Width() int {
	if d == nil {
		return 0
	}
	return len(d.columns)
}

// Empty reports whether the dataset has no columns or no rows.
func (d *Dataset) Empty() bool {
	return d.Width() == 0 || d.Len() == 0
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	if d == nil {
		return -1
	}
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the raw cell at row i and column j.
func (d *Dataset) Cell(i, j int) string {
	return d.rows[i][j]
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	return append([]string(nil), d.rows[i]...)
}

// Column returns a copy of the cells of the named column.
func (d *Dataset) Column(name string) ([]string, error) {
	j := d.ColumnIndex(name)
	if j < 0 {
		return nil, errors.Errorf("no such column %q", name)
	}
	c := make([]string, len(d.rows))
	for i, row := range d.rows {
		c[i] = row[j]
	}
	return c, nil
}

// Float parses the cell at row i and column j. Missing and non-numeric cells return false.
func (d *Dataset) Float(i, j int) (float64, bool) {
	s := strings.TrimSpace(d.rows[i][j])
	if IsMissing(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Numeric reports whether every non-missing cell of the named column parses as a number, and at least one does.
func (d *Dataset) Numeric(name string) bool {
	j := d.ColumnIndex(name)
	if j < 0 {
		return false
	}
	n := 0
	for i := range d.rows {
		if IsMissing(d.rows[i][j]) {
			continue
		}
		if _, ok := d.Float(i, j); !ok {
			return false
		}
		n++
	}
	return n > 0
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	c, _ := New(d.columns, d.rows)
	return c
}

// WithColumn returns a new dataset with the named column appended. If the column already exists its values are
// replaced in place, keeping the column order.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != d.Len() {
		return nil, errors.Errorf("column %q has %d values, dataset has %d rows", name, len(values), d.Len())
	}
	columns := d.Columns()
	j := d.ColumnIndex(name)
	if j < 0 {
		columns = append(columns, name)
	}
	rows := make([][]string, d.Len())
	for i, row := range d.rows {
		r := make([]string, len(columns))
		copy(r, row)
		if j < 0 {
			r[len(columns)-1] = values[i]
		} else {
			r[j] = values[i]
		}
		rows[i] = r
	}
	return New(columns, rows)
}

// Drop returns a new dataset without the named columns. Unknown names are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	drop := make(map[int]struct{}, len(names))
	for _, n := range names {
		if j := d.ColumnIndex(n); j >= 0 {
			drop[j] = struct{}{}
		}
	}
	var columns []string
	for j, c := range d.columns {
		if _, ok := drop[j]; !ok {
			columns = append(columns, c)
		}
	}
	rows := make([][]string, len(d.rows))
	for i, row := range d.rows {
		for j, cell := range row {
			if _, ok := drop[j]; !ok {
				rows[i] = append(rows[i], cell)
			}
		}
		if rows[i] == nil {
			rows[i] = []string{}
		}
	}
	c, _ := New(columns, rows)
	return c
}

// ErrTooFewRows is returned by Validate for datasets with fewer than two rows.
var ErrTooFewRows = errors.New("dataset has fewer than 2 rows")

// ErrEmpty is returned by Validate for missing or empty datasets.
var ErrEmpty = errors.New("dataset is empty")

// Validate checks that a dataset is suitable for an experiment: it must exist, be non-empty and have at least two
// rows.
func Validate(d *Dataset) error {
	if d == nil || d.Empty() {
		return ErrEmpty
	}
	if d.Len() < 2 {
		return ErrTooFewRows
	}
	return nil
}
