// Package dataset provides the in-memory tabular model shared by the
// cleaning pipeline and the exporters. A Dataset is a rectangular table of
// string cells with a header row and per-column type metadata inferred at
// load time.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a column by the values it holds.
type Kind string

const (
	// KindNumeric marks columns whose every non-missing cell parses as a float.
	KindNumeric Kind = "numeric"
	// KindCategorical marks everything else, including all-missing columns.
	KindCategorical Kind = "categorical"
)

// Column describes a single column of a Dataset.
type Column struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
}

// Dataset is a rectangular table: a header row plus zero or more data rows.
// All rows have exactly len(Header) cells.
type Dataset struct {
	Name    string
	Header  []string
	Rows    [][]string
	Columns []Column
}

// missingTokens are the cell values treated as missing, matching the usual
// CSV conventions for null markers.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"null": true,
}

// IsMissing reports whether a cell value counts as a missing entry.
// Whitespace-only cells are missing.
func IsMissing(cell string) bool {
	return missingTokens[strings.TrimSpace(cell)]
}

// New builds a Dataset from a header and rows, validating shape and
// inferring column kinds.
func New(name string, header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset %q has no header row", name)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("dataset %q row %d has %d cells, expected %d", name, i+1, len(row), len(header))
		}
	}

	ds := &Dataset{
		Name:   name,
		Header: header,
		Rows:   rows,
	}
	ds.inferColumns()
	return ds, nil
}

// inferColumns assigns a Kind to every column. A column is numeric when it
// has at least one non-missing cell and all non-missing cells parse as
// float64.
func (d *Dataset) inferColumns() {
	d.Columns = make([]Column, len(d.Header))
	for i, name := range d.Header {
		kind := KindCategorical
		seen := false
		numeric := true
		for _, row := range d.Rows {
			cell := row[i]
			if IsMissing(cell) {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
				numeric = false
				break
			}
		}
		if seen && numeric {
			kind = KindNumeric
		}
		d.Columns[i] = Column{Name: name, Index: i, Kind: kind}
	}
}

// Shape returns the number of data rows and columns.
func (d *Dataset) Shape() (rows, cols int) {
	return len(d.Rows), len(d.Header)
}

// ColumnValues returns the cells of column i in row order.
func (d *Dataset) ColumnValues(i int) []string {
	values := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		values[r] = row[i]
	}
	return values
}

// SetColumnValues replaces the cells of column i. The slice length must
// match the row count.
func (d *Dataset) SetColumnValues(i int, values []string) error {
	if len(values) != len(d.Rows) {
		return fmt.Errorf("column %d: got %d values for %d rows", i, len(values), len(d.Rows))
	}
	for r := range d.Rows {
		d.Rows[r][i] = values[r]
	}
	return nil
}

// MissingCount returns the number of missing cells in column i.
func (d *Dataset) MissingCount(i int) int {
	n := 0
	for _, row := range d.Rows {
		if IsMissing(row[i]) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. Imputation always works on a clone so the
// uploaded original stays intact.
func (d *Dataset) Clone() *Dataset {
	header := make([]string, len(d.Header))
	copy(header, d.Header)

	rows := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = make([]string, len(row))
		copy(rows[i], row)
	}

	columns := make([]Column, len(d.Columns))
	copy(columns, d.Columns)

	return &Dataset{
		Name:    d.Name,
		Header:  header,
		Rows:    rows,
		Columns: columns,
	}
}

// NumericColumns returns the columns inferred as numeric.
func (d *Dataset) NumericColumns() []Column {
	var out []Column
	for _, c := range d.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}
