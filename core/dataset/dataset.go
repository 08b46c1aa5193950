// Package dataset - Car sale dataset and the chart series derived from it
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Columns names the dataset columns the charts read
type Columns struct {
	Year  string `json:"year_column"`
	Brand string `json:"brand_column"`
	Price string `json:"price_column"`
}

// DefaultColumns are the column names of the original dataset
func DefaultColumns() Columns {
	return Columns{
		Year:  "tahun_produksi",
		Brand: "merk_mobil",
		Price: "harga",
	}
}

// Dataset is an in-memory, read-only table
type Dataset struct {
	header  []string
	rows    [][]string
	index   map[string]int
	columns Columns
}

// Load reads a CSV file with a header row
func Load(path string, columns Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, columns)
}

// Read parses CSV from r
func Read(r io.Reader, columns Columns) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no header row")
	}

	d := &Dataset{
		header:  records[0],
		rows:    records[1:],
		index:   make(map[string]int, len(records[0])),
		columns: columns,
	}
	for i, name := range d.header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		d.header[i] = name
		if _, dup := d.index[name]; !dup {
			d.index[name] = i
		}
	}

	return d, nil
}

// Header returns the column names
func (d *Dataset) Header() []string {
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out
}

// Len returns the number of data rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// HasColumn reports whether the dataset has the named column
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Page is a window of rows
type Page struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Offset int        `json:"offset"`
	Total  int        `json:"total"`
}

// Page returns up to limit rows starting at offset. A non-positive limit
// returns every remaining row.
func (d *Dataset) Page(offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.rows) {
		offset = len(d.rows)
	}
	end := len(d.rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	rows := make([][]string, 0, end-offset)
	for _, row := range d.rows[offset:end] {
		rows = append(rows, append([]string(nil), row...))
	}

	return Page{
		Header: d.Header(),
		Rows:   rows,
		Offset: offset,
		Total:  len(d.rows),
	}
}

func (d *Dataset) cell(row []string, column string) (string, bool) {
	i, ok := d.index[column]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}
