package sitecontent

// Table is a rectangular grid of strings with one header per column. The zero
// value is an empty table with no columns and no rows.
//
// Every row has exactly len(headers) cells. Methods never modify the receiver.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable builds a table from headers and rows, rejecting any row whose
// width differs from the header count.
func NewTable(headers []string, rows [][]string) (Table, error) {
	for i, row := range rows {
		if len(row) != len(headers) {
			return Table{}, invariant("new table", "row %d has %d cells, want %d", i, len(row), len(headers))
		}
	}
	t := Table{headers: headers, rows: rows}
	return t.clone(), nil
}

// TableTemplate returns the two-column, one-row starting table editors get
// when they create a table.
func TableTemplate() Table {
	return Table{
		headers: []string{"Column 1", "Column 2"},
		rows:    [][]string{{"", ""}},
	}
}

// Headers returns a copy of the column headers.
func (t Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Rows returns a copy of the cell rows.
func (t Table) Rows() [][]string {
	return t.clone().rows
}

// Columns returns the number of columns.
func (t Table) Columns() int { return len(t.headers) }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// IsRectangular reports whether every row is as wide as the header row.
func (t Table) IsRectangular() bool {
	for _, row := range t.rows {
		if len(row) != len(t.headers) {
			return false
		}
	}
	return true
}

// WithColumn appends an empty header and an empty cell to every row.
func (t Table) WithColumn() Table {
	out := t.clone()
	out.headers = append(out.headers, "")
	for i := range out.rows {
		out.rows[i] = append(out.rows[i], "")
	}
	return out
}

// WithoutColumn drops the last column. A table must keep at least one column.
func (t Table) WithoutColumn() (Table, error) {
	if len(t.headers) <= 1 {
		return t, invariant("remove column", "table must keep at least one column")
	}
	out := t.clone()
	last := len(out.headers) - 1
	out.headers = out.headers[:last]
	for i := range out.rows {
		out.rows[i] = out.rows[i][:last]
	}
	return out, nil
}

// WithRow appends a row of empty cells.
func (t Table) WithRow() Table {
	out := t.clone()
	out.rows = append(out.rows, make([]string, len(out.headers)))
	return out
}

// WithoutRow drops the row at index r. A table must keep at least one row.
func (t Table) WithoutRow(r int) (Table, error) {
	if len(t.rows) <= 1 {
		return t, invariant("remove row", "table must keep at least one row")
	}
	if err := checkIndex("remove row", r, len(t.rows)); err != nil {
		return t, err
	}
	out := t.clone()
	out.rows = append(out.rows[:r], out.rows[r+1:]...)
	return out, nil
}

// WithHeader replaces the header of column c.
func (t Table) WithHeader(c int, value string) (Table, error) {
	if err := checkIndex("set header", c, len(t.headers)); err != nil {
		return t, err
	}
	out := t.clone()
	out.headers[c] = value
	return out, nil
}

// WithCell replaces the cell at row r, column c.
func (t Table) WithCell(r, c int, value string) (Table, error) {
	if err := checkIndex("set cell", r, len(t.rows)); err != nil {
		return t, err
	}
	if err := checkIndex("set cell", c, len(t.headers)); err != nil {
		return t, err
	}
	out := t.clone()
	out.rows[r][c] = value
	return out, nil
}

// clone deep-copies t. Empty headers and rows come back nil so a table
// compares equal however it was built.
func (t Table) clone() Table {
	var out Table
	if len(t.headers) > 0 {
		out.headers = append(make([]string, 0, len(t.headers)), t.headers...)
	}
	if len(t.rows) > 0 {
		out.rows = make([][]string, len(t.rows))
		for i, row := range t.rows {
			if row != nil {
				out.rows[i] = append(make([]string, 0, len(row)), row...)
			}
		}
	}
	return out
}
