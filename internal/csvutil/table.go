package csvutil

// Table is an in-memory CSV file addressed by column name.
// Columns a stage does not know about are carried through unchanged.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(header []string) *Table {
	t := &Table{
		header: append([]string(nil), header...),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range t.header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns row i as a slice aligned with Header.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow adds a row, padding or truncating it to the header width.
func (t *Table) AppendRow(values []string) {
	row := make([]string, len(t.header))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Get returns the value of column name in row i, or "" when the column is absent.
func (t *Table) Get(i int, name string) string {
	col, ok := t.index[name]
	if !ok {
		return ""
	}
	return t.rows[i][col]
}

// Set stores value in column name of row i, adding the column if needed.
func (t *Table) Set(i int, name, value string) {
	col := t.AddColumn(name)
	t.rows[i][col] = value
}

// AddColumn appends an empty column if it does not exist and returns its position.
func (t *Table) AddColumn(name string) int {
	if col, ok := t.index[name]; ok {
		return col
	}
	t.header = append(t.header, name)
	col := len(t.header) - 1
	t.index[name] = col
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
	return col
}

// DropColumns removes the named columns. Missing names are ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(t.header))
	for _, h := range t.header {
		if !drop[h] {
			keep = append(keep, h)
		}
	}
	t.Select(keep...)
}

// RenameColumn renames old to new. It is a no-op when old does not exist.
func (t *Table) RenameColumn(old, new string) {
	col, ok := t.index[old]
	if !ok {
		return
	}
	delete(t.index, old)
	t.header[col] = new
	t.index[new] = col
}

// Select reorders the table to exactly the given columns.
// Columns that do not exist yet are created empty.
func (t *Table) Select(names ...string) {
	rows := make([][]string, len(t.rows))
	for i := range t.rows {
		row := make([]string, len(names))
		for j, n := range names {
			row[j] = t.Get(i, n)
		}
		rows[i] = row
	}
	*t = *NewTable(names)
	t.rows = rows
}

// Filter keeps only the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) {
	kept := t.rows[:0:0]
	for i := range t.rows {
		if keep(i) {
			kept = append(kept, t.rows[i])
		}
	}
	t.rows = kept
}
