package ir

import (
	"slices"
)

// ResultSet is the tabular output of query evaluation. Columns are query
// variable names including the sigil ("?a") in order of first appearance.
// Every row has exactly len(Columns) cells holding stringified individual
// names.
type ResultSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewResultSet returns an empty result set with the given columns.
func NewResultSet(columns ...string) ResultSet {
	return ResultSet{Columns: slices.Clone(columns), Rows: [][]string{}}
}

// Empty reports whether the result set has no rows.
func (rs ResultSet) Empty() bool {
	return len(rs.Rows) == 0
}

// Len returns the number of rows.
func (rs ResultSet) Len() int {
	return len(rs.Rows)
}

// Column returns the index of the named column, or -1.
func (rs ResultSet) Column(name string) int {
	return slices.Index(rs.Columns, name)
}

// Value returns the cell for row i and the named column.
func (rs ResultSet) Value(i int, column string) (string, bool) {
	c := rs.Column(column)
	if c < 0 || i < 0 || i >= len(rs.Rows) || c >= len(rs.Rows[i]) {
		return "", false
	}
	return rs.Rows[i][c], true
}

// Binding returns row i as a variable → individual map.
func (rs ResultSet) Binding(i int) map[string]string {
	if i < 0 || i >= len(rs.Rows) {
		return nil
	}
	out := make(map[string]string, len(rs.Columns))
	for c, name := range rs.Columns {
		if c < len(rs.Rows[i]) {
			out[name] = rs.Rows[i][c]
		}
	}
	return out
}

// Append adds a row. Missing trailing cells are filled with the column's
// own name, matching how unbound variables are reported.
func (rs *ResultSet) Append(row ...string) {
	cells := make([]string, len(rs.Columns))
	for c := range rs.Columns {
		if c < len(row) {
			cells[c] = row[c]
		} else {
			cells[c] = rs.Columns[c]
		}
	}
	rs.Rows = append(rs.Rows, cells)
}

// Filter returns a copy keeping only rows for which keep returns true.
func (rs ResultSet) Filter(keep func(row []string) bool) ResultSet {
	out := NewResultSet(rs.Columns...)
	for _, row := range rs.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, slices.Clone(row))
		}
	}
	return out
}
