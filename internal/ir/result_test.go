package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultSetAccessors(t *testing.T) {
	rs := NewResultSet("?a", "?b")
	assert.True(t, rs.Empty())

	rs.Append("X", "Y")
	rs.Append("Z")

	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, 1, rs.Column("?b"))
	assert.Equal(t, -1, rs.Column("?c"))

	v, ok := rs.Value(1, "?b")
	assert.True(t, ok)
	assert.Equal(t, "?b", v, "missing cells are filled with the column name")

	_, ok = rs.Value(5, "?a")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"?a": "X", "?b": "Y"}, rs.Binding(0))
	assert.Nil(t, rs.Binding(2))
}

func TestResultSetFilter(t *testing.T) {
	rs := ResultSet{Columns: []string{"?a"}, Rows: [][]string{{"X"}, {"Q"}}}
	out := rs.Filter(func(row []string) bool { return row[0] == "X" })

	assert.Equal(t, [][]string{{"X"}}, out.Rows)
	assert.Equal(t, 2, rs.Len(), "filter must not mutate the input")
}

func TestIssueString(t *testing.T) {
	i := Issue{Code: IssueUnroutable, Message: "no anchor", Subject: "X", Predicate: "core.hasPart", Object: "Y"}
	assert.Equal(t, "[UNROUTABLE_REQUIREMENT] X -core.hasPart-> Y: no anchor", i.String())

	e := Issue{Code: IssueEmptyResult, Message: "query returned no rows"}
	assert.Equal(t, "[EMPTY_RESULT] query returned no rows", e.String())
}
