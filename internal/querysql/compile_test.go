package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
	"github.com/roach88/reqgraph/internal/testutil"
)

func compile(t *testing.T, text string) *Statement {
	t.Helper()
	q, err := compiler.ParseQuery(text)
	require.NoError(t, err)
	st, err := NewSQLCompiler(ir.DefaultNamespaces()).Compile(q)
	require.NoError(t, err)
	return st
}

func TestCompile_JoinOnSharedVariable(t *testing.T) {
	st := compile(t, testutil.HasPartQuery)

	assert.Equal(t,
		"SELECT t0.subject, t1.object FROM triples t0, triples t1"+
			" WHERE t0.predicate = ? AND t0.object = ? AND t0.subject = t1.subject AND t1.predicate = ?"+
			" ORDER BY t0.seq ASC, t1.seq ASC, t0.subject COLLATE BINARY ASC, t1.object COLLATE BINARY ASC",
		st.SQL)
	assert.Equal(t, []any{"rdf.type", "core.Widget", "core.hasPart"}, st.Params)
	assert.Equal(t, []string{"?a", "?b"}, st.Columns)
}

func TestCompile_NotExists(t *testing.T) {
	st := compile(t, testutil.NoSensorQuery)

	assert.Equal(t,
		"SELECT t0.subject FROM triples t0"+
			" WHERE t0.predicate = ? AND t0.object = ?"+
			" AND NOT EXISTS (SELECT 1 FROM triples t1, triples t2"+
			" WHERE t0.subject = t1.subject AND t1.predicate = ? AND t1.object = t2.subject"+
			" AND t2.predicate = ? AND t2.object = ?)"+
			" ORDER BY t0.seq ASC, t0.subject COLLATE BINARY ASC",
		st.SQL)
	assert.Equal(t, []any{"rdf.type", "core.Widget", "core.hasPart", "rdf.type", "core.Sensor"}, st.Params)
	assert.Equal(t, []string{"?w"}, st.Columns, "variables bound only inside NOT EXISTS are not columns")
}

func TestCompile_NotExistsSeesLaterBindings(t *testing.T) {
	st := compile(t, `SELECT ?a WHERE {
		FILTER NOT EXISTS { ?a saref:locatedIn ?r }
		?a saref:hasPart ?b .
	}`)

	assert.Contains(t, st.SQL, "NOT EXISTS (SELECT 1 FROM triples t1 WHERE t0.subject = t1.subject")
	assert.Equal(t, []string{"?a", "?b"}, st.Columns)
}

func TestCompile_ParametersNeverInterpolated(t *testing.T) {
	st := compile(t, `SELECT ?x WHERE { ?x saref:hasName "Robert'); DROP TABLE individuals;--" }`)

	assert.NotContains(t, st.SQL, "DROP")
	assert.Contains(t, st.Params, "Robert'); DROP TABLE individuals;--")
}

func TestCompile_ConstantSpellings(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []any
	}{
		{"prefixed", `SELECT ?x WHERE { ?x saref:hasPart saref:Y }`, []any{"core.hasPart", "core.Y"}},
		{"full IRI", `SELECT ?x WHERE { ?x <https://saref.etsi.org/core/hasPart> ?y }`, []any{"core.hasPart"}},
		{"aliased prefix", `PREFIX s: <https://saref.etsi.org/core/> SELECT ?x WHERE { ?x s:hasPart ?y }`, []any{"core.hasPart"}},
		{"rdf:type", `SELECT ?x WHERE { ?x rdf:type saref:Room }`, []any{"rdf.type", "core.Room"}},
		{"integer literal", `SELECT ?x WHERE { ?x saref:hasValue 3 }`, []any{"core.hasValue", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compile(t, tt.query).Params)
		})
	}
}

func TestCompile_Distinct(t *testing.T) {
	st := compile(t, `SELECT DISTINCT ?a WHERE { ?a saref:hasPart ?b }`)

	assert.Contains(t, st.SQL, "SELECT DISTINCT t0.subject, t0.object")
	assert.Contains(t, st.SQL, "ORDER BY t0.subject COLLATE BINARY ASC, t0.object COLLATE BINARY ASC")
	assert.NotContains(t, st.SQL, "seq")
}

func TestCompile_VariablePredicate(t *testing.T) {
	st := compile(t, `SELECT ?p WHERE { saref:X ?p ?o }`)

	assert.Equal(t, []string{"?p", "?o"}, st.Columns)
	assert.Equal(t, []any{"core.X"}, st.Params)
}

func TestCompile_OnlyNotExists(t *testing.T) {
	st := compile(t, `SELECT ?x WHERE { FILTER NOT EXISTS { ?x saref:hasPart ?y } }`)

	assert.Equal(t,
		"SELECT 1 WHERE NOT EXISTS (SELECT 1 FROM triples t0 WHERE t0.predicate = ?) ORDER BY 1",
		st.SQL)
	assert.Empty(t, st.Columns)
}

func TestCompile_Errors(t *testing.T) {
	_, err := NewSQLCompiler(ir.DefaultNamespaces()).Compile(nil)
	assert.Error(t, err)

	q := &queryir.Query{Where: queryir.Group{Patterns: []queryir.Pattern{
		queryir.Triple{Subject: queryir.Var("x"), Predicate: queryir.Literal("p"), Object: queryir.Var("y")},
	}}}
	_, err = NewSQLCompiler(ir.DefaultNamespaces()).Compile(q)
	assert.Error(t, err)
}
