package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type visit struct {
	subject   string
	mustExist bool
}

func collect(g Group) []visit {
	var out []visit
	Walk(g, func(t Triple, mustExist bool) {
		out = append(out, visit{t.Subject.Value, mustExist})
	})
	return out
}

func triple(s string) Triple {
	return Triple{Subject: Var(s), Predicate: Prefixed("saref:hasPart"), Object: Var("o")}
}

func TestWalkPolarity(t *testing.T) {
	g := Group{Patterns: []Pattern{
		triple("a"),
		NotExists{Group: Group{Patterns: []Pattern{
			triple("b"),
			NotExists{Group: Group{Patterns: []Pattern{triple("c")}}},
			triple("d"),
		}}},
		Group{Patterns: []Pattern{triple("e")}},
		triple("f"),
	}}

	assert.Equal(t, []visit{
		{"?a", true},
		{"?b", false},
		{"?c", true},
		{"?d", false},
		{"?e", true},
		{"?f", true},
	}, collect(g))
}

func TestWalkSiblingNegations(t *testing.T) {
	g := Group{Patterns: []Pattern{
		NotExists{Group: Group{Patterns: []Pattern{triple("a")}}},
		NotExists{Group: Group{Patterns: []Pattern{triple("b")}}},
	}}

	assert.Equal(t, []visit{{"?a", false}, {"?b", false}}, collect(g))
}

func TestWalkPointerPatterns(t *testing.T) {
	tr := triple("a")
	g := Group{Patterns: []Pattern{&tr, &NotExists{Group: Group{Patterns: []Pattern{triple("b")}}}}}

	assert.Equal(t, []visit{{"?a", true}, {"?b", false}}, collect(g))
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(Group{Patterns: []Pattern{triple("a")}}))
	assert.Equal(t, 2, Depth(Group{Patterns: []Pattern{
		NotExists{Group: Group{Patterns: []Pattern{
			Group{Patterns: []Pattern{NotExists{}}},
		}}},
	}}))
}

func TestDepthPointerPatterns(t *testing.T) {
	inner := &NotExists{Group: Group{Patterns: []Pattern{triple("c")}}}
	g := Group{Patterns: []Pattern{
		triple("a"),
		&NotExists{Group: Group{Patterns: []Pattern{
			&Group{Patterns: []Pattern{inner}},
		}}},
	}}

	assert.Equal(t, 2, Depth(g))
	assert.Equal(t, 1, Depth(Group{Patterns: []Pattern{&Group{Patterns: []Pattern{inner}}}}))
}
