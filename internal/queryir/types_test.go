package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermString(t *testing.T) {
	assert.Equal(t, "?x", Var("x").String())
	assert.Equal(t, "?x", Var("?x").String())
	assert.Equal(t, "<http://example.org/p>", IRI("http://example.org/p").String())
	assert.Equal(t, "saref:hasPart", Prefixed("saref:hasPart").String())
	assert.Equal(t, `"21.5"`, Literal("21.5").String())
	assert.True(t, Var("x").IsVariable())
	assert.False(t, Prefixed("saref:x").IsVariable())
}

func TestVariablesFirstAppearance(t *testing.T) {
	q := &Query{
		Projection: []string{"?b"},
		Where: Group{Patterns: []Pattern{
			Triple{Subject: Var("a"), Predicate: Prefixed("saref:hasPart"), Object: Var("b")},
			NotExists{Group: Group{Patterns: []Pattern{
				Triple{Subject: Var("a"), Predicate: Prefixed("saref:controls"), Object: Var("c")},
			}}},
		}},
	}

	assert.Equal(t, []string{"?b", "?a", "?c"}, q.Variables())
	assert.Len(t, q.Triples(), 2)
}

func TestVariablesStar(t *testing.T) {
	q := &Query{Star: true, Where: Group{Patterns: []Pattern{
		Triple{Subject: Var("x"), Predicate: IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), Object: Prefixed("saref:Device")},
	}}}

	assert.Equal(t, []string{"?x"}, q.Variables())
}
