package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphHashDeterminism(t *testing.T) {
	snap := map[string]any{
		"nodes": []any{map[string]any{"name": "X", "status": "ok"}},
		"edges": []any{},
	}

	h1, err := GraphHash(snap)
	require.NoError(t, err)
	h2, err := GraphHash(snap)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestGraphHashChangesWithContent(t *testing.T) {
	a, err := GraphHash(map[string]any{"nodes": []any{"X"}})
	require.NoError(t, err)
	b, err := GraphHash(map[string]any{"nodes": []any{"Y"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGraphHashRejectsFloats(t *testing.T) {
	_, err := GraphHash(map[string]any{"weight": 0.5})
	require.Error(t, err)
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainGraph, data), hashWithDomain(DomainResult, data))
}

func TestResultHashRowOrder(t *testing.T) {
	rs1 := ResultSet{Columns: []string{"?a"}, Rows: [][]string{{"X"}, {"Y"}}}
	rs2 := ResultSet{Columns: []string{"?a"}, Rows: [][]string{{"Y"}, {"X"}}}

	h1, err := ResultHash(rs1)
	require.NoError(t, err)
	h2, err := ResultHash(rs2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
