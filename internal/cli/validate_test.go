package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format, path string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidQuery(t *testing.T) {
	output, err := runValidateCmd(t, "text", sensorQuery)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Query valid")
	assert.Contains(t, output, "Triple patterns: 3")
	assert.NotContains(t, output, "NOT EXISTS depth")

	output, err = runValidateCmd(t, "text", noSensorQuery)
	require.NoError(t, err)
	assert.Contains(t, output, "NOT EXISTS depth: 1")
}

func TestValidateValidQueryJSON(t *testing.T) {
	output, err := runValidateCmd(t, "json", noSensorQuery)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"?w", "?s"}, resp.Data.Variables)
	assert.Empty(t, resp.Data.Warnings)
	assert.Equal(t, 3, resp.Data.Triples)
	assert.Equal(t, 1, resp.Data.Depth)
}

func TestValidateUnsupportedQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		warning string
	}{
		{
			name:    "predicate_variable",
			query:   `SELECT ?a WHERE { ?a ?p ?b }`,
			warning: "predicate variable ?p",
		},
		{
			name:    "literal_subject",
			query:   `SELECT ?a WHERE { "x" <http://ex.org/p> ?a }`,
			warning: "literal subject",
		},
		{
			name:    "unbound_projection",
			query:   `SELECT ?a ?z WHERE { ?a <http://ex.org/p> ?b }`,
			warning: "projected variable ?z",
		},
		{
			name:    "empty_not_exists",
			query:   `SELECT ?a WHERE { ?a <http://ex.org/p> ?b FILTER NOT EXISTS { } }`,
			warning: "empty NOT EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "query.rq", tt.query)

			output, err := runValidateCmd(t, "text", path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, output, "✗ Unsupported query")
			assert.Contains(t, output, tt.warning)
		})
	}
}

func TestValidateUnsupportedQueryJSON(t *testing.T) {
	path := writeFile(t, "query.rq", `SELECT ?a WHERE { ?a ?p ?b }`)

	output, err := runValidateCmd(t, "json", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeQueryUnsupported, resp.Error.Code)
}

func TestValidateSyntaxError(t *testing.T) {
	path := writeFile(t, "query.rq", "SELECT ?a WHERE {\n  ?a <http://ex.org/p> ?b .\n  OPTIONAL { ?a <http://ex.org/q> ?c }\n}")

	output, err := runValidateCmd(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeQuerySyntax, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "OPTIONAL is not supported")
	assert.Equal(t, map[string]any{"line": 3.0, "col": 3.0}, resp.Error.Details)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := runValidateCmd(t, "text", "/nonexistent/query.rq")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
