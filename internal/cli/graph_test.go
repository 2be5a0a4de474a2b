package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGraphCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewGraphCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

type graphSnapshot struct {
	Data struct {
		Nodes []struct {
			Name  string `json:"name"`
			Kind  string `json:"kind"`
			Class string `json:"class"`
		} `json:"nodes"`
		Edges []struct {
			Src       string `json:"src"`
			Dst       string `json:"dst"`
			Label     string `json:"label"`
			MustExist bool   `json:"must_exist"`
		} `json:"edges"`
	} `json:"data"`
}

func TestGraphUnfolded(t *testing.T) {
	output, err := runGraphCmd(t, "json", sensorQuery)
	require.NoError(t, err)

	var snap graphSnapshot
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	assert.Len(t, snap.Data.Nodes, 4)
	assert.Len(t, snap.Data.Edges, 3)
}

func TestGraphFolded(t *testing.T) {
	output, err := runGraphCmd(t, "json", sensorQuery, "--fold")
	require.NoError(t, err)

	var snap graphSnapshot
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.Len(t, snap.Data.Nodes, 2)
	assert.Equal(t, "?s", snap.Data.Nodes[0].Name)
	assert.Equal(t, "core.Sensor", snap.Data.Nodes[0].Class)
	assert.Equal(t, "?w", snap.Data.Nodes[1].Name)
	assert.Equal(t, "core.Widget", snap.Data.Nodes[1].Class)

	require.Len(t, snap.Data.Edges, 1)
	assert.Equal(t, "core.hasPart", snap.Data.Edges[0].Label)
	assert.True(t, snap.Data.Edges[0].MustExist)
}

func TestGraphTextShowsPolarity(t *testing.T) {
	output, err := runGraphCmd(t, "text", noSensorQuery, "--fold")
	require.NoError(t, err)

	assert.Contains(t, output, "Nodes")
	assert.Contains(t, output, "?w")
	assert.Contains(t, output, "?w -core.hasPart-> ?s")
	assert.Contains(t, output, "must not exist")
	assert.Contains(t, output, "(class typings folded)")
}

func TestGraphTextUnfoldedHeader(t *testing.T) {
	output, err := runGraphCmd(t, "text", noSensorQuery)
	require.NoError(t, err)

	assert.Contains(t, output, "Nodes")
	assert.NotContains(t, output, "folded")
}

func TestGraphSyntaxError(t *testing.T) {
	path := writeFile(t, "bad.rq", `SELECT ?a WHERE {`)

	output, err := runGraphCmd(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, ErrCodeQuerySyntax)
}
