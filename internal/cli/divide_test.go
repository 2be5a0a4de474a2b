package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDivideCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewDivideCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDivideJSON(t *testing.T) {
	output, err := runDivideCmd(t, "json", ontologyDir, "--border", "core.Room", "--key", "core.Widget")
	require.NoError(t, err)

	var resp struct {
		Data []PartitionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Data, 2)

	w2, x := resp.Data[0], resp.Data[1]
	assert.Equal(t, "W2", w2.Key)
	assert.ElementsMatch(t, []string{"W2", "G2"}, w2.Nodes)
	assert.Equal(t, 1, w2.Edges)
	assert.ElementsMatch(t, []string{"R1", "R2"}, w2.Trimmed)

	assert.Equal(t, "X", x.Key)
	assert.ElementsMatch(t, []string{"X", "Y", "S1"}, x.Nodes)
	assert.Equal(t, 3, x.Edges)
}

func TestDivideText(t *testing.T) {
	output, err := runDivideCmd(t, "text", ontologyDir, "--border", "core.Room", "--key", "core.Widget")
	require.NoError(t, err)
	assert.Contains(t, output, "2 partition(s)")
	assert.Contains(t, output, "W2")
	assert.Contains(t, output, "Border:")
}

func TestDivideWithoutKeysUsesIndexes(t *testing.T) {
	output, err := runDivideCmd(t, "json", ontologyDir, "--border", "core.Room")
	require.NoError(t, err)

	var resp struct {
		Data []PartitionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "0", resp.Data[0].Key)
	assert.Equal(t, "1", resp.Data[1].Key)
}

func TestDivideErrors(t *testing.T) {
	_, err := runDivideCmd(t, "text", ontologyDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no border classes")

	// G2 is cut off into a component without a sensor.
	_, err = runDivideCmd(t, "text", ontologyDir, "--border", "core.Widget", "--key", "core.Sensor")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDivideRejectsUnknownClasses(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"border typo", []string{"--border", "core.Rom"}, `border class: LOOKUP_FAILURE: unknown class "core.Rom" (did you mean core.Room?)`},
		{"key typo", []string{"--border", "core.Room", "--key", "core.Widgt"}, `key class: LOOKUP_FAILURE: unknown class "core.Widgt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runDivideCmd(t, "text", append([]string{ontologyDir}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
