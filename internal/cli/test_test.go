package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// scenarioFile writes a has-part scenario expecting satisfied into a temp
// dir and returns the file path.
func scenarioFile(t *testing.T, dir, name string, satisfied bool) string {
	t.Helper()
	onto, err := filepath.Abs(ontologyDir)
	require.NoError(t, err)

	content := strings.Join([]string{
		"name: " + name,
		"ontology: " + onto,
		"query: |",
		"  PREFIX saref: <https://saref.etsi.org/core/>",
		"  SELECT ?a ?b WHERE { ?a a saref:Widget . ?a saref:hasPart ?b }",
		"run_id: " + name,
		"expect:",
		"  satisfied: " + map[bool]string{true: "true", false: "false"}[satisfied],
		"",
	}, "\n")
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunTestsAllPass(t *testing.T) {
	output, err := runTestCmd(t, "text", filepath.Join(scenarioDir, "*.yaml"))
	require.NoError(t, err)

	assert.Contains(t, output, "✓ sensor_violation")
	assert.Contains(t, output, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestRunTestsJSON(t *testing.T) {
	output, err := runTestCmd(t, "json", filepath.Join(scenarioDir, "**", "*.yaml"), "--parallel", "2")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.Passed)

	var names []string
	for _, sc := range resp.Data.Scenarios {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{"has_part_satisfied", "sensor_no_context", "sensor_violation"}, names)
}

func TestRunTestsDeduplicatesPatterns(t *testing.T) {
	pattern := filepath.Join(scenarioDir, "sensor_*.yaml")
	output, err := runTestCmd(t, "text", pattern, pattern)
	require.NoError(t, err)
	assert.Contains(t, output, "2 total")
}

func TestRunTestsFailure(t *testing.T) {
	dir := t.TempDir()
	scenarioFile(t, dir, "wrong_verdict", false)

	output, err := runTestCmd(t, "text", filepath.Join(dir, "*.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ wrong_verdict")
	assert.Contains(t, output, "satisfied: expected false, got true")
	assert.Contains(t, output, "1 failed")
}

func TestRunTestsLoadError(t *testing.T) {
	dir := t.TempDir()
	scenarioFile(t, dir, "good", true)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\nunknown_field: 1\n"), 0o644))

	output, err := runTestCmd(t, "json", filepath.Join(dir, "*.yaml"))
	require.Error(t, err)

	var resp struct {
		Error *CLIError  `json:"error"`
		Data  TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestRunTestsNoScenarios(t *testing.T) {
	output, err := runTestCmd(t, "text", filepath.Join(t.TempDir(), "*.yaml"))
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found.")
}

func TestRunTestsInvalidPattern(t *testing.T) {
	_, err := runTestCmd(t, "text", "scenarios/[.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunTestsGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	scenarioFile(t, dir, "golden_case", true)
	pattern := filepath.Join(dir, "*.yaml")

	output, err := runTestCmd(t, "text", pattern, "--update")
	require.NoError(t, err, output)

	golden := filepath.Join(dir, "golden", "golden_case.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"golden_case"`)
	assert.Contains(t, string(data), `"satisfied":true`)

	_, err = runTestCmd(t, "text", pattern)
	require.NoError(t, err)

	tampered := strings.Replace(string(data), `"satisfied":true`, `"satisfied":false`, 1)
	require.NoError(t, os.WriteFile(golden, []byte(tampered), 0o644))

	output, err = runTestCmd(t, "text", pattern)
	require.Error(t, err)
	assert.Contains(t, output, "golden file mismatch")
}
