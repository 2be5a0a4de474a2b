package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/harness"
	"github.com/roach88/reqgraph/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool // regenerate golden files
	Parallel int  // concurrent scenarios, 0 for no limit
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-glob>...",
		Short: "Run requirement scenarios",
		Long: `Run YAML requirement scenarios and check their expectations.

Patterns may use ** to match nested directories. When a scenario has a
golden file at golden/<name>.golden next to it, the status summary of
its report must match that file byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (bad pattern, scenario that cannot run, etc.)

Examples:
  reqgraph test 'scenarios/*.yaml'
  reqgraph test 'scenarios/**/*.yaml' --parallel 4
  reqgraph test 'scenarios/*.yaml' --update`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "maximum concurrent scenarios (0 means unlimited)")

	return cmd
}

func runTests(opts *TestOptions, patterns []string, cmd *cobra.Command) error {
	files, err := findScenarioFiles(patterns)
	if err != nil {
		return WrapExitError(ExitCommandError, "find scenarios", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	// Scenarios that fail to load are reported; the rest still run.
	var (
		scenarios []*harness.Scenario
		loadedAt  []string
	)
	for _, file := range files {
		sc, err := harness.LoadScenario(file)
		if err != nil {
			result.Scenarios = append(result.Scenarios, ScenarioResult{
				Name:   filepath.Base(file),
				File:   file,
				Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}
		scenarios = append(scenarios, sc)
		loadedAt = append(loadedAt, file)
	}

	results, err := harness.RunAll(cmd.Context(), scenarios, opts.Parallel)
	if err != nil {
		return WrapExitError(ExitCommandError, "run scenarios", err)
	}

	for i, res := range results {
		sr := ScenarioResult{Name: res.Name, File: loadedAt[i], Pass: res.Pass, Errors: res.Errors}
		if err := compareGolden(loadedAt[i], res, opts.Update); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles expands patterns into a sorted, de-duplicated file list.
func findScenarioFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			switch filepath.Ext(m) {
			case ".yaml", ".yml":
				files = append(files, m)
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// compareGolden checks res against its golden file, or rewrites it when
// update is set. A missing golden file is not an error.
func compareGolden(scenarioFile string, res *harness.Result, update bool) error {
	if res.Report == nil {
		return nil
	}
	current, err := ir.MarshalCanonical(harness.Summary(res.Name, res.Report))
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	path := goldenFilePath(scenarioFile, res.Name)
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create golden directory: %w", err)
		}
		return os.WriteFile(path, current, 0o644)
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), current) {
		return fmt.Errorf("golden file mismatch: %s (run with --update to regenerate)", path)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := encodeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()
	s := NewStyles(isTerminal(w))

	for _, sr := range result.Scenarios {
		if sr.Pass {
			fmt.Fprintf(w, "%s %s\n", s.OK.Render("✓"), sr.Name)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", s.Fail.Render("✗"), sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, s.OK.Render("✓ All scenarios passed"))
	return nil
}
