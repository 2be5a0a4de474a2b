package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the compiled ontology with its load diagnostics.
type CompilationResult struct {
	Ontology *ir.OntologySpec        `json:"ontology"`
	Cycles   []compiler.CycleWarning `json:"cycles,omitempty"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	ClassCount      int
	PropertyCount   int
	IndividualCount int
	FactCount       int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <ontology-dir>",
		Short: "Compile a CUE ontology to canonical IR",
		Long: `Compile the CUE ontology in a directory to its canonical IR.

All .cue files in the directory are unified, compiled to classes,
properties and individuals, and checked for referential integrity.
Subclass cycles are reported as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	res, err := LoadOntology(dir, opts.ontologyOptions()...)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCompileError(formatter, loadErr)
		}
		return outputCompileError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", res.FileCount, dir)

	if len(res.Problems) > 0 {
		return outputValidationErrors(formatter, res.Problems)
	}

	result := &CompilationResult{Ontology: res.Spec, Cycles: res.Cycles}
	stats := calculateStats(res.Spec)
	for _, c := range res.Cycles {
		formatter.VerboseLog("Cycle: %s", c.Message)
	}

	if opts.Output != "" {
		if err := writeIRToFile(res.Spec, opts.Output); err != nil {
			return outputCompileError(formatter, &LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("writing output file: %v", err),
			})
		}
	}

	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

// calculateStats computes summary statistics for a compiled ontology.
func calculateStats(spec *ir.OntologySpec) CompilationStats {
	stats := CompilationStats{
		ClassCount:      len(spec.Classes),
		PropertyCount:   len(spec.Properties),
		IndividualCount: len(spec.Individuals),
	}
	for _, ind := range spec.Individuals {
		stats.FactCount += len(ind.Facts)
	}
	return stats
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	s := formatter.Styles()
	name := result.Ontology.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "%s %s: %d class(es), %d propert(y/ies), %d individual(s), %d fact(s)\n",
		s.OK.Render("✓ Compiled"), name,
		stats.ClassCount, stats.PropertyCount, stats.IndividualCount, stats.FactCount)

	if len(result.Cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render("Warnings"))
		for _, c := range result.Cycles {
			fmt.Fprintf(w, "  %s %s\n", s.Warn.Render(c.Level), c.Message)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote canonical IR to %s\n", outputFile)
	}
	return nil
}

// outputCompileError reports a load failure. These are command-level errors.
func outputCompileError(formatter *OutputFormatter, loadErr *LoadError) error {
	if formatter.Format != "json" && loadErr.Pos.IsValid() {
		fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
			loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), nil)
}

// outputValidationErrors lists referential-integrity errors. An invalid
// ontology is a validation failure (exit code 1), not a command error.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   errs,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := encodeJSON(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, formatter.Styles().Fail.Render("✗ Validation failed"))
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// writeIRToFile writes the compiled ontology as indented JSON.
func writeIRToFile(spec *ir.OntologySpec, filename string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
