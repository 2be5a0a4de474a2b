package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/qg"
	"github.com/roach88/reqgraph/internal/queryir"
)

// ValidationResult holds query validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Variables []string `json:"variables,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`

	// Triples counts triple patterns at every nesting level.
	Triples int `json:"triples"`

	// Depth is the deepest FILTER NOT EXISTS nesting.
	Depth int `json:"depth"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Check a requirement query without evaluating it",
		Long: `Parse a requirement query and check it against the supported subset.

Reports syntax errors with their line and column, and warns about
predicate variables, literal subjects, projected variables missing
from the WHERE clause and empty NOT EXISTS blocks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	text, loadErr := readQueryFile(path)
	if loadErr != nil {
		return outputCompileError(formatter, loadErr)
	}

	q, err := compiler.ParseQuery(text)
	if err != nil {
		var parseErr *compiler.ParseError
		if errors.As(err, &parseErr) {
			_ = formatter.Error(ErrCodeQuerySyntax, parseErr.Error(), map[string]int{
				"line": parseErr.Line,
				"col":  parseErr.Col,
			})
		} else {
			_ = formatter.Error(ErrCodeQuerySyntax, err.Error(), nil)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %v", path, err))
	}

	check := queryir.Validate(q)
	result := ValidationResult{
		Valid:    check.Supported,
		Warnings: check.Warnings,
		Triples:  len(q.Triples()),
		Depth:    queryir.Depth(q.Where),
	}
	if check.Supported {
		g, err := qg.Build(q, opts.Config().Namespaces)
		if err != nil {
			result.Valid = false
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			result.Variables = g.Variables()
			formatter.VerboseLog("Query graph: %d node(s), %d edge(s)", g.NumNodes(), g.NumEdges())
		}
	}

	return outputValidateResult(formatter, path, result)
}

// readQueryFile reads a query file, mapping failures to load errors.
func readQueryFile(path string) (string, *LoadError) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
		}
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading query file: %v", err)}
	}
	return string(data), nil
}

func outputValidateResult(formatter *OutputFormatter, path string, result ValidationResult) error {
	if formatter.Format == "json" {
		if result.Valid {
			return formatter.Success(result)
		}
		resp := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeQueryUnsupported, Message: result.Warnings[0]},
		}
		if err := encodeJSON(formatter.Writer, resp); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: unsupported query", path))
	}

	s := formatter.Styles()
	if result.Valid {
		fmt.Fprintf(formatter.Writer, "%s %s\n", s.OK.Render("✓ Query valid:"), path)
		fmt.Fprintf(formatter.Writer, "  Triple patterns: %d\n", result.Triples)
		if result.Depth > 0 {
			fmt.Fprintf(formatter.Writer, "  NOT EXISTS depth: %d\n", result.Depth)
		}
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n\n", s.Fail.Render("✗ Unsupported query:"), path)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeQueryUnsupported, w)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: unsupported query", path))
}
