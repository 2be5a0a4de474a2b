package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/qg"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Fold bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <query-file>",
		Short: "Print the query graph of a requirement",
		Long: `Build the query graph of a requirement query and print it.

With --fold, class-typing edges of variables are folded into the
variable's class attribute, as done before instantiation. JSON output
is the canonical graph snapshot including display styles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fold, "fold", false, "fold class-typing edges into variable classes")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	text, loadErr := readQueryFile(path)
	if loadErr != nil {
		return outputCompileError(formatter, loadErr)
	}

	g, err := qg.Parse(text, opts.Config().Namespaces)
	if err != nil {
		_ = formatter.Error(ErrCodeQuerySyntax, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %v", path, err))
	}
	if opts.Fold {
		g = g.FoldClass(true)
	}
	view := g.DisplayView()

	if formatter.Format == "json" {
		return formatter.Success(view.Snapshot())
	}
	printQueryGraph(formatter.Writer, formatter.Styles(), view.Graph, g.Folded())
	return nil
}

// printQueryGraph lists nodes and edges of an uninstantiated graph.
func printQueryGraph(w io.Writer, s *Styles, g *graph.Graph, folded bool) {
	header := "Nodes"
	if folded {
		header += " " + s.Faint.Render("(class typings folded)")
	}
	fmt.Fprintln(w, s.Header.Render(header))
	for _, name := range g.Nodes() {
		a, _ := g.Node(name)
		line := fmt.Sprintf("  %-24s %s", name, s.Faint.Render(string(a.Kind)))
		if a.Class != "" {
			line += " " + a.Class
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("Edges"))
	for _, key := range g.Edges() {
		a, _ := g.Edge(key)
		polarity := s.OK.Render("must exist")
		if !a.MustExist {
			polarity = s.Fail.Render("must not exist")
		}
		fmt.Fprintf(w, "  %-40s %s %s\n", key.String(), s.Faint.Render(string(a.Kind)), polarity)
	}
}
