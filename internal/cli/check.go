package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/diagnose"
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Violation     string // violation query file
	OrderExisting int
	Database      string
	Partition     string
	Border        []string
	Key           []string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts, OrderExisting: -1}

	cmd := &cobra.Command{
		Use:   "check <ontology-dir> <query-file>",
		Short: "Check a requirement against an ontology",
		Long: `Evaluate a requirement query against an ontology and classify it.

The requirement graph is bound to the first violating row (from
--violation) or to the requirement's own first row. Every node and
edge is classified against the knowledge graph; when requirements are
missing, a helper graph shows how they can be routed through existing
individuals up to --order-existing hops away.

Exit codes:
  0 - Requirement satisfied
  1 - Requirement not satisfied
  2 - Command error (unloadable ontology, unparsable query, etc.)

Examples:
  reqgraph check ./ontology sensor.rq
  reqgraph check ./ontology sensor.rq --violation no_sensor.rq
  reqgraph check ./ontology sensor.rq --partition W2 --border core.Room --key core.Widget`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Violation, "violation", "", "violation query file")
	cmd.Flags().IntVar(&opts.OrderExisting, "order-existing", -1, "context hops for the solver (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite triple store path (default from config, in-memory when empty)")
	cmd.Flags().StringVar(&opts.Partition, "partition", "", "check against one knowledge-graph partition")
	cmd.Flags().StringSliceVar(&opts.Border, "border", nil, "border classes for --partition (default from config)")
	cmd.Flags().StringSliceVar(&opts.Key, "key", nil, "key classes for --partition (default from config)")

	return cmd
}

func runCheck(opts *CheckOptions, dir, queryPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	cfg := opts.Config()
	logger := opts.Logger(cmd.ErrOrStderr())

	res, err := loadReasoner(dir, opts.ontologyOptions()...)
	if err != nil {
		return outputLoadFailure(formatter, err)
	}

	req := diagnose.Request{}
	text, loadErr := readQueryFile(queryPath)
	if loadErr != nil {
		return outputCompileError(formatter, loadErr)
	}
	req.Requirement = text
	if opts.Violation != "" {
		text, loadErr := readQueryFile(opts.Violation)
		if loadErr != nil {
			return outputCompileError(formatter, loadErr)
		}
		req.Violation = text
	}

	order := cfg.OrderExisting
	if opts.OrderExisting >= 0 {
		order = opts.OrderExisting
	}
	dbPath := cfg.Database
	if opts.Database != "" {
		dbPath = opts.Database
	}

	s, err := opts.openStore(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer s.Close()

	pipelineOpts := append(opts.pipelineOptions(),
		diagnose.WithOrderExisting(order),
		diagnose.WithNamespaces(cfg.Namespaces),
		diagnose.WithExcludeRelations(cfg.ExcludeRelations...),
		diagnose.WithLogger(logger),
	)
	if opts.Partition != "" {
		parts, err := divide(res, cfg.ExcludeRelations, pick(opts.Border, cfg.BorderClasses), pick(opts.Key, cfg.KeyClasses))
		if err != nil {
			return WrapExitError(ExitCommandError, "divide knowledge graph", err)
		}
		part, ok := parts[opts.Partition]
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown partition %q (have %v)", opts.Partition, kg.PartitionKeys(parts)))
		}
		pipelineOpts = append(pipelineOpts, diagnose.WithPartition(part))
	}

	p, err := diagnose.New(ctx, res.Ontology, s, pipelineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "prepare pipeline", err)
	}
	logStore(ctx, logger, s)
	rep, err := p.Check(ctx, req)
	if err != nil {
		_ = formatter.Error(ErrCodeEvaluation, err.Error(), nil)
		return WrapExitError(ExitCommandError, "check requirement", err)
	}

	if err := outputReport(formatter, rep); err != nil {
		return err
	}
	if !rep.Satisfied {
		return NewExitError(ExitFailure, "requirement not satisfied")
	}
	return nil
}

// logStore records what the triple store holds after loading.
func logStore(ctx context.Context, logger *slog.Logger, s *store.Store) {
	name, err := s.OntologyName(ctx)
	if err != nil {
		logger.Warn("read store ontology", "error", err)
		return
	}
	st, err := s.Stats(ctx)
	if err != nil {
		logger.Warn("read store stats", "error", err)
		return
	}
	logger.Debug("triple store loaded",
		"path", s.Path(),
		"ontology", name,
		"individuals", st.Individuals,
		"closure", st.Closure,
		"assertions", st.Assertions,
		"data_values", st.DataValues)
}

// outputLoadFailure reports an ontology that could not be loaded.
func outputLoadFailure(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return outputCompileError(formatter, loadErr)
	}
	return outputCompileError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
}

// pick returns flag values when set, config values otherwise.
func pick(flag, cfg []string) []string {
	if len(flag) > 0 {
		return flag
	}
	return cfg
}

func outputReport(formatter *OutputFormatter, rep *diagnose.Report) error {
	if formatter.Format == "json" {
		data, err := ir.MarshalCanonical(rep.Snapshot())
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		return encodeJSON(formatter.Writer, CLIResponse{
			Status: "ok",
			Data:   json.RawMessage(data),
			RunID:  rep.RunID,
		})
	}
	printReport(formatter.Writer, formatter.Styles(), rep)
	return nil
}

// printReport renders a report for humans.
func printReport(w io.Writer, s *Styles, rep *diagnose.Report) {
	fmt.Fprintf(w, "%s  %s\n", s.Verdict(rep.Satisfied), s.Faint.Render("run "+rep.RunID))

	fmt.Fprintf(w, "Rows: %d", rep.Rows.Len())
	if rep.ViolationRows != nil {
		fmt.Fprintf(w, ", violations: %d", rep.ViolationRows.Len())
	}
	if rep.Dropped > 0 {
		fmt.Fprintf(w, ", dropped outside partition: %d", rep.Dropped)
	}
	fmt.Fprintln(w)

	if g := rep.Result(); g != nil && g.Instantiated() {
		title := "Requirement graph"
		if rep.Helper != nil {
			title = "Helper graph"
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render(title))
		printStatusGraph(w, s, g.Graph)
	}

	if rep.Solve != nil {
		fmt.Fprintf(w, "\nSolve: %d missing, %d routed, %d unresolved, %d context node(s)\n",
			len(rep.Solve.Missing), len(rep.Solve.Routed), len(rep.Solve.Unresolved), rep.Solve.ContextNodes)
		for _, key := range rep.Solve.Unresolved {
			fmt.Fprintf(w, "  %s %s\n", s.Warn.Render("unresolved"), key)
		}
	}

	if len(rep.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render("Issues"))
		for _, i := range rep.Issues {
			fmt.Fprintf(w, "  %s %s\n", s.Warn.Render(string(i.Code)), i.Message)
		}
	}

	fmt.Fprintf(w, "\nHighlighted %d knowledge-graph edge(s)\n", rep.Highlighted)
}

func printStatusGraph(w io.Writer, s *Styles, g *graph.Graph) {
	for _, name := range g.Nodes() {
		a, _ := g.Node(name)
		class := a.Class
		if class == "" {
			class = "-"
		}
		fmt.Fprintf(w, "  %-24s %s %s\n", name, padRight(s.Node(a.Status), 10), s.Faint.Render(class))
	}
	for _, key := range g.Edges() {
		a, _ := g.Edge(key)
		fmt.Fprintf(w, "  %-40s %s\n", key.String(), s.Edge(a.Status))
	}
}
