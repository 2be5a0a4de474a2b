package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/ontology"
)

// DivideOptions holds flags for the divide command.
type DivideOptions struct {
	*RootOptions
	Border []string
	Key    []string
}

// PartitionSummary describes one knowledge-graph partition.
type PartitionSummary struct {
	Key     string   `json:"key"`
	Nodes   []string `json:"nodes"`
	Edges   int      `json:"edges"`
	Trimmed []string `json:"trimmed,omitempty"`
}

// NewDivideCommand creates the divide command.
func NewDivideCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DivideOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "divide <ontology-dir>",
		Short: "Split the knowledge graph into partitions",
		Long: `Cut the knowledge graph along border classes and list the partitions.

Individuals of a border class are removed; each remaining connected
component becomes a partition named after its key-class individual.
Partition keys are what check --partition accepts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDivide(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Border, "border", nil, "border classes (default from config)")
	cmd.Flags().StringSliceVar(&opts.Key, "key", nil, "key classes (default from config)")

	return cmd
}

func runDivide(opts *DivideOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	cfg := opts.Config()

	res, err := loadReasoner(dir, opts.ontologyOptions()...)
	if err != nil {
		return outputLoadFailure(formatter, err)
	}

	border := pick(opts.Border, cfg.BorderClasses)
	if len(border) == 0 {
		return NewExitError(ExitCommandError, "no border classes: pass --border or set border_classes")
	}
	parts, err := divide(res, cfg.ExcludeRelations, border, pick(opts.Key, cfg.KeyClasses))
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "divide knowledge graph", err)
	}

	summaries := make([]PartitionSummary, 0, len(parts))
	for _, key := range kg.PartitionKeys(parts) {
		part := parts[key]
		summaries = append(summaries, PartitionSummary{
			Key:     key,
			Nodes:   part.Nodes(),
			Edges:   part.NumEdges(),
			Trimmed: part.Trimmed(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	s := formatter.Styles()
	fmt.Fprintf(formatter.Writer, "%s %d partition(s)\n", s.OK.Render("✓"), len(summaries))
	for _, p := range summaries {
		fmt.Fprintf(formatter.Writer, "  %-16s %d node(s), %d edge(s)  %s\n",
			p.Key, len(p.Nodes), p.Edges, s.Faint.Render(fmt.Sprint(p.Nodes)))
	}
	if len(summaries) > 0 && len(summaries[0].Trimmed) > 0 {
		fmt.Fprintf(formatter.Writer, "Border: %v\n", summaries[0].Trimmed)
	}
	return nil
}

// divide builds the knowledge graph of res and splits it. Border and key
// classes must be declared, and a key class must have individuals.
func divide(res *LoadResult, exclude, border, key []string) (map[string]*kg.KnowledgeGraph, error) {
	for _, class := range border {
		if _, err := ontology.InstancesOf(res.Ontology, class); err != nil {
			return nil, fmt.Errorf("border class: %w", err)
		}
	}
	for _, class := range key {
		members, err := ontology.InstancesOf(res.Ontology, class)
		if err != nil {
			return nil, fmt.Errorf("key class: %w", err)
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("key class %s has no individuals", class)
		}
	}

	full, err := kg.Load(res.Ontology, kg.ExcludeRelations(exclude...))
	if err != nil {
		return nil, err
	}
	return full.Divide(border, key)
}
