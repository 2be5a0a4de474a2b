package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/roach88/reqgraph/internal/config"
	"github.com/roach88/reqgraph/internal/diagnose"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/metrics"
	"github.com/roach88/reqgraph/internal/ontology"
	"github.com/roach88/reqgraph/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	MetricsOut string
	Trace      bool

	cfg     *config.Config
	metrics *metrics.Metrics
	tracer  *sdktrace.TracerProvider
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config returns the loaded configuration, or the defaults when the root
// command did not run (subcommands built on their own in tests).
func (o *RootOptions) Config() *config.Config {
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	return o.cfg
}

// Metrics returns the run's collectors, or nil when --metrics-out is unset.
func (o *RootOptions) Metrics() *metrics.Metrics {
	return o.metrics
}

// pipelineOptions returns the diagnose options shared by every command
// that runs the pipeline.
func (o *RootOptions) pipelineOptions() []diagnose.Option {
	opts := []diagnose.Option{diagnose.WithMetrics(o.Metrics())}
	if o.tracer != nil {
		opts = append(opts, diagnose.WithTracerProvider(o.tracer))
	}
	return opts
}

// ontologyOptions configures reasoners built by commands.
func (o *RootOptions) ontologyOptions() []ontology.Option {
	return []ontology.Option{ontology.WithCacheSize(o.Config().CacheSize)}
}

// openStore opens the triple store at path, or an in-memory one when path
// is empty.
func (o *RootOptions) openStore(path string) (*store.Store, error) {
	opt := store.WithBusyTimeout(o.Config().BusyTimeout)
	if path == "" {
		return store.OpenMemory(opt)
	}
	return store.Open(path, opt)
}

// Logger builds the command logger. Logs go to w so they never mix with
// JSON output.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	} else {
		_ = level.UnmarshalText([]byte(strings.ToUpper(o.Config().LogLevel)))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the CLI with args and returns the process exit code.
// Metrics and traces are flushed even when the command fails.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if ferr := opts.finish(ctx); ferr != nil && err == nil {
		err = ferr
	}
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitFailure {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reqgraph",
		Short: "reqgraph - requirement diagnosis over ontology graphs",
		Long: `Check requirement queries against an ontology's knowledge graph.

Requirements are graph-pattern queries. reqgraph evaluates them, classifies
every node and edge of the requirement against what the knowledge graph
holds, and derives a helper graph showing how missing requirements can be
routed through existing material.`,
		Version:       ir.ToolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			opts.cfg = cfg
			slog.SetDefault(opts.Logger(cmd.ErrOrStderr()))

			if opts.MetricsOut != "" {
				opts.metrics = metrics.New()
			}
			if opts.Trace {
				tp, err := diagnose.NewStdoutTracing(cmd.ErrOrStderr())
				if err != nil {
					return WrapExitError(ExitCommandError, "install tracing", err)
				}
				opts.tracer = tp
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.finish(cmd.Context())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./"+config.FileName+" when present)")
	cmd.PersistentFlags().StringVar(&opts.MetricsOut, "metrics-out", "", "write Prometheus metrics to this textfile")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "print pipeline spans to stderr")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDivideCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// finish flushes spans and writes metrics. It is safe to call twice.
func (o *RootOptions) finish(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			return fmt.Errorf("flush traces: %w", err)
		}
		o.tracer = nil
	}
	if o.metrics != nil && o.MetricsOut != "" {
		if err := o.metrics.WriteTextfile(o.MetricsOut); err != nil {
			return WrapExitError(ExitCommandError, "write metrics", err)
		}
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
