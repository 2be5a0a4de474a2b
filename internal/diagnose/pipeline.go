// Package diagnose runs the end-to-end requirement check: parse a
// requirement query, evaluate it against the ontology, bind a result row,
// classify every element, derive the helper graph when requirements are
// missing, and project the matched rows onto the knowledge graph.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/reqgraph/internal/engine"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/metrics"
	"github.com/roach88/reqgraph/internal/ontology"
	"github.com/roach88/reqgraph/internal/projector"
	"github.com/roach88/reqgraph/internal/qg"
	"github.com/roach88/reqgraph/internal/store"
)

// Stage names, used for spans, metrics labels and report timings.
const (
	StageParse       = "parse"
	StageEvaluate    = "evaluate"
	StageInstantiate = "instantiate"
	StageSolve       = "solve"
	StageProject     = "project"
)

const tracerName = "github.com/roach88/reqgraph/internal/diagnose"

// Pipeline checks requirement queries against one ontology.
//
// Thread-safety: Check may be called concurrently. The underlying store
// serializes queries on its single connection.
type Pipeline struct {
	reasoner ontology.Reasoner
	kg       *kg.KnowledgeGraph
	engine   *engine.Engine

	ns        ir.Namespaces
	order     int
	exclude   []string
	partition *kg.KnowledgeGraph

	logger  *slog.Logger
	metrics *metrics.Metrics
	tp      trace.TracerProvider
	clock   Clock
	runIDs  RunIDGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOrderExisting sets how many hops of existing context Solve pulls in.
func WithOrderExisting(n int) Option {
	return func(p *Pipeline) { p.order = n }
}

// WithNamespaces replaces the default prefix table.
func WithNamespaces(ns ir.Namespaces) Option {
	return func(p *Pipeline) { p.ns = ns }
}

// WithExcludeRelations drops the named predicates when the knowledge graph
// is loaded.
func WithExcludeRelations(names ...string) Option {
	return func(p *Pipeline) { p.exclude = append(p.exclude, names...) }
}

// WithPartition checks against one partition of the knowledge graph, as
// returned by kg.Divide. Result rows naming individuals outside the
// partition are dropped.
func WithPartition(part *kg.KnowledgeGraph) Option {
	return func(p *Pipeline) { p.partition = part }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records run statistics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracerProvider sets the span source. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) { p.tp = tp }
}

// WithClock sets the time source for stage timings.
func WithClock(c Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithRunIDGenerator sets the run identifier source.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(p *Pipeline) { p.runIDs = g }
}

// New loads r into s and into a knowledge graph and returns a pipeline
// over them. s is reloaded from scratch.
func New(ctx context.Context, r ontology.Reasoner, s *store.Store, opts ...Option) (*Pipeline, error) {
	if r == nil {
		return nil, errors.New("diagnose: nil reasoner")
	}
	if s == nil {
		return nil, errors.New("diagnose: nil store")
	}

	p := &Pipeline{
		reasoner: r,
		ns:       ir.DefaultNamespaces(),
		order:    1,
		logger:   slog.Default(),
		clock:    SystemClock{},
		runIDs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.order < 0 {
		return nil, fmt.Errorf("diagnose: negative order_existing %d", p.order)
	}

	stats, err := s.Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("diagnose: %w", err)
	}
	p.kg, err = kg.Load(r, kg.ExcludeRelations(p.exclude...), kg.WithLogger(p.logger))
	if err != nil {
		return nil, fmt.Errorf("diagnose: %w", err)
	}
	p.engine = engine.New(s, p.ns, engine.WithLogger(p.logger))

	p.logger.Debug("pipeline ready",
		"individuals", stats.Individuals,
		"assertions", stats.Assertions,
		"kg_nodes", p.kg.NumNodes(),
		"kg_edges", p.kg.NumEdges())
	return p, nil
}

// KnowledgeGraph returns the graph requirements are checked against: the
// partition when one was given, the whole graph otherwise.
func (p *Pipeline) KnowledgeGraph() *kg.KnowledgeGraph {
	if p.partition != nil {
		return p.partition
	}
	return p.kg
}

// Request names the queries of one check.
type Request struct {
	// Requirement is the query describing what must hold.
	Requirement string

	// Violation optionally selects the individuals that break the
	// requirement. Its first row is bound to the requirement graph. Without
	// it the requirement's own first row is used.
	Violation string
}

// Run checks a single requirement query.
func (p *Pipeline) Run(ctx context.Context, requirement string) (*Report, error) {
	return p.Check(ctx, Request{Requirement: requirement})
}

// Check runs the full pipeline for req.
//
// The requirement is satisfied when the violation query returns no rows,
// or, without a violation query, when the requirement returns at least
// one row. Recoverable conditions are reported as issues; errors are
// returned only for unparsable or unevaluable queries.
func (p *Pipeline) Check(ctx context.Context, req Request) (rep *Report, err error) {
	ctx, span := p.tracer().Start(ctx, "diagnose.check")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rep = &Report{RunID: p.runIDs.Generate(), Query: req.Requirement, Violation: req.Violation}
	span.SetAttributes(attribute.String("run_id", rep.RunID))
	k := p.KnowledgeGraph()
	logger := p.logger.With("run_id", rep.RunID)

	var folded, violation *qg.QueryGraph
	err = p.stage(ctx, rep, StageParse, func(context.Context) error {
		g, err := qg.Parse(req.Requirement, p.ns)
		if err != nil {
			return fmt.Errorf("parse requirement: %w", err)
		}
		folded = g.FoldClass(true)
		if req.Violation != "" {
			violation, err = qg.Parse(req.Violation, p.ns)
			if err != nil {
				return fmt.Errorf("parse violation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var target ir.ResultSet
	err = p.stage(ctx, rep, StageEvaluate, func(ctx context.Context) error {
		res, err := p.evaluate(ctx, folded)
		if err != nil {
			return fmt.Errorf("evaluate requirement: %w", err)
		}
		rep.Rows = res.ResultSet
		rep.Dropped = res.Dropped
		target = res.ResultSet
		rep.Satisfied = !res.Empty()

		if violation != nil {
			res, err := p.evaluate(ctx, violation)
			if err != nil {
				return fmt.Errorf("evaluate violation: %w", err)
			}
			rep.ViolationRows = &res.ResultSet
			rep.Dropped += res.Dropped
			target = res.ResultSet
			rep.Satisfied = res.Empty()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	needsSolve := false
	err = p.stage(ctx, rep, StageInstantiate, func(context.Context) error {
		if target.Empty() {
			rep.Instantiated = folded
			rep.addIssues(ir.Issue{Code: ir.IssueEmptyResult, Message: "no result rows; graph left unchanged"})
			return nil
		}
		inst, err := folded.Instantiate(target, k)
		if ontology.IsLookupError(err) {
			rep.Instantiated = folded
			rep.addIssues(ir.Issue{Code: ir.IssueLookupFailure, Message: err.Error()})
			return nil
		}
		if err != nil {
			return fmt.Errorf("instantiate: %w", err)
		}
		rep.addIssues(inst.UpdateStatus()...)
		rep.Instantiated = inst.ApplyStyle()
		for _, key := range inst.Edges() {
			if a, _ := inst.Edge(key); a.Status.IsAdd() {
				needsSolve = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if needsSolve {
		err = p.stage(ctx, rep, StageSolve, func(context.Context) error {
			helper, report, err := folded.Solve(target, k, p.reasoner, qg.SolveOptions{
				OrderExisting: p.order,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			rep.Helper = helper
			rep.Solve = report
			rep.addIssues(report.Issues...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	_ = p.stage(ctx, rep, StageProject, func(context.Context) error {
		rep.Projected, rep.Highlighted = projector.Project(k, folded, rep.Rows, false)
		return nil
	})

	p.record(rep)
	logger.Info("requirement checked",
		"satisfied", rep.Satisfied,
		"rows", rep.Rows.Len(),
		"highlighted", rep.Highlighted,
		"issues", len(rep.Issues))
	return rep, nil
}

func (p *Pipeline) evaluate(ctx context.Context, g *qg.QueryGraph) (*engine.Result, error) {
	var opts []engine.EvalOption
	if p.partition != nil {
		opts = append(opts, engine.RestrictTo(p.partition.Members()))
	}
	res, err := p.engine.Evaluate(ctx, g.Query(), opts...)
	if p.metrics != nil {
		if err != nil {
			p.metrics.QueriesTotal.WithLabelValues("error").Inc()
		} else {
			p.metrics.QueriesTotal.WithLabelValues("ok").Inc()
			p.metrics.RowsReturned.Observe(float64(res.Len()))
			p.metrics.RowsDropped.Add(float64(res.Dropped))
		}
	}
	return res, err
}

// stage runs fn in a child span and records its duration.
func (p *Pipeline) stage(ctx context.Context, rep *Report, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer().Start(ctx, name)
	defer span.End()

	start := p.clock.Now()
	err := fn(ctx)
	d := p.clock.Now().Sub(start)

	rep.Stages = append(rep.Stages, StageTiming{Name: name, Duration: d})
	if p.metrics != nil {
		p.metrics.ObserveStage(name, d)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Debug("stage failed", "stage", name, "error", err)
	}
	return err
}

func (p *Pipeline) record(rep *Report) {
	if p.metrics == nil {
		return
	}
	p.metrics.CountEdges(rep.EdgeStatuses())
	if rep.Solve != nil {
		p.metrics.UnresolvedTotal.Add(float64(len(rep.Solve.Unresolved)))
	}
	for _, issue := range rep.Issues {
		p.metrics.IssuesTotal.WithLabelValues(string(issue.Code)).Inc()
	}
}

func (p *Pipeline) tracer() trace.Tracer {
	tp := p.tp
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// StageTiming is how long one pipeline stage took.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// addIssues appends issues not already reported. Solve re-classifies the
// bound graph, so structural issues would otherwise be listed twice.
func (r *Report) addIssues(issues ...ir.Issue) {
	for _, i := range issues {
		if !slices.Contains(r.Issues, i) {
			r.Issues = append(r.Issues, i)
		}
	}
}
