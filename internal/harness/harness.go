package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/diagnose"
	"github.com/roach88/reqgraph/internal/ontology"
	"github.com/roach88/reqgraph/internal/store"
	"github.com/roach88/reqgraph/internal/testutil"
)

// Run executes a scenario and checks its expectations.
//
// Each scenario runs against a fresh in-memory store with a step clock and
// a fixed run identifier, so reports are reproducible. An error is
// returned when the scenario cannot run at all (unloadable ontology,
// unparsable query); failed expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	loaded, err := compiler.LoadOntologyDir(scenario.Ontology)
	if err != nil {
		return nil, err
	}
	onto, err := ontology.New(loaded.Spec)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	order := 1
	if scenario.OrderExisting != nil {
		order = *scenario.OrderExisting
	}
	p, err := diagnose.New(ctx, onto, st,
		diagnose.WithOrderExisting(order),
		diagnose.WithExcludeRelations(scenario.ExcludeRelations...),
		diagnose.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		diagnose.WithClock(testutil.NewStepClock(0)),
		diagnose.WithRunIDGenerator(testutil.NewFixedRunID(scenario.RunID)),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	rep, err := p.Check(ctx, diagnose.Request{
		Requirement: scenario.Query,
		Violation:   scenario.Violation,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Report = rep
	for _, failure := range Check(scenario.Expect, rep) {
		result.AddError(failure.Error())
	}
	return result, nil
}

// RunAll executes scenarios concurrently, at most limit at a time (no
// limit when limit <= 0). Results are returned in input order. The first
// scenario that cannot run cancels the rest.
func RunAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := Run(ctx, sc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
