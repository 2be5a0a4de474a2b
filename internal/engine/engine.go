package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
	"github.com/roach88/reqgraph/internal/querysql"
	"github.com/roach88/reqgraph/internal/store"
)

// Engine evaluates queries against a store.
//
// Thread-safety: Evaluate is safe for concurrent use. The store serializes
// access to its single connection.
type Engine struct {
	store    *store.Store
	compiler *querysql.SQLCompiler
	logger   *slog.Logger

	// seq stamps evaluations for log correlation.
	seq atomic.Int64
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over s. Query constants resolve through ns.
func New(s *store.Store, ns ir.Namespaces, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    s,
		compiler: querysql.NewSQLCompiler(ns),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvalOption configures a single evaluation.
type EvalOption func(*evalConfig)

type evalConfig struct {
	members map[string]bool
}

// RestrictTo drops result rows that name a stored individual outside
// members. Pass a knowledge graph's Members() to evaluate against one
// partition.
func RestrictTo(members []string) EvalOption {
	return func(c *evalConfig) {
		c.members = make(map[string]bool, len(members))
		for _, m := range members {
			c.members[m] = true
		}
	}
}

// Result is an evaluated query with bookkeeping for callers that report on
// it.
type Result struct {
	ir.ResultSet

	// Seq is the evaluation's logical clock value.
	Seq int64

	// Dropped counts rows removed by RestrictTo.
	Dropped int
}

// Evaluate runs q and returns its result set.
//
// Columns are q's variables in order of first appearance, projected
// variables first. A column whose variable is not projected, or not bound
// outside NOT EXISTS blocks, holds the variable's own name in every row.
// Rows keep the statement's deterministic order.
func (e *Engine) Evaluate(ctx context.Context, q *queryir.Query, opts ...EvalOption) (*Result, error) {
	seq := e.seq.Add(1)
	if q == nil {
		return nil, &EvalError{Code: ErrCodeUnsupported, Message: "nil query", Seq: seq}
	}

	var cfg evalConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := e.compiler.Compile(q)
	if err != nil {
		return nil, &EvalError{Code: ErrCodeCompile, Message: "compile query", Seq: seq, Err: err}
	}

	columns := q.Variables()
	source := projectionSources(q, st.Columns, columns)

	rows, err := e.store.Query(ctx, st.SQL, st.Params...)
	if err != nil {
		return nil, &EvalError{Code: ErrCodeExecute, Message: "execute query", Seq: seq, Err: err}
	}
	defer rows.Close()

	res := &Result{ResultSet: ir.NewResultSet(columns...), Seq: seq}
	scanned := make([]string, len(st.Columns))
	dest := make([]any, len(st.Columns))
	for i := range scanned {
		dest[i] = &scanned[i]
	}
	if len(dest) == 0 {
		// The statement selects a constant when nothing is bound.
		var one int
		dest = []any{&one}
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, &EvalError{Code: ErrCodeExecute, Message: "scan row", Seq: seq, Err: err}
		}
		row := make([]string, len(columns))
		for i, name := range columns {
			row[i] = name
			if src := source[i]; src >= 0 {
				row[i] = scanned[src]
			}
		}
		res.Append(row...)
	}
	if err := rows.Err(); err != nil {
		return nil, &EvalError{Code: ErrCodeExecute, Message: "iterate rows", Seq: seq, Err: err}
	}
	// Release the connection before restrict issues its own queries.
	rows.Close()

	if q.Distinct {
		res.ResultSet = distinct(res.ResultSet)
	}

	if cfg.members != nil {
		if err := e.restrict(ctx, res, cfg.members); err != nil {
			return nil, &EvalError{Code: ErrCodeExecute, Message: "restrict rows", Seq: seq, Err: err}
		}
	}

	e.logger.Debug("query evaluated",
		"seq", seq,
		"columns", len(columns),
		"rows", res.Len(),
		"dropped", res.Dropped)

	return res, nil
}

// projectionSources maps each result column to the statement column that
// feeds it, or -1 when the column keeps the variable's name.
func projectionSources(q *queryir.Query, bound, columns []string) []int {
	projected := make(map[string]bool, len(q.Projection))
	for _, v := range q.Projection {
		projected[v] = true
	}
	index := make(map[string]int, len(bound))
	for i, v := range bound {
		index[v] = i
	}

	out := make([]int, len(columns))
	for i, name := range columns {
		out[i] = -1
		if !q.Star && !projected[name] {
			continue
		}
		if src, ok := index[name]; ok {
			out[i] = src
		}
	}
	return out
}

// distinct keeps the first of each identical row. The statement is
// DISTINCT over every bound variable, so rows can still repeat once
// unprojected columns are replaced by names.
func distinct(rs ir.ResultSet) ir.ResultSet {
	seen := make(map[string]bool, rs.Len())
	return rs.Filter(func(row []string) bool {
		key := strings.Join(row, "\x00")
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// restrict drops rows with a stored individual outside members. Literal
// values and unbound variable names are never individuals and always pass.
func (e *Engine) restrict(ctx context.Context, res *Result, members map[string]bool) error {
	individual := make(map[string]bool)
	for _, row := range res.Rows {
		for _, cell := range row {
			if members[cell] {
				continue
			}
			if _, seen := individual[cell]; seen {
				continue
			}
			ok, err := e.store.HasIndividual(ctx, cell)
			if err != nil {
				return fmt.Errorf("check %s: %w", cell, err)
			}
			individual[cell] = ok
		}
	}

	before := res.Len()
	res.ResultSet = res.Filter(func(row []string) bool {
		for _, cell := range row {
			if !members[cell] && individual[cell] {
				return false
			}
		}
		return true
	})
	res.Dropped = before - res.Len()
	return nil
}
