package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/ontology"
)

// LoadStats counts the rows written by Load.
type LoadStats struct {
	Individuals int `json:"individuals"`
	Closure     int `json:"closure"`
	Assertions  int `json:"assertions"`
	DataValues  int `json:"data_values"`
}

// Load replaces the store's contents with everything r asserts. It runs in
// one transaction: on error the previous contents are kept.
//
// seq follows the reasoner's declaration order, so reads are reproducible
// across loads of the same ontology.
func (s *Store) Load(ctx context.Context, r ontology.Reasoner) (LoadStats, error) {
	var stats LoadStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("load: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"data_values", "assertions", "individuals", "class_closure", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return stats, fmt.Errorf("load: clear %s: %w", table, err)
		}
	}

	if named, ok := r.(interface{ Name() string }); ok {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('ontology', ?)`, named.Name()); err != nil {
			return stats, fmt.Errorf("load: meta: %w", err)
		}
	}

	if stats.Closure, err = loadClosure(ctx, tx, r); err != nil {
		return stats, err
	}

	individuals := r.Individuals()
	for seq, name := range individuals {
		class, err := r.ClassOf(name)
		if err != nil {
			return stats, fmt.Errorf("load: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO individuals (name, class, seq) VALUES (?, ?, ?)`,
			name, class, seq); err != nil {
			return stats, fmt.Errorf("load: individual %s: %w", name, err)
		}
		stats.Individuals++
	}

	seq := 0
	for _, name := range individuals {
		facts, err := r.Facts(name)
		if err != nil {
			return stats, fmt.Errorf("load: %w", err)
		}
		for _, f := range facts {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO assertions (subject, predicate, object, seq)
				VALUES (?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`, name, f.Property, f.Object, seq)
			if err != nil {
				return stats, fmt.Errorf("load: assertion %s %s %s: %w", name, f.Property, f.Object, err)
			}
			seq++
			stats.Assertions += affected(res)
		}

		data, err := r.Data(name)
		if err != nil {
			return stats, fmt.Errorf("load: %w", err)
		}
		for _, prop := range data.SortedKeys() {
			for _, lexical := range lexicalForms(data[prop]) {
				res, err := tx.ExecContext(ctx, `
					INSERT INTO data_values (subject, predicate, value, seq)
					VALUES (?, ?, ?, ?)
					ON CONFLICT DO NOTHING
				`, name, prop, lexical, seq)
				if err != nil {
					return stats, fmt.Errorf("load: data %s %s: %w", name, prop, err)
				}
				seq++
				stats.DataValues += affected(res)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("load: commit: %w", err)
	}
	return stats, nil
}

func loadClosure(ctx context.Context, tx *sql.Tx, r ontology.Reasoner) (int, error) {
	n := 0
	for _, class := range r.Classes() {
		ancestors, err := r.Ancestors(class)
		if err != nil {
			return n, fmt.Errorf("load: %w", err)
		}
		for _, a := range ancestors {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO class_closure (class, ancestor) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, class, a)
			if err != nil {
				return n, fmt.Errorf("load: closure %s < %s: %w", class, a, err)
			}
			n += affected(res)
		}
	}
	return n, nil
}

// lexicalForms flattens a data value into the strings a query literal is
// compared against.
func lexicalForms(v ir.IRValue) []string {
	if arr, ok := v.(ir.IRArray); ok {
		var out []string
		for _, elem := range arr {
			out = append(out, lexicalForms(elem)...)
		}
		return out
	}
	return []string{ir.String(v)}
}

func affected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
