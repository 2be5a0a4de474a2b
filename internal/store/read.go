package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// OntologyName returns the name recorded by the last Load, or "" if the
// reasoner carried none.
func (s *Store) OntologyName(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'ontology'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query ontology name: %w", err)
	}
	return name, nil
}

// Individuals returns every individual in declaration order.
//
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Individuals(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "individuals", `
		SELECT name FROM individuals
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
}

// HasIndividual reports whether name is a stored individual.
func (s *Store) HasIndividual(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM individuals WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query individual: %w", err)
	}
	return n > 0, nil
}

// Stats counts the rows currently stored.
func (s *Store) Stats(ctx context.Context) (LoadStats, error) {
	var st LoadStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM individuals),
			(SELECT COUNT(*) FROM class_closure),
			(SELECT COUNT(*) FROM assertions),
			(SELECT COUNT(*) FROM data_values)
	`).Scan(&st.Individuals, &st.Closure, &st.Assertions, &st.DataValues)
	if err != nil {
		return st, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

func (s *Store) strings(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
