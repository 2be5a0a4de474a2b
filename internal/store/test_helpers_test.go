package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/reqgraph/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadWidgets creates a store holding the widget fixture ontology.
func loadWidgets(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if _, err := s.Load(context.Background(), testutil.WidgetOntology(t)); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}
