package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store holds a loaded ontology as triples.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db   *sql.DB
	path string
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	busyTimeout time.Duration
}

// WithBusyTimeout sets how long a connection waits on a locked database.
// Defaults to five seconds.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *openConfig) { c.busyTimeout = d }
}

// pragma is a connection setting and the value PRAGMA reports back.
type pragma struct {
	name  string
	value string
	want  string
}

func pragmas(c openConfig) []pragma {
	ms := fmt.Sprint(c.busyTimeout.Milliseconds())
	return []pragma{
		{"journal_mode", "WAL", "wal"},
		{"synchronous", "NORMAL", "1"},
		{"busy_timeout", ms, ms},
		{"foreign_keys", "ON", "1"},
	}
}

// migration upgrades the schema to version. Migrations run in order inside
// one transaction each; PRAGMA user_version records the last one applied.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	// NOT EXISTS sub-selects look up assertions from the object side.
	{1, `CREATE INDEX IF NOT EXISTS idx_assertions_predicate_object ON assertions(predicate, object)`},
}

// currentSchemaVersion is the user_version of a fully migrated store.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Open creates or opens a SQLite database at the given path, applying
// pragmas, the schema and any pending migrations. Opening an existing
// store is safe and leaves its contents in place.
//
// Pool size is one connection: SQLite has a single writer, and a shared
// memory database lives only as long as its last connection.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := openConfig{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db, cfg); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// OpenMemory opens a private in-memory store. Each call gets its own
// database.
func OpenMemory(opts ...Option) (*Store, error) {
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), opts...)
}

func setup(db *sql.DB, cfg openConfig) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	for _, p := range pragmas(cfg) {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate applies every migration newer than the stored user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the DSN the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query runs a read query for the engine. Callers close the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// verifyPragma checks that a pragma reports the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
