package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store holds the ask log and rebuild history in one SQLite file.
type Store struct {
	db   *sqlx.DB
	path string
}

// NewStore opens (or creates) the database at path and applies pending migrations.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AskLogStore returns an AskLogStore backed by this store.
func (s *Store) AskLogStore() driven.AskLogStore {
	return &askLogStore{store: s}
}

// RebuildLogStore returns a RebuildLogStore backed by this store.
func (s *Store) RebuildLogStore() driven.RebuildLogStore {
	return &rebuildLogStore{store: s}
}

// migration is one numbered *.up.sql script.
type migration struct {
	version int
	name    string
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}
	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.apply(ctx, fsys, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}

// pendingMigrations lists up scripts above current, oldest first.
// Files without a numeric prefix are ignored.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	var out []migration
	for _, name := range names {
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.Atoi(prefix)
		if err != nil || v <= current {
			continue
		}
		out = append(out, migration{version: v, name: name})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

func (s *Store) apply(ctx context.Context, fsys fs.FS, m migration) error {
	script, err := fs.ReadFile(fsys, m.name)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// schemaVersion returns the highest applied migration.
func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	return v, err
}

// marshalJSON encodes v, storing nil slices and maps as SQL NULL text.
func marshalJSON(v any) (*string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	str := string(b)
	if str == jsonNull {
		return nil, nil
	}
	return &str, nil
}
