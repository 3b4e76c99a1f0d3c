package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a database from version-1 to version. Migrations run
// after schema.sql, so they only add what older files lack.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations are applied in order to databases whose user_version is below
// their version.
var migrations = []migration{
	{
		version: 1,
		name:    "comment thread index",
		stmt:    "CREATE INDEX IF NOT EXISTS idx_wlc_post_thread ON wikilog_comments(wlc_post, wlc_thread)",
	},
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = migrations[len(migrations)-1].version

// sqlitePragmas are set on every connection Open returns. WAL lets the CLI
// read while a loader writes.
var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store holds wikilog pages, items and comments in SQLite and executes
// query descriptors against them.
type Store struct {
	db *sql.DB
}

// Open opens or creates the wikilog database at path and brings its schema
// up to date. ":memory:" gives a private in-memory database. Opening an
// existing database again is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open wikilog database: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database is private to its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("store opened", "path", path, "schema_version", currentSchemaVersion)
	return &Store{db: db}, nil
}

// prepare checks the connection, sets pragmas and migrates the schema.
func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to wikilog database: %w", err)
	}
	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create wikilog tables: %w", err)
	}
	return migrate(db)
}

// migrate applies the migrations newer than the database's user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		slog.Debug("store migrated", "version", m.version, "migration", m.name)
		version = m.version
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// Close closes the database. A zero Store closes without error.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query runs a raw read against the wikilog tables. Callers close the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
