package iodb

import (
	"context"
	"database/sql"
	"os"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// sqliteOperator implements db.Operator with the destination file opened
// as the main database and the source file ATTACHed under the alias src.
type sqliteOperator struct {
	db          *sqlx.DB
	src         string
	dst         string
	destExisted bool
}

// NewSQLiteOperator creates a new SQLite operator (without connecting).
func NewSQLiteOperator() db.Operator {
	return &sqliteOperator{}
}

// Connect opens the destination file and attaches the source. ATTACH is
// per-connection state, so the pool is pinned to one connection whenever
// a source is present.
func (s *sqliteOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
	source, destination string,
	maxConns int,
) error {
	// Record existence before the open; opening creates the file.
	if _, err := os.Stat(destination); err == nil {
		s.destExisted = true
	}

	if source != "" {
		// ATTACH silently creates a missing file, masking path typos.
		if _, err := os.Stat(source); err != nil {
			return AttachError(source, err)
		}
	}

	sqldb, err := sql.Open("sqlite", destination)
	if err != nil {
		return ConnectionError("sqlite", destination, err)
	}

	if maxConns < 1 || source != "" {
		maxConns = 1
	}
	sqldb.SetMaxOpenConns(maxConns)
	sqldb.SetMaxIdleConns(maxConns)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return ConnectionError("sqlite", destination, err)
	}

	if source != "" {
		q := "ATTACH DATABASE ? AS src"
		if _, err := sqldb.ExecContext(ctx, q, source); err != nil {
			sqldb.Close()
			return AttachError(source, err)
		}
	}

	s.db = sqlx.NewDb(sqldb, "sqlite")
	s.src = source
	s.dst = destination
	return nil
}

// Close releases the database handle.
func (s *sqliteOperator) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the sqlx handle.
func (s *sqliteOperator) DB() *sqlx.DB {
	return s.db
}

// SourceTable qualifies a table with the attached source alias.
func (s *sqliteOperator) SourceTable(table string) string {
	return "src." + table
}

// DestTable returns the table as-is; the destination is the main
// database.
func (s *sqliteOperator) DestTable(table string) string {
	return table
}

// InsertIgnore renders a duplicate-ignoring INSERT ... SELECT.
func (s *sqliteOperator) InsertIgnore(table, selectBody string) string {
	return "INSERT OR IGNORE INTO " + table + " " + selectBody
}

// Insert renders a plain INSERT ... SELECT.
func (s *sqliteOperator) Insert(table, selectBody string) string {
	return "INSERT INTO " + table + " " + selectBody
}

// DestinationExists reports whether the destination file was already on
// disk before Connect opened it.
func (s *sqliteOperator) DestinationExists(ctx context.Context) (bool, error) {
	if s.db == nil {
		return false, NotConnectedError()
	}
	return s.destExisted, nil
}

// DropDestination empties the destination by dropping every table in
// the main database. Indexes go with their tables.
func (s *sqliteOperator) DropDestination(ctx context.Context) error {
	if s.db == nil {
		return NotConnectedError()
	}

	var tables []string
	q := "SELECT name FROM sqlite_master " +
		"WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	if err := s.db.SelectContext(ctx, &tables, q); err != nil {
		return QueryError("destination table discovery", err)
	}

	for _, table := range tables {
		if err := checkIdent("table name", table); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, "DROP TABLE "+table); err != nil {
			return DropDestinationError(table, err)
		}
	}
	return nil
}

// CreateDestination is satisfied by the open; the main database is the
// destination.
func (s *sqliteOperator) CreateDestination(ctx context.Context) error {
	if s.db == nil {
		return NotConnectedError()
	}
	return nil
}

// CopyStructure replays the CREATE TABLE and CREATE INDEX statements
// recorded in the source's sqlite_master into the main database.
func (s *sqliteOperator) CopyStructure(ctx context.Context) error {
	if s.db == nil {
		return NotConnectedError()
	}

	type entry struct {
		Name string `db:"name"`
		SQL  string `db:"sql"`
	}

	var tables []entry
	q := "SELECT name, sql FROM src.sqlite_master " +
		"WHERE type = 'table' AND name NOT LIKE 'sqlite_%' " +
		"AND sql IS NOT NULL ORDER BY rowid"
	if err := s.db.SelectContext(ctx, &tables, q); err != nil {
		return QueryError("source structure discovery", err)
	}

	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, t.SQL); err != nil {
			return StructureDDLError(t.Name, err)
		}
	}

	var indexes []entry
	q = "SELECT name, sql FROM src.sqlite_master " +
		"WHERE type = 'index' AND sql IS NOT NULL ORDER BY rowid"
	if err := s.db.SelectContext(ctx, &indexes, q); err != nil {
		return QueryError("source index discovery", err)
	}

	for _, idx := range indexes {
		if _, err := s.db.ExecContext(ctx, idx.SQL); err != nil {
			return StructureDDLError(idx.Name, err)
		}
	}
	return nil
}
