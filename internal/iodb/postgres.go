package iodb

import (
	"context"
	"fmt"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// pgxOperator implements db.Operator with the source and destination as
// two schemas within one PostgreSQL database, using pgxpool bridged to
// database/sql.
type pgxOperator struct {
	pool *pgxpool.Pool
	db   *sqlx.DB
	cfg  *config.DatabaseConfig
	src  string
	dst  string
}

// NewPgxOperator creates a new PostgreSQL operator (without connecting).
func NewPgxOperator() db.Operator {
	return &pgxOperator{}
}

// Connect establishes a connection pool to the schema-hosting database.
func (p *pgxOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
	source, destination string,
	maxConns int,
) error {
	if source != "" {
		if err := checkIdent("source schema name", source); err != nil {
			return err
		}
	}
	if err := checkIdent("destination schema name", destination); err != nil {
		return err
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.EffectivePort(),
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError("postgres", cfg.Host, err)
	}

	if maxConns < 1 {
		maxConns = 1
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 0
	poolConfig.MaxConnIdleTime = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError("postgres", cfg.Host, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError("postgres", cfg.Host, err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)
	// database/sql must not outgrow the pgx pool.
	sqldb.SetMaxOpenConns(maxConns)
	sqldb.SetMaxIdleConns(maxConns)

	p.pool = pool
	p.db = sqlx.NewDb(sqldb, "pgx")
	p.cfg = cfg
	p.src = source
	p.dst = destination
	return nil
}

// Close releases the database handle and the underlying pool.
func (p *pgxOperator) Close() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	return err
}

// DB returns the sqlx handle.
func (p *pgxOperator) DB() *sqlx.DB {
	return p.db
}

// SourceTable qualifies a table with the source schema.
func (p *pgxOperator) SourceTable(table string) string {
	return p.src + "." + table
}

// DestTable qualifies a table with the destination schema.
func (p *pgxOperator) DestTable(table string) string {
	return p.dst + "." + table
}

// InsertIgnore renders a duplicate-ignoring INSERT ... SELECT.
func (p *pgxOperator) InsertIgnore(table, selectBody string) string {
	return "INSERT INTO " + p.DestTable(table) + " " + selectBody +
		" ON CONFLICT DO NOTHING"
}

// Insert renders a plain INSERT ... SELECT.
func (p *pgxOperator) Insert(table, selectBody string) string {
	return "INSERT INTO " + p.DestTable(table) + " " + selectBody
}

// DestinationExists checks information_schema for the destination
// schema.
func (p *pgxOperator) DestinationExists(ctx context.Context) (bool, error) {
	if p.db == nil {
		return false, NotConnectedError()
	}

	var exists bool
	q := p.db.Rebind(
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata " +
			"WHERE schema_name = ?)")
	if err := p.db.GetContext(ctx, &exists, q, p.dst); err != nil {
		return false, QueryError("destination existence check", err)
	}
	return exists, nil
}

// DropDestination drops the destination schema with everything in it.
func (p *pgxOperator) DropDestination(ctx context.Context) error {
	if p.db == nil {
		return NotConnectedError()
	}

	q := "DROP SCHEMA IF EXISTS " + p.dst + " CASCADE"
	if _, err := p.db.ExecContext(ctx, q); err != nil {
		return DropDestinationError(p.dst, err)
	}
	return nil
}

// CreateDestination creates an empty destination schema.
func (p *pgxOperator) CreateDestination(ctx context.Context) error {
	if p.db == nil {
		return NotConnectedError()
	}

	q := "CREATE SCHEMA " + p.dst
	if _, err := p.db.ExecContext(ctx, q); err != nil {
		return CreateDestinationError(p.dst, err)
	}
	return nil
}

// CopyStructure recreates every source table in the destination schema
// with CREATE TABLE ... (LIKE ... INCLUDING ALL). LIKE copies columns,
// defaults, not-null and check constraints and indexes; it never copies
// foreign keys, so population order stays unconstrained.
func (p *pgxOperator) CopyStructure(ctx context.Context) error {
	if p.db == nil {
		return NotConnectedError()
	}

	var tables []string
	q := p.db.Rebind(
		"SELECT table_name FROM information_schema.tables " +
			"WHERE table_schema = ? AND table_type = 'BASE TABLE' " +
			"ORDER BY table_name")
	if err := p.db.SelectContext(ctx, &tables, q, p.src); err != nil {
		return QueryError("source table discovery", err)
	}

	for _, table := range tables {
		if err := checkIdent("table name", table); err != nil {
			return err
		}
		ddl := fmt.Sprintf(
			"CREATE TABLE %s (LIKE %s INCLUDING ALL)",
			p.DestTable(table), p.SourceTable(table))
		if _, err := p.db.ExecContext(ctx, ddl); err != nil {
			return StructureDDLError(table, err)
		}
	}
	return nil
}
