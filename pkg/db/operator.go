package db

import (
	"context"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/jmoiron/sqlx"
)

// Operator defines the interface for engine-specific database access.
// It provides connection lifecycle management, cross-schema name
// qualification, and the structural-clone primitives; the subset and
// verify components compose their SQL on top of it.
//
// Design rationale:
//   - One connection sees both source and destination, so every copy is a
//     single INSERT ... SELECT on the server; no rows travel through the
//     client
//   - SQL text differs per engine only in name qualification and the
//     duplicate-ignoring insert form, so those are the only SQL-shaping
//     methods here
//   - DB() exposes sqlx for transactions, Rebind and scanning; components
//     never see driver-specific types
type Operator interface {
	// Connect opens the engine with both the source and the destination
	// schema addressable from one handle. source may be empty for
	// destination-only sessions (verify). maxConns bounds the pool; the
	// subset pipeline runs with 1.
	Connect(ctx context.Context, cfg *config.DatabaseConfig,
		source, destination string, maxConns int) error

	// Close releases the database handle.
	Close() error

	// DB returns the sqlx handle for queries, transactions and Rebind.
	DB() *sqlx.DB

	// SourceTable qualifies a table name so it resolves inside the
	// source schema.
	SourceTable(table string) string

	// DestTable qualifies a table name so it resolves inside the
	// destination schema.
	DestTable(table string) string

	// InsertIgnore renders the engine's duplicate-ignoring
	// INSERT ... SELECT into a destination table around selectBody.
	InsertIgnore(table, selectBody string) string

	// Insert renders a plain INSERT ... SELECT into a destination table.
	// Duplicates surface as errors.
	Insert(table, selectBody string) string

	// DestinationExists reports whether the destination schema already
	// holds data that a new run would destroy.
	DestinationExists(ctx context.Context) (bool, error)

	// DropDestination removes the destination schema and everything in it.
	DropDestination(ctx context.Context) error

	// CreateDestination creates an empty destination schema.
	CreateDestination(ctx context.Context) error

	// CopyStructure replays the source's structural DDL (tables, keys,
	// indexes; no rows) into the destination.
	CopyStructure(ctx context.Context) error
}
