// Package iodb implements the engine-specific database operators.
// This is an impure I/O package that implements contracts defined in
// pkg/db.
//
// Three engines provide a single handle that sees both the source and
// the destination schema:
//
//   - mysql: two databases on one server, addressed as db.table
//   - postgres: two schemas within one database, addressed as schema.table
//   - sqlite: destination file opened as main, source file ATTACHed as src
//
// Schema and table names cannot travel as bind parameters, so they are
// validated against identRx before interpolation. Row values always bind.
package iodb

import (
	"regexp"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
)

var identRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewOperator returns the operator for the configured engine.
func NewOperator(engine string) (db.Operator, error) {
	switch engine {
	case config.EngineMySQL:
		return NewMySQLOperator(), nil
	case config.EnginePostgres:
		return NewPgxOperator(), nil
	case config.EngineSQLite:
		return NewSQLiteOperator(), nil
	default:
		return nil, UnknownEngineError(engine)
	}
}

// checkIdent rejects names that cannot be safely interpolated into SQL.
func checkIdent(kind, name string) error {
	if !identRx.MatchString(name) {
		return BadIdentifierError(kind, name)
	}
	return nil
}
