package iodb

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlOperator implements db.Operator with the source and destination
// as two databases on one MySQL server.
type mysqlOperator struct {
	db  *sqlx.DB
	cfg *config.DatabaseConfig
	src string
	dst string
}

// NewMySQLOperator creates a new MySQL operator (without connecting).
func NewMySQLOperator() db.Operator {
	return &mysqlOperator{}
}

// Connect opens a server-level session with no default database; every
// statement addresses tables as database.table.
func (m *mysqlOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
	source, destination string,
	maxConns int,
) error {
	if source != "" {
		if err := checkIdent("source database name", source); err != nil {
			return err
		}
	}
	if err := checkIdent("destination database name", destination); err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User, cfg.Password, cfg.Host, cfg.EffectivePort())

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return ConnectionError("mysql", cfg.Host, err)
	}

	if maxConns < 1 {
		maxConns = 1
	}
	sqldb.SetMaxOpenConns(maxConns)
	sqldb.SetMaxIdleConns(maxConns)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return ConnectionError("mysql", cfg.Host, err)
	}

	m.db = sqlx.NewDb(sqldb, "mysql")
	m.cfg = cfg
	m.src = source
	m.dst = destination
	return nil
}

// Close releases the database handle.
func (m *mysqlOperator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// DB returns the sqlx handle.
func (m *mysqlOperator) DB() *sqlx.DB {
	return m.db
}

// SourceTable qualifies a table with the source database.
func (m *mysqlOperator) SourceTable(table string) string {
	return m.src + "." + table
}

// DestTable qualifies a table with the destination database.
func (m *mysqlOperator) DestTable(table string) string {
	return m.dst + "." + table
}

// InsertIgnore renders a duplicate-ignoring INSERT ... SELECT.
func (m *mysqlOperator) InsertIgnore(table, selectBody string) string {
	return "INSERT IGNORE INTO " + m.DestTable(table) + " " + selectBody
}

// Insert renders a plain INSERT ... SELECT.
func (m *mysqlOperator) Insert(table, selectBody string) string {
	return "INSERT INTO " + m.DestTable(table) + " " + selectBody
}

// DestinationExists checks information_schema for the destination
// database.
func (m *mysqlOperator) DestinationExists(ctx context.Context) (bool, error) {
	if m.db == nil {
		return false, NotConnectedError()
	}

	var n int
	q := "SELECT COUNT(*) FROM information_schema.SCHEMATA " +
		"WHERE SCHEMA_NAME = ?"
	if err := m.db.GetContext(ctx, &n, q, m.dst); err != nil {
		return false, QueryError("destination existence check", err)
	}
	return n > 0, nil
}

// DropDestination drops the destination database.
func (m *mysqlOperator) DropDestination(ctx context.Context) error {
	if m.db == nil {
		return NotConnectedError()
	}

	q := "DROP DATABASE IF EXISTS " + m.dst
	if _, err := m.db.ExecContext(ctx, q); err != nil {
		return DropDestinationError(m.dst, err)
	}
	return nil
}

// CreateDestination creates an empty destination database.
func (m *mysqlOperator) CreateDestination(ctx context.Context) error {
	if m.db == nil {
		return NotConnectedError()
	}

	q := "CREATE DATABASE " + m.dst
	if _, err := m.db.ExecContext(ctx, q); err != nil {
		return CreateDestinationError(m.dst, err)
	}
	return nil
}

// CopyStructure pipes mysqldump --no-data of the source into a mysql
// client loading the destination. A nonzero exit status on either side
// is fatal; the decoded status propagates to the caller inside a
// StructureError.
func (m *mysqlOperator) CopyStructure(ctx context.Context) error {
	if m.cfg == nil {
		return NotConnectedError()
	}

	port := strconv.Itoa(m.cfg.EffectivePort())
	dump := exec.CommandContext(ctx, "mysqldump",
		"--no-data",
		"--host", m.cfg.Host,
		"--port", port,
		"--user", m.cfg.User,
		m.src,
	)
	load := exec.CommandContext(ctx, "mysql",
		"--host", m.cfg.Host,
		"--port", port,
		"--user", m.cfg.User,
		m.dst,
	)

	// The password travels through the environment, not argv.
	env := append(os.Environ(), "MYSQL_PWD="+m.cfg.Password)
	dump.Env = env
	load.Env = env

	pipe, err := dump.StdoutPipe()
	if err != nil {
		return ExecError("structural copy setup", err)
	}
	load.Stdin = pipe

	var dumpStderr, loadStderr bytes.Buffer
	dump.Stderr = &dumpStderr
	load.Stderr = &loadStderr

	if err := load.Start(); err != nil {
		return ExecError("starting mysql", err)
	}
	if err := dump.Start(); err != nil {
		load.Process.Kill()
		load.Wait()
		return ExecError("starting mysqldump", err)
	}

	dumpErr := dump.Wait()
	loadErr := load.Wait()

	if dumpErr != nil {
		return &StructureError{
			Tool:   "mysqldump",
			Status: exitStatus(dumpErr),
			Stderr: dumpStderr.String(),
			Err:    dumpErr,
		}
	}
	if loadErr != nil {
		return &StructureError{
			Tool:   "mysql",
			Status: exitStatus(loadErr),
			Stderr: loadStderr.String(),
			Err:    loadErr,
		}
	}
	return nil
}

// exitStatus decodes the subprocess exit status; 1 when the process
// never reached an exit (start or signal failures).
func exitStatus(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		return ee.ExitCode()
	}
	return 1
}
