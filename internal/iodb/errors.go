package iodb

import (
	"fmt"
	"strings"

	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/gnames/gn"
)

// UnknownEngineError creates an error for an unrecognized engine name.
func UnknownEngineError(engine string) error {
	msg := `Unknown database engine <em>%s</em>

Valid engines are:
  * mysql
  * postgres
  * sqlite`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{engine},
		Err:  fmt.Errorf("unknown engine %q", engine),
	}
}

// BadIdentifierError creates an error for a schema or table name that
// cannot be safely interpolated into SQL.
func BadIdentifierError(kind, name string) error {
	msg := `Invalid %s <em>%s</em>

Names must start with a letter or underscore and contain only
letters, digits and underscores.`

	return &gn.Error{
		Code: errcode.DBBadIdentifierError,
		Msg:  msg,
		Vars: []any{kind, name},
		Err:  fmt.Errorf("invalid %s %q", kind, name),
	}
}

// ConnectionError creates a connection error with a user-friendly message.
func ConnectionError(engine, target string, err error) error {
	msg := `Cannot connect to the %s database <em>%s</em>

<em>Possible causes:</em>
  - The server is not running
  - Connection settings are incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Verify the server is reachable
  2. Review --host, --port, --user and --password
  3. Check your configuration file:
     <em>~/.config/comparasub/config.yaml</em>`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{engine, target},
		Err:  fmt.Errorf("cannot connect to %s %s: %w", engine, target, err),
	}
}

// NotConnectedError creates an error for when a database operation is
// attempted without a connection.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryError creates an error for a failed catalog or data query.
func QueryError(op string, err error) error {
	msg := "Query failed during %s"

	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: []any{op},
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}

// ExecError creates an error for a failed SQL statement.
func ExecError(op string, err error) error {
	msg := "Statement failed during %s"

	return &gn.Error{
		Code: errcode.DBExecError,
		Msg:  msg,
		Vars: []any{op},
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}

// AttachError creates an error for a failed source database attachment.
func AttachError(path string, err error) error {
	msg := `Cannot attach source database <em>%s</em>

<em>How to fix:</em>
  1. Check the source file exists and is readable
  2. Check the file is an SQLite database`

	return &gn.Error{
		Code: errcode.DBAttachError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot attach %s: %w", path, err),
	}
}

// DropDestinationError creates an error for a failed destination drop.
func DropDestinationError(name string, err error) error {
	msg := "Cannot drop destination <em>%s</em>"

	return &gn.Error{
		Code: errcode.CloneDropError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("cannot drop destination %s: %w", name, err),
	}
}

// CreateDestinationError creates an error for a failed destination
// creation.
func CreateDestinationError(name string, err error) error {
	msg := "Cannot create destination <em>%s</em>"

	return &gn.Error{
		Code: errcode.CloneCreateError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("cannot create destination %s: %w", name, err),
	}
}

// StructureDDLError creates an error for a failed DDL replay during the
// structural copy.
func StructureDDLError(table string, err error) error {
	msg := "Cannot recreate the structure of table <em>%s</em>"

	return &gn.Error{
		Code: errcode.CloneStructureError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("cannot recreate structure of %s: %w", table, err),
	}
}

// StructureError is returned when a structural-copy subprocess exits
// with a nonzero status. Tool names the failing side of the pipeline
// and Status carries its decoded exit status, which becomes the
// process exit code.
type StructureError struct {
	Tool   string
	Status int
	Stderr string
	Err    error
}

func (e *StructureError) Error() string {
	s := fmt.Sprintf("%s exited with status %d", e.Tool, e.Status)
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		s += ": " + tail
	}
	return s
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
