package ioverify

import (
	"errors"
	"fmt"

	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
)

// EdgeError creates an error for a foreign-key edge whose check query
// failed. A count that cannot run usually means the destination misses
// a table or column of the subset schema.
func EdgeError(edge compara.FKEdge, err error) error {
	msg := `Cannot check foreign-key edge <em>%s</em>

The destination may not be a subset schema, or its structure may be
incomplete. Re-create it with the subset command and verify again.`

	return &gn.Error{
		Code: errcode.VerifyEdgeError,
		Msg:  msg,
		Vars: []any{edge.String()},
		Err:  fmt.Errorf("cannot check edge %s: %w", edge, err),
	}
}

// NotClosedError creates an error for a destination that carries
// dangling references. The per-edge counts precede it on the output.
func NotClosedError(total int64) error {
	msg := "Destination is not referentially closed: " +
		"<em>%s</em> dangling references"

	return &gn.Error{
		Code: errcode.VerifyClosureError,
		Msg:  msg,
		Vars: []any{humanize.Comma(total)},
		Err:  errors.New("closure check found dangling references"),
	}
}
