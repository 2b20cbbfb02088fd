package iosubset

import (
	"fmt"

	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/gnames/gn"
)

// RegionsError creates an error for an unreadable or invalid
// seed-region file.
func RegionsError(path string, err error) error {
	msg := `Cannot load seed regions from <em>%s</em>

The file must be a JSON array of {"name", "start", "end"} records or
the legacy bracketed-list format, with 1-based inclusive coordinates
and start <= end.`

	return &gn.Error{
		Code: errcode.SubsetRegionsError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot load seed regions %s: %w", path, err),
	}
}

// RefGenomeError creates an error for a reference genome id absent
// from the source.
func RefGenomeError(id int64) error {
	msg := `Reference genome <em>%d</em> is not in the source genome_db table

<em>How to fix:</em>
  1. List the source's genomes: SELECT genome_db_id, name FROM genome_db
  2. Pass the right id with --ref-genome-db`

	return &gn.Error{
		Code: errcode.SubsetRefGenomeError,
		Msg:  msg,
		Vars: []any{id},
		Err:  fmt.Errorf("reference genome %d not in source", id),
	}
}

// LookupError creates an error for a failed source lookup query.
func LookupError(what string, err error) error {
	msg := "Cannot resolve %s in the source"

	return &gn.Error{
		Code: errcode.SubsetStepError,
		Msg:  msg,
		Vars: []any{what},
		Err:  fmt.Errorf("cannot resolve %s: %w", what, err),
	}
}

// MetaError creates an error for a failed source meta query.
func MetaError(key string, err error) error {
	msg := "Cannot read meta key <em>%s</em> from the source"

	return &gn.Error{
		Code: errcode.SubsetMetaError,
		Msg:  msg,
		Vars: []any{key},
		Err:  fmt.Errorf("cannot read meta %s: %w", key, err),
	}
}

// CopyError creates an error for a failed row-copy statement.
func CopyError(table string, err error) error {
	msg := "Cannot copy rows into <em>%s</em>"

	return &gn.Error{
		Code: errcode.SubsetStepError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("cannot copy rows into %s: %w", table, err),
	}
}

// ExecError creates an error for a failed non-copy statement.
func ExecError(op string, err error) error {
	msg := "Statement failed during %s"

	return &gn.Error{
		Code: errcode.SubsetStepError,
		Msg:  msg,
		Vars: []any{op},
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}

// TxError creates an error for a failed transaction operation.
func TxError(op string, err error) error {
	msg := `Population transaction failed at %s

The destination keeps only the empty cloned structure; fix the cause
and re-run.`

	return &gn.Error{
		Code: errcode.DBTxError,
		Msg:  msg,
		Vars: []any{op},
		Err:  fmt.Errorf("transaction %s: %w", op, err),
	}
}

// EmitError creates an error for a failed seed-region file write.
func EmitError(path string, err error) error {
	msg := "Cannot write seed-region file <em>%s</em>"

	return &gn.Error{
		Code: errcode.SubsetEmitError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot write seed-region file %s: %w", path, err),
	}
}
