// Package compara holds the domain model shared by the subset pipeline:
// the list of tables a Compara-style comparative-genomics schema
// contributes to a test subset, the foreign-key graph between them, and
// the interfaces the I/O layers implement. Implementations live under
// internal/ and are wired together by the CLI.
package compara

import (
	"context"
	"errors"
	"time"
)

// ErrAborted is returned when the operator declines a confirmation
// prompt. Callers treat it as a clean exit, not a failure.
var ErrAborted = errors.New("aborted by operator")

// SchemaCloner creates an empty destination schema whose table structure
// mirrors the source. Structure only, no row data. A destination that
// already exists is replaced only after operator confirmation.
type SchemaCloner interface {
	// Clone builds the empty destination structure. It returns
	// ErrAborted when the operator declines the destructive-replace
	// prompt; no writes happen in that case.
	Clone(ctx context.Context) error
}

// SubsetBuilder populates a cloned destination with a referentially
// consistent subset of the source, selected by seed-region windows on
// the reference genome, and emits seed-region files for the companion
// genomes.
type SubsetBuilder interface {
	Build(ctx context.Context) (*Summary, error)
}

// ClosureVerifier walks every foreign-key edge of the subset schema in
// a destination and reports dangling references.
type ClosureVerifier interface {
	Verify(ctx context.Context) (*Report, error)
}

// Summary describes a finished subset build.
type Summary struct {
	// RunID identifies the run in logs.
	RunID string

	// Rows holds inserted row counts keyed by step name.
	Rows map[string]int64

	// Tables holds inserted row counts keyed by destination table.
	Tables map[string]int64

	// SeedFiles lists the emitted per-genome seed-region files.
	SeedFiles []string

	// Elapsed is the wall-clock duration of the population phase.
	Elapsed time.Duration
}

// EdgeResult is the outcome of checking one foreign-key edge.
type EdgeResult struct {
	Edge       FKEdge
	Violations int64
}

// Report aggregates closure-check results over all edges.
type Report struct {
	Edges []EdgeResult
}

// Violations sums dangling references over every checked edge.
func (r *Report) Violations() int64 {
	var n int64
	for _, e := range r.Edges {
		n += e.Violations
	}
	return n
}
