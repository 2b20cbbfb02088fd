// Package iosubset implements the population stage: it fills a cloned
// destination with a referentially-consistent subset of the source,
// selected by seed-region windows on the reference genome, and emits
// seed-region files for the companion genomes. This is an impure I/O
// package that implements the compara.SubsetBuilder contract.
//
// Every copy statement is a cross-schema INSERT ... SELECT on the one
// connection that sees both schemas; row values travel as bind
// parameters and the whole population runs inside a single destination
// transaction. A failure rolls the population back, leaving only the
// empty cloned structure.
package iosubset

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
	"github.com/comparadb/comparasub/pkg/regions"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlib"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// genomeRef is one companion genome resolved from the source registry.
type genomeRef struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// subsetter implements the compara.SubsetBuilder interface on top of a
// connected database operator.
type subsetter struct {
	op  db.Operator
	cfg *config.Config

	windows    []regions.Region
	companions []genomeRef
	maxLen     int64

	// tx carries the population transaction between steps; after
	// commit it is nil and queries go through the operator handle.
	tx        *sqlx.Tx
	tableRows map[string]int64
}

// NewSubsetter creates a new SubsetBuilder. The operator must already
// be connected with the pool pinned to a single connection.
func NewSubsetter(op db.Operator, cfg *config.Config) compara.SubsetBuilder {
	return &subsetter{
		op:        op,
		cfg:       cfg,
		tableRows: make(map[string]int64),
	}
}

// Build runs the population pipeline: seed registry, windows pass,
// closure pass inside one transaction, then seed-region emission after
// commit.
func (s *subsetter) Build(ctx context.Context) (*compara.Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	slog.Info("subset build starting",
		"run", runID,
		"source", s.cfg.Subset.Source,
		"destination", s.cfg.Subset.Destination,
		"ref_genome_db_id", s.cfg.Subset.RefGenomeDBID,
	)

	ww, err := regions.ParseFile(s.cfg.Subset.SeqRegionFile)
	if err != nil {
		return nil, RegionsError(s.cfg.Subset.SeqRegionFile, err)
	}
	s.windows = ww

	tx, err := s.op.DB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, TxError("begin", err)
	}
	s.tx = tx
	// No-op once Commit has succeeded.
	defer tx.Rollback()

	if err := s.prepare(ctx); err != nil {
		return nil, err
	}

	plan := s.plan()
	if err := plan.Execute(ctx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, TxError("commit", err)
	}
	s.tx = nil

	files, err := s.emitSeeds(ctx)
	if err != nil {
		return nil, err
	}

	sum := &compara.Summary{
		RunID:     runID,
		Rows:      plan.Rows(),
		Tables:    s.tableRows,
		SeedFiles: files,
		Elapsed:   time.Since(start),
	}

	slog.Info("subset build complete",
		"run", runID,
		"duration", gnfmt.TimeString(sum.Elapsed.Seconds()),
	)
	s.printSummary(sum)
	return sum, nil
}

// plan assembles the population steps with their prerequisites. The
// pipeline historically relied on call order alone; the declared
// prerequisites make an ordering mistake fail loudly.
func (s *subsetter) plan() *compara.Plan {
	p := compara.NewPlan()

	p.MustAdd(compara.Step{
		Name: "seed-registry",
		Run:  s.seedRegistry,
	})
	p.MustAdd(compara.Step{
		Name:     "windows",
		Requires: []string{"seed-registry"},
		Run:      s.windowsPass,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-dnafrag",
		Requires: []string{"windows"},
		Run:      s.closureDnafrag,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-synteny-region",
		Requires: []string{"closure-dnafrag"},
		Run:      s.closureSyntenyRegion,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-dnafrag-region",
		Requires: []string{"closure-synteny-region"},
		Run:      s.closureDnafragRegion,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-homology-member",
		Requires: []string{"windows"},
		Run:      s.closureHomologyMember,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-family-member",
		Requires: []string{"windows"},
		Run:      s.closureFamilyMember,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-member",
		Requires: []string{"closure-homology-member", "closure-family-member"},
		Run:      s.closureMember,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-sequence",
		Requires: []string{"closure-member"},
		Run:      s.closureSequence,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-taxon",
		Requires: []string{"closure-member", "seed-registry"},
		Run:      s.closureTaxon,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-mlss",
		Requires: []string{"windows"},
		Run:      s.closureMLSS,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-method-link",
		Requires: []string{"closure-mlss"},
		Run:      s.closureMethodLink,
	})
	p.MustAdd(compara.Step{
		Name:     "closure-species-set",
		Requires: []string{"closure-mlss", "seed-registry"},
		Run:      s.closureSpeciesSet,
	})

	return p
}

// prepare resolves the run's inputs from the source registry: the
// reference genome, the companion genomes and max_alignment_length.
func (s *subsetter) prepare(ctx context.Context) error {
	ref := s.cfg.Subset.RefGenomeDBID

	var refName string
	q := s.tx.Rebind("SELECT name FROM " +
		s.op.SourceTable("genome_db") + " WHERE genome_db_id = ?")
	err := s.tx.GetContext(ctx, &refName, q, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return RefGenomeError(ref)
	}
	if err != nil {
		return LookupError("the reference genome", err)
	}

	if err := s.resolveCompanions(ctx); err != nil {
		return err
	}
	if len(s.companions) == 0 {
		gn.Warn("No companion genomes to compare against <em>%s</em>; "+
			"the subset will hold registry tables only.", refName)
	}

	if err := s.resolveMaxLen(ctx); err != nil {
		return err
	}

	slog.Info("inputs resolved",
		"ref_genome", refName,
		"companions", len(s.companions),
		"windows", len(s.windows),
		"max_alignment_length", s.maxLen,
	)
	return nil
}

// resolveCompanions fills s.companions from --genome-db ids, or from
// every source genome except the reference when none were given.
func (s *subsetter) resolveCompanions(ctx context.Context) error {
	ref := s.cfg.Subset.RefGenomeDBID
	ids := s.cfg.Subset.GenomeDBIDs

	var (
		q    string
		args []any
		err  error
	)
	if len(ids) == 0 {
		q = "SELECT genome_db_id AS id, name FROM " +
			s.op.SourceTable("genome_db") +
			" WHERE genome_db_id <> ? ORDER BY genome_db_id"
		args = []any{ref}
	} else {
		q, args, err = sqlx.In("SELECT genome_db_id AS id, name FROM "+
			s.op.SourceTable("genome_db")+
			" WHERE genome_db_id IN (?) ORDER BY genome_db_id", ids)
		if err != nil {
			return LookupError("the companion genomes", err)
		}
	}

	var gg []genomeRef
	q = s.tx.Rebind(q)
	if err := s.tx.SelectContext(ctx, &gg, q, args...); err != nil {
		return LookupError("the companion genomes", err)
	}

	found := make(map[int64]bool, len(gg))
	res := gg[:0]
	for _, g := range gg {
		found[g.ID] = true
		if g.ID == ref {
			gn.Warn("Genome <em>%d</em> is the reference; "+
				"dropping it from --genome-db.", g.ID)
			continue
		}
		// Old dumps sometimes carry broken UTF-8 in genome names.
		g.Name = gnlib.FixUtf8(g.Name)
		res = append(res, g)
	}
	for _, id := range ids {
		if !found[id] {
			gn.Warn("Genome <em>%d</em> is not in the source genome_db "+
				"table; skipping it.", id)
		}
	}

	s.companions = res
	return nil
}

// resolveMaxLen reads max_alignment_length from the source meta table,
// falling back to the default when the key is absent or malformed.
func (s *subsetter) resolveMaxLen(ctx context.Context) error {
	q := s.tx.Rebind("SELECT meta_value FROM " +
		s.op.SourceTable("meta") + " WHERE meta_key = ?")

	var raw string
	err := s.tx.GetContext(ctx, &raw, q, compara.MetaMaxAlignmentLength)
	if errors.Is(err, sql.ErrNoRows) {
		gn.Warn("Source meta has no <em>%s</em>; using %d.",
			compara.MetaMaxAlignmentLength, compara.DefaultMaxAlignmentLength)
		s.maxLen = compara.DefaultMaxAlignmentLength
		return nil
	}
	if err != nil {
		return MetaError(compara.MetaMaxAlignmentLength, err)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		gn.Warn("Source meta <em>%s</em> value %q is not usable; using %d.",
			compara.MetaMaxAlignmentLength, raw,
			compara.DefaultMaxAlignmentLength)
		s.maxLen = compara.DefaultMaxAlignmentLength
		return nil
	}

	s.maxLen = n
	return nil
}

// copyRows executes a duplicate-ignoring INSERT ... SELECT into table
// and returns the number of rows actually inserted.
func (s *subsetter) copyRows(
	ctx context.Context, table, selectBody string, args ...any,
) (int64, error) {
	q := s.tx.Rebind(s.op.InsertIgnore(table, selectBody))
	res, err := s.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, CopyError(table, err)
	}
	n, _ := res.RowsAffected()
	s.tableRows[table] += n
	slog.Debug("rows copied", "table", table, "rows", n)
	return n, nil
}

// insertRows executes a plain INSERT ... SELECT into table. Duplicate
// keys are an error here, not a no-op.
func (s *subsetter) insertRows(
	ctx context.Context, table, selectBody string, args ...any,
) (int64, error) {
	q := s.tx.Rebind(s.op.Insert(table, selectBody))
	res, err := s.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, CopyError(table, err)
	}
	n, _ := res.RowsAffected()
	s.tableRows[table] += n
	slog.Debug("rows inserted", "table", table, "rows", n)
	return n, nil
}

// printSummary reports per-table totals and the emitted files.
func (s *subsetter) printSummary(sum *compara.Summary) {
	gn.Info("\nSubset complete in <em>%s</em>.",
		gnfmt.TimeString(sum.Elapsed.Seconds()))

	for _, table := range compara.Tables() {
		n, ok := sum.Tables[table]
		if !ok {
			continue
		}
		gn.Info("  %-24s %12s rows", table, humanize.Comma(n))
	}

	if len(sum.SeedFiles) > 0 {
		gn.Info("\nSeed-region files:")
		for _, f := range sum.SeedFiles {
			gn.Info("  <em>%s</em>", f)
		}
	}
}

// src is shorthand for a source-qualified table in query text.
func (s *subsetter) src(table string) string {
	return s.op.SourceTable(table)
}

// dst is shorthand for a destination-qualified table in query text.
func (s *subsetter) dst(table string) string {
	return s.op.DestTable(table)
}
