package iosubset_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/comparadb/comparasub/internal/iosubset"
	"github.com/comparadb/comparasub/internal/iotesting"
	"github.com/comparadb/comparasub/internal/ioverify"
	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/comparadb/comparasub/pkg/regions"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRichSubset(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	windows := writeWindows(t, tmp, []regions.Region{
		{Name: "chr1", Start: 1000, End: 2000},
		{Name: "chr2", Start: 5000, End: 6000},
	})
	cfg := subsetConfig(src, dst, windows, tmp)
	op := openCloned(t, ctx, cfg)

	sum, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.NoError(t, err)
	require.NotNil(t, sum)

	// Registry tables arrive whole; comparative tables arrive filtered.
	wantCounts := map[string]int{
		"meta":                    2,
		"taxon":                   4,
		"genome_db":               4,
		"dnafrag":                 4,
		"method_link":             3,
		"species_set":             9,
		"method_link_species_set": 5,
		"genomic_align_block":     4,
		"genomic_align":           8,
		"genomic_align_group":     2,
		"synteny_region":          1,
		"dnafrag_region":          2,
		"sequence":                2,
		"member":                  6,
		"homology":                2,
		"homology_member":         4,
		"family":                  1,
		"family_member":           3,
	}
	for table, want := range wantCounts {
		assert.Equal(t, want, dstCount(t, ctx, op, table), table)
	}

	// Window selection: in-window reference alignments plus the other
	// side of their blocks; nothing from the out-of-window block 1001 or
	// the mouse-zebrafish block 3000.
	assert.Equal(t, []int64{1, 2, 5, 6, 7, 8, 10, 11},
		dstIDs(t, ctx, op, "genomic_align", "genomic_align_id"))
	assert.Equal(t, []int64{1000, 1002, 1003, 2000},
		dstIDs(t, ctx, op, "genomic_align_block", "genomic_align_block_id"))

	// MLSS re-derived from blocks, homologies and families; the unused
	// mm-dr and LASTZ configurations stay out.
	assert.Equal(t, []int64{5, 7, 9, 10, 11},
		dstIDs(t, ctx, op, "method_link_species_set",
			"method_link_species_set_id"))
	assert.Equal(t, []int64{1, 3, 4},
		dstIDs(t, ctx, op, "method_link", "method_link_id"))

	// Member closure: family and homology members plus peptide members;
	// the out-of-window member 501 and the unreferenced peptide 302 stay
	// out, the out-of-window member 401 comes in through family 50.
	assert.Equal(t, []int64{101, 102, 201, 202, 301, 401},
		dstIDs(t, ctx, op, "member", "member_id"))
	assert.Equal(t, []int64{901, 902},
		dstIDs(t, ctx, op, "sequence", "sequence_id"))
	assert.Equal(t, []int64{70, 72},
		dstIDs(t, ctx, op, "homology", "homology_id"))
	assert.Equal(t, []int64{50},
		dstIDs(t, ctx, op, "family", "family_id"))

	// Synteny anchored on retained fragments only: region 81 hangs off
	// the uncopied mouse chr7, region 82 never touches the reference.
	assert.Equal(t, []int64{80},
		dstIDs(t, ctx, op, "synteny_region", "synteny_region_id"))
	assert.Equal(t, []int64{10, 11, 20, 30},
		dstIDs(t, ctx, op, "dnafrag", "dnafrag_id"))
	assert.Equal(t, []int64{7955, 9031, 9606, 10090},
		dstIDs(t, ctx, op, "taxon", "taxon_id"))

	// Locators are nulled on every copied genome_db row.
	var n int
	err = op.DB().GetContext(ctx, &n,
		"SELECT COUNT(*) FROM "+op.DestTable("genome_db")+
			" WHERE locator IS NOT NULL")
	require.NoError(t, err)
	assert.Zero(t, n, "No copied genome should keep its locator")

	// One seed file per companion, in registry order; the chicken has no
	// comparative data and still gets an empty list.
	require.Len(t, sum.SeedFiles, 3)
	var names []string
	for _, f := range sum.SeedFiles {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"mus_musculus.regions.json",
		"danio_rerio.regions.json",
		"gallus_gallus.regions.json",
	}, names)

	mouse, err := regions.ParseFile(sum.SeedFiles[0])
	require.NoError(t, err)
	assert.Equal(t, []regions.Region{
		{Name: "chr5", Start: 50000, End: 52300},
		{Name: "chr5", Start: 550000, End: 550400},
	}, mouse, "Nearby mouse intervals should merge; the far one stays")

	fish, err := regions.ParseFile(sum.SeedFiles[1])
	require.NoError(t, err)
	assert.Equal(t, []regions.Region{
		{Name: "chrZ", Start: 7000, End: 7400},
	}, fish)

	chicken, err := regions.ParseFile(sum.SeedFiles[2])
	require.NoError(t, err)
	assert.Empty(t, chicken)

	// The summary mirrors what landed.
	assert.NotEmpty(t, sum.RunID)
	assert.Positive(t, sum.Elapsed)
	assert.Equal(t, int64(8), sum.Tables["genomic_align"])
	assert.Equal(t, int64(6), sum.Rows["seed-registry"])
	assert.Equal(t, int64(17), sum.Rows["windows"])
	assert.Equal(t, int64(6), sum.Rows["closure-member"])
}

func TestBuildExplicitCompanions(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	windows := writeWindows(t, tmp, []regions.Region{
		{Name: "chr1", Start: 1000, End: 2000},
		{Name: "chr2", Start: 5000, End: 6000},
	})
	cfg := subsetConfig(src, dst, windows, tmp)
	// The reference id and an unknown id are dropped with a warning.
	cfg.Subset.GenomeDBIDs = []int64{2, 1, 77}
	op := openCloned(t, ctx, cfg)

	sum, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.NoError(t, err)

	// Mouse only: no zebrafish alignments, homology or members.
	assert.Equal(t, []int64{1, 2, 5, 6, 7, 8},
		dstIDs(t, ctx, op, "genomic_align", "genomic_align_id"))
	assert.Equal(t, []int64{70},
		dstIDs(t, ctx, op, "homology", "homology_id"))
	assert.Equal(t, []int64{101, 102, 201, 202, 401},
		dstIDs(t, ctx, op, "member", "member_id"))
	assert.Equal(t, []int64{5, 9, 11},
		dstIDs(t, ctx, op, "method_link_species_set",
			"method_link_species_set_id"))

	// The registry still carries every genome.
	assert.Equal(t, 4, dstCount(t, ctx, op, "genome_db"))

	require.Len(t, sum.SeedFiles, 1)
	assert.Equal(t, "mus_musculus.regions.json",
		filepath.Base(sum.SeedFiles[0]))
}

func TestBuildClosure(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	windows := writeWindows(t, tmp, []regions.Region{
		{Name: "chr1", Start: 1000, End: 2000},
		{Name: "chr2", Start: 5000, End: 6000},
	})
	cfg := subsetConfig(src, dst, windows, tmp)
	op := openCloned(t, ctx, cfg)

	_, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.NoError(t, err)

	// Every foreign-key edge of the destination resolves: no copied row
	// references a row the subset left behind.
	rep, err := ioverify.NewVerifier(op, 1).Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rep.Violations())
	for _, res := range rep.Edges {
		assert.Zero(t, res.Violations, "dangling rows on %s", res.Edge)
	}
}

func TestRerunHomologyConflict(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	windows := writeWindows(t, tmp, []regions.Region{
		{Name: "chr1", Start: 1000, End: 2000},
	})
	cfg := subsetConfig(src, dst, windows, tmp)
	op := openCloned(t, ctx, cfg)

	_, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.NoError(t, err)
	homologies := dstCount(t, ctx, op, "homology")
	aligns := dstCount(t, ctx, op, "genomic_align")

	// A second run against the populated destination trips the plain
	// homology insert; the failed run rolls back without touching the
	// first run's rows.
	_, err = iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.Error(t, err)

	var stepErr *compara.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "windows", stepErr.Step)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.SubsetStepError, gnErr.Code)

	assert.Equal(t, homologies, dstCount(t, ctx, op, "homology"))
	assert.Equal(t, aligns, dstCount(t, ctx, op, "genomic_align"))
}

func TestBuildMissingRefGenome(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	windows := writeWindows(t, tmp, []regions.Region{
		{Name: "chr1", Start: 1000, End: 2000},
	})
	cfg := subsetConfig(src, dst, windows, tmp)
	cfg.Subset.RefGenomeDBID = 999
	op := openCloned(t, ctx, cfg)

	_, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.Error(t, err)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.SubsetRefGenomeError, gnErr.Code)
	assert.Equal(t, []any{int64(999)}, gnErr.Vars)

	// The failed run rolled back; the destination keeps only structure.
	assert.Zero(t, dstCount(t, ctx, op, "genome_db"))
	assert.Zero(t, dstCount(t, ctx, op, "meta"))
}

func TestBuildBadRegionsFile(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "compara.sqlite")
	dst := filepath.Join(tmp, "compara_test.sqlite")
	iotesting.CreateSourceDB(t, src, richRows)

	cfg := subsetConfig(src, dst, filepath.Join(tmp, "absent.json"), tmp)
	op := openCloned(t, ctx, cfg)

	_, err := iosubset.NewSubsetter(op, cfg).Build(ctx)
	require.Error(t, err)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.SubsetRegionsError, gnErr.Code)
}
