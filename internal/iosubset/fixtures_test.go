package iosubset_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/comparadb/comparasub/internal/iodb"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/comparadb/comparasub/pkg/db"
	"github.com/comparadb/comparasub/pkg/regions"
	"github.com/stretchr/testify/require"
)

// richRows seeds a four-genome source: human (reference), mouse and
// zebrafish with alignments, homologies, families and synteny, and
// chicken registered but without any comparative data. Known traps are
// planted throughout: alignments outside every window, a mouse-zebrafish
// pair that never touches the reference, members beyond the windows,
// an orphan family and unreferenced taxa, dnafrags and sequences.
var richRows = []string{
	`INSERT INTO meta VALUES (1, 'max_alignment_length', '1000')`,
	`INSERT INTO meta VALUES (2, 'schema_version', '30')`,

	`INSERT INTO taxon VALUES (9606, 'Homo sapiens')`,
	`INSERT INTO taxon VALUES (10090, 'Mus musculus')`,
	`INSERT INTO taxon VALUES (7955, 'Danio rerio')`,
	`INSERT INTO taxon VALUES (9031, 'Gallus gallus')`,
	`INSERT INTO taxon VALUES (4932, 'Saccharomyces cerevisiae')`,

	`INSERT INTO genome_db VALUES
		(1, 9606, 'homo_sapiens', 'NCBI36', 'mysql://ensro@srv1/hs_core')`,
	`INSERT INTO genome_db VALUES
		(2, 10090, 'mus_musculus', 'NCBIM36', 'mysql://ensro@srv1/mm_core')`,
	`INSERT INTO genome_db VALUES (3, 7955, 'danio_rerio', 'ZFISH6', NULL)`,
	`INSERT INTO genome_db VALUES (4, 9031, 'gallus_gallus', 'WASHUC1', NULL)`,

	`INSERT INTO dnafrag VALUES (10, 1, 'chr1', 2000000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (11, 1, 'chr2', 1500000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (20, 2, 'chr5', 1800000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (21, 2, 'chr7', 1200000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (30, 3, 'chrZ', 900000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (40, 2, 'chr9', 50000, 'scaffold')`,

	`INSERT INTO method_link VALUES (1, 'BLASTZ_NET')`,
	`INSERT INTO method_link VALUES (3, 'ENSEMBL_ORTHOLOGUES')`,
	`INSERT INTO method_link VALUES (4, 'FAMILY')`,
	`INSERT INTO method_link VALUES (8, 'LASTZ_NET')`,

	`INSERT INTO species_set VALUES (100, 1)`,
	`INSERT INTO species_set VALUES (100, 2)`,
	`INSERT INTO species_set VALUES (200, 1)`,
	`INSERT INTO species_set VALUES (200, 3)`,
	`INSERT INTO species_set VALUES (300, 2)`,
	`INSERT INTO species_set VALUES (300, 3)`,
	`INSERT INTO species_set VALUES (400, 1)`,
	`INSERT INTO species_set VALUES (400, 2)`,
	`INSERT INTO species_set VALUES (500, 1)`,
	`INSERT INTO species_set VALUES (500, 2)`,
	`INSERT INTO species_set VALUES (500, 3)`,

	`INSERT INTO method_link_species_set VALUES (5, 1, 100, 'hs-mm blastz')`,
	`INSERT INTO method_link_species_set VALUES (7, 1, 200, 'hs-dr blastz')`,
	`INSERT INTO method_link_species_set VALUES (9, 3, 400, 'hs-mm orthologues')`,
	`INSERT INTO method_link_species_set VALUES (10, 3, 200, 'hs-dr orthologues')`,
	`INSERT INTO method_link_species_set VALUES (11, 4, 500, 'all families')`,
	`INSERT INTO method_link_species_set VALUES (13, 1, 300, 'mm-dr blastz')`,
	`INSERT INTO method_link_species_set VALUES (15, 8, 100, 'hs-mm lastz')`,

	`INSERT INTO genomic_align_block VALUES (1000, 5, 2250.0, 88, 100)`,
	`INSERT INTO genomic_align_block VALUES (1001, 5, 1800.0, 80, 200)`,
	`INSERT INTO genomic_align_block VALUES (1002, 5, 3100.0, 91, 150)`,
	`INSERT INTO genomic_align_block VALUES (1003, 5, 950.0, 76, 100)`,
	`INSERT INTO genomic_align_block VALUES (2000, 7, 1200.0, 70, 200)`,
	`INSERT INTO genomic_align_block VALUES (3000, 13, 800.0, 65, 100)`,

	`INSERT INTO genomic_align VALUES (1, 1000, 5, 10, 1200, 1300, 1, '101M')`,
	`INSERT INTO genomic_align VALUES (2, 1000, 5, 20, 50000, 50100, -1, '101M')`,
	`INSERT INTO genomic_align VALUES (3, 1001, 5, 10, 5000, 5200, 1, '201M')`,
	`INSERT INTO genomic_align VALUES (4, 1001, 5, 20, 300000, 300200, 1, '201M')`,
	`INSERT INTO genomic_align VALUES (5, 1002, 5, 11, 5100, 5250, 1, '151M')`,
	`INSERT INTO genomic_align VALUES (6, 1002, 5, 20, 550000, 550400, 1, '151M250D')`,
	`INSERT INTO genomic_align VALUES (7, 1003, 5, 10, 1500, 1600, 1, '101M')`,
	`INSERT INTO genomic_align VALUES (8, 1003, 5, 20, 52000, 52300, -1, '101M200D')`,
	`INSERT INTO genomic_align VALUES (10, 2000, 7, 10, 900, 1100, 1, '201M')`,
	`INSERT INTO genomic_align VALUES (11, 2000, 7, 30, 7000, 7400, 1, '201M200I')`,
	`INSERT INTO genomic_align VALUES (20, 3000, 13, 21, 100, 200, 1, '101M')`,
	`INSERT INTO genomic_align VALUES (21, 3000, 13, 30, 100, 200, 1, '101M')`,

	`INSERT INTO genomic_align_group VALUES (1, 'default', 1)`,
	`INSERT INTO genomic_align_group VALUES (1, 'default', 2)`,
	`INSERT INTO genomic_align_group VALUES (9, 'default', 20)`,

	`INSERT INTO synteny_region VALUES (80, 1)`,
	`INSERT INTO synteny_region VALUES (81, -1)`,
	`INSERT INTO synteny_region VALUES (82, 1)`,

	`INSERT INTO dnafrag_region VALUES (80, 10, 1000, 3000)`,
	`INSERT INTO dnafrag_region VALUES (80, 20, 60000, 63000)`,
	`INSERT INTO dnafrag_region VALUES (81, 11, 9000, 12000)`,
	`INSERT INTO dnafrag_region VALUES (81, 21, 40000, 43000)`,
	`INSERT INTO dnafrag_region VALUES (82, 20, 70000, 71000)`,
	`INSERT INTO dnafrag_region VALUES (82, 30, 8000, 9000)`,

	`INSERT INTO sequence VALUES (901, 12, 'MKTAYIAKQRQI')`,
	`INSERT INTO sequence VALUES (902, 11, 'MSSPTPPGGQR')`,
	`INSERT INTO sequence VALUES (903, 9, 'MALWMRLLP')`,
	`INSERT INTO sequence VALUES (999, 4, 'ACGT')`,

	`INSERT INTO member VALUES
		(101, 'ENSG0000001', 'ENSEMBLGENE', 9606, 1, 0, 'chr1', 1100, 1400, 1)`,
	`INSERT INTO member VALUES
		(102, 'ENSP0000001', 'ENSEMBLPEP', 9606, 1, 901, 'chr1', 1100, 1400, 1)`,
	`INSERT INTO member VALUES
		(201, 'ENSMUSG0000001', 'ENSEMBLGENE', 10090, 2, 0, 'chr5', 50000, 50800, 1)`,
	`INSERT INTO member VALUES
		(202, 'ENSMUSP0000001', 'ENSEMBLPEP', 10090, 2, 902, 'chr5', 50000, 50800, 1)`,
	`INSERT INTO member VALUES
		(301, 'ENSDARG0000001', 'ENSEMBLGENE', 7955, 3, 0, 'chrZ', 7000, 7600, -1)`,
	`INSERT INTO member VALUES
		(302, 'ENSDARP0000001', 'ENSEMBLPEP', 7955, 3, 903, 'chrZ', 7000, 7600, -1)`,
	`INSERT INTO member VALUES
		(401, 'ENSG0000002', 'ENSEMBLGENE', 9606, 1, 0, 'chr1', 900000, 900500, 1)`,
	`INSERT INTO member VALUES
		(501, 'ENSG0000003', 'ENSEMBLGENE', 9606, 1, 0, 'chr2', 800000, 800900, -1)`,

	`INSERT INTO homology VALUES (70, 'HOM0001', 9, 'ortholog_one2one')`,
	`INSERT INTO homology VALUES (71, 'HOM0002', 9, 'ortholog_one2one')`,
	`INSERT INTO homology VALUES (72, 'HOM0003', 10, 'ortholog_one2one')`,

	`INSERT INTO homology_member VALUES (70, 101, 102, '30M')`,
	`INSERT INTO homology_member VALUES (70, 201, 202, '30M')`,
	`INSERT INTO homology_member VALUES (71, 401, 0, '40M')`,
	`INSERT INTO homology_member VALUES (71, 201, 202, '40M')`,
	`INSERT INTO homology_member VALUES (72, 101, 102, '25M')`,
	`INSERT INTO homology_member VALUES (72, 301, 0, '25M')`,

	`INSERT INTO family VALUES (50, 'FAM0001', 11, 'kinase family')`,
	`INSERT INTO family VALUES (60, 'FAM0002', 11, 'orphan family')`,

	`INSERT INTO family_member VALUES (50, 101, '50M')`,
	`INSERT INTO family_member VALUES (50, 201, '50M')`,
	`INSERT INTO family_member VALUES (50, 401, '50M')`,
	`INSERT INTO family_member VALUES (60, 501, '60M')`,
	`INSERT INTO family_member VALUES (60, 201, '60M')`,
}

// smallRows seeds a two-genome source with three alignment blocks
// around a single reference fragment and a short max_alignment_length,
// for bound-checking the window selector. No homologies or families.
var smallRows = []string{
	`INSERT INTO meta VALUES (1, 'max_alignment_length', '30')`,
	`INSERT INTO meta VALUES (2, 'schema_version', '30')`,

	`INSERT INTO taxon VALUES (9606, 'Homo sapiens')`,
	`INSERT INTO taxon VALUES (10090, 'Mus musculus')`,

	`INSERT INTO genome_db VALUES
		(1, 9606, 'homo_sapiens', 'NCBI36', 'mysql://ensro@srv1/hs_core')`,
	`INSERT INTO genome_db VALUES (2, 10090, 'mus_musculus', 'NCBIM36', NULL)`,

	`INSERT INTO dnafrag VALUES (10, 1, 'chr1', 2000000, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (20, 2, 'chr5', 1800000, 'chromosome')`,

	`INSERT INTO method_link VALUES (1, 'BLASTZ_NET')`,
	`INSERT INTO species_set VALUES (100, 1)`,
	`INSERT INTO species_set VALUES (100, 2)`,
	`INSERT INTO method_link_species_set VALUES (5, 1, 100, 'hs-mm blastz')`,

	`INSERT INTO genomic_align_block VALUES (9001, 5, 1000.0, 80, 70)`,
	`INSERT INTO genomic_align_block VALUES (9002, 5, 1100.0, 82, 20)`,
	`INSERT INTO genomic_align_block VALUES (9003, 5, 1200.0, 85, 90)`,

	`INSERT INTO genomic_align VALUES (91, 9001, 5, 10, 50, 120, 1, '71M')`,
	`INSERT INTO genomic_align VALUES (92, 9001, 5, 20, 1000, 1100, 1, '71M30I')`,
	`INSERT INTO genomic_align VALUES (93, 9002, 5, 10, 150, 170, 1, '21M')`,
	`INSERT INTO genomic_align VALUES (94, 9002, 5, 20, 5000, 5100, -1, '21M80I')`,
	`INSERT INTO genomic_align VALUES (95, 9003, 5, 10, 210, 300, 1, '91M')`,
	`INSERT INTO genomic_align VALUES (96, 9003, 5, 20, 9000, 9100, 1, '91M10I')`,
}

// subsetConfig assembles a sqlite run configuration around the given
// paths. The reference genome is 1 and the alignment method is 1,
// matching both fixtures.
func subsetConfig(src, dst, regionsFile, outDir string) *config.Config {
	cfg := config.New()
	cfg.Database.Engine = config.EngineSQLite
	cfg.Subset.Source = src
	cfg.Subset.Destination = dst
	cfg.Subset.SeqRegionFile = regionsFile
	cfg.Subset.OutDir = outDir
	cfg.Subset.RefGenomeDBID = 1
	cfg.Subset.MethodLinkID = 1
	return cfg
}

// openCloned connects an operator to the fixture pair and copies the
// source structure into the empty destination, the state a subset run
// starts from.
func openCloned(
	t *testing.T, ctx context.Context, cfg *config.Config,
) db.Operator {
	t.Helper()

	op, err := iodb.NewOperator(config.EngineSQLite)
	require.NoError(t, err)
	err = op.Connect(ctx, &cfg.Database,
		cfg.Subset.Source, cfg.Subset.Destination, 1)
	require.NoError(t, err)
	t.Cleanup(func() { op.Close() })

	require.NoError(t, op.CreateDestination(ctx))
	require.NoError(t, op.CopyStructure(ctx))
	return op
}

// writeWindows writes a seed-region input file and returns its path.
func writeWindows(t *testing.T, dir string, rr []regions.Region) string {
	t.Helper()
	path := filepath.Join(dir, "windows.json")
	require.NoError(t, regions.WriteFile(path, rr))
	return path
}

// dstCount counts the destination rows of a table.
func dstCount(
	t *testing.T, ctx context.Context, op db.Operator, table string,
) int {
	t.Helper()
	var n int
	q := "SELECT COUNT(*) FROM " + op.DestTable(table)
	require.NoError(t, op.DB().GetContext(ctx, &n, q))
	return n
}

// dstIDs collects a destination column as a sorted id list.
func dstIDs(
	t *testing.T, ctx context.Context, op db.Operator, table, col string,
) []int64 {
	t.Helper()
	var ids []int64
	q := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s", col, op.DestTable(table), col,
	)
	require.NoError(t, op.DB().SelectContext(ctx, &ids, q))
	return ids
}
