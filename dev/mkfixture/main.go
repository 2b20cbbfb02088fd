// mkfixture generates a small synthetic compara source database for
// manual runs of the comparasub CLI.
//
// The sqlite file carries four genomes: human as the reference, mouse
// and zebrafish with alignments, orthologues, a family and a synteny
// pair, and chicken registered without any comparative data. Some rows
// sit outside every seed window so a subset run has something to leave
// behind. A matching seeds.json with one window on the reference genome
// is written next to the database.
//
// Usage:
//
//	go run . <output-dir>
//
// Example:
//
//	go run . /tmp/demo
//	comparasub subset -e sqlite -s /tmp/demo/compara.db \
//	  -d /tmp/demo/subset.db -r /tmp/demo/seeds.json --verify
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/comparadb/comparasub/internal/iotesting"
	"github.com/comparadb/comparasub/pkg/regions"
	_ "modernc.org/sqlite"
)

// seedWindows scopes the demo subset to one window on human
// chromosome 1, matching the coordinates in demoRows.
var seedWindows = []regions.Region{
	{Name: "1", Start: 5000, End: 6000},
}

var demoRows = []string{
	`INSERT INTO meta VALUES (1, 'max_alignment_length', '1000')`,
	`INSERT INTO meta VALUES (2, 'schema_version', '30')`,

	`INSERT INTO taxon VALUES (9606, 'Homo sapiens')`,
	`INSERT INTO taxon VALUES (10090, 'Mus musculus')`,
	`INSERT INTO taxon VALUES (7955, 'Danio rerio')`,
	`INSERT INTO taxon VALUES (9031, 'Gallus gallus')`,

	`INSERT INTO genome_db VALUES
		(1, 9606, 'homo_sapiens', 'GRCh38', NULL)`,
	`INSERT INTO genome_db VALUES
		(2, 10090, 'mus_musculus', 'GRCm39', NULL)`,
	`INSERT INTO genome_db VALUES (3, 7955, 'danio_rerio', 'GRCz11', NULL)`,
	`INSERT INTO genome_db VALUES (4, 9031, 'gallus_gallus', 'GRCg7b', NULL)`,

	`INSERT INTO dnafrag VALUES (100, 1, '1', 248956422, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (101, 1, '2', 242193529, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (200, 2, '4', 156508706, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (201, 2, '11', 122082543, 'chromosome')`,
	`INSERT INTO dnafrag VALUES (300, 3, '25', 37502051, 'chromosome')`,

	`INSERT INTO method_link VALUES (1, 'BLASTZ_NET')`,
	`INSERT INTO method_link VALUES (3, 'ENSEMBL_ORTHOLOGUES')`,
	`INSERT INTO method_link VALUES (4, 'FAMILY')`,

	`INSERT INTO species_set VALUES (10, 1)`,
	`INSERT INTO species_set VALUES (10, 2)`,
	`INSERT INTO species_set VALUES (20, 1)`,
	`INSERT INTO species_set VALUES (20, 3)`,
	`INSERT INTO species_set VALUES (40, 1)`,
	`INSERT INTO species_set VALUES (40, 2)`,
	`INSERT INTO species_set VALUES (40, 3)`,

	`INSERT INTO method_link_species_set VALUES (1, 1, 10, 'h-m blastz')`,
	`INSERT INTO method_link_species_set VALUES (2, 1, 20, 'h-z blastz')`,
	`INSERT INTO method_link_species_set VALUES (3, 3, 10, 'h-m orthologues')`,
	`INSERT INTO method_link_species_set VALUES (4, 4, 40, 'families')`,

	`INSERT INTO genomic_align_block VALUES (10, 1, 2400.0, 87, 501)`,
	`INSERT INTO genomic_align_block VALUES (11, 2, 1500.0, 74, 201)`,
	`INSERT INTO genomic_align_block VALUES (12, 1, 900.0, 69, 401)`,

	`INSERT INTO genomic_align VALUES (1, 10, 1, 100, 5100, 5600, 1, '501M')`,
	`INSERT INTO genomic_align VALUES (2, 10, 1, 200, 40100, 40600, -1, '501M')`,
	`INSERT INTO genomic_align VALUES (3, 11, 2, 100, 5200, 5400, 1, '201M')`,
	`INSERT INTO genomic_align VALUES (4, 11, 2, 300, 7100, 7300, 1, '201M')`,
	`INSERT INTO genomic_align VALUES
		(5, 12, 1, 101, 900000, 900400, 1, '401M')`,
	`INSERT INTO genomic_align VALUES (6, 12, 1, 201, 10000, 10400, 1, '401M')`,

	`INSERT INTO genomic_align_group VALUES (1, 'default', 1)`,
	`INSERT INTO genomic_align_group VALUES (1, 'default', 2)`,

	`INSERT INTO synteny_region VALUES (1, 1)`,
	`INSERT INTO synteny_region VALUES (2, -1)`,

	`INSERT INTO dnafrag_region VALUES (1, 100, 4800, 6200)`,
	`INSERT INTO dnafrag_region VALUES (1, 200, 39000, 41000)`,
	`INSERT INTO dnafrag_region VALUES (2, 101, 1000, 2000)`,
	`INSERT INTO dnafrag_region VALUES (2, 201, 5000, 6000)`,

	`INSERT INTO sequence VALUES (501, 12, 'MSDNEFESRVAK')`,
	`INSERT INTO sequence VALUES (502, 10, 'MKLVNRPQWE')`,
	`INSERT INTO sequence VALUES (503, 8, 'MGATLSDK')`,

	`INSERT INTO member VALUES
		(1000, 'ENSG00000101', 'ENSEMBLGENE', 9606, 1, 0, '1', 5050, 5700, 1)`,
	`INSERT INTO member VALUES
		(1001, 'ENSP00000101', 'ENSEMBLPEP', 9606, 1, 501, '1', 5050, 5700, 1)`,
	`INSERT INTO member VALUES
		(1500, 'ENSG00000115', 'ENSEMBLGENE', 9606, 1, 0, '2', 1500, 1900, 1)`,
	`INSERT INTO member VALUES
		(2000, 'ENSMUSG00000201', 'ENSEMBLGENE',
		 10090, 2, 0, '4', 40050, 40700, -1)`,
	`INSERT INTO member VALUES
		(2001, 'ENSMUSP00000201', 'ENSEMBLPEP',
		 10090, 2, 502, '4', 40050, 40700, -1)`,
	`INSERT INTO member VALUES
		(3000, 'ENSDARG00000301', 'ENSEMBLGENE',
		 7955, 3, 0, '25', 7000, 7400, 1)`,
	`INSERT INTO member VALUES
		(3001, 'ENSDARP00000301', 'ENSEMBLPEP',
		 7955, 3, 503, '25', 7000, 7400, 1)`,

	`INSERT INTO homology VALUES (100, 'HOM100', 3, 'ortholog_one2one')`,
	`INSERT INTO homology VALUES (101, 'HOM101', 3, 'ortholog_one2one')`,

	`INSERT INTO homology_member VALUES (100, 1000, 1001, '300M')`,
	`INSERT INTO homology_member VALUES (100, 2000, 2001, '300M')`,
	`INSERT INTO homology_member VALUES (101, 1500, 0, '200M')`,
	`INSERT INTO homology_member VALUES (101, 2000, 2001, '200M')`,

	`INSERT INTO family VALUES (70, 'FAM070', 4, 'demo kinase family')`,

	`INSERT INTO family_member VALUES (70, 1000, '250M')`,
	`INSERT INTO family_member VALUES (70, 2000, '250M')`,
	`INSERT INTO family_member VALUES (70, 3000, '250M')`,
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-dir>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr,
			"Writes compara.db and seeds.json into <output-dir>.\n")
		os.Exit(1)
	}
	outDir := os.Args[1]

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger, outDir); err != nil {
		logger.Error("fixture generation failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	dbPath := filepath.Join(outDir, "compara.db")
	seedsPath := filepath.Join(outDir, "seeds.json")
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("%s already exists, remove it first", dbPath)
	}

	logger.Info("creating source database", "path", dbPath)
	if err := createSource(dbPath); err != nil {
		return err
	}

	logger.Info("writing seed regions", "path", seedsPath)
	if err := regions.WriteFile(seedsPath, seedWindows); err != nil {
		return err
	}

	logger.Info("fixture complete",
		"genomes", 4, "windows", len(seedWindows))

	fmt.Printf("\nTry:\n  comparasub subset -e sqlite -s %s -d %s -r %s --verify\n",
		dbPath, filepath.Join(outDir, "subset.db"), seedsPath)
	return nil
}

func createSource(path string) error {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer sdb.Close()

	for _, q := range iotesting.SchemaDDL() {
		if _, err := sdb.Exec(q); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	for _, q := range demoRows {
		if _, err := sdb.Exec(q); err != nil {
			return fmt.Errorf("rows: %w", err)
		}
	}
	return nil
}
