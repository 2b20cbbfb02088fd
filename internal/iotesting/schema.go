package iotesting

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// schemaDDL is the miniature compara schema the fixtures populate: the
// full table set of the subset pipeline, trimmed to the columns the
// queries touch plus enough extras to stay realistic.
var schemaDDL = []string{
	`CREATE TABLE meta (
		meta_id INTEGER PRIMARY KEY,
		meta_key TEXT NOT NULL,
		meta_value TEXT NOT NULL
	)`,
	`CREATE TABLE taxon (
		taxon_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE genome_db (
		genome_db_id INTEGER PRIMARY KEY,
		taxon_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		assembly TEXT,
		locator TEXT
	)`,
	`CREATE TABLE dnafrag (
		dnafrag_id INTEGER PRIMARY KEY,
		genome_db_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		length INTEGER NOT NULL,
		coord_system_name TEXT
	)`,
	`CREATE TABLE method_link (
		method_link_id INTEGER PRIMARY KEY,
		type TEXT NOT NULL
	)`,
	`CREATE TABLE species_set (
		species_set_id INTEGER NOT NULL,
		genome_db_id INTEGER NOT NULL,
		PRIMARY KEY (species_set_id, genome_db_id)
	)`,
	`CREATE TABLE method_link_species_set (
		method_link_species_set_id INTEGER PRIMARY KEY,
		method_link_id INTEGER NOT NULL,
		species_set_id INTEGER NOT NULL,
		name TEXT
	)`,
	`CREATE TABLE genomic_align_block (
		genomic_align_block_id INTEGER PRIMARY KEY,
		method_link_species_set_id INTEGER NOT NULL,
		score REAL,
		perc_id INTEGER,
		length INTEGER
	)`,
	`CREATE TABLE genomic_align (
		genomic_align_id INTEGER PRIMARY KEY,
		genomic_align_block_id INTEGER NOT NULL,
		method_link_species_set_id INTEGER NOT NULL,
		dnafrag_id INTEGER NOT NULL,
		dnafrag_start INTEGER NOT NULL,
		dnafrag_end INTEGER NOT NULL,
		dnafrag_strand INTEGER NOT NULL,
		cigar_line TEXT
	)`,
	`CREATE TABLE genomic_align_group (
		group_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		genomic_align_id INTEGER NOT NULL,
		PRIMARY KEY (group_id, genomic_align_id)
	)`,
	`CREATE TABLE synteny_region (
		synteny_region_id INTEGER PRIMARY KEY,
		rel_orientation INTEGER
	)`,
	`CREATE TABLE dnafrag_region (
		synteny_region_id INTEGER NOT NULL,
		dnafrag_id INTEGER NOT NULL,
		seq_start INTEGER NOT NULL,
		seq_end INTEGER NOT NULL,
		PRIMARY KEY (synteny_region_id, dnafrag_id)
	)`,
	`CREATE TABLE sequence (
		sequence_id INTEGER PRIMARY KEY,
		length INTEGER NOT NULL,
		sequence TEXT NOT NULL
	)`,
	`CREATE TABLE member (
		member_id INTEGER PRIMARY KEY,
		stable_id TEXT NOT NULL,
		source_name TEXT NOT NULL,
		taxon_id INTEGER NOT NULL,
		genome_db_id INTEGER NOT NULL,
		sequence_id INTEGER NOT NULL DEFAULT 0,
		chr_name TEXT,
		chr_start INTEGER,
		chr_end INTEGER,
		chr_strand INTEGER
	)`,
	`CREATE TABLE homology (
		homology_id INTEGER PRIMARY KEY,
		stable_id TEXT,
		method_link_species_set_id INTEGER NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE homology_member (
		homology_id INTEGER NOT NULL,
		member_id INTEGER NOT NULL,
		peptide_member_id INTEGER NOT NULL DEFAULT 0,
		cigar_line TEXT,
		PRIMARY KEY (homology_id, member_id)
	)`,
	`CREATE TABLE family (
		family_id INTEGER PRIMARY KEY,
		stable_id TEXT NOT NULL,
		method_link_species_set_id INTEGER NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE family_member (
		family_id INTEGER NOT NULL,
		member_id INTEGER NOT NULL,
		cigar_line TEXT,
		PRIMARY KEY (family_id, member_id)
	)`,
}

// SchemaDDL returns the fixture schema statements in creation order.
func SchemaDDL() []string {
	ddl := make([]string, len(schemaDDL))
	copy(ddl, schemaDDL)
	return ddl
}

// CreateSourceDB writes a sqlite database at path with the fixture
// schema and the given row statements.
func CreateSourceDB(t *testing.T, path string, rows []string) {
	t.Helper()

	sdb, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer sdb.Close()

	for _, q := range schemaDDL {
		_, err = sdb.Exec(q)
		require.NoError(t, err, q)
	}
	for _, q := range rows {
		_, err = sdb.Exec(q)
		require.NoError(t, err, q)
	}
}
