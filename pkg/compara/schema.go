package compara

// Tables of the subset schema, in the order the structural clone
// creates them. The pipeline treats rows as opaque tuples; only the
// join and filter columns named in FKEdges and in the step queries are
// interpreted.
var tables = []string{
	"meta",
	"taxon",
	"genome_db",
	"dnafrag",
	"method_link",
	"species_set",
	"method_link_species_set",
	"genomic_align_block",
	"genomic_align",
	"genomic_align_group",
	"synteny_region",
	"dnafrag_region",
	"sequence",
	"member",
	"homology",
	"homology_member",
	"family",
	"family_member",
}

// Tables returns the subset table names in creation order.
func Tables() []string {
	res := make([]string, len(tables))
	copy(res, tables)
	return res
}

// MetaMaxAlignmentLength is the source meta key holding the longest
// alignment length in the schema. The windows pass widens its lower
// selection bound by this value so alignments anchored upstream of a
// window but extending into it are not missed.
const MetaMaxAlignmentLength = "max_alignment_length"

// DefaultMaxAlignmentLength is used when the source meta table carries
// no max_alignment_length entry. Widening the bound too far is safe:
// the overlap predicate still filters the result; only index
// friendliness suffers.
const DefaultMaxAlignmentLength int64 = 3_000_000

// FKEdge is one foreign-key relationship of the subset schema:
// ChildTable.ChildColumn references ParentTable.ParentColumn.
type FKEdge struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string

	// Nullable edges skip NULL child values during closure checks.
	Nullable bool

	// ZeroAsNull marks legacy numeric columns where 0 means "no
	// reference" (member.sequence_id for genes without a translation,
	// homology_member.peptide_member_id for gene-level homologies).
	ZeroAsNull bool
}

// String renders the edge as child.column -> parent.column.
func (e FKEdge) String() string {
	return e.ChildTable + "." + e.ChildColumn +
		" -> " + e.ParentTable + "." + e.ParentColumn
}

var fkEdges = []FKEdge{
	{ChildTable: "genome_db", ChildColumn: "taxon_id", ParentTable: "taxon", ParentColumn: "taxon_id"},
	{ChildTable: "dnafrag", ChildColumn: "genome_db_id", ParentTable: "genome_db", ParentColumn: "genome_db_id"},
	{ChildTable: "method_link_species_set", ChildColumn: "method_link_id", ParentTable: "method_link", ParentColumn: "method_link_id"},
	// species_set_id groups rows rather than naming a single parent
	// row; the edge still demands at least one group row per MLSS.
	{ChildTable: "method_link_species_set", ChildColumn: "species_set_id", ParentTable: "species_set", ParentColumn: "species_set_id"},
	{ChildTable: "species_set", ChildColumn: "genome_db_id", ParentTable: "genome_db", ParentColumn: "genome_db_id"},
	{ChildTable: "genomic_align_block", ChildColumn: "method_link_species_set_id", ParentTable: "method_link_species_set", ParentColumn: "method_link_species_set_id"},
	{ChildTable: "genomic_align", ChildColumn: "genomic_align_block_id", ParentTable: "genomic_align_block", ParentColumn: "genomic_align_block_id"},
	{ChildTable: "genomic_align", ChildColumn: "method_link_species_set_id", ParentTable: "method_link_species_set", ParentColumn: "method_link_species_set_id"},
	{ChildTable: "genomic_align", ChildColumn: "dnafrag_id", ParentTable: "dnafrag", ParentColumn: "dnafrag_id"},
	{ChildTable: "genomic_align_group", ChildColumn: "genomic_align_id", ParentTable: "genomic_align", ParentColumn: "genomic_align_id"},
	// synteny_region carries no method-link reference in this schema
	// generation; its closure flows through dnafrag_region anchors.
	{ChildTable: "dnafrag_region", ChildColumn: "synteny_region_id", ParentTable: "synteny_region", ParentColumn: "synteny_region_id"},
	{ChildTable: "dnafrag_region", ChildColumn: "dnafrag_id", ParentTable: "dnafrag", ParentColumn: "dnafrag_id"},
	{ChildTable: "member", ChildColumn: "taxon_id", ParentTable: "taxon", ParentColumn: "taxon_id"},
	{ChildTable: "member", ChildColumn: "genome_db_id", ParentTable: "genome_db", ParentColumn: "genome_db_id"},
	{ChildTable: "member", ChildColumn: "sequence_id", ParentTable: "sequence", ParentColumn: "sequence_id", Nullable: true, ZeroAsNull: true},
	{ChildTable: "homology", ChildColumn: "method_link_species_set_id", ParentTable: "method_link_species_set", ParentColumn: "method_link_species_set_id"},
	{ChildTable: "homology_member", ChildColumn: "homology_id", ParentTable: "homology", ParentColumn: "homology_id"},
	{ChildTable: "homology_member", ChildColumn: "member_id", ParentTable: "member", ParentColumn: "member_id"},
	{ChildTable: "homology_member", ChildColumn: "peptide_member_id", ParentTable: "member", ParentColumn: "member_id", Nullable: true, ZeroAsNull: true},
	{ChildTable: "family", ChildColumn: "method_link_species_set_id", ParentTable: "method_link_species_set", ParentColumn: "method_link_species_set_id"},
	{ChildTable: "family_member", ChildColumn: "family_id", ParentTable: "family", ParentColumn: "family_id"},
	{ChildTable: "family_member", ChildColumn: "member_id", ParentTable: "member", ParentColumn: "member_id"},
}

// FKEdges returns the foreign-key graph of the subset schema.
// Referential closure means: for every destination row, each edge's
// child value either is absent (NULL, or 0 on ZeroAsNull edges) or
// resolves to a destination parent row.
func FKEdges() []FKEdge {
	res := make([]FKEdge, len(fkEdges))
	copy(res, fkEdges)
	return res
}
