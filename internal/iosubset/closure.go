package iosubset

import (
	"context"
	"fmt"
)

// The closure pass restores referential closure after the windows pass:
// each step selects from the source joined against rows already in the
// destination, so the destination is closed again once every step has
// run. All closure inserts are duplicate-ignoring.

// closureDnafrag copies the fragment of every destination alignment,
// covering both the reference windows and the companion side pulled in
// by the block closure.
func (s *subsetter) closureDnafrag(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT df.* FROM %s df
WHERE df.dnafrag_id IN
	(SELECT dnafrag_id FROM %s)`,
		s.src("dnafrag"), s.dst("genomic_align"))
	return s.copyRows(ctx, "dnafrag", body)
}

// closureSyntenyRegion copies synteny blocks anchored on destination
// fragments of the reference on one side and of a companion genome on
// the other, one pass per companion.
func (s *subsetter) closureSyntenyRegion(ctx context.Context) (int64, error) {
	var total int64
	for _, g := range s.companions {
		body := fmt.Sprintf(`SELECT DISTINCT sr.* FROM %s sr
JOIN %s dfr_r ON dfr_r.synteny_region_id = sr.synteny_region_id
JOIN %s df_r ON df_r.dnafrag_id = dfr_r.dnafrag_id
	AND df_r.genome_db_id = ?
JOIN %s dfr_o ON dfr_o.synteny_region_id = sr.synteny_region_id
JOIN %s df_o ON df_o.dnafrag_id = dfr_o.dnafrag_id
	AND df_o.genome_db_id = ?`,
			s.src("synteny_region"),
			s.src("dnafrag_region"), s.dst("dnafrag"),
			s.src("dnafrag_region"), s.dst("dnafrag"))
		n, err := s.copyRows(ctx, "synteny_region", body,
			s.cfg.Subset.RefGenomeDBID, g.ID)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// closureDnafragRegion copies the anchor regions of every destination
// synteny block.
func (s *subsetter) closureDnafragRegion(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT dfr.* FROM %s dfr
WHERE dfr.synteny_region_id IN
	(SELECT synteny_region_id FROM %s)`,
		s.src("dnafrag_region"), s.dst("synteny_region"))
	return s.copyRows(ctx, "dnafrag_region", body)
}

// closureHomologyMember copies the member links of every destination
// homology.
func (s *subsetter) closureHomologyMember(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT hm.* FROM %s hm
WHERE hm.homology_id IN
	(SELECT homology_id FROM %s)`,
		s.src("homology_member"), s.dst("homology"))
	return s.copyRows(ctx, "homology_member", body)
}

// closureFamilyMember copies the member links of every destination
// family.
func (s *subsetter) closureFamilyMember(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT fm.* FROM %s fm
WHERE fm.family_id IN
	(SELECT family_id FROM %s)`,
		s.src("family_member"), s.dst("family"))
	return s.copyRows(ctx, "family_member", body)
}

// closureMember copies members referenced by destination family and
// homology links; peptide references count as absent when 0 (legacy
// zero-as-null convention).
func (s *subsetter) closureMember(ctx context.Context) (int64, error) {
	var total int64

	bodies := []string{
		fmt.Sprintf(`SELECT m.* FROM %s m
WHERE m.member_id IN
	(SELECT member_id FROM %s)`,
			s.src("member"), s.dst("family_member")),
		fmt.Sprintf(`SELECT m.* FROM %s m
WHERE m.member_id IN
	(SELECT member_id FROM %s)`,
			s.src("member"), s.dst("homology_member")),
		fmt.Sprintf(`SELECT m.* FROM %s m
WHERE m.member_id IN
	(SELECT peptide_member_id FROM %s
	 WHERE peptide_member_id > 0)`,
			s.src("member"), s.dst("homology_member")),
	}

	for _, body := range bodies {
		n, err := s.copyRows(ctx, "member", body)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// closureSequence copies the sequence of every destination member with
// a real sequence reference (0 means none).
func (s *subsetter) closureSequence(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT sq.* FROM %s sq
WHERE sq.sequence_id IN
	(SELECT sequence_id FROM %s WHERE sequence_id > 0)`,
		s.src("sequence"), s.dst("member"))
	return s.copyRows(ctx, "sequence", body)
}

// closureTaxon copies the taxa of destination members and of the full
// genome registry.
func (s *subsetter) closureTaxon(ctx context.Context) (int64, error) {
	var total int64

	bodies := []string{
		fmt.Sprintf(`SELECT t.* FROM %s t
WHERE t.taxon_id IN
	(SELECT taxon_id FROM %s)`,
			s.src("taxon"), s.dst("member")),
		fmt.Sprintf(`SELECT t.* FROM %s t
WHERE t.taxon_id IN
	(SELECT taxon_id FROM %s)`,
			s.src("taxon"), s.dst("genome_db")),
	}

	for _, body := range bodies {
		n, err := s.copyRows(ctx, "taxon", body)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// closureMLSS re-derives method_link_species_set from the MLSS ids the
// destination actually uses, one pass per owning table, so unused
// reference-only configuration stays out of the subset.
func (s *subsetter) closureMLSS(ctx context.Context) (int64, error) {
	var total int64

	for _, owner := range []string{
		"genomic_align_block", "homology", "family",
	} {
		body := fmt.Sprintf(`SELECT mlss.* FROM %s mlss
WHERE mlss.method_link_species_set_id IN
	(SELECT DISTINCT method_link_species_set_id FROM %s)`,
			s.src("method_link_species_set"), s.dst(owner))
		n, err := s.copyRows(ctx, "method_link_species_set", body)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// closureMethodLink copies the method of every destination MLSS.
func (s *subsetter) closureMethodLink(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT ml.* FROM %s ml
WHERE ml.method_link_id IN
	(SELECT method_link_id FROM %s)`,
		s.src("method_link"), s.dst("method_link_species_set"))
	return s.copyRows(ctx, "method_link", body)
}

// closureSpeciesSet copies the species-set groups of every destination
// MLSS. The registry step already copied every genome_db row, so group
// rows cannot dangle.
func (s *subsetter) closureSpeciesSet(ctx context.Context) (int64, error) {
	body := fmt.Sprintf(`SELECT ss.* FROM %s ss
WHERE ss.species_set_id IN
	(SELECT species_set_id FROM %s)`,
		s.src("species_set"), s.dst("method_link_species_set"))
	return s.copyRows(ctx, "species_set", body)
}
