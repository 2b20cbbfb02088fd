package iosubset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/comparadb/comparasub/pkg/regions"
	"github.com/gnames/gn"
)

// newProgressBar creates a new progress bar with consistent settings.
func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}

// windowsPass copies the window-anchored rows for every
// (companion genome, window) pair: alignments overlapping the window on
// the reference fragment, their blocks, the other side of each block,
// alignment groups, and the homologies and families joining the window
// to the companion.
func (s *subsetter) windowsPass(ctx context.Context) (int64, error) {
	bar := newProgressBar(len(s.companions)*len(s.windows),
		"Copying windows: ")
	defer bar.Finish()

	var total int64
	for _, g := range s.companions {
		mlss, ok, err := s.resolveMLSS(ctx, g.ID)
		if err != nil {
			return 0, err
		}
		if !ok {
			gn.Warn("No method_link_species_set joins genomes "+
				"<em>%d</em> and <em>%d</em> under method %d; skipping %s.",
				s.cfg.Subset.RefGenomeDBID, g.ID,
				s.cfg.Subset.MethodLinkID, g.Name)
			bar.Add(len(s.windows))
			continue
		}

		slog.Info("copying windows",
			"genome", g.Name,
			"genome_db_id", g.ID,
			"mlss", mlss,
		)

		for _, w := range s.windows {
			n, err := s.copyWindow(ctx, g, mlss, w)
			if err != nil {
				return 0, err
			}
			total += n
			bar.Increment()
		}
	}
	return total, nil
}

// resolveMLSS finds the method_link_species_set joining the reference
// and the companion genome under the configured method. With several
// candidates the lowest id wins; with none the pair carries no
// alignments and the caller skips it.
func (s *subsetter) resolveMLSS(
	ctx context.Context, genomeDBID int64,
) (int64, bool, error) {
	q := fmt.Sprintf(`SELECT mlss.method_link_species_set_id
FROM %s mlss
JOIN %s ss_r ON ss_r.species_set_id = mlss.species_set_id
	AND ss_r.genome_db_id = ?
JOIN %s ss_o ON ss_o.species_set_id = mlss.species_set_id
	AND ss_o.genome_db_id = ?
WHERE mlss.method_link_id = ?
ORDER BY mlss.method_link_species_set_id`,
		s.src("method_link_species_set"),
		s.src("species_set"),
		s.src("species_set"),
	)

	var id int64
	err := s.tx.GetContext(ctx, &id, s.tx.Rebind(q),
		s.cfg.Subset.RefGenomeDBID, genomeDBID, s.cfg.Subset.MethodLinkID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, LookupError("the method_link_species_set", err)
	}
	return id, true, nil
}

// resolveDnafrag finds the reference genome's fragment carrying the
// window's region name.
func (s *subsetter) resolveDnafrag(
	ctx context.Context, name string,
) (int64, bool, error) {
	q := fmt.Sprintf(
		"SELECT dnafrag_id FROM %s WHERE genome_db_id = ? AND name = ?",
		s.src("dnafrag"),
	)

	var id int64
	err := s.tx.GetContext(ctx, &id, s.tx.Rebind(q),
		s.cfg.Subset.RefGenomeDBID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, LookupError("the reference dnafrag", err)
	}
	return id, true, nil
}

// copyWindow copies one (companion genome, window) pair.
func (s *subsetter) copyWindow(
	ctx context.Context, g genomeRef, mlss int64, w regions.Region,
) (int64, error) {
	dnafragID, ok, err := s.resolveDnafrag(ctx, w.Name)
	if err != nil {
		return 0, err
	}
	if !ok {
		gn.Warn("Reference genome has no dnafrag named <em>%s</em>; "+
			"skipping window %s:%d-%d.", w.Name, w.Name, w.Start, w.End)
		return 0, nil
	}

	var total int64

	// Alignments on the reference fragment overlapping the window,
	// inclusive on both bounds. The lower bound is widened by
	// max_alignment_length so alignments anchored upstream of the
	// window but extending into it are not missed.
	body := fmt.Sprintf(`SELECT ga.* FROM %s ga
WHERE ga.method_link_species_set_id = ?
	AND ga.dnafrag_id = ?
	AND ga.dnafrag_start <= ?
	AND ga.dnafrag_end >= ?
	AND ga.dnafrag_start >= ?`,
		s.src("genomic_align"))
	n, err := s.copyRows(ctx, "genomic_align", body,
		mlss, dnafragID, w.End, w.Start, w.Start-s.maxLen)
	if err != nil {
		return 0, err
	}
	total += n

	// Blocks referenced by destination alignments.
	body = fmt.Sprintf(`SELECT gab.* FROM %s gab
WHERE gab.genomic_align_block_id IN
	(SELECT genomic_align_block_id FROM %s)`,
		s.src("genomic_align_block"), s.dst("genomic_align"))
	n, err = s.copyRows(ctx, "genomic_align_block", body)
	if err != nil {
		return 0, err
	}
	total += n

	// The other side of each block: alignments of destination blocks
	// on any genome, completing the bidirectional block closure.
	body = fmt.Sprintf(`SELECT ga.* FROM %s ga
WHERE ga.genomic_align_block_id IN
	(SELECT genomic_align_block_id FROM %s)`,
		s.src("genomic_align"), s.dst("genomic_align_block"))
	n, err = s.copyRows(ctx, "genomic_align", body)
	if err != nil {
		return 0, err
	}
	total += n

	// Groups over destination alignments.
	body = fmt.Sprintf(`SELECT gag.* FROM %s gag
WHERE gag.genomic_align_id IN
	(SELECT genomic_align_id FROM %s)`,
		s.src("genomic_align_group"), s.dst("genomic_align"))
	n, err = s.copyRows(ctx, "genomic_align_group", body)
	if err != nil {
		return 0, err
	}
	total += n

	// Homologies joining a reference member overlapping the window to
	// a member of the companion genome. Plain insert: re-running a
	// (window, genome) pair against a populated destination is a usage
	// error, surfaced as a duplicate-key failure.
	body = fmt.Sprintf(`SELECT DISTINCT h.* FROM %s h
JOIN %s hm_r ON hm_r.homology_id = h.homology_id
JOIN %s m_r ON m_r.member_id = hm_r.member_id
JOIN %s hm_o ON hm_o.homology_id = h.homology_id
JOIN %s m_o ON m_o.member_id = hm_o.member_id
WHERE m_r.genome_db_id = ?
	AND m_r.chr_name = ?
	AND m_r.chr_start <= ?
	AND m_r.chr_end >= ?
	AND m_o.genome_db_id = ?`,
		s.src("homology"),
		s.src("homology_member"), s.src("member"),
		s.src("homology_member"), s.src("member"))
	n, err = s.insertRows(ctx, "homology", body,
		s.cfg.Subset.RefGenomeDBID, w.Name, w.End, w.Start, g.ID)
	if err != nil {
		return 0, err
	}
	total += n

	// Families, analogously. Duplicate-ignoring: families recur across
	// windows.
	body = fmt.Sprintf(`SELECT DISTINCT f.* FROM %s f
JOIN %s fm_r ON fm_r.family_id = f.family_id
JOIN %s m_r ON m_r.member_id = fm_r.member_id
JOIN %s fm_o ON fm_o.family_id = f.family_id
JOIN %s m_o ON m_o.member_id = fm_o.member_id
WHERE m_r.genome_db_id = ?
	AND m_r.chr_name = ?
	AND m_r.chr_start <= ?
	AND m_r.chr_end >= ?
	AND m_o.genome_db_id = ?`,
		s.src("family"),
		s.src("family_member"), s.src("member"),
		s.src("family_member"), s.src("member"))
	n, err = s.copyRows(ctx, "family", body,
		s.cfg.Subset.RefGenomeDBID, w.Name, w.End, w.Start, g.ID)
	if err != nil {
		return 0, err
	}
	total += n

	return total, nil
}
