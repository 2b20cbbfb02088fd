package iosubset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/comparadb/comparasub/pkg/regions"
)

// footRow is one alignment footprint interval on a companion genome.
// The column aliases sidestep "end", reserved in MySQL.
type footRow struct {
	Name  string `db:"region_name"`
	Start int64  `db:"region_start"`
	End   int64  `db:"region_end"`
}

// emitSeeds writes one seed-region file per companion genome under the
// output directory, describing the copied alignment footprint on that
// genome. It runs after the population transaction has committed and
// reads the destination through the operator handle. A genome without
// any copied alignments still gets a file holding an empty list.
func (s *subsetter) emitSeeds(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT df.name AS region_name,
	ga.dnafrag_start AS region_start,
	ga.dnafrag_end AS region_end
FROM %s ga
JOIN %s df ON df.dnafrag_id = ga.dnafrag_id
WHERE df.genome_db_id = ?
ORDER BY df.name, ga.dnafrag_start, ga.dnafrag_end`,
		s.dst("genomic_align"), s.dst("dnafrag"))
	q = s.op.DB().Rebind(q)

	var files []string
	for _, g := range s.companions {
		var rows []footRow
		err := s.op.DB().SelectContext(ctx, &rows, q, g.ID)
		if err != nil {
			return nil, LookupError(
				"the alignment footprint of "+g.Name, err,
			)
		}

		rr := make([]regions.Region, len(rows))
		for i, r := range rows {
			rr[i] = regions.Region{Name: r.Name, Start: r.Start, End: r.End}
		}
		merged := regions.Merge(rr, regions.DefaultFlank)

		stem := sanitizeName(g.Name)
		if stem == "" {
			stem = fmt.Sprintf("genome_%d", g.ID)
		}
		path := filepath.Join(s.cfg.Subset.OutDir, stem+".regions.json")
		if err := regions.WriteFile(path, merged); err != nil {
			return nil, EmitError(path, err)
		}

		slog.Info("seed regions emitted",
			"genome", g.Name,
			"intervals", len(merged),
			"file", path,
		)
		files = append(files, path)
	}
	return files, nil
}

// sanitizeName turns a genome name into a file-name stem: runs of
// anything but letters and digits collapse into one underscore.
func sanitizeName(name string) string {
	var b strings.Builder
	under := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			under = false
			continue
		}
		if !under {
			b.WriteByte('_')
			under = true
		}
	}
	return strings.Trim(b.String(), "_")
}
