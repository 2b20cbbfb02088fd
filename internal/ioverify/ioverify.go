// Package ioverify implements the closure check: it walks every
// foreign-key edge of the subset schema in a destination and counts
// child rows whose reference resolves to no parent row. This is an
// impure I/O package that implements the compara.ClosureVerifier
// contract.
//
// Edges are independent, so they are checked concurrently; the jobs
// setting bounds the in-flight queries. Count queries only read the
// destination, never the source.
package ioverify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// verifier implements the compara.ClosureVerifier interface on top of
// a connected database operator.
type verifier struct {
	op   db.Operator
	jobs int
}

// NewVerifier creates a new ClosureVerifier running up to jobs edge
// checks at a time. A jobs value below 1 means one at a time.
func NewVerifier(op db.Operator, jobs int) compara.ClosureVerifier {
	if jobs < 1 {
		jobs = 1
	}
	return &verifier{op: op, jobs: jobs}
}

// Verify checks every foreign-key edge of the subset schema and
// reports per-edge violation counts in edge-list order.
func (v *verifier) Verify(ctx context.Context) (*compara.Report, error) {
	start := time.Now()
	edges := compara.FKEdges()

	slog.Info("closure check starting",
		"edges", len(edges),
		"jobs", v.jobs,
	)
	bar := newProgressBar(len(edges), "Checking closure: ")
	defer bar.Finish()

	results := make([]compara.EdgeResult, len(edges))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(v.jobs)

	for i, edge := range edges {
		g.Go(func() error {
			n, err := v.countDangling(gCtx, edge)
			if err != nil {
				return EdgeError(edge, err)
			}
			results[i] = compara.EdgeResult{Edge: edge, Violations: n}
			bar.Increment()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()

	rep := &compara.Report{Edges: results}
	slog.Info("closure check complete",
		"violations", rep.Violations(),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	v.printReport(rep, len(edges))
	return rep, nil
}

// danglingQuery renders the count of child rows of one edge whose
// reference resolves to no parent row. NULL references are no
// reference; on legacy zero-as-null columns a 0 means the same.
func (v *verifier) danglingQuery(edge compara.FKEdge) string {
	cond := fmt.Sprintf("c.%s NOT IN (SELECT p.%s FROM %s p)",
		edge.ChildColumn, edge.ParentColumn,
		v.op.DestTable(edge.ParentTable))
	if edge.Nullable {
		cond = fmt.Sprintf("c.%s IS NOT NULL AND %s",
			edge.ChildColumn, cond)
	}
	if edge.ZeroAsNull {
		cond = fmt.Sprintf("c.%s <> 0 AND %s", edge.ChildColumn, cond)
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s c WHERE %s",
		v.op.DestTable(edge.ChildTable), cond)
}

func (v *verifier) countDangling(
	ctx context.Context, edge compara.FKEdge,
) (int64, error) {
	var n int64
	if err := v.op.DB().GetContext(ctx, &n, v.danglingQuery(edge)); err != nil {
		return 0, err
	}
	return n, nil
}

// printReport lists the broken edges, or confirms closure.
func (v *verifier) printReport(rep *compara.Report, edges int) {
	total := rep.Violations()
	if total == 0 {
		gn.Info("Closure verified: all <em>%d</em> foreign-key edges resolve.",
			edges)
		return
	}

	gn.Warn("Destination is not closed: <em>%s</em> dangling references.",
		humanize.Comma(total))
	for _, e := range rep.Edges {
		if e.Violations == 0 {
			continue
		}
		gn.Warn("  %-52s %12s rows", e.Edge.String(),
			humanize.Comma(e.Violations))
	}
}

// newProgressBar creates a new progress bar with consistent settings.
func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
