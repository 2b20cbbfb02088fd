package iosubset

import (
	"context"
	"fmt"
)

// seedRegistry copies the full genome registry: every genome_db row
// (locator nulled, a source connection locator means nothing in a test
// copy) and every meta row, so destination metadata such as
// max_alignment_length survives the subset.
func (s *subsetter) seedRegistry(ctx context.Context) (int64, error) {
	var total int64

	body := fmt.Sprintf("SELECT g.* FROM %s g", s.src("genome_db"))
	n, err := s.copyRows(ctx, "genome_db", body)
	if err != nil {
		return 0, err
	}
	total += n

	q := "UPDATE " + s.dst("genome_db") + " SET locator = NULL"
	if _, err := s.tx.ExecContext(ctx, q); err != nil {
		return 0, ExecError("locator nulling", err)
	}

	body = fmt.Sprintf("SELECT m.* FROM %s m", s.src("meta"))
	n, err = s.copyRows(ctx, "meta", body)
	if err != nil {
		return 0, err
	}
	total += n

	return total, nil
}
