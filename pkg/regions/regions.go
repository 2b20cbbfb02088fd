// Package regions models seed-region windows: ordered lists of
// (name, start, end) genomic intervals that select which slices of a
// reference genome a subset run keeps. The same format is consumed on
// input and emitted for companion genomes, so files produced by one run
// can seed the next tool in the chain.
//
// The canonical on-disk form is a JSON array of objects:
//
//	[
//	  {"name": "chr1", "start": 1000000, "end": 1100000},
//	  {"name": "chr5", "start": 500000, "end": 600000}
//	]
//
// For compatibility the reader also accepts the legacy bracketed-list
// files of the older Perl pipelines, one triple per line:
//
//	[
//	[chr1, 1000000, 1100000],
//	[chr5, 500000, 600000]
//	]
package regions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// DefaultFlank is the context, in bases, assumed around each emitted
// interval when merging runs of alignments into seed regions. Two
// intervals whose flanked extents touch are merged into one record.
const DefaultFlank int64 = 100_000

// Region is one genomic window on a named sequence region.
// Coordinates are 1-based and inclusive on both ends.
type Region struct {
	Name  string `json:"name"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Validate checks a single region for structural sanity.
func (r Region) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("region name is empty")
	}
	if r.Start < 1 {
		return fmt.Errorf("region %s: start %d is below 1", r.Name, r.Start)
	}
	if r.Start > r.End {
		return fmt.Errorf(
			"region %s: start %d is greater than end %d",
			r.Name, r.Start, r.End,
		)
	}
	return nil
}

// Validate checks every region in the list, reporting the first
// offending record by its position.
func Validate(rr []Region) error {
	for i, r := range rr {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

// Parse reads a seed-region list from r. It first tries the canonical
// JSON form and falls back to the legacy bracketed-list form. The
// returned list preserves file order and is validated.
func Parse(r io.Reader) ([]Region, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read seed regions: %w", err)
	}

	var rr []Region
	if jsonErr := json.Unmarshal(data, &rr); jsonErr != nil {
		rr, err = parseLegacy(data)
		if err != nil {
			return nil, fmt.Errorf(
				"cannot parse seed regions as JSON (%v) or legacy list: %w",
				jsonErr, err,
			)
		}
	}

	if err := Validate(rr); err != nil {
		return nil, err
	}
	return rr, nil
}

// ParseFile reads and validates a seed-region file from path.
func ParseFile(path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open seed-region file: %w", err)
	}
	defer f.Close()

	rr, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rr, nil
}

// Write renders rr in the canonical JSON form, one record per line.
// An empty list is written as "[]" so downstream readers always find a
// well-formed file, even for genomes without any copied alignments.
func Write(w io.Writer, rr []Region) error {
	if len(rr) == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}

	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	for i, r := range rr {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("cannot encode region %s: %w", r.Name, err)
		}
		sep := ",\n"
		if i == len(rr)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "  %s%s", line, sep); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

// WriteFile writes rr to path in the canonical form, replacing any
// existing file.
func WriteFile(path string, rr []Region) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create seed-region file: %w", err)
	}
	if err := Write(f, rr); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Merge collapses intervals that lie close together on the same region.
// Each interval is notionally extended by flank bases on both sides;
// runs whose extended forms touch become one record spanning the
// original (unextended) coordinates. The input is not modified; the
// result is sorted by name, start, end.
//
// With the default flank, two intervals merge when the gap between them
// is at most twice the flank. This mirrors how alignment footprints are
// padded with surrounding context before being handed to the companion
// core-database subsetter.
func Merge(rr []Region, flank int64) []Region {
	if len(rr) == 0 {
		return nil
	}

	sorted := make([]Region, len(rr))
	copy(sorted, rr)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})

	res := make([]Region, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.Name == cur.Name && next.Start-cur.End <= 2*flank {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		res = append(res, cur)
		cur = next
	}
	return append(res, cur)
}
