package regions

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parseLegacy reads the bracketed-list format of the older Perl pipelines:
// an opening "[" line, then one "[name, start, end]," record per line,
// then a closing "]". Names are unquoted; surrounding whitespace and
// trailing commas are tolerated. Blank lines are skipped.
func parseLegacy(data []byte) ([]Region, error) {
	var (
		rr     []Region
		opened bool
		closed bool
		lineNo int
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimSuffix(line, ",")
		if line == "" {
			continue
		}

		switch {
		case !opened:
			if line != "[" {
				return nil, fmt.Errorf("line %d: expected '[' opening the list", lineNo)
			}
			opened = true
		case line == "]":
			closed = true
		case closed:
			return nil, fmt.Errorf("line %d: content after closing ']'", lineNo)
		default:
			r, err := parseLegacyRecord(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			rr = append(rr, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !opened || !closed {
		return nil, fmt.Errorf("list is not wrapped in '[' and ']'")
	}
	return rr, nil
}

func parseLegacyRecord(line string) (Region, error) {
	var r Region
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return r, fmt.Errorf("record %q is not bracketed", line)
	}
	parts := strings.Split(line[1:len(line)-1], ",")
	if len(parts) != 3 {
		return r, fmt.Errorf("record %q does not have 3 fields", line)
	}

	r.Name = strings.Trim(strings.TrimSpace(parts[0]), `"'`)
	var err error
	r.Start, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return r, fmt.Errorf("record %q: bad start: %w", line, err)
	}
	r.End, err = strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return r, fmt.Errorf("record %q: bad end: %w", line, err)
	}
	return r, nil
}
