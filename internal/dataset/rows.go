package dataset

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/fetcher"
)

// Row is one data row addressed by column name.
type Row struct {
	cols   map[string]int
	fields []string
	line   int
}

// Get returns the named column's value, or "" when the row is short.
func (r Row) Get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Line returns the 1-based data row number (the header is row 0).
func (r Row) Line() int { return r.line }

// Rows ensures the source is cached, validates its header and calls fn for
// every data row. Iteration stops at the first error fn returns.
func (c *Cache) Rows(ctx context.Context, s Source, fn func(Row) error) error {
	path, err := c.Ensure(ctx, s, false)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: %s: open", s.Name)
	}
	defer f.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		Delimiter:  s.Delimiter,
		LazyQuotes: s.LazyQuotes,
		TrimSpace:  true,
	})

	var (
		cols    map[string]int
		line    int
		callErr error
	)
	for rec := range rowCh {
		if callErr != nil {
			continue
		}
		if cols == nil {
			cols, callErr = validateHeader(s, rec)
			if callErr != nil {
				cancel()
			}
			continue
		}
		line++
		if err := fn(Row{cols: cols, fields: rec, line: line}); err != nil {
			callErr = err
			cancel()
		}
	}
	streamErr := <-errCh

	if callErr != nil {
		return callErr
	}
	if streamErr != nil {
		return eris.Wrapf(streamErr, "dataset: %s: read", s.Name)
	}
	if cols == nil {
		return eris.Errorf("dataset: %s: empty file %s", s.Name, path)
	}
	return nil
}

func validateHeader(s Source, header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, req := range s.Required {
		if _, ok := cols[req]; !ok {
			available := make([]string, 0, len(cols))
			for h := range cols {
				available = append(available, h)
			}
			sort.Strings(available)
			return nil, eris.Wrapf(ErrMissingColumn, "%s: %q (available: %s)", s.Name, req, strings.Join(available, ", "))
		}
	}
	return cols, nil
}
