package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	c "github.com/wdm0006/custodian/pkg/custodian"
	iox "github.com/wdm0006/custodian/pkg/io/ioutils"
)

type ReaderOptions struct {
	Delimiter rune // 0 = sniff, default ','
	Strict    bool // if true, error on short/long records
}

// Reader loads a raw CSV into a Table. Every cell stays raw text; blank and
// whitespace-only cells become absent. A header line is required (the
// dataset's display positions count it).
type Reader struct {
	r   *csv.Reader
	rc  io.ReadCloser
	opt ReaderOptions
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (or stdin via "-", gzip transparently) for reading.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(rc)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	} else if path != "-" && path != "" {
		if d, lazy, err := sniffDelimiterAndQuotes(path); err == nil && d != 0 {
			rr.Comma = d
			rr.LazyQuotes = lazy
		}
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, rc: rc, opt: opt}, nil
}

func (r *Reader) Close() error { return r.rc.Close() }

// ReadAll reads the header and every row into a new Table. Column kinds
// come from the customer schema when the name is known, KindString
// otherwise; unknown columns are carried through untouched.
func (r *Reader) ReadAll() (*c.Table, error) {
	hdr, err := r.r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: reading header: %w", err)
	}
	names := make([]string, len(hdr))
	for i := range hdr {
		names[i] = strings.ToValidUTF8(strings.TrimSpace(hdr[i]), "?")
	}
	if len(names) > 0 {
		names[0] = strings.TrimPrefix(names[0], "\ufeff")
	}

	schema := c.Schema{Columns: make([]c.ColumnSchema, len(names))}
	for i, name := range names {
		schema.Columns[i] = c.ColumnSchema{Name: name, Type: kindFor(name)}
	}
	t := c.NewTable(schema)

	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: reading row %d: %w", t.Rows()+1, err)
		}
		if len(rec) > len(names) {
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv: long record: need %d fields, got %d", len(names), len(rec))
			}
		}
		t.AppendNullRow()
		row := t.Rows() - 1
		for i, name := range names {
			if i >= len(rec) {
				r.shortRecords++
				if r.opt.Strict {
					return nil, fmt.Errorf("csv: short record: need %d fields, got %d", len(names), len(rec))
				}
				continue
			}
			val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
			if val == "" {
				continue
			}
			_ = t.SetCell(row, name, val)
		}
	}
	return t, nil
}

// Read is the one-shot convenience wrapper around Open/ReadAll/Close.
func Read(path string, opt ReaderOptions) (*c.Table, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}

func kindFor(name string) c.Kind {
	for _, cs := range c.CustomerSchema().Columns {
		if cs.Name == name {
			return cs.Type
		}
	}
	return c.KindString
}

func sniffDelimiterAndQuotes(path string) (rune, bool, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', false, nil
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, cand := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == cand {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = cand
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount > 0, nil
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
