package csvio

import (
	"encoding/csv"

	c "github.com/wdm0006/custodian/pkg/custodian"
	iox "github.com/wdm0006/custodian/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Table to a CSV file with headers ("-" for stdout,
// .gz transparently compressed). Absent cells are written as empty fields.
func WriteAll(path string, t *c.Table, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	hdr := make([]string, len(t.Schema().Columns))
	for i, cs := range t.Schema().Columns {
		hdr[i] = cs.Name
	}
	if err := w.Write(hdr); err != nil {
		return err
	}

	for r := 0; r < t.Rows(); r++ {
		row := make([]string, len(hdr))
		for i, cs := range t.Schema().Columns {
			if v, ok := t.Get(r, cs.Name); ok {
				row[i] = v
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
