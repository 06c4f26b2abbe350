package golearn

import (
	"testing"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

func customerTable(t *testing.T) *c.Table {
	t.Helper()
	tb := c.NewTable(c.CustomerSchema())
	rows := [][]string{
		{"1", "Ada", "Lovelace", "ada@example.com", "555-123-4567",
			"1990-06-15", "12 Main St", "52000", "active", "2020-01-01"},
		{"2", "Grace", "", "grace@example.com", "", // absent last_name and phone
			"1985-02-10", "9 Oak Ave", "61000", "inactive", "2021-07-30"},
	}
	cols := tb.Schema().Columns
	for r, row := range rows {
		tb.AppendNullRow()
		for i, v := range row {
			if v == "" {
				continue
			}
			_ = tb.SetCell(r, cols[i].Name, v)
		}
	}
	return tb
}

func TestRoundTrip(t *testing.T) {
	src := customerTable(t)
	inst, err := ToDenseInstances(src)
	if err != nil {
		t.Fatal(err)
	}
	ncols, nrows := inst.Size()
	if ncols != len(src.Schema().Columns) || nrows != src.Rows() {
		t.Fatalf("instances size %dx%d, want %dx%d",
			ncols, nrows, len(src.Schema().Columns), src.Rows())
	}

	got, err := FromDenseInstances(inst)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows() != src.Rows() {
		t.Fatalf("rows: got %d, want %d", got.Rows(), src.Rows())
	}
	for r := 0; r < src.Rows(); r++ {
		for _, cs := range src.Schema().Columns {
			want, wantOK := src.Get(r, cs.Name)
			have, haveOK := got.Get(r, cs.Name)
			if wantOK != haveOK || want != have {
				t.Fatalf("row %d %s: got (%q,%v), want (%q,%v)",
					r, cs.Name, have, haveOK, want, wantOK)
			}
		}
	}
}

func TestColumnOrderAndClass(t *testing.T) {
	src := customerTable(t)
	inst, err := ToDenseInstances(src)
	if err != nil {
		t.Fatal(err)
	}
	attrs := inst.AllAttributes()
	for i, cs := range src.Schema().Columns {
		if attrs[i].GetName() != cs.Name {
			t.Fatalf("attribute %d is %q, want %q", i, attrs[i].GetName(), cs.Name)
		}
	}
	class := inst.AllClassAttributes()
	last := src.Schema().Columns[len(src.Schema().Columns)-1].Name
	if len(class) != 1 || class[0].GetName() != last {
		t.Fatalf("class attribute should be %s, got %v", last, class)
	}
}
