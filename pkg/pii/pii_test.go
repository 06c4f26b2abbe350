package pii

import (
	"strings"
	"testing"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

func tbl(t *testing.T, rows ...[]string) *c.Table {
	t.Helper()
	tb := c.NewTable(c.CustomerSchema())
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

func goodRow(id string) []string {
	return []string{id, "Ada", "Lovelace", "ada@example.com", "555-123-4567",
		"1990-06-15", "12 Main St", "52000", "active", "2020-01-01"}
}

func TestScanRequiresColumns(t *testing.T) {
	tb := c.NewTable(c.Schema{Columns: []c.ColumnSchema{{Name: c.ColEmail, Type: c.KindString}}})
	if _, err := Scan(tb); err == nil {
		t.Fatal("missing required columns must abort the scan")
	}
}

func TestScanDetection(t *testing.T) {
	r1 := goodRow("1")
	r2 := goodRow("2")
	r2[3] = "not an email"
	r2[4] = "call me" // no phone shape
	r3 := []string{"3", "", "Curie", "", "+1 (555) 987-6543", "", "", "", "active", "2020-01-01"}
	f, err := Scan(tbl(t, r1, r2, r3))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.EmailRows) != 1 || f.EmailRows[0] != 0 {
		t.Fatalf("email rows: %v", f.EmailRows)
	}
	if len(f.PhoneRows) != 2 {
		t.Fatalf("phone rows: %v", f.PhoneRows)
	}
	// row 2 has only a last name, still a name hit
	if len(f.NameRows) != 3 {
		t.Fatalf("name rows: %v", f.NameRows)
	}
	if len(f.AddressRows) != 2 || len(f.DOBRows) != 2 || len(f.IncomeRows) != 2 {
		t.Fatalf("presence rows: addr=%v dob=%v income=%v", f.AddressRows, f.DOBRows, f.IncomeRows)
	}
}

func TestScanInventory(t *testing.T) {
	f, err := Scan(tbl(t, goodRow("1")))
	if err != nil {
		t.Fatal(err)
	}
	labels := f.Inventory[0]
	if len(labels) != 6 {
		t.Fatalf("row 0 should carry all six PII labels, got %v", labels)
	}
}

func TestColumnInventory(t *testing.T) {
	inv := ColumnInventory()
	if inv[c.ColEmail].Risk != RiskHigh || inv[c.ColIncome].Risk != RiskMedium {
		t.Fatalf("unexpected inventory: %+v", inv)
	}
	if _, ok := inv[c.ColCustomerID]; ok {
		t.Fatal("customer_id is not PII")
	}
}

func TestTextReport(t *testing.T) {
	f, err := Scan(tbl(t, goodRow("1"), goodRow("2")))
	if err != nil {
		t.Fatal(err)
	}
	out := f.Text(2)
	for _, substr := range []string{
		"PII DETECTION REPORT", "RISK ASSESSMENT:", "DETECTED PII:",
		"Email", "100.0%", "PII BY ROW:", "COLUMN CLASSIFICATION:", "MITIGATION:",
	} {
		if !strings.Contains(out, substr) {
			t.Fatalf("report missing %q:\n%s", substr, out)
		}
	}
}

func TestTextReportByRow(t *testing.T) {
	r1 := goodRow("42")
	r2 := []string{"7", "", "", "", "", "", "", "", "active", "2020-01-01"}
	f, err := Scan(tbl(t, r1, r2))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.IDs) != 2 || f.IDs[0] != "42" || f.IDs[1] != "7" {
		t.Fatalf("ids: %v", f.IDs)
	}
	out := f.Text(2)
	if !strings.Contains(out, "Row  2 (ID=42): Name (first/last), Email, Phone, Address, Date of Birth, Income") {
		t.Fatalf("missing full inventory line:\n%s", out)
	}
	if !strings.Contains(out, "Row  3 (ID=7): no PII detected") {
		t.Fatalf("missing empty inventory line:\n%s", out)
	}
	if !strings.Contains(out, "HIGH:   address, date_of_birth, email, first_name, last_name, phone") {
		t.Fatalf("missing risk assessment line:\n%s", out)
	}
}
