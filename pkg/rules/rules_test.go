package rules

import (
	"strings"
	"testing"
	"time"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

// row values follow CustomerSchema column order:
// customer_id, first_name, last_name, email, phone, date_of_birth,
// address, income, account_status, created_date. "" means absent.
func tbl(t *testing.T, rows ...[]string) *c.Table {
	t.Helper()
	tb := c.NewTable(c.CustomerSchema())
	cols := tb.Schema().Columns
	for r, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %d has %d values, want %d", r, len(row), len(cols))
		}
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

func fixedReg() *Registry {
	reg := DefaultRegistry()
	reg.Now = func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) }
	return reg
}

func TestValidateCleanTablePasses(t *testing.T) {
	reg := fixedReg()
	byCol, err := reg.Validate(tbl(t, goodRow("1"), goodRow("2")))
	if err != nil {
		t.Fatal(err)
	}
	if Total(byCol) != 0 {
		t.Fatalf("clean table should have no failures, got %v", byCol)
	}
}

func TestValidateMissingColumnIsStructural(t *testing.T) {
	tb := c.NewTable(c.Schema{Columns: []c.ColumnSchema{{Name: c.ColCustomerID, Type: c.KindInt}}})
	if _, err := fixedReg().Validate(tb); err == nil {
		t.Fatal("missing required columns must abort validation")
	}
}

func TestCustomerIDChecks(t *testing.T) {
	reg := fixedReg()
	rows := [][]string{
		goodRow("1"),
		goodRow(""),    // missing
		goodRow("abc"), // non-numeric
		goodRow("-3"),  // <= 0
		goodRow("3.7"), // float truncates to 3, valid
		goodRow("1"),   // duplicate of row 2
		goodRow("nan"), // parses in Go, rejected explicitly
	}
	byCol, err := reg.Validate(tbl(t, rows...))
	if err != nil {
		t.Fatal(err)
	}
	fs := byCol[c.ColCustomerID]
	if len(fs) != 5 {
		t.Fatalf("want 5 customer_id failures, got %d: %v", len(fs), fs)
	}
	if fs[0].Row != 3 || !strings.Contains(fs[0].Rule, "missing") {
		t.Fatalf("unexpected first failure: %+v", fs[0])
	}
	if fs[1].Row != 4 || !strings.Contains(fs[1].Rule, "non-numeric") {
		t.Fatalf("unexpected second failure: %+v", fs[1])
	}
	if fs[2].Row != 5 || !strings.Contains(fs[2].Rule, "<= 0") {
		t.Fatalf("unexpected third failure: %+v", fs[2])
	}
	if fs[3].Row != 7 || fs[3].Rule != "Must be unique (duplicate of row 2)" {
		t.Fatalf("unexpected duplicate failure: %+v", fs[3])
	}
	if fs[4].Row != 8 || !strings.Contains(fs[4].Rule, "non-numeric") {
		t.Fatalf("nan should be rejected as non-numeric: %+v", fs[4])
	}
}

func TestNameChecks(t *testing.T) {
	reg := fixedReg()
	r1 := goodRow("1")
	r1[1] = "" // missing first_name
	r2 := goodRow("2")
	r2[2] = "J" // too short, also fails pattern
	r3 := goodRow("3")
	r3[1] = "R2D2" // digits not allowed
	r4 := goodRow("4")
	r4[2] = "O'Brien-Smith" // apostrophe and hyphen are fine
	byCol, err := reg.Validate(tbl(t, r1, r2, r3, r4))
	if err != nil {
		t.Fatal(err)
	}
	if fs := byCol[c.ColFirstName]; len(fs) != 2 {
		t.Fatalf("first_name: want 2 failures, got %v", fs)
	}
	fs := byCol[c.ColLastName]
	if len(fs) != 2 {
		t.Fatalf("last_name: want 2 failures (length + pattern for one cell), got %v", fs)
	}
	if fs[0].Row != 3 || fs[1].Row != 3 {
		t.Fatalf("both last_name failures should be on row 3: %v", fs)
	}
}

// A registry with alternate length bounds keeps the charset check and the
// length check in agreement when Name is derived via NameRegexp.
func TestNameRegexpTracksBounds(t *testing.T) {
	reg := fixedReg()
	reg.MinNameLen, reg.MaxNameLen = 2, 3
	reg.Name = NameRegexp(reg.MinNameLen, reg.MaxNameLen)

	r1 := goodRow("1")
	r1[1] = "Eve" // within bounds
	r2 := goodRow("2")
	r2[1] = "Evelyn" // over both the length check and the pattern bound
	byCol, err := reg.Validate(tbl(t, r1, r2))
	if err != nil {
		t.Fatal(err)
	}
	fs := byCol[c.ColFirstName]
	if len(fs) != 2 {
		t.Fatalf("want length and charset failures together, got %v", fs)
	}
	if fs[0].Row != 3 || fs[1].Row != 3 {
		t.Fatalf("failures should both be on row 3: %v", fs)
	}
	if !strings.Contains(fs[0].Rule, "between 2 and 3") {
		t.Fatalf("length bound not from registry: %q", fs[0].Rule)
	}
}

func TestEmailAndPhoneChecks(t *testing.T) {
	reg := fixedReg()
	r1 := goodRow("1")
	r1[3] = "BAD EMAIL"
	r2 := goodRow("2")
	r2[3] = ""
	r2[4] = "555-1234" // 7 digits
	r3 := goodRow("3")
	r3[4] = "1-555-123-4567" // 11 digits, within 10-15
	byCol, err := reg.Validate(tbl(t, r1, r2, r3))
	if err != nil {
		t.Fatal(err)
	}
	emails := byCol[c.ColEmail]
	if len(emails) != 2 {
		t.Fatalf("want 2 email failures, got %v", emails)
	}
	if emails[0].Rule != "Must be a valid email address format" {
		t.Fatalf("unexpected email rule: %q", emails[0].Rule)
	}
	phones := byCol[c.ColPhone]
	if len(phones) != 1 || phones[0].Row != 3 {
		t.Fatalf("want 1 phone failure on row 3, got %v", phones)
	}
	if phones[0].Rule != "Stripped digit count must be 10-15 (got 7)" {
		t.Fatalf("unexpected phone rule: %q", phones[0].Rule)
	}
}

func TestDateChecks(t *testing.T) {
	reg := fixedReg()
	r1 := goodRow("1")
	r1[5] = "invalid_date"
	r2 := goodRow("2")
	r2[5] = "06/15/1990" // MM/DD accepted
	r3 := goodRow("3")
	r3[5] = "1850-01-01" // age > 150
	r4 := goodRow("4")
	r4[5] = "2030-01-01" // future DOB: two failures
	r5 := goodRow("5")
	r5[9] = "2099-01-01" // future created_date
	r6 := goodRow("6")
	r6[5] = "" // blank dates are not a rule failure
	byCol, err := reg.Validate(tbl(t, r1, r2, r3, r4, r5, r6))
	if err != nil {
		t.Fatal(err)
	}

	dob := byCol[c.ColDateOfBirth]
	if len(dob) != 4 {
		t.Fatalf("want 4 date_of_birth failures, got %v", dob)
	}
	if dob[0].Rule != "Not a valid date (literal 'invalid_date' string)" {
		t.Fatalf("unexpected rule: %q", dob[0].Rule)
	}
	if !strings.Contains(dob[1].Rule, "age > 150 years") {
		t.Fatalf("unexpected rule: %q", dob[1].Rule)
	}
	if dob[2].Row != 5 || dob[2].Rule != "Date must not be in the future" {
		t.Fatalf("unexpected rule: %+v", dob[2])
	}
	if dob[3].Row != 5 || dob[3].Rule != "Date of birth is in the future" {
		t.Fatalf("unexpected rule: %+v", dob[3])
	}

	created := byCol[c.ColCreatedDate]
	if len(created) != 1 || created[0].Row != 6 || created[0].Rule != "Date must not be in the future" {
		t.Fatalf("unexpected created_date failures: %v", created)
	}
}

func TestIncomeAndStatusChecks(t *testing.T) {
	reg := fixedReg()
	r1 := goodRow("1")
	r1[7] = "-500"
	r2 := goodRow("2")
	r2[7] = "not_a_number"
	r3 := goodRow("3")
	r3[7] = "20000000"
	r4 := goodRow("4")
	r4[8] = "pending"
	r5 := goodRow("5")
	r5[8] = "ACTIVE" // case-insensitive, valid
	r6 := goodRow("6")
	r6[6] = "" // missing address
	byCol, err := reg.Validate(tbl(t, r1, r2, r3, r4, r5, r6))
	if err != nil {
		t.Fatal(err)
	}
	inc := byCol[c.ColIncome]
	if len(inc) != 3 {
		t.Fatalf("want 3 income failures, got %v", inc)
	}
	if inc[0].Rule != "Income must be non-negative" {
		t.Fatalf("unexpected rule: %q", inc[0].Rule)
	}
	if inc[1].Rule != "Must be a numeric value" {
		t.Fatalf("unexpected rule: %q", inc[1].Rule)
	}
	if inc[2].Rule != "Income exceeds $10,000,000 upper bound" {
		t.Fatalf("unexpected rule: %q", inc[2].Rule)
	}

	st := byCol[c.ColAccountStatus]
	if len(st) != 1 || st[0].Row != 5 {
		t.Fatalf("want 1 status failure on row 5, got %v", st)
	}
	if st[0].Rule != "Must be one of: active, inactive, suspended (got 'pending')" {
		t.Fatalf("unexpected rule: %q", st[0].Rule)
	}

	addr := byCol[c.ColAddress]
	if len(addr) != 1 || addr[0].Row != 7 || addr[0].Rule != "Must be non-empty" {
		t.Fatalf("unexpected address failures: %v", addr)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	reg := fixedReg()
	r1 := goodRow("1")
	r1[3] = "BAD EMAIL"
	tb := tbl(t, r1)
	if _, err := reg.Validate(tb); err != nil {
		t.Fatal(err)
	}
	if v, _ := tb.Get(0, c.ColEmail); v != "BAD EMAIL" {
		t.Fatalf("validation mutated the table: %q", v)
	}
}

func TestFailedRowsAndTotal(t *testing.T) {
	byCol := map[string][]Failure{
		c.ColEmail: {{Row: 2}, {Row: 3}},
		c.ColPhone: {{Row: 2}},
	}
	if Total(byCol) != 3 {
		t.Fatalf("total: got %d", Total(byCol))
	}
	rows := FailedRows(byCol)
	if len(rows) != 2 || !rows[2] || !rows[3] {
		t.Fatalf("failed rows: got %v", rows)
	}
}

func TestAgeYears(t *testing.T) {
	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	age := AgeYears(dob, today)
	if age < 34.9 || age > 35.1 {
		t.Fatalf("want ~35 years, got %f", age)
	}
}

func TestStripDigits(t *testing.T) {
	if got := StripDigits("+1 (555) 123-4567"); got != "15551234567" {
		t.Fatalf("got %q", got)
	}
	if got := StripDigits("no digits"); got != "" {
		t.Fatalf("got %q", got)
	}
}
