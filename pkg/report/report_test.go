package report

import (
	"strings"
	"testing"

	c "github.com/wdm0006/custodian/pkg/custodian"
	"github.com/wdm0006/custodian/pkg/rules"
)

func TestValidationCleanReport(t *testing.T) {
	out := Validation(5, map[string][]rules.Failure{})
	if !strings.Contains(out, "PASS: 5 rows passed all checks") {
		t.Fatalf("missing pass line:\n%s", out)
	}
	if !strings.Contains(out, "FAIL: 0 rows failed at least one check") {
		t.Fatalf("missing fail line:\n%s", out)
	}
	if !strings.Contains(out, "No failures found across all columns.") {
		t.Fatalf("missing no-failures note:\n%s", out)
	}
	if !strings.Contains(out, "OVERALL: 0 total validation failure(s) across 0 row(s)") {
		t.Fatalf("missing overall line:\n%s", out)
	}
}

func TestValidationFailureReport(t *testing.T) {
	byCol := map[string][]rules.Failure{
		c.ColEmail: {
			{Row: 3, Column: c.ColEmail, Value: "BAD EMAIL", Rule: "Must be a valid email address format"},
			{Row: 7, Column: c.ColEmail, Value: "", Rule: "Must be non-empty"},
		},
		c.ColCustomerID: {
			{Row: 4, Column: c.ColCustomerID, Value: "42", Rule: "Must be unique (duplicate of row 2)"},
		},
	}
	out := Validation(10, byCol)
	if !strings.Contains(out, "PASS: 7 rows passed all checks") {
		t.Fatalf("pass count wrong:\n%s", out)
	}
	if !strings.Contains(out, "FAIL: 3 rows failed at least one check") {
		t.Fatalf("fail count wrong:\n%s", out)
	}
	if !strings.Contains(out, `Row 3: "BAD EMAIL" (Must be a valid email address format)`) {
		t.Fatalf("missing email failure line:\n%s", out)
	}
	// absent values print as NULL, not as an empty string
	if !strings.Contains(out, "Row 7: NULL (Must be non-empty)") {
		t.Fatalf("missing NULL display:\n%s", out)
	}
	// customer_id section precedes email in the fixed column order
	if strings.Index(out, "customer_id:") > strings.Index(out, "email:") {
		t.Fatalf("columns out of order:\n%s", out)
	}
	if !strings.Contains(out, "OVERALL: 3 total validation failure(s) across 3 row(s)") {
		t.Fatalf("overall line wrong:\n%s", out)
	}
}

func TestSummaryTableListsEveryColumn(t *testing.T) {
	out := Validation(1, map[string][]rules.Failure{})
	for _, col := range rules.ColumnOrder {
		if !strings.Contains(out, col) {
			t.Fatalf("summary missing column %s:\n%s", col, out)
		}
	}
}
