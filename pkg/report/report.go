// Package report renders validation results for humans. The counts and row
// positions come straight from the validator; this package only formats.
package report

import (
	"fmt"
	"strings"

	c "github.com/wdm0006/custodian/pkg/custodian"
	"github.com/wdm0006/custodian/pkg/rules"
)

var ruleSummaries = map[string]string{
	c.ColCustomerID:    "Positive int, unique",
	c.ColFirstName:     "Non-empty, 2-50 chars, letters only",
	c.ColLastName:      "Non-empty, 2-50 chars, letters only",
	c.ColEmail:         "Valid email format",
	c.ColPhone:         "10-15 digits when stripped",
	c.ColDateOfBirth:   "Valid date, age 0-150 years",
	c.ColCreatedDate:   "Valid date, not in future",
	c.ColAddress:       "Non-empty string",
	c.ColIncome:        "Non-negative, <= $10M",
	c.ColAccountStatus: "active|inactive|suspended",
}

// Validation renders the full validation results report for a table of
// totalRows rows.
func Validation(totalRows int, byCol map[string][]rules.Failure) string {
	failedRows := rules.FailedRows(byCol)
	total := rules.Total(byCol)

	var b strings.Builder
	b.WriteString("VALIDATION RESULTS\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "PASS: %d rows passed all checks\n", totalRows-len(failedRows))
	fmt.Fprintf(&b, "FAIL: %d rows failed at least one check\n\n", len(failedRows))

	if total > 0 {
		b.WriteString("FAILURES BY COLUMN:\n")
		b.WriteString(strings.Repeat("-", 50) + "\n")
		for _, col := range rules.ColumnOrder {
			fs, ok := byCol[col]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\n%s:\n", col)
			for _, f := range fs {
				display := fmt.Sprintf("%q", f.Value)
				if f.Value == "" {
					display = "NULL"
				}
				fmt.Fprintf(&b, "  - Row %d: %s (%s)\n", f.Row, display, f.Rule)
			}
		}
	} else {
		b.WriteString("No failures found across all columns.\n")
	}
	b.WriteString("\n")

	b.WriteString("SUMMARY TABLE:\n")
	header := fmt.Sprintf("  %-20s %-36s %5s %5s", "Column", "Rules Checked", "Pass", "Fail")
	b.WriteString(header + "\n")
	b.WriteString("  " + strings.Repeat("-", len(header)-2) + "\n")
	for _, col := range rules.ColumnOrder {
		failCount := len(byCol[col])
		fmt.Fprintf(&b, "  %-20s %-36s %5d %5d\n", col, ruleSummaries[col], totalRows-failCount, failCount)
	}

	fmt.Fprintf(&b, "\nOVERALL: %d total validation failure(s) across %d row(s)\n", total, len(failedRows))
	return b.String()
}
