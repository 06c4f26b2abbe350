// Package pii scans a customer table for the presence of personally
// identifiable information. Detection only: masking is a separate
// transform, and nothing here mutates the table.
package pii

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

// Risk levels for the static column inventory.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
)

// ColumnRisk describes the static classification of one PII column.
type ColumnRisk struct {
	Category string
	Risk     string
}

// ColumnInventory is the fixed classification of which columns carry PII.
func ColumnInventory() map[string]ColumnRisk {
	return map[string]ColumnRisk{
		c.ColFirstName:   {Category: "Direct Identifier", Risk: RiskHigh},
		c.ColLastName:    {Category: "Direct Identifier", Risk: RiskHigh},
		c.ColEmail:       {Category: "Contact", Risk: RiskHigh},
		c.ColPhone:       {Category: "Contact", Risk: RiskHigh},
		c.ColDateOfBirth: {Category: "Sensitive Personal", Risk: RiskHigh},
		c.ColAddress:     {Category: "Sensitive Personal", Risk: RiskHigh},
		c.ColIncome:      {Category: "Financial", Risk: RiskMedium},
	}
}

var (
	emailPattern = regexp.MustCompile(`(?i)[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+1[-.\s]?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Findings lists the 0-based row indices where each PII type was detected.
type Findings struct {
	EmailRows   []int
	PhoneRows   []int
	AddressRows []int
	DOBRows     []int
	NameRows    []int
	IncomeRows  []int
	// Inventory maps each 0-based row index to the PII labels it carries.
	Inventory map[int][]string
	// IDs holds the raw customer_id per row for the by-row report.
	IDs []string
}

// Scan detects PII presence across the table.
func Scan(t *c.Table) (*Findings, error) {
	if err := t.Require(c.ColCustomerID, c.ColFirstName, c.ColLastName, c.ColEmail,
		c.ColPhone, c.ColDateOfBirth, c.ColAddress, c.ColIncome); err != nil {
		return nil, fmt.Errorf("pii: %w", err)
	}
	f := &Findings{Inventory: make(map[int][]string)}
	idCol, _ := t.ColumnByName(c.ColCustomerID)
	for i := 0; i < idCol.Len(); i++ {
		v, _ := idCol.Get(i)
		f.IDs = append(f.IDs, strings.TrimSpace(v))
	}
	f.EmailRows = matchRows(t, c.ColEmail, emailPattern)
	f.PhoneRows = matchRows(t, c.ColPhone, phonePattern)
	f.AddressRows = presentRows(t, c.ColAddress)
	f.DOBRows = presentRows(t, c.ColDateOfBirth)
	f.IncomeRows = presentRows(t, c.ColIncome)

	nameSet := make(map[int]bool)
	for _, name := range []string{c.ColFirstName, c.ColLastName} {
		for _, i := range presentRows(t, name) {
			nameSet[i] = true
		}
	}
	for i := range nameSet {
		f.NameRows = append(f.NameRows, i)
	}
	sort.Ints(f.NameRows)

	for i := 0; i < t.Rows(); i++ {
		f.Inventory[i] = nil
	}
	addAll := func(rows []int, label string) {
		for _, i := range rows {
			f.Inventory[i] = append(f.Inventory[i], label)
		}
	}
	addAll(f.NameRows, "Name (first/last)")
	addAll(f.EmailRows, "Email")
	addAll(f.PhoneRows, "Phone")
	addAll(f.AddressRows, "Address")
	addAll(f.DOBRows, "Date of Birth")
	addAll(f.IncomeRows, "Income")
	return f, nil
}

func matchRows(t *c.Table, name string, re *regexp.Regexp) []int {
	col, _ := t.ColumnByName(name)
	var rows []int
	for i := 0; i < col.Len(); i++ {
		raw, ok := col.Get(i)
		if !ok {
			continue
		}
		if v := strings.TrimSpace(raw); v != "" && re.MatchString(v) {
			rows = append(rows, i)
		}
	}
	return rows
}

func presentRows(t *c.Table, name string) []int {
	col, _ := t.ColumnByName(name)
	var rows []int
	for i := 0; i < col.Len(); i++ {
		raw, ok := col.Get(i)
		if ok && strings.TrimSpace(raw) != "" {
			rows = append(rows, i)
		}
	}
	return rows
}

// Text renders the detection summary report: risk overview, per-type
// counts, the per-row inventory, and the static column classification.
func (f *Findings) Text(totalRows int) string {
	var b strings.Builder
	b.WriteString("PII DETECTION REPORT\n")
	b.WriteString("====================\n\n")

	inv := ColumnInventory()
	var high, med []string
	for _, name := range c.SortedKeys(inv) {
		switch inv[name].Risk {
		case RiskHigh:
			high = append(high, name)
		case RiskMedium:
			med = append(med, name)
		}
	}
	b.WriteString("RISK ASSESSMENT:\n")
	fmt.Fprintf(&b, "  HIGH:   %s\n", strings.Join(high, ", "))
	b.WriteString("    (direct identifiers and contact details combine to identify an individual)\n")
	fmt.Fprintf(&b, "  MEDIUM: %s\n", strings.Join(med, ", "))
	b.WriteString("    (financial data reveals economic status)\n")

	pct := func(n int) string {
		if totalRows == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)/float64(totalRows)*100)
	}
	b.WriteString("\nDETECTED PII:\n")
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Name (first/last)", len(f.NameRows), pct(len(f.NameRows)))
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Email", len(f.EmailRows), pct(len(f.EmailRows)))
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Phone", len(f.PhoneRows), pct(len(f.PhoneRows)))
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Address", len(f.AddressRows), pct(len(f.AddressRows)))
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Date of Birth", len(f.DOBRows), pct(len(f.DOBRows)))
	fmt.Fprintf(&b, "  %-20s %5d row(s)  %s\n", "Income", len(f.IncomeRows), pct(len(f.IncomeRows)))

	b.WriteString("\nPII BY ROW:\n")
	for i := 0; i < totalRows; i++ {
		id := ""
		if i < len(f.IDs) {
			id = f.IDs[i]
		}
		labels := f.Inventory[i]
		if len(labels) == 0 {
			fmt.Fprintf(&b, "  Row %2d (ID=%s): no PII detected\n", c.DisplayPos(i), id)
			continue
		}
		fmt.Fprintf(&b, "  Row %2d (ID=%s): %s\n", c.DisplayPos(i), id, strings.Join(labels, ", "))
	}

	b.WriteString("\nCOLUMN CLASSIFICATION:\n")
	for _, name := range c.SortedKeys(inv) {
		fmt.Fprintf(&b, "  %-16s %-20s %s\n", name, inv[name].Category, inv[name].Risk)
	}

	b.WriteString("\nMITIGATION: mask all PII columns before sharing;\n")
	b.WriteString("  retain customer_id, income, account_status and created_date for analytics.\n")
	return b.String()
}
