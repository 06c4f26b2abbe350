// Package profile produces the exploratory quality report for a raw
// customer table: completeness, phone and date format diversity,
// customer_id uniqueness, and severity-classified issue findings.
// Read-only; the cleaning pipeline owns remediation.
package profile

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	c "github.com/wdm0006/custodian/pkg/custodian"
	"github.com/wdm0006/custodian/pkg/rules"
)

// Severity classifies a quality issue. Every structural issue maps to
// exactly one severity.
type Severity string

const (
	SeverityCritical Severity = "Critical" // blocks processing
	SeverityHigh     Severity = "High"     // data incorrect
	SeverityMedium   Severity = "Medium"   // needs cleaning
)

// Issue is one detected quality problem instance.
type Issue struct {
	Type     string   `json:"type"`
	Column   string   `json:"column"`
	Row      int      `json:"row"`
	Value    string   `json:"value"`
	Severity Severity `json:"severity"`
}

// Completeness summarizes missing values for one column.
type Completeness struct {
	Total       int
	Missing     int
	CompletePct float64
}

// TypeCheck compares the detected value shape of a column against the
// schema's expected kind.
type TypeCheck struct {
	Expected string
	Detected string
	Correct  bool
	Note     string // "should be X" when mismatched
}

// Uniqueness summarizes the customer_id duplicate census.
type Uniqueness struct {
	IsUnique       bool
	DuplicateCount int
	DuplicatedRows []int // display positions of every row in a duplicate group
}

// Report is the full profiling output.
type Report struct {
	Rows         int
	Completeness map[string]Completeness
	Types        map[string]TypeCheck
	PhoneFormats map[string][]string            // format label -> example values
	DateFormats  map[string]map[string][]string // column -> label -> examples
	Uniqueness   Uniqueness
	Issues       []Issue
}

var phonePatterns = []struct {
	Label   string
	Pattern *regexp.Regexp
}{
	{"XXX-XXX-XXXX", regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)},
	{"(XXX) XXX-XXXX", regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)},
	{"XXX.XXX.XXXX", regexp.MustCompile(`^\d{3}\.\d{3}\.\d{4}$`)},
	{"XXXXXXXXXX", regexp.MustCompile(`^\d{10}$`)},
	{"+1-XXX-XXX-XXXX", regexp.MustCompile(`^\+1-\d{3}-\d{3}-\d{4}$`)},
}

var datePatterns = []struct {
	Label   string
	Pattern *regexp.Regexp
}{
	{"YYYY-MM-DD", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{"MM/DD/YYYY", regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)},
	{"invalid_date (literal)", regexp.MustCompile(`(?i)^invalid_date$`)},
}

// Run profiles the table. Structural errors (missing required columns)
// abort; every data problem becomes a finding.
func Run(t *c.Table, reg *rules.Registry) (*Report, error) {
	if err := t.Require(rules.ColumnOrder...); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	r := &Report{
		Rows:         t.Rows(),
		Completeness: make(map[string]Completeness),
		Types:        make(map[string]TypeCheck),
		PhoneFormats: make(map[string][]string),
		DateFormats:  make(map[string]map[string][]string),
	}
	r.scanCompleteness(t)
	r.scanTypes(t, reg)
	r.scanPhoneFormats(t)
	r.scanDateFormats(t)
	r.scanUniqueness(t)
	r.scanInvalidValues(t, reg)
	r.scanAccountStatus(t, reg)
	r.scanNameCasing(t)
	return r, nil
}

func blank(v string, present bool) bool {
	return !present || strings.TrimSpace(v) == ""
}

func (r *Report) scanCompleteness(t *c.Table) {
	total := t.Rows()
	for _, cs := range t.Schema().Columns {
		col, _ := t.ColumnByName(cs.Name)
		missing := 0
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); blank(v, ok) {
				missing++
			}
		}
		pct := 100.0
		if total > 0 {
			pct = float64(total-missing) / float64(total) * 100
		}
		r.Completeness[cs.Name] = Completeness{Total: total, Missing: missing, CompletePct: pct}
	}
}

// expectedLabel collapses the schema kinds to the four shapes the detector
// can tell apart. Categorical columns hold plain strings on disk.
func expectedLabel(k c.Kind) string {
	switch k {
	case c.KindInt:
		return "int"
	case c.KindNumeric:
		return "numeric"
	case c.KindDate:
		return "date"
	default:
		return "string"
	}
}

// scanTypes classifies every non-blank cell of a column and compares the
// column's overall shape to the schema's expected kind. A single
// out-of-shape cell demotes the whole column, the same way one stray
// string makes a numeric CSV column untyped.
func (r *Report) scanTypes(t *c.Table, reg *rules.Registry) {
	for _, cs := range t.Schema().Columns {
		col, _ := t.ColumnByName(cs.Name)
		allInt, allNum, allDate := true, true, true
		seen := 0
		for i := 0; i < col.Len(); i++ {
			raw, ok := col.Get(i)
			if blank(raw, ok) {
				continue
			}
			seen++
			v := strings.TrimSpace(raw)
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allNum = false
			}
			if _, ok := reg.ParseDate(v); !ok {
				allDate = false
			}
		}
		detected := "string"
		switch {
		case seen == 0:
			detected = "string"
		case allInt:
			detected = "int"
		case allNum:
			detected = "numeric"
		case allDate:
			detected = "date"
		}
		expected := expectedLabel(cs.Type)
		// a column of whole numbers satisfies a numeric expectation
		correct := detected == expected || (expected == "numeric" && detected == "int")
		tc := TypeCheck{Expected: expected, Detected: detected, Correct: correct}
		if !correct {
			tc.Note = "should be " + expected
		}
		r.Types[cs.Name] = tc
	}
}

func (r *Report) scanPhoneFormats(t *c.Table) {
	col, _ := t.ColumnByName(c.ColPhone)
	for i := 0; i < col.Len(); i++ {
		raw, ok := col.Get(i)
		if blank(raw, ok) {
			continue
		}
		v := strings.TrimSpace(raw)
		label := "Other / Unrecognized"
		for _, p := range phonePatterns {
			if p.Pattern.MatchString(v) {
				label = p.Label
				break
			}
		}
		r.PhoneFormats[label] = append(r.PhoneFormats[label], v)
	}
}

func (r *Report) scanDateFormats(t *c.Table) {
	for _, name := range []string{c.ColDateOfBirth, c.ColCreatedDate} {
		col, _ := t.ColumnByName(name)
		colMap := make(map[string][]string)
		for i := 0; i < col.Len(); i++ {
			raw, ok := col.Get(i)
			if blank(raw, ok) {
				continue
			}
			v := strings.TrimSpace(raw)
			label := "Other / Unparseable"
			for _, p := range datePatterns {
				if p.Pattern.MatchString(v) {
					label = p.Label
					break
				}
			}
			colMap[label] = append(colMap[label], v)
		}
		r.DateFormats[name] = colMap
	}
}

func (r *Report) scanUniqueness(t *c.Table) {
	col, _ := t.ColumnByName(c.ColCustomerID)
	groups := make(map[string][]int)
	for i := 0; i < col.Len(); i++ {
		raw, ok := col.Get(i)
		key := raw
		if !ok {
			key = "\x00absent"
		}
		groups[key] = append(groups[key], i)
	}
	u := Uniqueness{IsUnique: true}
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		u.IsUnique = false
		u.DuplicateCount += len(idx)
		for _, i := range idx {
			u.DuplicatedRows = append(u.DuplicatedRows, c.DisplayPos(i))
		}
	}
	sort.Ints(u.DuplicatedRows)
	r.Uniqueness = u
}

func (r *Report) scanInvalidValues(t *c.Table, reg *rules.Registry) {
	today := todayUTC(reg.Now)

	// literal invalid_date markers
	for _, name := range []string{c.ColDateOfBirth, c.ColCreatedDate} {
		col, _ := t.ColumnByName(name)
		for i := 0; i < col.Len(); i++ {
			raw, ok := col.Get(i)
			if ok && strings.EqualFold(strings.TrimSpace(raw), "invalid_date") {
				r.Issues = append(r.Issues, Issue{"invalid_date_string", name, c.DisplayPos(i), raw, SeverityCritical})
			}
		}
	}

	incomeCol, _ := t.ColumnByName(c.ColIncome)
	for i := 0; i < incomeCol.Len(); i++ {
		raw, ok := incomeCol.Get(i)
		if blank(raw, ok) {
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			r.Issues = append(r.Issues, Issue{"non_numeric_income", c.ColIncome, c.DisplayPos(i), raw, SeverityCritical})
			continue
		}
		if num < 0 {
			r.Issues = append(r.Issues, Issue{"negative_income", c.ColIncome, c.DisplayPos(i), raw, SeverityHigh})
		}
		if num > reg.MaxIncome {
			r.Issues = append(r.Issues, Issue{"income_exceeds_10M", c.ColIncome, c.DisplayPos(i), raw, SeverityMedium})
		}
	}

	dobCol, _ := t.ColumnByName(c.ColDateOfBirth)
	for i := 0; i < dobCol.Len(); i++ {
		raw, ok := dobCol.Get(i)
		if blank(raw, ok) {
			continue
		}
		v := strings.TrimSpace(raw)
		if strings.EqualFold(v, "invalid_date") {
			continue
		}
		if dob, parsed := reg.ParseDate(v); parsed {
			if age := rules.AgeYears(dob, today); age > reg.MaxAgeYears {
				r.Issues = append(r.Issues, Issue{"extreme_age", c.ColDateOfBirth, c.DisplayPos(i), raw, SeverityHigh})
			}
		}
	}

	createdCol, _ := t.ColumnByName(c.ColCreatedDate)
	for i := 0; i < createdCol.Len(); i++ {
		raw, ok := createdCol.Get(i)
		if blank(raw, ok) {
			continue
		}
		v := strings.TrimSpace(raw)
		if strings.EqualFold(v, "invalid_date") {
			continue
		}
		if d, parsed := reg.ParseDate(v); parsed && d.After(today) {
			r.Issues = append(r.Issues, Issue{"future_created_date", c.ColCreatedDate, c.DisplayPos(i), raw, SeverityMedium})
		}
	}
}

func (r *Report) scanAccountStatus(t *c.Table, reg *rules.Registry) {
	col, _ := t.ColumnByName(c.ColAccountStatus)
	for i := 0; i < col.Len(); i++ {
		raw, ok := col.Get(i)
		if blank(raw, ok) {
			continue // nulls handled by completeness
		}
		v := strings.ToLower(strings.TrimSpace(raw))
		if _, valid := reg.Statuses[v]; !valid {
			r.Issues = append(r.Issues, Issue{"invalid_account_status", c.ColAccountStatus, c.DisplayPos(i), raw, SeverityHigh})
		}
	}
}

func (r *Report) scanNameCasing(t *c.Table) {
	for _, name := range []string{c.ColFirstName, c.ColLastName} {
		col, _ := t.ColumnByName(name)
		for i := 0; i < col.Len(); i++ {
			raw, ok := col.Get(i)
			if blank(raw, ok) {
				continue
			}
			v := strings.TrimSpace(raw)
			if len(v) < 2 {
				continue
			}
			switch {
			case v == strings.ToUpper(v) && v != strings.ToLower(v):
				r.Issues = append(r.Issues, Issue{"name_all_caps", name, c.DisplayPos(i), raw, SeverityMedium})
			case v == strings.ToLower(v) && v != strings.ToUpper(v):
				r.Issues = append(r.Issues, Issue{"name_all_lower", name, c.DisplayPos(i), raw, SeverityMedium})
			}
		}
	}
}

// Text renders the human-readable report.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("DATA QUALITY REPORT\n")
	b.WriteString("===================\n\n")

	b.WriteString("COMPLETENESS:\n")
	for _, name := range rules.ColumnOrder {
		cc := r.Completeness[name]
		fmt.Fprintf(&b, "  %-16s %5.1f%% complete (%d of %d missing)\n", name, cc.CompletePct, cc.Missing, cc.Total)
	}

	b.WriteString("\nDATA TYPES:\n")
	for _, name := range rules.ColumnOrder {
		tc := r.Types[name]
		mark := "[OK]"
		note := ""
		if !tc.Correct {
			mark = "[FAIL]"
			note = " (" + tc.Note + ")"
		}
		fmt.Fprintf(&b, "  %-16s detected %-8s %s%s\n", name, tc.Detected, mark, note)
	}

	b.WriteString("\nPHONE FORMATS:\n")
	for _, label := range c.SortedKeys(r.PhoneFormats) {
		fmt.Fprintf(&b, "  %-20s %d value(s)\n", label, len(r.PhoneFormats[label]))
	}

	b.WriteString("\nDATE FORMATS:\n")
	for _, colName := range []string{c.ColDateOfBirth, c.ColCreatedDate} {
		fmt.Fprintf(&b, "  %s:\n", colName)
		colMap := r.DateFormats[colName]
		for _, label := range c.SortedKeys(colMap) {
			fmt.Fprintf(&b, "    %-24s %d value(s)\n", label, len(colMap[label]))
		}
	}

	b.WriteString("\nUNIQUENESS:\n")
	if r.Uniqueness.IsUnique {
		b.WriteString("  customer_id: all values unique\n")
	} else {
		fmt.Fprintf(&b, "  customer_id: %d row(s) in duplicate groups (rows %v)\n",
			r.Uniqueness.DuplicateCount, r.Uniqueness.DuplicatedRows)
	}

	b.WriteString("\nISSUES:\n")
	if len(r.Issues) == 0 {
		b.WriteString("  none found\n")
	}
	for _, iss := range r.Issues {
		fmt.Fprintf(&b, "  [%s] row %d %s: %q (%s)\n", iss.Severity, iss.Row, iss.Column, iss.Value, iss.Type)
	}

	b.WriteString("\nSEVERITY:\n")
	buckets := map[Severity]int{}
	for _, iss := range r.Issues {
		buckets[iss.Severity]++
	}
	meaning := map[Severity]string{
		SeverityCritical: "blocks processing",
		SeverityHigh:     "data incorrect",
		SeverityMedium:   "needs cleaning",
	}
	for _, sev := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium} {
		fmt.Fprintf(&b, "  %-8s (%s): %d issue(s)\n", sev, meaning[sev], buckets[sev])
	}
	return b.String()
}

func todayUTC(now func() time.Time) time.Time {
	n := now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
