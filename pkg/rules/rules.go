// Package rules holds the per-column validation registry for the customer
// dataset and applies it to a table without mutating it. Checks within a
// column are independent and additive: one cell can emit several failures,
// and a check only short-circuits when the value is fundamentally unparsable
// (a non-numeric income has no number to range-check).
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

// Failure is one rule violation on one column of one row. Row is the
// display position (0-based index + 2, counting the header line).
type Failure struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Rule   string `json:"rule"`
}

// ColumnOrder is the fixed reporting order for failures.
var ColumnOrder = []string{
	c.ColCustomerID, c.ColFirstName, c.ColLastName, c.ColEmail, c.ColPhone,
	c.ColDateOfBirth, c.ColCreatedDate, c.ColAddress, c.ColIncome, c.ColAccountStatus,
}

// Registry is the immutable rule configuration, built once and passed in
// explicitly so tests can validate against alternate rule sets.
type Registry struct {
	Email       *regexp.Regexp
	Name        *regexp.Regexp
	Statuses    map[string]struct{}
	DateLayouts []string

	MinNameLen, MaxNameLen         int
	MinPhoneDigits, MaxPhoneDigits int
	MaxIncome                      float64
	MaxAgeYears                    float64

	// Now supplies "today" for future-date and age checks.
	Now func() time.Time
}

// NameRegexp builds the name charset pattern for the given length bounds.
// Registries must derive Name from their own MinNameLen/MaxNameLen so the
// charset check and the length check never disagree.
func NameRegexp(min, max int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^[A-Za-z\s'\-]{%d,%d}$`, min, max))
}

// DefaultRegistry returns the production rule set for the 10-column
// customer schema.
func DefaultRegistry() *Registry {
	return &Registry{
		Email:          regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
		Name:           NameRegexp(2, 50),
		Statuses:       map[string]struct{}{"active": {}, "inactive": {}, "suspended": {}},
		DateLayouts:    []string{"2006-01-02", "01/02/2006", "02/01/2006"},
		MinNameLen:     2,
		MaxNameLen:     50,
		MinPhoneDigits: 10,
		MaxPhoneDigits: 15,
		MaxIncome:      10_000_000,
		MaxAgeYears:    150,
		Now:            time.Now,
	}
}

var nonDigit = regexp.MustCompile(`\D`)

// StripDigits removes every non-digit character from a phone value.
func StripDigits(v string) string { return nonDigit.ReplaceAllString(v, "") }

func blank(v string, present bool) bool {
	return !present || strings.TrimSpace(v) == ""
}

// today truncates the registry clock to a civil date in UTC so date math
// works in whole days.
func (r *Registry) today() time.Time {
	now := r.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate tries the registry's layouts in order; first match wins. The
// ordering deliberately resolves inputs like 03/04/2020 as month/day.
func (r *Registry) ParseDate(v string) (time.Time, bool) {
	for _, layout := range r.DateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// AgeYears converts a date of birth to fractional years as of today.
func AgeYears(dob, today time.Time) float64 {
	days := today.Sub(dob).Hours() / 24
	return days / 365.25
}

// Validate runs every column rule against the table and returns failures
// grouped by column, in ColumnOrder and row order within a column. The
// table is never mutated. A missing required column is a structural error
// and aborts the call.
func (r *Registry) Validate(t *c.Table) (map[string][]Failure, error) {
	if err := t.Require(ColumnOrder...); err != nil {
		return nil, err
	}

	byCol := make(map[string][]Failure)
	add := func(col string, fs []Failure) {
		if len(fs) > 0 {
			byCol[col] = fs
		}
	}

	add(c.ColCustomerID, r.checkCustomerID(t))
	add(c.ColFirstName, r.checkName(t, c.ColFirstName))
	add(c.ColLastName, r.checkName(t, c.ColLastName))
	add(c.ColEmail, r.checkEmail(t))
	add(c.ColPhone, r.checkPhone(t))
	add(c.ColDateOfBirth, r.checkDate(t, c.ColDateOfBirth))
	add(c.ColCreatedDate, r.checkDate(t, c.ColCreatedDate))
	add(c.ColAddress, r.checkAddress(t))
	add(c.ColIncome, r.checkIncome(t))
	add(c.ColAccountStatus, r.checkAccountStatus(t))
	return byCol, nil
}

// Total sums failures across all columns.
func Total(byCol map[string][]Failure) int {
	n := 0
	for _, fs := range byCol {
		n += len(fs)
	}
	return n
}

// FailedRows returns the distinct display positions with at least one failure.
func FailedRows(byCol map[string][]Failure) map[int]bool {
	rows := make(map[int]bool)
	for _, fs := range byCol {
		for _, f := range fs {
			rows[f.Row] = true
		}
	}
	return rows
}

func (r *Registry) checkCustomerID(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColCustomerID)
	var failures []Failure
	seen := make(map[string]int) // trimmed id -> display row of first occurrence

	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		v := strings.TrimSpace(raw)
		if blank(raw, present) {
			failures = append(failures, Failure{row, c.ColCustomerID, raw, "Must be a positive integer (missing)"})
			continue
		}
		num, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			failures = append(failures, Failure{row, c.ColCustomerID, raw, "Must be a positive integer (non-numeric)"})
			continue
		}
		if int64(num) <= 0 {
			failures = append(failures, Failure{row, c.ColCustomerID, raw, "Must be a positive integer (value <= 0)"})
			continue
		}
		if first, dup := seen[v]; dup {
			failures = append(failures, Failure{row, c.ColCustomerID, raw,
				fmt.Sprintf("Must be unique (duplicate of row %d)", first)})
		} else {
			seen[v] = row
		}
	}
	return failures
}

func (r *Registry) checkName(t *c.Table, name string) []Failure {
	col, _ := t.ColumnByName(name)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{row, name, raw, "Must be non-empty"})
			continue
		}
		v := strings.TrimSpace(raw)
		if n := utf8.RuneCountInString(v); n < r.MinNameLen || n > r.MaxNameLen {
			failures = append(failures, Failure{row, name, raw,
				fmt.Sprintf("Length must be between %d and %d characters", r.MinNameLen, r.MaxNameLen)})
		}
		if !r.Name.MatchString(v) {
			failures = append(failures, Failure{row, name, raw, "Must contain only letters, spaces, hyphens, or apostrophes"})
		}
	}
	return failures
}

func (r *Registry) checkEmail(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColEmail)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{row, c.ColEmail, raw, "Must be non-empty"})
			continue
		}
		if !r.Email.MatchString(strings.TrimSpace(raw)) {
			failures = append(failures, Failure{row, c.ColEmail, raw, "Must be a valid email address format"})
		}
	}
	return failures
}

func (r *Registry) checkPhone(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColPhone)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{row, c.ColPhone, raw, "Must be non-empty"})
			continue
		}
		digits := StripDigits(raw)
		if len(digits) < r.MinPhoneDigits || len(digits) > r.MaxPhoneDigits {
			failures = append(failures, Failure{row, c.ColPhone, raw,
				fmt.Sprintf("Stripped digit count must be %d-%d (got %d)", r.MinPhoneDigits, r.MaxPhoneDigits, len(digits))})
		}
	}
	return failures
}

// checkDate validates date_of_birth and created_date. Blank cells are not a
// failure here; completeness is a separate concern.
func (r *Registry) checkDate(t *c.Table, name string) []Failure {
	col, _ := t.ColumnByName(name)
	var failures []Failure
	today := r.today()

	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			continue
		}
		v := strings.TrimSpace(raw)

		if strings.EqualFold(v, "invalid_date") {
			failures = append(failures, Failure{row, name, raw, "Not a valid date (literal 'invalid_date' string)"})
			continue
		}
		parsed, ok := r.ParseDate(v)
		if !ok {
			failures = append(failures, Failure{row, name, raw, "Could not be parsed as a valid date"})
			continue
		}
		if parsed.After(today) {
			failures = append(failures, Failure{row, name, raw, "Date must not be in the future"})
		}
		if name == c.ColDateOfBirth {
			age := AgeYears(parsed, today)
			if age > r.MaxAgeYears {
				failures = append(failures, Failure{row, name, raw,
					fmt.Sprintf("Date of birth implies age > %.0f years (~%.1f years)", r.MaxAgeYears, age)})
			} else if age < 0 {
				failures = append(failures, Failure{row, name, raw, "Date of birth is in the future"})
			}
		}
	}
	return failures
}

func (r *Registry) checkAddress(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColAddress)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{c.DisplayPos(i), c.ColAddress, raw, "Must be non-empty"})
		}
	}
	return failures
}

func (r *Registry) checkIncome(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColIncome)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{row, c.ColIncome, raw, "Must be non-empty numeric value"})
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			failures = append(failures, Failure{row, c.ColIncome, raw, "Must be a numeric value"})
			continue
		}
		if num < 0 {
			failures = append(failures, Failure{row, c.ColIncome, raw, "Income must be non-negative"})
		}
		if num > r.MaxIncome {
			failures = append(failures, Failure{row, c.ColIncome, raw, "Income exceeds $10,000,000 upper bound"})
		}
	}
	return failures
}

func (r *Registry) checkAccountStatus(t *c.Table) []Failure {
	col, _ := t.ColumnByName(c.ColAccountStatus)
	var failures []Failure
	for i := 0; i < col.Len(); i++ {
		row := c.DisplayPos(i)
		raw, present := col.Get(i)
		if blank(raw, present) {
			failures = append(failures, Failure{row, c.ColAccountStatus, raw, "Must be one of: active, inactive, suspended (missing)"})
			continue
		}
		v := strings.ToLower(strings.TrimSpace(raw))
		if _, ok := r.Statuses[v]; !ok {
			failures = append(failures, Failure{row, c.ColAccountStatus, raw,
				fmt.Sprintf("Must be one of: active, inactive, suspended (got '%s')", raw)})
		}
	}
	return failures
}
