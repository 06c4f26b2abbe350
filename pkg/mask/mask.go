// Package mask redacts PII columns for safe output. Masking operates on a
// copy of the cleaned table; fill placeholders like [UNKNOWN] are preserved
// so the audit trail stays readable.
package mask

import (
	"strings"

	c "github.com/wdm0006/custodian/pkg/custodian"
	"github.com/wdm0006/custodian/pkg/rules"
)

const unknownPlaceholder = "[UNKNOWN]"

// Name keeps the first character and replaces the rest with "***".
func Name(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if v == unknownPlaceholder {
		return v
	}
	r := []rune(v)
	return string(r[0]) + "***"
}

// Email keeps the first character of the local part and the full domain.
// Values without an @ are not recognizable emails and pass through.
func Email(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	local, domain, found := strings.Cut(v, "@")
	if !found {
		return v
	}
	if local == "" {
		return "***@" + domain
	}
	return string([]rune(local)[0]) + "***@" + domain
}

// Phone hides all but the last four digits, preserving the canonical
// XXX-XXX-XXXX shape when the value reduces to 10 digits.
func Phone(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	digits := rules.StripDigits(v)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return "***-***-" + digits[6:]
	}
	if len(v) >= 4 {
		return "***" + v[len(v)-4:]
	}
	return "****"
}

// Address replaces any real value with a fixed marker.
func Address(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == unknownPlaceholder {
		return v
	}
	return "[MASKED ADDRESS]"
}

// DOB keeps the year and hides month and day. Cleaned values are
// YYYY-MM-DD; anything else masks fully.
func DOB(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	year, _, _ := strings.Cut(v, "-")
	if len(year) == 4 {
		return year + "-**-**"
	}
	return "****-**-**"
}

// Apply masks every PII column on a copy of the table and returns it.
// customer_id, income, account_status, and created_date are untouched.
func Apply(t *c.Table) *c.Table {
	masked := t.Clone()
	maskCol := func(name string, fn func(string) string) {
		col, ok := masked.ColumnByName(name)
		if !ok {
			return
		}
		for i := 0; i < col.Len(); i++ {
			if v, present := col.Get(i); present {
				col.Set(i, fn(v))
			}
		}
	}
	maskCol(c.ColFirstName, Name)
	maskCol(c.ColLastName, Name)
	maskCol(c.ColEmail, Email)
	maskCol(c.ColPhone, Phone)
	maskCol(c.ColAddress, Address)
	maskCol(c.ColDateOfBirth, DOB)
	return masked
}
