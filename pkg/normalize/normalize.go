// Package normalize canonicalizes single raw cell values. Every function is
// pure: one value in, a Result out, no other cells consulted, no errors
// raised for malformed data.
package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/wdm0006/custodian/pkg/rules"
)

// Result is the outcome of normalizing one value. Valid=false means the
// canonical value is absent. A non-empty Note flags that normalization did
// not fully succeed (or, for names, records the change applied).
type Result struct {
	Value string
	Valid bool
	Note  string
}

// DateLayouts are tried in order; first match wins. MM/DD comes before
// DD/MM, so an ambiguous 03/04/2020 is always month/day.
var DateLayouts = []string{"2006-01-02", "01/02/2006", "02/01/2006", "2006/01/02"}

// Normalizer holds the configuration the transforms need. Construct once
// and pass in explicitly.
type Normalizer struct {
	DateLayouts []string
}

func New() *Normalizer {
	return &Normalizer{DateLayouts: DateLayouts}
}

// Phone normalizes a phone number to XXX-XXX-XXXX. All non-digits are
// stripped and a leading US country code 1 is dropped from 11-digit values.
// Anything that does not reduce to 10 digits is returned unchanged with a
// note carrying the post-strip digit count.
func (n *Normalizer) Phone(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Value: raw, Valid: true}
	}
	original := strings.TrimSpace(raw)
	digits := rules.StripDigits(original)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return Result{Value: digits[:3] + "-" + digits[3:6] + "-" + digits[6:], Valid: true}
	}
	return Result{Value: original, Valid: true,
		Note: fmt.Sprintf("could not normalize: %d digits after stripping", len(digits))}
}

// Date normalizes a date value to YYYY-MM-DD. The literal "invalid_date"
// string and unparseable values map to an absent result with a note.
func (n *Normalizer) Date(raw string) Result {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Result{Value: raw, Valid: true}
	}
	if strings.EqualFold(v, "invalid_date") {
		return Result{Note: "literal 'invalid_date' string"}
	}
	for _, layout := range n.DateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return Result{Value: d.Format("2006-01-02"), Valid: true}
		}
	}
	return Result{Note: fmt.Sprintf("unparseable date string '%s'", v)}
}

// Name title-cases a value that is not already title-cased. Values already
// in mixed/title case come back unchanged with no note.
func (n *Normalizer) Name(raw string) Result {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Result{Value: raw, Valid: true}
	}
	title := TitleCase(v)
	if v != title {
		return Result{Value: title, Valid: true, Note: fmt.Sprintf("'%s' -> '%s'", v, title)}
	}
	return Result{Value: v, Valid: true}
}

// TitleCase uppercases the first letter of every word and lowercases the
// rest. A letter starts a word when the preceding rune is not a letter, so
// o'brien becomes O'Brien and mary-jane becomes Mary-Jane. TitleCase is a
// no-op on its own output.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
