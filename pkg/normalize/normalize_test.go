package normalize

import "testing"

func TestPhone(t *testing.T) {
	n := New()
	cases := []struct {
		in, want string
	}{
		{"555-123-4567", "555-123-4567"},
		{"(555) 123-4567", "555-123-4567"},
		{"555.123.4567", "555-123-4567"},
		{"5551234567", "555-123-4567"},
		{"1-555-123-4567", "555-123-4567"},
		{"+1 (555) 123-4567", "555-123-4567"},
	}
	for _, tc := range cases {
		r := n.Phone(tc.in)
		if r.Value != tc.want || r.Note != "" {
			t.Fatalf("Phone(%q) = %q note=%q, want %q", tc.in, r.Value, r.Note, tc.want)
		}
	}
}

func TestPhoneUnnormalizable(t *testing.T) {
	n := New()
	r := n.Phone("555-1234")
	if r.Value != "555-1234" {
		t.Fatalf("unnormalizable phone must keep original, got %q", r.Value)
	}
	if r.Note != "could not normalize: 7 digits after stripping" {
		t.Fatalf("unexpected note: %q", r.Note)
	}
	// blank passes through without a note
	if r := n.Phone("  "); r.Note != "" || !r.Valid {
		t.Fatalf("blank phone: %+v", r)
	}
}

func TestDate(t *testing.T) {
	n := New()
	cases := []struct {
		in, want string
	}{
		{"1990-06-15", "1990-06-15"},
		{"06/15/1990", "1990-06-15"},
		{"1990/06/15", "1990-06-15"},
		{"25/12/1990", "1990-12-25"}, // day/month only when month/day cannot parse
	}
	for _, tc := range cases {
		r := n.Date(tc.in)
		if !r.Valid || r.Value != tc.want {
			t.Fatalf("Date(%q) = %+v, want %q", tc.in, r, tc.want)
		}
	}
	// ambiguous slash dates resolve as month/day
	if r := n.Date("03/04/2020"); r.Value != "2020-03-04" {
		t.Fatalf("ambiguous date should parse as MM/DD, got %q", r.Value)
	}
}

func TestDateInvalid(t *testing.T) {
	n := New()
	r := n.Date("invalid_date")
	if r.Valid {
		t.Fatal("literal invalid_date must not be valid")
	}
	if r.Note != "literal 'invalid_date' string" {
		t.Fatalf("unexpected note: %q", r.Note)
	}
	r = n.Date("June the first")
	if r.Valid || r.Note != "unparseable date string 'June the first'" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r := n.Date(""); !r.Valid || r.Note != "" {
		t.Fatalf("blank date should pass through: %+v", r)
	}
}

func TestName(t *testing.T) {
	n := New()
	r := n.Name("JOHN")
	if r.Value != "John" || r.Note != "'JOHN' -> 'John'" {
		t.Fatalf("got %+v", r)
	}
	r = n.Name("mary-jane")
	if r.Value != "Mary-Jane" {
		t.Fatalf("got %q", r.Value)
	}
	// already title-cased values come back unchanged with no note
	r = n.Name("O'Brien")
	if r.Value != "O'Brien" || r.Note != "" {
		t.Fatalf("got %+v", r)
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"john smith", "John Smith"},
		{"o'brien", "O'Brien"},
		{"mary-jane", "Mary-Jane"},
		{"McDONALD", "Mcdonald"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TitleCase(tc.in); got != tc.want {
			t.Fatalf("TitleCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// applying twice never changes the result again
	for _, s := range []string{"john smith", "O'BRIEN-smith", "a b c"} {
		once := TitleCase(s)
		if twice := TitleCase(once); twice != once {
			t.Fatalf("TitleCase not stable: %q -> %q -> %q", s, once, twice)
		}
	}
}
