// Package quantity parses the quantity and product-code encodings found in
// supplier and POS feeds. Each encoding family has one total function that
// never panics and reports whether the input was understood.
package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Int coerces a raw quantity cell to an integer. It accepts plain integers,
// thousands separators, and spreadsheet floats such as "7.0"; fractional
// values are truncated toward zero.
func Int(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Mapping substitutes categorical availability codes (letter grades, Y/N
// flags) with fixed quantities.
type Mapping map[string]int

// Substitute returns the mapped quantity as a string when s is a known code,
// and s unchanged otherwise. Lookup is on the trimmed value.
func (m Mapping) Substitute(s string) string {
	if len(m) == 0 {
		return s
	}
	if v, ok := m[strings.TrimSpace(s)]; ok {
		return strconv.Itoa(v)
	}
	return s
}

var (
	parenSequence = regexp.MustCompile(`^(?:\(\s*\d+\s*\)\s*)+$`)
	parenNumber   = regexp.MustCompile(`\(\s*(\d+)\s*\)`)
)

// Display parses a POS display/sample code into the number of units held
// back for display. Rules apply in order:
//
//	"(6)(4)"   parenthesized counts are summed      -> 10
//	"0…"       leading zero is a sentinel            -> 0
//	"1…"       leading one is a sentinel             -> 1
//	""         blank                                  -> 0
//	"7"        plain integer                          -> 7
//
// Negative counts and anything else yield 0 with ok false so callers can count the correction.
func Display(s string) (n int, ok bool) {
	s = strings.TrimSpace(s)
	switch {
	case parenSequence.MatchString(s):
		total := 0
		for _, m := range parenNumber.FindAllStringSubmatch(s, -1) {
			v, _ := strconv.Atoi(m[1])
			total += v
		}
		return total, true
	case strings.HasPrefix(s, "0"):
		return 0, true
	case strings.HasPrefix(s, "1"):
		return 1, true
	case s == "":
		return 0, true
	}
	v, ok := Int(s)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// NumericCode normalizes a product code that must be purely numeric into its
// integer decimal form. Spreadsheet floats ("12345.0", "1.2345E+11") are
// accepted when integral. Codes containing letters are rejected.
func NumericCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if allDigits(s) {
		trimmed := strings.TrimLeft(s, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		return trimmed, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > 1<<53 {
		return "", false
	}
	return strconv.FormatInt(int64(f), 10), true
}

// TextCode normalizes a product code kept as text. It trims whitespace and
// strips a ".0" spreadsheet artifact from otherwise all-digit codes.
func TextCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if head, tail, found := strings.Cut(s, "."); found && allDigits(head) && strings.Trim(tail, "0") == "" {
		return head, true
	}
	return s, true
}

// Key returns the join key of a product code. Every join between the
// canonical table, the POS extract and marketplace reports compares keys,
// so "012345678905", "12345678905" and "12345678905.0" meet. Codes that
// are not integral numbers are trimmed only.
func Key(s string) string {
	if code, ok := NumericCode(s); ok {
		return code
	}
	code, _ := TextCode(s)
	return code
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
