// Package normalize canonicalizes raw invoice line text for pattern
// matching. Normalization is a total, deterministic, idempotent function:
// it never fails and applying it twice yields the same result.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Periods inside abbreviations ("R.O.", "COMP.") defeat substring
	// matching, so they are stripped when attached to a letter.
	abbrevPeriod = regexp.MustCompile(`([A-Za-z])\.`)
	// OCR output frequently doubles hyphens.
	hyphenRun = regexp.MustCompile(`-{2,}`)
)

// Normalize canonicalizes raw line-item text: upper-cases, strips
// abbreviation periods, collapses hyphen runs and whitespace, and trims
// leading/trailing separator noise.
func Normalize(raw string) string {
	s := strings.ToUpper(raw)
	s = abbrevPeriod.ReplaceAllString(s, "$1")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -")
}
