package model

// AliasRule maps surface variants of an equipment or material term to one
// canonical label. Rules live in an ordered list and the first matching rule
// wins, so narrower patterns ("SPLIT BODY 28YD") must be declared before
// broad catch-alls ("28YD").
type AliasRule struct {
	// Label is the canonical label. It may reference capture groups from the
	// matching pattern using ${1} syntax, e.g. "${1}YD Compactor".
	Label string `yaml:"label"`
	// Patterns are case-insensitive regular expressions tried in order.
	Patterns []string `yaml:"patterns"`
}
