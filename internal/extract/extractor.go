// Package extract maps normalized invoice text to canonical equipment and
// material labels using ordered alias tables. Evaluation is strictly
// first-match-wins: rule order encodes specificity, so a deliberately
// ordered list replaces any scoring scheme while staying deterministic and
// auditable.
package extract

import (
	"fmt"
	"regexp"

	"github.com/wasteworks/chargemap/internal/model"
)

// Extractor evaluates an ordered alias table against normalized text.
// Immutable after construction; safe for concurrent use.
type Extractor struct {
	rules []compiledRule
}

type compiledRule struct {
	label    string
	patterns []*regexp.Regexp
}

// New compiles an alias table. All patterns are compiled case-insensitively
// up front; any invalid pattern or duplicate canonical label rejects the
// whole table, so a bad rule set can never silently lose rules.
func New(rules []model.AliasRule) (*Extractor, error) {
	seen := make(map[string]struct{}, len(rules))
	compiled := make([]compiledRule, 0, len(rules))

	for i, rule := range rules {
		if rule.Label == "" {
			return nil, fmt.Errorf("alias rule %d: label is required", i)
		}
		if _, dup := seen[rule.Label]; dup {
			return nil, fmt.Errorf("alias rule %d: duplicate label %q", i, rule.Label)
		}
		seen[rule.Label] = struct{}{}

		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("alias rule %q: at least one pattern is required", rule.Label)
		}

		cr := compiledRule{label: rule.Label, patterns: make([]*regexp.Regexp, 0, len(rule.Patterns))}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("alias rule %q: invalid pattern %q: %w", rule.Label, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}

	return &Extractor{rules: compiled}, nil
}

// Extract returns the canonical label of the first rule with a matching
// pattern, expanding any capture references in the label template
// ("${1}YD Compactor"). Returns model.LabelUnclassified when nothing
// matches; a miss is a valid intermediate state, not an error.
func (e *Extractor) Extract(normalizedText string) string {
	if normalizedText == "" {
		return model.LabelUnclassified
	}

	for _, rule := range e.rules {
		for _, re := range rule.patterns {
			loc := re.FindStringSubmatchIndex(normalizedText)
			if loc == nil {
				continue
			}
			return string(re.ExpandString(nil, rule.label, normalizedText, loc))
		}
	}

	return model.LabelUnclassified
}

// ExtractWithFallback extracts from the primary text, falling back to the
// secondary text (typically the full OCR mention) when the primary yields
// no label.
func (e *Extractor) ExtractWithFallback(primary, secondary string) string {
	if label := e.Extract(primary); label != model.LabelUnclassified {
		return label
	}
	return e.Extract(secondary)
}
