// Package rules implements the charge pattern rule table: an ordered,
// vendor-scoped collection of text patterns resolving invoice lines to
// standardized charge types.
package rules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/model"
)

// Table is an immutable, compiled snapshot of the charge rule table.
// Construct it fully before classifying; hot reloads swap in a whole new
// Table so no batch observes a mix of old and new rules.
type Table struct {
	rules    []model.ChargeRule
	compiled []*regexp.Regexp
}

// NewTable validates, compiles and orders a rule list. Rules are ordered by
// (priority ascending, declaration order); an invalid pattern rejects the
// whole table so the pipeline refuses to start with a known-bad rule set.
func NewTable(list []model.ChargeRule) (*Table, error) {
	rules := make([]model.ChargeRule, len(list))
	copy(rules, list)

	// Stable sort preserves declaration order within a priority tier, which
	// makes evaluation a total order.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	compiled := make([]*regexp.Regexp, len(rules))
	for i, rule := range rules {
		if rule.ChargeType == "" {
			return nil, fmt.Errorf("%w: rule %d (%s): charge_type is required", common.ErrInvalidRuleTable, i, rule.Scope)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("%w: rule %d (%s): pattern is required", common.ErrInvalidRuleTable, i, rule.Scope)
		}
		re, err := regexp.Compile(`(?i)` + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): invalid pattern %q: %v", common.ErrInvalidRuleTable, i, rule.Scope, rule.Pattern, err)
		}
		compiled[i] = re
	}

	return &Table{rules: rules, compiled: compiled}, nil
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []model.ChargeRule {
	out := make([]model.ChargeRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Match resolves normalized line text for the given vendor. The vendor
// scope is a hard pre-filter; among in-scope rules the first pattern match
// in (priority, declaration) order wins. A miss returns ok=false with the
// unclassified tier, never an error: uncovered patterns are expected
// steady-state output.
func (t *Table) Match(vendor, normalizedText string) (model.ChargeRule, model.MatchTier, bool) {
	for i, rule := range t.rules {
		if !rule.Scope.Matches(vendor) {
			continue
		}
		if t.compiled[i].MatchString(normalizedText) {
			return rule, rule.Tier(), true
		}
	}
	return model.ChargeRule{}, model.TierUnclassified, false
}
