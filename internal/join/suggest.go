package join

import (
	"regexp"
	"sort"
	"strings"

	"github.com/wasteworks/chargemap/internal/model"
)

// Suggestion proposes one new vendor-scoped pattern rule derived from joined
// invoice/billing pairs. SampleCount is how many pairs support the mapping.
type Suggestion struct {
	Vendor      string
	Pattern     string
	ChargeType  string
	ServiceType string
	SampleCount int
}

// MinSampleCount is the support a (description, charge type) pairing needs
// before it becomes a suggestion. Singleton pairings are usually OCR noise.
const MinSampleCount = 2

// SuggestRules aggregates joined pairs into candidate vendor-scoped rules.
// One suggestion per (vendor, description, charge type), ordered by support
// descending so the highest-value rules come first for review.
func SuggestRules(pairs []Pair) []Suggestion {
	type key struct {
		vendor      string
		description string
		chargeType  string
	}
	counts := make(map[key]*Suggestion)

	for _, pair := range pairs {
		if pair.Charge.ChargeType == "" || pair.Line.Description == "" {
			continue
		}
		k := key{
			vendor:      pair.Line.VendorName,
			description: strings.ToUpper(pair.Line.Description),
			chargeType:  pair.Charge.ChargeType,
		}
		if existing, ok := counts[k]; ok {
			existing.SampleCount++
			continue
		}
		counts[k] = &Suggestion{
			Vendor:      k.vendor,
			Pattern:     descriptionPattern(k.description),
			ChargeType:  k.chargeType,
			ServiceType: pair.Charge.ServiceType,
			SampleCount: 1,
		}
	}

	suggestions := make([]Suggestion, 0, len(counts))
	for _, s := range counts {
		if s.SampleCount >= MinSampleCount {
			suggestions = append(suggestions, *s)
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].SampleCount != suggestions[j].SampleCount {
			return suggestions[i].SampleCount > suggestions[j].SampleCount
		}
		if suggestions[i].Vendor != suggestions[j].Vendor {
			return suggestions[i].Vendor < suggestions[j].Vendor
		}
		return suggestions[i].Pattern < suggestions[j].Pattern
	})
	return suggestions
}

// Rule converts a suggestion into a vendor-scoped charge rule ready for the
// rule table.
func (s *Suggestion) Rule() model.ChargeRule {
	return model.ChargeRule{
		Scope:       model.VendorOnly(s.Vendor),
		Pattern:     s.Pattern,
		ChargeType:  s.ChargeType,
		ServiceType: s.ServiceType,
		Priority:    model.PriorityVendor,
		SampleCount: s.SampleCount,
	}
}

var sizeToken = regexp.MustCompile(`\b\d+\s*(?:YD|YARD|GAL)\b`)

// descriptionPattern turns a literal description into a reusable pattern:
// the text is regex-escaped, container sizes generalize to a digit capture,
// and whitespace runs become flexible.
func descriptionPattern(description string) string {
	generalized := sizeToken.ReplaceAllStringFunc(description, func(token string) string {
		unit := strings.TrimLeft(token, "0123456789 ")
		return "\x00NUM\x00" + unit
	})

	escaped := regexp.QuoteMeta(generalized)
	escaped = strings.ReplaceAll(escaped, regexp.QuoteMeta("\x00NUM\x00"), `(\d+)\s*`)
	escaped = strings.Join(strings.Fields(escaped), `\s+`)
	return escaped
}
