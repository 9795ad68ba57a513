package join

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteworks/chargemap/internal/model"
)

func line(md5, description string, amount float64) model.LineItem {
	return model.LineItem{
		InvoiceMD5:  md5,
		VendorName:  "Republic Services",
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
	}
}

func charge(md5, description, chargeType string, amount float64) BillingCharge {
	return BillingCharge{
		InvoiceMD5:        md5,
		ChargeDescription: description,
		ChargeType:        chargeType,
		Amount:            decimal.NewFromFloat(amount),
	}
}

func TestJoinExactAmount(t *testing.T) {
	lines := []model.LineItem{line("abc", "MONTHLY EQUIPMENT FEE", 811.00)}
	charges := []BillingCharge{
		charge("abc", "Monthly Service", "Monthly Service Commercial", 811.00),
		charge("abc", "Fuel Recovery", "Fuel Surcharge", 93.27),
	}

	result := Join(lines, charges)
	require.Len(t, result.Pairs, 1)
	assert.Empty(t, result.Unmatched)

	pair := result.Pairs[0]
	assert.Equal(t, "Monthly Service Commercial", pair.Charge.ChargeType)
	assert.GreaterOrEqual(t, pair.Score, scoreAmountExact)
	assert.True(t, pair.Variance.IsZero())
}

func TestJoinPicksBestCandidate(t *testing.T) {
	// Two same-priced charges on one invoice: word overlap breaks the tie.
	lines := []model.LineItem{line("abc", "OCC RECYCLING HAUL", 450.00)}
	charges := []BillingCharge{
		charge("abc", "Trash Haul", "Empty & Return", 450.00),
		charge("abc", "OCC Recycling Haul", "Recycling Service", 450.00),
	}

	result := Join(lines, charges)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "Recycling Service", result.Pairs[0].Charge.ChargeType)
}

func TestJoinCloseAmountScoresLower(t *testing.T) {
	lines := []model.LineItem{line("abc", "DISPOSAL", 100.50)}
	charges := []BillingCharge{charge("abc", "DISPOSAL", "Disposal", 100.00)}

	result := Join(lines, charges)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, scoreAmountClose+1, result.Pairs[0].Score)
}

func TestJoinMissingMD5(t *testing.T) {
	lines := []model.LineItem{line("zzz", "MONTHLY FEE", 100.00)}
	charges := []BillingCharge{charge("abc", "Monthly", "Monthly Service Commercial", 100.00)}

	result := Join(lines, charges)
	assert.Empty(t, result.Pairs)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "invoice md5 not found in billing charges", result.Unmatched[0].Note)
	assert.Zero(t, result.Unmatched[0].Score)
}

func TestJoinLowScoreUnmatched(t *testing.T) {
	// Amounts far apart, descriptions share nothing: best score below threshold.
	lines := []model.LineItem{line("abc", "ENVIRONMENTAL FEE", 25.00)}
	charges := []BillingCharge{charge("abc", "Container Exchange", "Equipment Swap", 900.00)}

	result := Join(lines, charges)
	assert.Empty(t, result.Pairs)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "no confident match found", result.Unmatched[0].Note)
}

func TestJoinMD5CaseInsensitive(t *testing.T) {
	lines := []model.LineItem{line("ABC123", "MONTHLY FEE", 100.00)}
	charges := []BillingCharge{charge("abc123", "Monthly Fee", "Monthly Service Commercial", 100.00)}

	result := Join(lines, charges)
	assert.Len(t, result.Pairs, 1)
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"disjoint", "FUEL SURCHARGE", "MONTHLY SERVICE", 0},
		{"partial", "OCC RECYCLING HAUL", "OCC HAUL", 2},
		{"case folded", "occ haul", "OCC HAUL", 2},
		{"duplicate words count once", "HAUL HAUL HAUL", "HAUL", 1},
		{"empty", "", "OCC", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordOverlap(tt.a, tt.b))
		})
	}
}

func TestSuggestRules(t *testing.T) {
	pair := func(vendor, description, chargeType string) Pair {
		return Pair{
			Line: model.LineItem{
				VendorName:  vendor,
				Description: description,
			},
			Charge: BillingCharge{ChargeType: chargeType, ServiceType: "Recurring"},
		}
	}

	pairs := []Pair{
		pair("Republic Services", "MONTHLY EQUIPMENT FEE", "Monthly Service Commercial"),
		pair("Republic Services", "MONTHLY EQUIPMENT FEE", "Monthly Service Commercial"),
		pair("Republic Services", "MONTHLY EQUIPMENT FEE", "Monthly Service Commercial"),
		pair("Recology", "30YD COMPACTOR HAUL", "Empty & Return"),
		pair("Recology", "30YD COMPACTOR HAUL", "Empty & Return"),
		// Singleton support: dropped.
		pair("Recology", "MYSTERY CHARGE", "Disposal"),
	}

	suggestions := SuggestRules(pairs)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "Republic Services", suggestions[0].Vendor)
	assert.Equal(t, 3, suggestions[0].SampleCount)
	assert.Equal(t, `MONTHLY\s+EQUIPMENT\s+FEE`, suggestions[0].Pattern)

	assert.Equal(t, "Recology", suggestions[1].Vendor)
	assert.Equal(t, 2, suggestions[1].SampleCount)
	assert.Equal(t, `(\d+)\s*YD\s+COMPACTOR\s+HAUL`, suggestions[1].Pattern)

	rule := suggestions[1].Rule()
	assert.Equal(t, "Recology", rule.Scope.Vendor())
	assert.Equal(t, model.PriorityVendor, rule.Priority)
	assert.Equal(t, "Empty & Return", rule.ChargeType)
	assert.Equal(t, 2, rule.SampleCount)
}

func TestDescriptionPatternGeneralizesSizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30YD COMPACTOR", `(\d+)\s*YD\s+COMPACTOR`},
		{"96 GAL TOTER", `(\d+)\s*GAL\s+TOTER`},
		{"FUEL SURCHARGE", `FUEL\s+SURCHARGE`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, descriptionPattern(tt.in))
		})
	}
}
