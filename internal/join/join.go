// Package join matches extracted invoice line items against billing system
// charge records. The joined pairs show what a vendor's invoice text was
// ultimately billed as, which is the raw material for curating new pattern
// rules.
package join

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wasteworks/chargemap/internal/model"
)

// Match scoring. Amount agreement dominates; description word overlap breaks
// ties between same-priced lines on one invoice.
const (
	scoreAmountExact = 10 // within $0.02
	scoreAmountClose = 5  // within $1.00

	// MinConfidentScore is the threshold below which a candidate pairing is
	// reported as unmatched rather than joined.
	MinConfidentScore = 5
)

var (
	amountExactTolerance = decimal.NewFromFloat(0.02)
	amountCloseTolerance = decimal.NewFromFloat(1.00)
)

// BillingCharge is one record from the billing system export, keyed by the
// md5 of the invoice document it was billed from.
type BillingCharge struct {
	Amount            decimal.Decimal
	InvoiceMD5        string
	ChargeDescription string
	ChargeType        string
	ServiceType       string
	Equipment         string
	Material          string
	ServiceID         string
}

// Pair is one invoice line joined to its best billing charge.
type Pair struct {
	Variance decimal.Decimal
	Line     model.LineItem
	Charge   BillingCharge
	Score    int
}

// Unmatched is an invoice line with no confident billing counterpart.
type Unmatched struct {
	Line  model.LineItem
	Note  string
	Score int
}

// Result holds the outcome of one join run.
type Result struct {
	Pairs     []Pair
	Unmatched []Unmatched
}

// Join pairs each invoice line with the best-scoring billing charge sharing
// its invoice md5. Lines whose md5 has no billing records at all, or whose
// best candidate scores below the confidence threshold, land in Unmatched.
func Join(lines []model.LineItem, charges []BillingCharge) Result {
	byMD5 := make(map[string][]BillingCharge)
	for _, charge := range charges {
		md5 := strings.ToLower(strings.TrimSpace(charge.InvoiceMD5))
		byMD5[md5] = append(byMD5[md5], charge)
	}

	var result Result
	for _, line := range lines {
		md5 := strings.ToLower(strings.TrimSpace(line.InvoiceMD5))
		candidates, ok := byMD5[md5]
		if !ok {
			result.Unmatched = append(result.Unmatched, Unmatched{
				Line: line,
				Note: "invoice md5 not found in billing charges",
			})
			continue
		}

		bestScore := 0
		bestIdx := -1
		for i, candidate := range candidates {
			score := matchScore(line, candidate)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx < 0 || bestScore < MinConfidentScore {
			result.Unmatched = append(result.Unmatched, Unmatched{
				Line:  line,
				Note:  "no confident match found",
				Score: bestScore,
			})
			continue
		}

		best := candidates[bestIdx]
		result.Pairs = append(result.Pairs, Pair{
			Line:     line,
			Charge:   best,
			Score:    bestScore,
			Variance: line.Amount.Sub(best.Amount),
		})
	}
	return result
}

func matchScore(line model.LineItem, charge BillingCharge) int {
	score := 0

	if !line.Amount.IsZero() && !charge.Amount.IsZero() {
		diff := line.Amount.Sub(charge.Amount).Abs()
		switch {
		case diff.LessThan(amountExactTolerance):
			score += scoreAmountExact
		case diff.LessThan(amountCloseTolerance):
			score += scoreAmountClose
		}
	}

	score += wordOverlap(line.Description, charge.ChargeDescription)
	return score
}

// wordOverlap counts distinct words the two normalized descriptions share.
func wordOverlap(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	wordsA := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToUpper(a)) {
		wordsA[word] = struct{}{}
	}
	overlap := 0
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToUpper(b)) {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		if _, ok := wordsA[word]; ok {
			overlap++
		}
	}
	return overlap
}
