// Package model defines the core data structures for the chargemap application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LabelUnclassified is the sentinel returned when no alias rule matches.
// It is a real value, not an absence marker, so downstream code never
// special-cases nil.
const LabelUnclassified = "Unclassified"

// ChargeTypeUnclassified is the sentinel charge type for lines no pattern
// rule covered. These lines are expected steady-state output and feed the
// rule-table maintenance report.
const ChargeTypeUnclassified = "Unclassified"

// MatchTier records which tier of the rule table produced a classification.
type MatchTier string

// Match tier constants.
const (
	TierVendorSpecific MatchTier = "vendor-specific"
	TierDefault        MatchTier = "default"
	TierUnclassified   MatchTier = "unclassified"
)

// LineItem is one billed entry from a vendor invoice, as produced by the
// upstream Document AI extraction. It is never mutated; classification
// produces a derived ClassifiedLineItem.
type LineItem struct {
	Amount      decimal.Decimal
	UnitPrice   decimal.Decimal
	ID          string
	InvoiceMD5  string
	VendorName  string
	AccountID   string
	Description string // Raw line-item description text
	FullText    string // Full OCR mention text, used as extraction fallback
	ServiceDate string // Verbatim from the invoice; format varies by vendor
	Hash        string
	Quantity    float64
}

// GenerateHash creates a stable hash for duplicate detection across
// re-imports of the same invoice JSON.
func (li *LineItem) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		li.InvoiceMD5,
		li.VendorName,
		li.AccountID,
		li.Description,
		li.Amount.StringFixed(2))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ClassifiedLineItem is a LineItem after the full pipeline: extraction,
// charge classification and service resolution.
type ClassifiedLineItem struct {
	ClassifiedAt time.Time
	LineItem     LineItem
	Equipment    string
	Material     string
	ChargeType   string
	ServiceType  string
	Tier         MatchTier
	Service      Resolution
	RuleID       int64 // 0 when no rule matched
}

// Classified reports whether a pattern rule covered this line.
func (c *ClassifiedLineItem) Classified() bool {
	return c.Tier != TierUnclassified
}
