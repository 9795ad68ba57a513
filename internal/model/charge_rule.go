package model

import (
	"strings"
	"time"
)

// Rule priority tiers. Lower values win. Vendor-specific rules occupy the
// high-precedence tier so they always beat wildcard fallbacks, regardless of
// declaration order between scopes.
const (
	PriorityVendor  = 1
	PriorityDefault = 99
)

// VendorScope restricts a charge rule to a single vendor or marks it as a
// wildcard that applies to any vendor. The wildcard is a tagged variant, not
// a magic string, so a real vendor can never collide with the sentinel.
type VendorScope struct {
	vendor   string
	wildcard bool
}

// AnyVendor returns the wildcard scope.
func AnyVendor() VendorScope {
	return VendorScope{wildcard: true}
}

// VendorOnly returns a scope limited to the named vendor.
func VendorOnly(name string) VendorScope {
	return VendorScope{vendor: name}
}

// IsWildcard reports whether the scope applies to any vendor.
func (s VendorScope) IsWildcard() bool {
	return s.wildcard
}

// Vendor returns the vendor name for a specific scope, or "" for the wildcard.
func (s VendorScope) Vendor() string {
	if s.wildcard {
		return ""
	}
	return s.vendor
}

// Matches reports whether a line from the given vendor is in scope. Vendor
// comparison is a hard pre-filter: a rule scoped to one vendor is never
// evaluated against another vendor's lines.
func (s VendorScope) Matches(vendor string) bool {
	if s.wildcard {
		return true
	}
	return strings.EqualFold(s.vendor, vendor)
}

// String renders the scope for display and storage ("*" for the wildcard).
func (s VendorScope) String() string {
	if s.wildcard {
		return "*"
	}
	return s.vendor
}

// ChargeRule maps normalized invoice text to a standardized charge type.
// Rules are evaluated ordered by (Priority ascending, declaration order);
// the first rule whose scope and pattern both match wins.
type ChargeRule struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Pattern     string // regex matched against normalized line text
	ChargeType  string
	ServiceType string // optional secondary classification, e.g. "Recurring"
	Scope       VendorScope
	ID          int64
	Priority    int
	SampleCount int // provenance from the curation join; not used in matching
}

// Tier returns the match tier this rule reports when it wins.
func (r *ChargeRule) Tier() MatchTier {
	if r.Scope.IsWildcard() {
		return TierDefault
	}
	return TierVendorSpecific
}
