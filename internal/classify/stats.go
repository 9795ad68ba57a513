package classify

import (
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/chargemap/internal/model"
)

// RunStats aggregates one classification run for reporting and rule-table
// maintenance: unclassified counts per vendor show where vendor-specific
// rules are missing, ambiguous counts per account show service-map gaps.
type RunStats struct {
	StartedAt            time.Time
	FinishedAt           time.Time
	UnclassifiedByVendor map[string]int
	AmbiguousByAccount   map[string]int
	RunID                string
	Total                int
	VendorMatched        int
	DefaultMatched       int
	Unclassified         int
	Resolved             int
	Ambiguous            int
	NotFound             int
}

// NewRunStats starts a stats accumulator with a fresh run id.
func NewRunStats() *RunStats {
	return &RunStats{
		RunID:                uuid.NewString(),
		StartedAt:            time.Now(),
		UnclassifiedByVendor: make(map[string]int),
		AmbiguousByAccount:   make(map[string]int),
	}
}

// Record folds one classified line into the totals. Not safe for
// concurrent use; the engine records from a single collector goroutine.
func (s *RunStats) Record(c model.ClassifiedLineItem) {
	s.Total++

	switch c.Tier {
	case model.TierVendorSpecific:
		s.VendorMatched++
	case model.TierDefault:
		s.DefaultMatched++
	case model.TierUnclassified:
		s.Unclassified++
		s.UnclassifiedByVendor[c.LineItem.VendorName]++
	}

	switch c.Service.Status {
	case model.ResolutionResolved:
		s.Resolved++
	case model.ResolutionAmbiguous:
		s.Ambiguous++
		s.AmbiguousByAccount[c.LineItem.AccountID]++
	case model.ResolutionNotFound:
		s.NotFound++
	}
}

// Classified returns the number of lines any rule covered.
func (s *RunStats) Classified() int {
	return s.VendorMatched + s.DefaultMatched
}
