package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wasteworks/chargemap/internal/classify"
)

// RenderRunSummary formats a classification run's totals for the terminal.
func RenderRunSummary(stats *classify.RunStats) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Classification Run") + "\n")
	b.WriteString(SubtleStyle.Render("run "+stats.RunID) + "\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Total lines", fmt.Sprintf("%d", stats.Total)},
		{"Vendor-specific matches", fmt.Sprintf("%d", stats.VendorMatched)},
		{"Default matches", fmt.Sprintf("%d", stats.DefaultMatched)},
		{"Unclassified", fmt.Sprintf("%d", stats.Unclassified)},
		{"Services resolved", fmt.Sprintf("%d", stats.Resolved)},
		{"Services ambiguous", fmt.Sprintf("%d", stats.Ambiguous)},
		{"Services not found", fmt.Sprintf("%d", stats.NotFound)},
		{"Elapsed", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Millisecond).String()},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %-26s %s\n", row.label, row.value))
	}

	if stats.Total > 0 {
		pct := float64(stats.Classified()) / float64(stats.Total) * 100
		line := fmt.Sprintf("Coverage: %.1f%%", pct)
		if stats.Unclassified == 0 {
			b.WriteString("\n" + FormatSuccess(line) + "\n")
		} else {
			b.WriteString("\n" + FormatWarning(line) + "\n")
		}
	}

	if len(stats.UnclassifiedByVendor) > 0 {
		b.WriteString("\n" + WarningStyle.Render("Unclassified lines by vendor:") + "\n")
		for _, entry := range sortedCounts(stats.UnclassifiedByVendor) {
			b.WriteString(fmt.Sprintf("  %-30s %d\n", entry.key, entry.count))
		}
	}

	if len(stats.AmbiguousByAccount) > 0 {
		b.WriteString("\n" + WarningStyle.Render("Ambiguous resolutions by account:") + "\n")
		for _, entry := range sortedCounts(stats.AmbiguousByAccount) {
			b.WriteString(fmt.Sprintf("  %-30s %d\n", entry.key, entry.count))
		}
	}

	return b.String()
}

type countEntry struct {
	key   string
	count int
}

// sortedCounts orders map entries by count descending, then key, so the
// biggest rule-table gaps list first.
func sortedCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for key, count := range m {
		entries = append(entries, countEntry{key: key, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	return entries
}
