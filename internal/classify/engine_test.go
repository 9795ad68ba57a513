package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteworks/chargemap/internal/model"
)

func batchOf(n int) []model.LineItem {
	descriptions := []string{
		"42YD COMPACTOR MONTHLY FEE",
		"30YD COMPACTOR OCC HAUL",
		"20YD ROLL OFF HAUL",
		"FUEL SURCHARGE",
		"ZZZ UNKNOWN LINE",
	}
	items := make([]model.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.LineItem{
			ID:          fmt.Sprintf("line-%d", i),
			VendorName:  "Lawrence Waste",
			AccountID:   "ACCT-100",
			Description: descriptions[i%len(descriptions)],
		})
	}
	return items
}

func TestEngine_PreservesInputOrder(t *testing.T) {
	c := newClassifier(t, defaultRuleSet(), nil)
	engine := NewEngine(c, Config{Workers: 8})

	items := batchOf(200)
	results, stats, err := engine.ClassifyAll(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, len(items))
	assert.Equal(t, len(items), stats.Total)

	for i, res := range results {
		assert.Equal(t, items[i].ID, res.LineItem.ID)
	}
}

func TestEngine_DeterministicUnderConcurrency(t *testing.T) {
	c := newClassifier(t, defaultRuleSet(), []model.AccountService{
		{AccountID: "ACCT-100", Equipment: "30YD Compactor", Material: "Trash", ServiceID: "73912"},
		{AccountID: "ACCT-100", Equipment: "30YD Compactor", Material: "OCC", ServiceID: "73913"},
	})
	items := batchOf(100)

	sequential := NewEngine(c, Config{Workers: 1})
	parallel := NewEngine(c, Config{Workers: 16})

	seq, seqStats, err := sequential.ClassifyAll(context.Background(), items)
	require.NoError(t, err)
	par, parStats, err := parallel.ClassifyAll(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].ChargeType, par[i].ChargeType)
		assert.Equal(t, seq[i].Tier, par[i].Tier)
		assert.Equal(t, seq[i].Equipment, par[i].Equipment)
		assert.Equal(t, seq[i].Material, par[i].Material)
		assert.Equal(t, seq[i].Service, par[i].Service)
	}

	assert.Equal(t, seqStats.Unclassified, parStats.Unclassified)
	assert.Equal(t, seqStats.UnclassifiedByVendor, parStats.UnclassifiedByVendor)
	assert.Equal(t, seqStats.AmbiguousByAccount, parStats.AmbiguousByAccount)
}

func TestEngine_EmptyBatch(t *testing.T) {
	c := newClassifier(t, defaultRuleSet(), nil)
	engine := NewEngine(c, DefaultConfig())

	results, stats, err := engine.ClassifyAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, stats.Total)
}

func TestEngine_Cancellation(t *testing.T) {
	c := newClassifier(t, defaultRuleSet(), nil)
	engine := NewEngine(c, Config{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.ClassifyAll(ctx, batchOf(500))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunStats_Record(t *testing.T) {
	stats := NewRunStats()

	stats.Record(model.ClassifiedLineItem{
		LineItem: model.LineItem{VendorName: "Lawrence Waste", AccountID: "ACCT-1"},
		Tier:     model.TierVendorSpecific,
		Service:  model.Resolution{Status: model.ResolutionResolved, ServiceID: "73912"},
	})
	stats.Record(model.ClassifiedLineItem{
		LineItem: model.LineItem{VendorName: "Boren Brothers", AccountID: "ACCT-2"},
		Tier:     model.TierUnclassified,
		Service:  model.Resolution{Status: model.ResolutionNotFound},
	})
	stats.Record(model.ClassifiedLineItem{
		LineItem: model.LineItem{VendorName: "Boren Brothers", AccountID: "ACCT-2"},
		Tier:     model.TierDefault,
		Service:  model.Resolution{Status: model.ResolutionAmbiguous, Candidates: []string{"1", "2"}},
	})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Classified())
	assert.Equal(t, 1, stats.VendorMatched)
	assert.Equal(t, 1, stats.DefaultMatched)
	assert.Equal(t, 1, stats.Unclassified)
	assert.Equal(t, map[string]int{"Boren Brothers": 1}, stats.UnclassifiedByVendor)
	assert.Equal(t, map[string]int{"ACCT-2": 1}, stats.AmbiguousByAccount)
	assert.NotEmpty(t, stats.RunID)
}
