package classify

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/wasteworks/chargemap/internal/model"
)

// Config holds engine options.
type Config struct {
	// Workers is the number of parallel classification goroutines.
	Workers int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU()}
}

// Engine classifies batches of line items in parallel against one
// immutable classifier snapshot. Swapping rule tables between batches
// means building a new Classifier and a new Engine; a running batch never
// observes a mix of old and new rules.
type Engine struct {
	classifier *Classifier
	workers    int
}

// NewEngine creates an engine with the given configuration.
func NewEngine(classifier *Classifier, cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Engine{classifier: classifier, workers: workers}
}

type indexedItem struct {
	item  model.LineItem
	index int
}

type indexedResult struct {
	result model.ClassifiedLineItem
	index  int
}

// ClassifyAll classifies every line item and returns the results in input
// order along with run statistics. Classification itself has no fallible
// external effects; the only error is caller cancellation.
func (e *Engine) ClassifyAll(ctx context.Context, items []model.LineItem) ([]model.ClassifiedLineItem, *RunStats, error) {
	stats := NewRunStats()
	results := make([]model.ClassifiedLineItem, len(items))

	if len(items) == 0 {
		stats.FinishedAt = stats.StartedAt
		return results, stats, nil
	}

	slog.Info("starting classification run",
		"run_id", stats.RunID,
		"items", len(items),
		"workers", e.workers)

	workChan := make(chan indexedItem, len(items))
	for i, item := range items {
		workChan <- indexedItem{item: item, index: i}
	}
	close(workChan)

	resultsChan := make(chan indexedResult, len(items))

	var wg sync.WaitGroup
	wg.Add(e.workers)
	for w := 0; w < e.workers; w++ {
		go func() {
			defer wg.Done()
			for work := range workChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				resultsChan <- indexedResult{
					result: e.classifier.Classify(work.item),
					index:  work.index,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for res := range resultsChan {
		results[res.index] = res.result
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Fold stats in input order so repeated runs report identically.
	for _, res := range results {
		stats.Record(res)
	}
	stats.FinishedAt = time.Now()

	slog.Info("classification run complete",
		"run_id", stats.RunID,
		"total", stats.Total,
		"vendor_matched", stats.VendorMatched,
		"default_matched", stats.DefaultMatched,
		"unclassified", stats.Unclassified,
		"ambiguous", stats.Ambiguous,
		"not_found", stats.NotFound)

	return results, stats, nil
}
