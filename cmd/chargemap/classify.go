package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/classify"
	"github.com/wasteworks/chargemap/internal/cli"
	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/export"
	"github.com/wasteworks/chargemap/internal/service"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify stored invoice line items",
		Long: `Run every stored line item through the classification pipeline:
normalization, equipment and material extraction, charge-type matching and
service resolution. Results can be exported to CSV and persisted as a run.`,
		RunE: runClassify,
	}

	cmd.Flags().String("vendor", "", "only classify lines from this vendor")
	cmd.Flags().String("rules", "", "YAML rule file overriding the stored tables for this run")
	cmd.Flags().String("output", "", "write per-line detail CSV to this path")
	cmd.Flags().String("summary", "", "write vendor/description summary CSV to this path")
	cmd.Flags().Int("workers", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().Bool("save", false, "persist the run and its classifications")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	vendor, _ := cmd.Flags().GetString("vendor")
	rulesFile, _ := cmd.Flags().GetString("rules")
	outputPath, _ := cmd.Flags().GetString("output")
	summaryPath, _ := cmd.Flags().GetString("summary")
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("save")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ruleSet, err := loadRuleSet(ctx, store, rulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	serviceMap, err := loadServiceMap(ctx, store)
	if err != nil {
		return err
	}

	items, err := store.GetLineItems(ctx, vendor)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	if len(items) == 0 {
		slog.Warn("no line items to classify", "vendor", vendor)
		return nil
	}

	classifier, err := classify.New(ruleSet, serviceMap)
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	cfg := classify.DefaultConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	engine := classify.NewEngine(classifier, cfg)

	results, stats, err := engine.ClassifyAll(ctx, items)
	if err != nil {
		return fmt.Errorf("classification run failed: %w", err)
	}

	writer := export.NewCSVWriter()
	if outputPath != "" {
		path := config.ExpandPath(outputPath)
		if err := writer.WriteDetail(path, results); err != nil {
			return err
		}
		slog.Info("wrote detail report", "path", path, "rows", len(results))
	}
	if summaryPath != "" {
		path := config.ExpandPath(summaryPath)
		if err := writer.WriteSummary(path, results); err != nil {
			return err
		}
		slog.Info("wrote summary report", "path", path)
	}

	if save {
		record := runRecord(stats)
		if err := store.SaveRun(ctx, record); err != nil {
			return err
		}
		if err := store.SaveClassifications(ctx, stats.RunID, results); err != nil {
			return err
		}
		slog.Info("saved classification run", "run_id", stats.RunID)
	}

	fmt.Println(cli.RenderRunSummary(stats))
	return nil
}

func runRecord(stats *classify.RunStats) *service.RunRecord {
	return &service.RunRecord{
		ID:             stats.RunID,
		StartedAt:      stats.StartedAt,
		FinishedAt:     stats.FinishedAt,
		Total:          stats.Total,
		VendorMatched:  stats.VendorMatched,
		DefaultMatched: stats.DefaultMatched,
		Unclassified:   stats.Unclassified,
		Resolved:       stats.Resolved,
		Ambiguous:      stats.Ambiguous,
		NotFound:       stats.NotFound,
	}
}
