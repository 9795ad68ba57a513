package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/cli"
	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/export"
	"github.com/wasteworks/chargemap/internal/join"
)

func joinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <billing_charges.csv>",
		Short: "Join stored line items with billing charges",
		Long: `Match stored invoice line items against a billing system export by
invoice md5 and amount, then propose vendor-scoped pattern rules from the
recurring pairings. Use --save to add the suggested rules to the table.`,
		Args: cobra.ExactArgs(1),
		RunE: runJoin,
	}

	cmd.Flags().String("vendor", "", "only join lines from this vendor")
	cmd.Flags().String("unmatched", "", "write unmatched lines CSV to this path")
	cmd.Flags().Bool("save", false, "add suggested rules to the stored rule table")

	return cmd
}

func runJoin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vendor, _ := cmd.Flags().GetString("vendor")
	save, _ := cmd.Flags().GetBool("save")

	charges, err := join.ReadBillingCharges(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	lines, err := store.GetLineItems(ctx, vendor)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}

	slog.Info("joining invoice lines with billing charges",
		"lines", len(lines),
		"charges", len(charges))

	result := join.Join(lines, charges)
	suggestions := join.SuggestRules(result.Pairs)

	if unmatchedPath, _ := cmd.Flags().GetString("unmatched"); unmatchedPath != "" {
		path := config.ExpandPath(unmatchedPath)
		if err := export.NewCSVWriter().WriteUnmatched(path, result.Unmatched); err != nil {
			return err
		}
		slog.Info("wrote unmatched report", "path", path, "rows", len(result.Unmatched))
	}

	fmt.Println(cli.FormatTitle("Invoice / Billing Join"))
	fmt.Printf("  %-20s %d\n", "Matched pairs", len(result.Pairs))
	fmt.Printf("  %-20s %d\n", "Unmatched lines", len(result.Unmatched))
	fmt.Printf("  %-20s %d\n\n", "Suggested rules", len(suggestions))

	if len(suggestions) > 0 {
		fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-25s %-40s %-30s %s",
			"Vendor", "Pattern", "Charge Type", "Samples")))
		for _, s := range suggestions {
			fmt.Printf("%-25s %-40s %-30s %d\n",
				s.Vendor, s.Pattern, s.ChargeType, s.SampleCount)
		}
	}

	if save {
		for _, s := range suggestions {
			rule := s.Rule()
			if err := store.CreateChargeRule(ctx, &rule); err != nil {
				return fmt.Errorf("failed to save rule for %q: %w", s.Pattern, err)
			}
		}
		fmt.Println("\n" + cli.FormatSuccess(fmt.Sprintf("Added %d vendor rules", len(suggestions))))
	}

	return nil
}
