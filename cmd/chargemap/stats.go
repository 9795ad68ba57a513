package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/cli"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent classification runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.GetRunSummaries(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println(cli.FormatInfo("No classification runs recorded yet"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Classification Runs"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-36s %-17s %7s %7s %7s %7s %7s",
				"Run", "Started", "Total", "Vendor", "Default", "Unclass", "Ambig")))
			for _, run := range runs {
				fmt.Printf("%-36s %-17s %7d %7d %7d %7d %7d\n",
					run.ID,
					run.StartedAt.Format("2006-01-02 15:04"),
					run.Total,
					run.VendorMatched,
					run.DefaultMatched,
					run.Unclassified,
					run.Ambiguous)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "number of runs to show")

	return cmd
}
