package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/cli"
	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/rules"
	"github.com/wasteworks/chargemap/internal/service"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage charge pattern rules and alias tables",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesImportCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List charge rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleList, err := store.GetChargeRules(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Charge Rules"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-5s %-22s %-4s %-40s %-28s %s",
				"ID", "Vendor", "Pri", "Pattern", "Charge Type", "Samples")))
			for _, rule := range ruleList {
				fmt.Printf("%-5d %-22s %-4d %-40s %-28s %d\n",
					rule.ID, scopeLabel(rule), rule.Priority, rule.Pattern,
					rule.ChargeType, rule.SampleCount)
			}
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a charge rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			vendor, _ := cmd.Flags().GetString("vendor")
			pattern, _ := cmd.Flags().GetString("pattern")
			chargeType, _ := cmd.Flags().GetString("charge-type")
			serviceType, _ := cmd.Flags().GetString("service-type")
			priority, _ := cmd.Flags().GetInt("priority")

			scope := model.VendorOnly(vendor)
			if vendor == "*" {
				scope = model.AnyVendor()
			}
			if priority == 0 {
				if scope.IsWildcard() {
					priority = model.PriorityDefault
				} else {
					priority = model.PriorityVendor
				}
			}

			rule := model.ChargeRule{
				Scope:       scope,
				Pattern:     pattern,
				ChargeType:  chargeType,
				ServiceType: serviceType,
				Priority:    priority,
			}

			// Compile before storing so a bad regex never reaches the table.
			if _, err := rules.NewTable([]model.ChargeRule{rule}); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateChargeRule(ctx, &rule); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added rule %d", rule.ID)))
			return nil
		},
	}

	cmd.Flags().String("vendor", "*", `vendor scope ("*" for any vendor)`)
	cmd.Flags().String("pattern", "", "regex matched against normalized line text")
	cmd.Flags().String("charge-type", "", "standardized charge type")
	cmd.Flags().String("service-type", "", "optional service type")
	cmd.Flags().Int("priority", 0, "evaluation priority, lower wins (default by scope)")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("charge-type")

	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a charge rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteChargeRule(ctx, id); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id)))
			return nil
		},
	}
}

func rulesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <rules.yaml>",
		Short: "Import a curated YAML rule file",
		Long: `Validate a YAML rule file and load it into storage: alias tables are
replaced wholesale (order matters), charge rules are appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ruleSet, err := rules.Load(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(ruleSet.Equipment) > 0 {
				if err := store.ReplaceAliasRules(ctx, service.AliasEquipment, ruleSet.Equipment); err != nil {
					return err
				}
			}
			if len(ruleSet.Materials) > 0 {
				if err := store.ReplaceAliasRules(ctx, service.AliasMaterial, ruleSet.Materials); err != nil {
					return err
				}
			}
			for i := range ruleSet.Charges {
				if err := store.CreateChargeRule(ctx, &ruleSet.Charges[i]); err != nil {
					return err
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Imported %d equipment aliases, %d material aliases, %d charge rules",
				len(ruleSet.Equipment), len(ruleSet.Materials), len(ruleSet.Charges))))
			return nil
		},
	}
}
