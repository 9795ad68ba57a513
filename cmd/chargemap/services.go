package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/cli"
	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/model"
)

func servicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage the account service map",
	}

	cmd.AddCommand(servicesListCmd())
	cmd.AddCommand(servicesAddCmd())
	cmd.AddCommand(servicesImportCmd())

	return cmd
}

func servicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List service map entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.GetAccountServices(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Account Services"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-18s %-22s %-16s %s",
				"Account", "Equipment", "Material", "Service ID")))
			for _, entry := range entries {
				fmt.Printf("%-18s %-22s %-16s %s\n",
					entry.AccountID, entry.Equipment, entry.Material, entry.ServiceID)
			}
			return nil
		},
	}
}

func servicesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service map entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			account, _ := cmd.Flags().GetString("account")
			equipment, _ := cmd.Flags().GetString("equipment")
			material, _ := cmd.Flags().GetString("material")
			serviceID, _ := cmd.Flags().GetString("service-id")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entry := model.AccountService{
				AccountID: account,
				Equipment: equipment,
				Material:  material,
				ServiceID: serviceID,
			}
			if err := store.CreateAccountService(ctx, &entry); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added service %s", serviceID)))
			return nil
		},
	}

	cmd.Flags().String("account", "", "account id")
	cmd.Flags().String("equipment", "", "canonical equipment label")
	cmd.Flags().String("material", "", "canonical material label")
	cmd.Flags().String("service-id", "", "downstream service identifier")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("equipment")
	_ = cmd.MarkFlagRequired("material")
	_ = cmd.MarkFlagRequired("service-id")

	return cmd
}

func servicesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <services.csv>",
		Short: "Import service map entries from a billing export CSV",
		Long: `Import the account service map from a CSV with columns account_id,
equipment, material, service_id. Existing entries are kept; duplicate
composite keys are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(config.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open services CSV: %w", err)
			}
			defer func() { _ = file.Close() }()

			reader := csv.NewReader(file)
			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("failed to read header: %w", err)
			}
			columns := make(map[string]int)
			for i, name := range header {
				columns[strings.ToLower(strings.TrimSpace(name))] = i
			}
			for _, required := range []string{"account_id", "equipment", "material", "service_id"} {
				if _, ok := columns[required]; !ok {
					return fmt.Errorf("%w: services CSV missing %s column", common.ErrInvalidConfig, required)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var imported, duplicates int
			for {
				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("failed to read row: %w", err)
				}

				entry := model.AccountService{
					AccountID: strings.TrimSpace(record[columns["account_id"]]),
					Equipment: strings.TrimSpace(record[columns["equipment"]]),
					Material:  strings.TrimSpace(record[columns["material"]]),
					ServiceID: strings.TrimSpace(record[columns["service_id"]]),
				}
				err = store.CreateAccountService(ctx, &entry)
				switch {
				case errors.Is(err, common.ErrDuplicateEntry):
					slog.Warn("skipping duplicate service map entry",
						"account", entry.AccountID,
						"equipment", entry.Equipment,
						"material", entry.Material)
					duplicates++
				case err != nil:
					return err
				default:
					imported++
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Imported %d entries (%d duplicates skipped)", imported, duplicates)))
			return nil
		},
	}
}
