package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/download"
)

func downloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <manifest.csv>",
		Short: "Download invoice JSONs from the inference bucket",
		Long: `Download Document AI extraction JSONs listed in a manifest CSV
(columns: vendor_name, invoice_md5) into per-vendor folders, ready for the
import command.`,
		Args: cobra.ExactArgs(1),
		RunE: runDownload,
	}

	cmd.Flags().String("bucket", "", "GCS bucket name (default: the inference output bucket)")
	cmd.Flags().StringP("output-dir", "o", "json_by_vendor", "output directory")

	_ = viper.BindPFlag("download.bucket", cmd.Flags().Lookup("bucket"))

	return cmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	entries, err := download.ReadManifest(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		slog.Warn("manifest contains no usable rows")
		return nil
	}

	bucket := viper.GetString("download.bucket")
	if bucket == "" {
		bucket = config.DefaultBucket
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")
	outputDir = config.ExpandPath(outputDir)

	slog.Info("downloading invoices",
		"bucket", bucket,
		"entries", len(entries),
		"output", outputDir)

	client, err := download.NewClient(ctx, bucket)
	if err != nil {
		return common.NewUserError(
			"could not connect to the inference bucket (try: gcloud auth application-default login)", err)
	}

	stats, err := client.DownloadAll(ctx, entries, outputDir)
	if err != nil {
		return err
	}

	slog.Info("download complete",
		"downloaded", stats.Downloaded,
		"not_found", stats.NotFound,
		"errors", stats.Errors)
	for vendor, vendorStats := range stats.ByVendor {
		slog.Debug("vendor summary",
			"vendor", vendor,
			"downloaded", vendorStats.Downloaded,
			"not_found", vendorStats.NotFound)
	}
	return nil
}
