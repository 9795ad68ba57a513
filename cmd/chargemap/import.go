package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/docai"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <directory>",
		Short: "Import Document AI invoice JSONs",
		Long: `Walk a directory tree of Document AI extraction JSONs (as laid out by
the download command), parse each invoice, and store its header and line
items. Re-importing the same documents is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("vendor", "", "only import invoices from vendors containing this name")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root := config.ExpandPath(args[0])
	vendorFilter, _ := cmd.Flags().GetString("vendor")

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		slog.Warn("no JSON files found", "directory", root)
		return nil
	}
	slog.Info("importing invoices", "files", len(paths))

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.Default(int64(len(paths)), "importing")

	var imported, skipped, failed int
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		invoice, err := docai.ParseFile(path)
		if err != nil {
			slog.Warn("failed to parse invoice", "path", path, "error", err)
			failed++
			_ = bar.Add(1)
			continue
		}

		if vendorFilter != "" &&
			!strings.Contains(strings.ToLower(invoice.VendorName), strings.ToLower(vendorFilter)) {
			skipped++
			_ = bar.Add(1)
			continue
		}

		if err := store.SaveInvoice(ctx, invoice); err != nil {
			slog.Warn("failed to save invoice", "md5", invoice.MD5, "error", err)
			failed++
			_ = bar.Add(1)
			continue
		}

		imported++
		_ = bar.Add(1)
	}

	slog.Info("import complete",
		"imported", imported,
		"skipped", skipped,
		"failed", failed)
	return nil
}
