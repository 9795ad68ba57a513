// Package download fetches Document AI invoice JSONs from the inference
// output bucket and lays them out on disk by vendor.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"

	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/service"
)

// Client downloads invoice JSONs from a GCS bucket.
type Client struct {
	objects *storagev1.ObjectsService
	bucket  string
	retry   service.RetryOptions
}

// NewClient creates a bucket client using application default credentials.
func NewClient(ctx context.Context, bucket string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name", common.ErrMissingConfig)
	}

	httpClient, err := google.DefaultClient(ctx, storagev1.DevstorageReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load default credentials: %w", err)
	}

	svc, err := storagev1.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	return newClient(svc, bucket), nil
}

// NewClientWithService creates a bucket client over an existing storage
// service. Used in tests with a local endpoint.
func NewClientWithService(svc *storagev1.Service, bucket string) *Client {
	return newClient(svc, bucket)
}

func newClient(svc *storagev1.Service, bucket string) *Client {
	return &Client{
		objects: storagev1.NewObjectsService(svc),
		bucket:  bucket,
		retry:   service.RetryOptions{MaxAttempts: 3},
	}
}

// Fetch downloads one invoice document by md5. Objects were uploaded under
// both naming schemes over time, so <md5>.json is tried before bare <md5>.
func (c *Client) Fetch(ctx context.Context, invoiceMD5 string) ([]byte, error) {
	md5 := strings.TrimSpace(invoiceMD5)
	if md5 == "" {
		return nil, fmt.Errorf("%w: invoice md5", common.ErrMissingConfig)
	}

	for _, object := range []string{md5 + ".json", md5} {
		data, err := c.fetchObject(ctx, object)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, common.ErrObjectNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", md5, common.ErrObjectNotFound)
}

func (c *Client) fetchObject(ctx context.Context, object string) ([]byte, error) {
	var data []byte
	err := common.WithRetry(ctx, func() error {
		resp, err := c.objects.Get(c.bucket, object).Context(ctx).Download()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
				return fmt.Errorf("%s: %w", object, common.ErrObjectNotFound)
			}
			return fmt.Errorf("failed to download %s: %w", object, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", object, err)
		}
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Stats summarizes one download batch.
type Stats struct {
	ByVendor   map[string]*VendorStats
	Downloaded int
	NotFound   int
	Errors     int
}

// VendorStats counts outcomes for one vendor's documents.
type VendorStats struct {
	Downloaded int
	NotFound   int
	Errors     int
}

// DownloadAll fetches every manifest entry into outputDir, one subfolder per
// vendor. Missing objects and per-object errors are counted, not fatal; only
// context cancellation aborts the batch.
func (c *Client) DownloadAll(ctx context.Context, entries []ManifestEntry, outputDir string) (*Stats, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stats := &Stats{ByVendor: make(map[string]*VendorStats)}
	bar := progressbar.Default(int64(len(entries)), "downloading")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		vendorStats, ok := stats.ByVendor[entry.VendorName]
		if !ok {
			vendorStats = &VendorStats{}
			stats.ByVendor[entry.VendorName] = vendorStats
		}

		vendorDir := filepath.Join(outputDir, SanitizeFolderName(entry.VendorName))
		if err := os.MkdirAll(vendorDir, 0o750); err != nil {
			return stats, fmt.Errorf("failed to create vendor directory: %w", err)
		}

		data, err := c.Fetch(ctx, entry.InvoiceMD5)
		switch {
		case errors.Is(err, common.ErrObjectNotFound):
			stats.NotFound++
			vendorStats.NotFound++
		case err != nil:
			slog.Warn("download failed",
				"vendor", entry.VendorName,
				"md5", entry.InvoiceMD5,
				"error", err)
			stats.Errors++
			vendorStats.Errors++
		default:
			path := filepath.Join(vendorDir, entry.InvoiceMD5+".json")
			if err := os.WriteFile(path, data, 0o640); err != nil {
				return stats, fmt.Errorf("failed to write %s: %w", path, err)
			}
			stats.Downloaded++
			vendorStats.Downloaded++
		}

		_ = bar.Add(1)
	}

	return stats, nil
}

var (
	unsafeFolderChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// SanitizeFolderName makes a vendor name safe to use as a directory name.
func SanitizeFolderName(name string) string {
	name = unsafeFolderChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}
