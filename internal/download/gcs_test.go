package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"

	"github.com/wasteworks/chargemap/internal/common"
)

// newFakeBucket serves GCS media downloads for the given objects from a
// local test server.
func newFakeBucket(t *testing.T, objects map[string]string) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/b/invoices/o/"
		if r.URL.Query().Get("alt") != "media" || len(r.URL.Path) <= len(prefix) {
			http.NotFound(w, r)
			return
		}
		object := r.URL.Path[len(prefix):]
		body, ok := objects[object]
		if !ok {
			http.Error(w, `{"error": {"code": 404, "message": "not found"}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	svc, err := storagev1.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication())
	require.NoError(t, err)

	return NewClientWithService(svc, "invoices")
}

func TestFetchWithExtension(t *testing.T) {
	client := newFakeBucket(t, map[string]string{
		"abc123.json": `{"entities": []}`,
	})

	data, err := client.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities": []}`, string(data))
}

func TestFetchFallsBackToBareName(t *testing.T) {
	client := newFakeBucket(t, map[string]string{
		"def456": `{"entities": []}`,
	})

	data, err := client.Fetch(context.Background(), "def456")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFetchNotFound(t *testing.T) {
	client := newFakeBucket(t, nil)

	_, err := client.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrObjectNotFound)
}

func TestFetchEmptyMD5(t *testing.T) {
	client := newFakeBucket(t, nil)

	_, err := client.Fetch(context.Background(), "  ")
	assert.Error(t, err)
}

func TestDownloadAll(t *testing.T) {
	client := newFakeBucket(t, map[string]string{
		"abc123.json": `{"a": 1}`,
		"def456.json": `{"b": 2}`,
	})

	entries := []ManifestEntry{
		{VendorName: "Lawrence Waste", InvoiceMD5: "abc123"},
		{VendorName: "Lawrence Waste", InvoiceMD5: "missing"},
		{VendorName: "Boren Brothers", InvoiceMD5: "def456"},
	}

	outputDir := t.TempDir()
	stats, err := client.DownloadAll(context.Background(), entries, outputDir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Downloaded)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 1, stats.ByVendor["Lawrence Waste"].Downloaded)
	assert.Equal(t, 1, stats.ByVendor["Lawrence Waste"].NotFound)

	data, err := os.ReadFile(filepath.Join(outputDir, "Lawrence_Waste", "abc123.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(data))

	_, err = os.Stat(filepath.Join(outputDir, "Boren_Brothers", "def456.json"))
	assert.NoError(t, err)
}

func TestDownloadAllCancelled(t *testing.T) {
	client := newFakeBucket(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.DownloadAll(ctx, []ManifestEntry{
		{VendorName: "V", InvoiceMD5: "x"},
	}, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces to underscores", "Lawrence Waste", "Lawrence_Waste"},
		{"strips unsafe characters", `A/B\C:D*E?`, "ABCDE"},
		{"trims outer whitespace", "  Boren Brothers  ", "Boren_Brothers"},
		{"collapses runs", "A   B", "A_B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFolderName(tt.in))
		})
	}
}

func TestReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	content := "vendor_name,invoice_md5,invoice_date\n" +
		"Lawrence Waste,abc123,2025-10-15\n" +
		"Boren Brothers,def456,2025-10-12\n" +
		",ghi789,2025-10-01\n" +
		"Lawrence Waste,,2025-10-02\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	entries, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Lawrence Waste", entries[0].VendorName)
	assert.Equal(t, "abc123", entries[0].InvoiceMD5)
	assert.Equal(t, "2025-10-15", entries[0].InvoiceDate)
}

func TestReadManifestMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	require.NoError(t, os.WriteFile(path, []byte("vendor_name,date\nX,Y\n"), 0o600))

	_, err := ReadManifest(path)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
