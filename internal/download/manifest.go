package download

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wasteworks/chargemap/internal/common"
)

// ManifestEntry is one row of the download manifest: which vendor an invoice
// document belongs to and its object md5.
type ManifestEntry struct {
	VendorName  string
	InvoiceMD5  string
	InvoiceDate string
}

// ReadManifest parses a manifest CSV. The header row names the columns;
// vendor_name and invoice_md5 are required, invoice_date is optional. Rows
// with a blank vendor or md5 are skipped.
func ReadManifest(path string) ([]ManifestEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	vendorCol, ok := columns["vendor_name"]
	if !ok {
		return nil, fmt.Errorf("%w: manifest missing vendor_name column", common.ErrInvalidConfig)
	}
	md5Col, ok := columns["invoice_md5"]
	if !ok {
		return nil, fmt.Errorf("%w: manifest missing invoice_md5 column", common.ErrInvalidConfig)
	}
	dateCol, hasDate := columns["invoice_date"]

	var entries []ManifestEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest row: %w", err)
		}

		entry := ManifestEntry{
			VendorName: strings.TrimSpace(record[vendorCol]),
			InvoiceMD5: strings.TrimSpace(record[md5Col]),
		}
		if hasDate && dateCol < len(record) {
			entry.InvoiceDate = strings.TrimSpace(record[dateCol])
		}
		if entry.VendorName == "" || entry.InvoiceMD5 == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
