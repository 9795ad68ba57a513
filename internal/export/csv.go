// Package export writes classification results to CSV for downstream
// consumers and rule-table curation.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wasteworks/chargemap/internal/join"
	"github.com/wasteworks/chargemap/internal/model"
)

// detailHeader is the column layout consumers of the detail report depend
// on. Order is part of the contract.
var detailHeader = []string{
	"invoice_md5",
	"vendor_name",
	"account_number",
	"line_description",
	"line_amount",
	"line_quantity",
	"line_unit_price",
	"service_date",
	"equipment",
	"material",
	"charge_type",
	"service_type",
	"match_tier",
	"resolution_status",
	"service_id",
	"candidates",
}

// CSVWriter writes classification reports as CSV files.
type CSVWriter struct{}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteDetail writes one row per classified line item.
func (w *CSVWriter) WriteDetail(path string, results []model.ClassifiedLineItem) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(detailHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, result := range results {
		row := []string{
			result.LineItem.InvoiceMD5,
			result.LineItem.VendorName,
			result.LineItem.AccountID,
			result.LineItem.Description,
			result.LineItem.Amount.StringFixed(2),
			formatQuantity(result.LineItem.Quantity),
			result.LineItem.UnitPrice.StringFixed(2),
			result.LineItem.ServiceDate,
			result.Equipment,
			result.Material,
			result.ChargeType,
			result.ServiceType,
			string(result.Tier),
			string(result.Service.Status),
			result.Service.ServiceID,
			strings.Join(result.Service.Candidates, ";"),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// summaryRow aggregates line items sharing a (vendor, description) pair.
type summaryRow struct {
	total       decimal.Decimal
	vendor      string
	description string
	chargeType  string
	count       int
}

// WriteSummary writes one row per (vendor, description) pair with count and
// total amount, ordered by count descending. This is the report reviewers
// work through when curating new rules: the most frequent unmapped
// descriptions surface first.
func (w *CSVWriter) WriteSummary(path string, results []model.ClassifiedLineItem) error {
	type key struct {
		vendor      string
		description string
	}
	groups := make(map[key]*summaryRow)

	for _, result := range results {
		k := key{vendor: result.LineItem.VendorName, description: result.LineItem.Description}
		row, ok := groups[k]
		if !ok {
			row = &summaryRow{
				vendor:      k.vendor,
				description: k.description,
				chargeType:  result.ChargeType,
			}
			groups[k] = row
		}
		row.count++
		row.total = row.total.Add(result.LineItem.Amount)
	}

	rows := make([]*summaryRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		if rows[i].vendor != rows[j].vendor {
			return rows[i].vendor < rows[j].vendor
		}
		return rows[i].description < rows[j].description
	})

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"vendor", "description", "charge_type", "count", "total_amount"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.vendor,
			row.description,
			row.chargeType,
			strconv.Itoa(row.count),
			row.total.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteUnmatched writes join leftovers: invoice lines no billing charge
// could be confidently paired with.
func (w *CSVWriter) WriteUnmatched(path string, rows []join.Unmatched) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	header := []string{"invoice_md5", "vendor_name", "account_number", "line_description", "line_amount", "best_score", "note"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Line.InvoiceMD5,
			row.Line.VendorName,
			row.Line.AccountID,
			row.Line.Description,
			row.Line.Amount.StringFixed(2),
			strconv.Itoa(row.Score),
			row.Note,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func formatQuantity(qty float64) string {
	if qty == 0 {
		return ""
	}
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
