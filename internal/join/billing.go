package join

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wasteworks/chargemap/internal/common"
)

var amountDigits = regexp.MustCompile(`-?[\d]+\.?\d*`)

// ReadBillingCharges parses a billing system export CSV. Column names are
// matched case-insensitively; invoice_md5 is required. The amount may arrive
// under cost, price or amount depending on which report produced the file.
func ReadBillingCharges(path string) ([]BillingCharge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open billing export: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read billing header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	md5Col, ok := columns["invoice_md5"]
	if !ok {
		return nil, fmt.Errorf("%w: billing export missing invoice_md5 column", common.ErrInvalidConfig)
	}

	amountCol := -1
	for _, name := range []string{"cost", "price", "amount"} {
		if col, found := columns[name]; found {
			amountCol = col
			break
		}
	}

	field := func(record []string, name string) string {
		col, found := columns[name]
		if !found || col >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[col])
	}

	var charges []BillingCharge
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read billing row: %w", err)
		}

		charge := BillingCharge{
			InvoiceMD5:        strings.TrimSpace(record[md5Col]),
			ChargeDescription: field(record, "charge_description"),
			ChargeType:        field(record, "charge_type"),
			ServiceType:       field(record, "service_type"),
			Equipment:         field(record, "equipment_type"),
			Material:          field(record, "material"),
			ServiceID:         field(record, "service_id"),
		}
		if charge.InvoiceMD5 == "" {
			continue
		}
		if amountCol >= 0 && amountCol < len(record) {
			charge.Amount = parseAmount(record[amountCol])
		}
		charges = append(charges, charge)
	}

	return charges, nil
}

// parseAmount extracts a numeric amount from export formats like "$1,234.56".
func parseAmount(value string) decimal.Decimal {
	cleaned := amountDigits.FindString(strings.ReplaceAll(value, ",", ""))
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
