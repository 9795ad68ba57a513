// Package docai parses Document AI invoice-extraction JSON into invoice and
// line item records.
package docai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wasteworks/chargemap/internal/model"
)

// Entity documents arrive in two shapes: entities at the top level, or nested
// under a document key. Both occur in the wild depending on which export
// produced the file.
type rawDocument struct {
	Entities []rawEntity  `json:"entities"`
	Document *rawDocument `json:"document"`
}

type rawEntity struct {
	Type            string      `json:"type"`
	MentionText     string      `json:"mentionText"`
	NormalizedValue rawValue    `json:"normalizedValue"`
	Properties      []rawEntity `json:"properties"`
}

type rawValue struct {
	MoneyValue *rawMoney `json:"moneyValue"`
	FloatValue *float64  `json:"floatValue"`
}

type rawMoney struct {
	Units flexInt64 `json:"units"`
	Nanos flexInt64 `json:"nanos"`
}

// flexInt64 accepts both JSON numbers and the quoted int64 strings the
// proto-JSON encoding produces for money units.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*f = flexInt64(v)
	return nil
}

var (
	datePattern       = regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)
	dollarPattern     = regexp.MustCompile(`\$?\d+\.\d{2}\b`)
	bareDecimal       = regexp.MustCompile(`\b\d+\.\d+\b`)
	trailingNumber    = regexp.MustCompile(`\s+\d+\s*$`)
	nonMoneyCharacter = regexp.MustCompile(`[^\d.\-]`)
)

// ParseFile parses one Document AI JSON file. The invoice MD5 is taken from
// the filename, matching how the downloader names objects.
func ParseFile(path string) (*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	md5 := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, md5)
}

// Parse parses Document AI JSON bytes into an invoice.
func Parse(data []byte, md5 string) (*model.Invoice, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document JSON: %w", err)
	}

	entities := doc.Entities
	if len(entities) == 0 && doc.Document != nil {
		entities = doc.Document.Entities
	}

	invoice := &model.Invoice{MD5: md5}

	for _, entity := range entities {
		entityType := strings.ToLower(entity.Type)
		mention := strings.TrimSpace(entity.MentionText)

		switch {
		case strings.Contains(entityType, "account") && strings.Contains(entityType, "number"):
			invoice.AccountNumber = mention
		case strings.Contains(entityType, "invoice") &&
			(strings.Contains(entityType, "number") || strings.Contains(entityType, "id")):
			invoice.InvoiceNumber = mention
		case strings.Contains(entityType, "invoice") && strings.Contains(entityType, "date"):
			invoice.InvoiceDate = mention
		case strings.Contains(entityType, "supplier") || strings.Contains(entityType, "vendor"):
			invoice.VendorName = mention
		case strings.Contains(entityType, "service") && strings.Contains(entityType, "address"):
			invoice.ServiceAddress = mention
		case strings.Contains(entityType, "location"):
			invoice.LocationCode = mention
		case entityType == "total_amount" || entityType == "amount_due" || entityType == "total_due":
			if total, ok := parseMoney(entity); ok {
				invoice.Total = &total
			}
		}
	}

	for _, entity := range entities {
		if entity.Type != "line_item" {
			continue
		}
		if item, ok := parseLineItem(entity); ok {
			invoice.LineItems = append(invoice.LineItems, item)
		}
	}

	return invoice, nil
}

func parseLineItem(entity rawEntity) (model.LineItem, bool) {
	item := model.LineItem{
		FullText: strings.TrimSpace(entity.MentionText),
	}
	var hasAmount bool

	for _, prop := range entity.Properties {
		propType := strings.ToLower(prop.Type)

		switch {
		case strings.Contains(propType, "description"):
			item.Description = strings.TrimSpace(prop.MentionText)
		case propType == "line_item/amount":
			if amount, ok := parseMoney(prop); ok {
				item.Amount = amount
				hasAmount = true
			}
		case strings.Contains(propType, "quantity"):
			item.Quantity = parseQuantity(prop)
		case strings.Contains(propType, "unit_price"):
			if price, ok := parseMoney(prop); ok {
				item.UnitPrice = price
			}
		case strings.Contains(propType, "date"):
			item.ServiceDate = strings.TrimSpace(prop.MentionText)
		}
	}

	// Fall back to the cleaned full mention when the extractor missed the
	// description property.
	if item.Description == "" {
		item.Description = CleanDescription(item.FullText)
	}
	item.Description = strings.ToUpper(item.Description)

	if item.Description == "" && !hasAmount {
		return model.LineItem{}, false
	}
	return item, true
}

// parseMoney extracts a decimal dollar amount from an entity, preferring the
// normalized moneyValue (units + nanos) over the raw mention text.
func parseMoney(entity rawEntity) (decimal.Decimal, bool) {
	if mv := entity.NormalizedValue.MoneyValue; mv != nil {
		return decimal.New(int64(mv.Units), 0).Add(decimal.New(int64(mv.Nanos), -9)), true
	}

	cleaned := nonMoneyCharacter.ReplaceAllString(entity.MentionText, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func parseQuantity(entity rawEntity) float64 {
	if fv := entity.NormalizedValue.FloatValue; fv != nil {
		return *fv
	}
	mention := strings.ReplaceAll(strings.TrimSpace(entity.MentionText), ",", "")
	qty, err := strconv.ParseFloat(mention, 64)
	if err != nil {
		return 0
	}
	return qty
}

// CleanDescription strips dates, dollar amounts and trailing reference
// numbers from OCR mention text, leaving the charge description.
func CleanDescription(text string) string {
	text = datePattern.ReplaceAllString(text, "")
	text = dollarPattern.ReplaceAllString(text, "")
	text = bareDecimal.ReplaceAllString(text, "")
	text = trailingNumber.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, " -")
}
