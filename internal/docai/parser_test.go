package docai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
	"entities": [
		{"type": "supplier_name", "mentionText": "Republic Services"},
		{"type": "receiver_account_number", "mentionText": "3-0571-0012345"},
		{"type": "invoice_id", "mentionText": "0571-009876543"},
		{"type": "invoice_date", "mentionText": "01/15/2025"},
		{"type": "service_address", "mentionText": "100 MAIN ST"},
		{
			"type": "total_amount",
			"mentionText": "$612.50",
			"normalizedValue": {"moneyValue": {"units": "612", "nanos": 500000000}}
		},
		{
			"type": "line_item",
			"mentionText": "30YD COMPACTOR OCC HAUL 01/10/2025 450.00",
			"properties": [
				{"type": "line_item/description", "mentionText": "30YD Compactor OCC Haul"},
				{
					"type": "line_item/amount",
					"mentionText": "450.00",
					"normalizedValue": {"moneyValue": {"units": "450", "nanos": 0}}
				},
				{
					"type": "line_item/quantity",
					"mentionText": "1",
					"normalizedValue": {"floatValue": 1}
				},
				{
					"type": "line_item/unit_price",
					"mentionText": "450.00",
					"normalizedValue": {"moneyValue": {"units": "450", "nanos": 0}}
				},
				{"type": "line_item/service_date", "mentionText": "01/10/2025"}
			]
		},
		{
			"type": "line_item",
			"mentionText": "FUEL RECOVERY FEE 01/15/2025 162.50",
			"properties": [
				{"type": "line_item/amount", "mentionText": "162.50"}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	invoice, err := Parse([]byte(sampleDocument), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", invoice.MD5)
	assert.Equal(t, "Republic Services", invoice.VendorName)
	assert.Equal(t, "3-0571-0012345", invoice.AccountNumber)
	assert.Equal(t, "0571-009876543", invoice.InvoiceNumber)
	assert.Equal(t, "01/15/2025", invoice.InvoiceDate)
	assert.Equal(t, "100 MAIN ST", invoice.ServiceAddress)
	require.NotNil(t, invoice.Total)
	assert.Equal(t, "612.50", invoice.Total.StringFixed(2))

	require.Len(t, invoice.LineItems, 2)

	first := invoice.LineItems[0]
	assert.Equal(t, "30YD COMPACTOR OCC HAUL", first.Description)
	assert.Equal(t, "450.00", first.Amount.StringFixed(2))
	assert.Equal(t, 1.0, first.Quantity)
	assert.Equal(t, "450.00", first.UnitPrice.StringFixed(2))
	assert.Equal(t, "01/10/2025", first.ServiceDate)

	// Second line has no description property: the cleaned full text stands
	// in, with the date and amount stripped.
	second := invoice.LineItems[1]
	assert.Equal(t, "FUEL RECOVERY FEE", second.Description)
	assert.Equal(t, "162.50", second.Amount.StringFixed(2))
}

func TestParseNestedDocument(t *testing.T) {
	nested := `{"document": {"entities": [
		{"type": "supplier_name", "mentionText": "Recology"}
	]}}`

	invoice, err := Parse([]byte(nested), "def456")
	require.NoError(t, err)
	assert.Equal(t, "Recology", invoice.VendorName)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"), "x")
	assert.Error(t, err)
}

func TestParseSkipsEmptyLineItems(t *testing.T) {
	doc := `{"entities": [
		{"type": "line_item", "mentionText": "", "properties": []}
	]}`

	invoice, err := Parse([]byte(doc), "x")
	require.NoError(t, err)
	assert.Empty(t, invoice.LineItems)
}

func TestParseMoneyFallback(t *testing.T) {
	doc := `{"entities": [
		{"type": "total_amount", "mentionText": "$1,234.56"}
	]}`

	invoice, err := Parse([]byte(doc), "x")
	require.NoError(t, err)
	require.NotNil(t, invoice.Total)
	assert.Equal(t, "1234.56", invoice.Total.StringFixed(2))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0f1e2d3c.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	invoice, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0f1e2d3c", invoice.MD5)
	assert.Len(t, invoice.LineItems, 2)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips dates", "MONTHLY SERVICE 01/15/2025", "MONTHLY SERVICE"},
		{"strips dollar amounts", "HAUL CHARGE $450.00", "HAUL CHARGE"},
		{"strips trailing numbers", "DISPOSAL FEE 12345", "DISPOSAL FEE"},
		{"collapses whitespace", "  FUEL   SURCHARGE  ", "FUEL SURCHARGE"},
		{"strips leading dash", "- ENVIRONMENTAL FEE", "ENVIRONMENTAL FEE"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.in))
		})
	}
}
