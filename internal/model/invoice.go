package model

import "github.com/shopspring/decimal"

// Invoice is the header and line items extracted from one Document AI JSON.
type Invoice struct {
	Total          *decimal.Decimal
	MD5            string
	VendorName     string
	AccountNumber  string
	InvoiceNumber  string
	InvoiceDate    string
	LocationCode   string
	ServiceAddress string
	LineItems      []LineItem
}

// Items converts the invoice into standalone LineItem records carrying the
// header fields every classification stage needs.
func (inv *Invoice) Items() []LineItem {
	items := make([]LineItem, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		li.InvoiceMD5 = inv.MD5
		li.VendorName = inv.VendorName
		li.AccountID = inv.AccountNumber
		li.Hash = li.GenerateHash()
		items = append(items, li)
	}
	return items
}
