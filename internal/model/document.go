package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
)

// LineItem is one priced line on an invoice or quote.
// Total is always Quantity * UnitPrice; it is recomputed with the parent's
// totals on every write and never stored stale.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// PurchaseLineItem is one line on a purchase: a flat amount plus its own VAT.
type PurchaseLineItem struct {
	Description string
	Amount      decimal.Decimal
	VAT         decimal.Decimal
}

// Invoice is a bill issued to a customer.
//
// Subtotal, Tax and Total are derived from Items and TaxRatePercent and are
// replaced together with Items in one unit of work, so a reader never sees an
// invoice inconsistent with its lines.
type Invoice struct {
	ID             string
	Number         string
	ContactID      string
	IssueDate      time.Time
	DueDate        time.Time
	Status         InvoiceStatus
	Items          []LineItem
	TaxRatePercent decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Quote is a priced offer to a customer. Same totals discipline as Invoice.
type Quote struct {
	ID             string
	Number         string
	ContactID      string
	IssueDate      time.Time
	ExpiryDate     time.Time
	Status         QuoteStatus
	Items          []LineItem
	TaxRatePercent decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Purchase is a supplier bill. Per-line VAT is summed rather than derived
// from a rate, matching how supplier invoices arrive.
type Purchase struct {
	ID        string
	Number    string
	ContactID string
	Date      time.Time
	Items     []PurchaseLineItem
	Subtotal  decimal.Decimal
	VAT       decimal.Decimal
	Total     decimal.Decimal
}
