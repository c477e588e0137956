package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single signed movement of money on an account.
// Positive amounts are inflows, negative amounts are outflows.
//
// Transactions are immutable once posted. Corrections are new offsetting
// transactions, never edits.
type Transaction struct {
	ID        string
	AccountID string
	// Seq is assigned by the store in posting order and breaks date ties
	// when listing.
	Seq         int64
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	// InvoiceID links a payment to the invoice it settles. Empty for
	// transactions that are not invoice payments; legacy rows carry the
	// invoice number in the description instead.
	InvoiceID string
}
