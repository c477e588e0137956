package model

import (
	"github.com/shopspring/decimal"
)

// AccountKind classifies money-holding accounts.
type AccountKind string

const (
	AccountKindBank AccountKind = "bank"
	AccountKindCash AccountKind = "cash"
)

// Account is a money-holding account (bank account or petty-cash box).
//
// Balance is maintained exclusively by posting transactions: every posted
// Transaction adjusts the owning account's balance in the same unit of work,
// and nothing else writes to it. It always equals the sum of all transactions
// posted since creation. Negative balances are a valid domain state.
type Account struct {
	ID          string
	Name        string
	Institution string
	// NumberMask is the displayable tail of the account number, e.g. "****1234".
	NumberMask string
	Kind       AccountKind
	Balance    decimal.Decimal
}
