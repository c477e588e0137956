package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PettyCashKind classifies petty-cash entries.
type PettyCashKind string

const (
	PettyCashFunding       PettyCashKind = "funding"
	PettyCashExpense       PettyCashKind = "expense"
	PettyCashReimbursement PettyCashKind = "reimbursement"
)

// PettyCashStatus is the approval state of a petty-cash entry.
// Pending may move to Approved (which posts) or Rejected (which never posts);
// both of those are terminal.
type PettyCashStatus string

const (
	PettyCashPending  PettyCashStatus = "pending"
	PettyCashApproved PettyCashStatus = "approved"
	PettyCashRejected PettyCashStatus = "rejected"
)

// PettyCashEntry is a recorded petty-cash event awaiting or past approval.
// Amount is unsigned; the sign is derived from Kind when the entry is
// approved and posted to the petty-cash account.
type PettyCashEntry struct {
	ID          string
	Date        time.Time
	Description string
	Kind        PettyCashKind
	Amount      decimal.Decimal
	Status      PettyCashStatus
	// FundingAccountID names the bank account the money comes from.
	// Required for Funding entries, empty otherwise.
	FundingAccountID string
}
