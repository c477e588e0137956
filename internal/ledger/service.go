// Package ledger owns account balances. Posting is the only way a balance
// moves: each posted transaction and its balance effect commit in one store
// unit of work, so no reader ever sees one without the other.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// Service provides posting and listing over the account ledger.
type Service struct {
	store store.Store
}

// NewService creates a ledger Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// PostParams holds parameters for posting a single transaction.
type PostParams struct {
	AccountID   string
	Amount      decimal.Decimal // positive = inflow, negative = outflow
	Date        time.Time
	Description string
	// InvoiceID optionally links the posting to the invoice it settles.
	InvoiceID string
}

// Post creates an immutable transaction and applies its amount to the
// account's balance atomically. The balance may go negative; an unsecured
// overdraft is a valid domain state, not an error.
func (s *Service) Post(ctx context.Context, p PostParams) (model.Transaction, error) {
	if err := validatePost(p); err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:          id.New(),
		AccountID:   p.AccountID,
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		InvoiceID:   p.InvoiceID,
	}
	posted, err := s.store.PostTransactions(ctx, []model.Transaction{tx})
	if err != nil {
		return model.Transaction{}, err
	}
	return posted[0], nil
}

// TransferParams holds parameters for a balanced two-leg transfer.
type TransferParams struct {
	FromAccountID  string
	ToAccountID    string
	Amount         decimal.Decimal // positive; sign is applied per leg
	Date           time.Time
	OutDescription string
	InDescription  string
}

// Transfer posts a balanced pair of transactions — an outflow from one
// account and an equal inflow to another — in a single store unit of work.
// Either both legs commit or neither does, so the total balance across the
// two accounts is unchanged by the operation.
func (s *Service) Transfer(ctx context.Context, p TransferParams) (outTx, inTx model.Transaction, err error) {
	if err := validateTransfer(p); err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}

	legs := []model.Transaction{
		{
			ID:          id.New(),
			AccountID:   p.FromAccountID,
			Date:        p.Date,
			Description: p.OutDescription,
			Amount:      p.Amount.Neg(),
		},
		{
			ID:          id.New(),
			AccountID:   p.ToAccountID,
			Date:        p.Date,
			Description: p.InDescription,
			Amount:      p.Amount,
		},
	}
	posted, err := s.store.PostTransactions(ctx, legs)
	if err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}
	return posted[0], posted[1], nil
}

// Transactions lists an account's transactions for display: date descending,
// ties broken by posting order. Listing never mutates balances.
func (s *Service) Transactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	return s.store.Transactions(ctx, accountID)
}

func validatePost(p PostParams) error {
	var verr model.ValidationError
	if p.AccountID == "" {
		verr.Add("accountId", "required")
	}
	if p.Amount.IsZero() {
		verr.Add("amount", "must be non-zero")
	}
	if p.Date.IsZero() {
		verr.Add("date", "required")
	}
	return verr.Err()
}

func validateTransfer(p TransferParams) error {
	var verr model.ValidationError
	if p.FromAccountID == "" {
		verr.Add("fromAccountId", "required")
	}
	if p.ToAccountID == "" {
		verr.Add("toAccountId", "required")
	}
	if p.FromAccountID != "" && p.FromAccountID == p.ToAccountID {
		verr.Add("toAccountId", "must differ from fromAccountId")
	}
	if !p.Amount.IsPositive() {
		verr.Add("amount", "must be positive")
	}
	if p.Date.IsZero() {
		verr.Add("date", "required")
	}
	return verr.Err()
}
