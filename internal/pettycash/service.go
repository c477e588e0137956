// Package pettycash bridges petty-cash events onto the account ledger.
//
// Funding moves money as a balanced pair of legs (bank outflow, petty-cash
// inflow) in one unit of work; expenses and reimbursements post a single
// signed leg. Pending entries post nothing until approved.
package pettycash

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// Service gates petty-cash entries through approval and posts the results.
type Service struct {
	store store.Store
	// pettyAccountID is the cash account all petty-cash postings target.
	pettyAccountID string
}

// NewService creates a petty-cash Service posting to the given cash account.
func NewService(st store.Store, pettyAccountID string) *Service {
	return &Service{store: st, pettyAccountID: pettyAccountID}
}

// CreateParams holds parameters for recording a petty-cash entry.
type CreateParams struct {
	Date        time.Time
	Description string
	Kind        model.PettyCashKind
	Amount      decimal.Decimal // unsigned; sign derives from Kind at posting
	// FundingAccountID is required for Funding entries: the bank account
	// the cash comes from.
	FundingAccountID string
}

// Create records a Pending entry. Nothing posts until approval.
func (s *Service) Create(ctx context.Context, p CreateParams) (model.PettyCashEntry, error) {
	if err := validateCreate(p); err != nil {
		return model.PettyCashEntry{}, err
	}

	e := model.PettyCashEntry{
		ID:               id.New(),
		Date:             p.Date,
		Description:      p.Description,
		Kind:             p.Kind,
		Amount:           p.Amount,
		Status:           model.PettyCashPending,
		FundingAccountID: p.FundingAccountID,
	}
	if err := s.store.CreatePettyCashEntry(ctx, e); err != nil {
		return model.PettyCashEntry{}, err
	}
	return e, nil
}

// Entry returns one entry by ID.
func (s *Service) Entry(ctx context.Context, entryID string) (model.PettyCashEntry, error) {
	return s.store.PettyCashEntry(ctx, entryID)
}

// Entries lists all entries, newest first.
func (s *Service) Entries(ctx context.Context) ([]model.PettyCashEntry, error) {
	return s.store.PettyCashEntries(ctx)
}

// Fund moves amount from a bank account into petty cash immediately, without
// an approval-gated entry. Both legs commit in one store unit of work, so
// the partial-posting window of posting them independently does not exist
// here; total balance across the two accounts is unchanged.
func (s *Service) Fund(ctx context.Context, amount decimal.Decimal, date time.Time, description, fundingAccountID string) (outTx, inTx model.Transaction, err error) {
	var verr model.ValidationError
	if !amount.IsPositive() {
		verr.Add("amount", "must be positive")
	}
	if fundingAccountID == "" {
		verr.Add("fundingAccountId", "required")
	}
	if err := verr.Err(); err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}

	legs := fundingLegs(amount, date, description, fundingAccountID, s.pettyAccountID)
	posted, err := s.store.PostTransactions(ctx, legs)
	if err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}
	if len(posted) != len(legs) {
		// Only reachable with a store that lacks a transaction boundary
		// spanning both accounts.
		return model.Transaction{}, model.Transaction{}, fmt.Errorf("funded %d of %d legs: %w", len(posted), len(legs), model.ErrPartialPosting)
	}
	return posted[0], posted[1], nil
}

// Approve transitions a Pending entry to Approved and posts its ledger
// effect in the same unit of work: a balanced funding pair for Funding
// entries, a single signed leg otherwise. Approving an entry that is not
// Pending fails with ErrInvalidStateTransition and posts nothing, so
// repeated approval attempts cannot double-post.
func (s *Service) Approve(ctx context.Context, entryID string) ([]model.Transaction, error) {
	e, err := s.store.PettyCashEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var txs []model.Transaction
	switch e.Kind {
	case model.PettyCashFunding:
		txs = fundingLegs(e.Amount, e.Date, e.Description, e.FundingAccountID, s.pettyAccountID)
	case model.PettyCashExpense:
		txs = []model.Transaction{{
			ID:          id.New(),
			AccountID:   s.pettyAccountID,
			Date:        e.Date,
			Description: e.Description,
			Amount:      e.Amount.Neg(),
		}}
	case model.PettyCashReimbursement:
		txs = []model.Transaction{{
			ID:          id.New(),
			AccountID:   s.pettyAccountID,
			Date:        e.Date,
			Description: e.Description,
			Amount:      e.Amount,
		}}
	default:
		return nil, fmt.Errorf("petty cash entry %s has unknown kind %q: %w", entryID, e.Kind, model.ErrInvalidStateTransition)
	}

	return s.store.FinalizePettyCashEntry(ctx, entryID, model.PettyCashApproved, txs)
}

// Reject transitions a Pending entry to Rejected. Terminal; nothing posts.
func (s *Service) Reject(ctx context.Context, entryID string) error {
	_, err := s.store.FinalizePettyCashEntry(ctx, entryID, model.PettyCashRejected, nil)
	return err
}

func fundingLegs(amount decimal.Decimal, date time.Time, description, fundingAccountID, pettyAccountID string) []model.Transaction {
	return []model.Transaction{
		{
			ID:          id.New(),
			AccountID:   fundingAccountID,
			Date:        date,
			Description: "Transfer to Petty Cash: " + description,
			Amount:      amount.Neg(),
		},
		{
			ID:          id.New(),
			AccountID:   pettyAccountID,
			Date:        date,
			Description: "Funding from bank: " + description,
			Amount:      amount,
		},
	}
}

func validateCreate(p CreateParams) error {
	var verr model.ValidationError
	if p.Date.IsZero() {
		verr.Add("date", "required")
	}
	if !p.Amount.IsPositive() {
		verr.Add("amount", "must be positive")
	}
	switch p.Kind {
	case model.PettyCashFunding:
		if p.FundingAccountID == "" {
			verr.Add("fundingAccountId", "required for funding entries")
		}
	case model.PettyCashExpense, model.PettyCashReimbursement:
	default:
		verr.Add("kind", fmt.Sprintf("unknown kind %q", p.Kind))
	}
	return verr.Err()
}
