// Package statement assembles per-contact ledgers of invoices issued and
// payments matched against them.
package statement

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// EntryType distinguishes statement lines.
type EntryType string

const (
	EntryInvoice EntryType = "invoice"
	EntryPayment EntryType = "payment"
)

// Entry is one line on a statement. Invoices carry the amount owed as a
// positive value; matched payments carry the negative of the payment amount,
// so the running sum is the amount still owed.
type Entry struct {
	Date    time.Time
	Type    EntryType
	Details string
	Amount  decimal.Decimal
}

// Statement is the reconciled ledger for one contact.
type Statement struct {
	Contact model.Contact
	Entries []Entry
	// Balance is the sum of entry amounts: positive = still owed,
	// negative = overpaid.
	Balance decimal.Decimal
}

// Service builds statements from the store.
type Service struct {
	store store.Store
}

// NewService creates a statement Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Build reconciles a contact's invoices against posted transactions.
//
// Payment matching prefers a transaction's direct invoice reference; when no
// transaction references the invoice, it falls back to the legacy substring
// match on "Invoice #<number>" in the description. Either way only positive
// (inflow) transactions qualify, at most one payment is used per invoice, and
// a transaction settles at most one invoice. Candidates are scanned in
// account creation order then posting order, not temporal proximity.
//
// The scan is O(invoices x transactions); statement generation is on-demand
// and per-tenant volumes are small, so no index is kept.
func (s *Service) Build(ctx context.Context, contactID string) (Statement, error) {
	contact, err := s.store.Contact(ctx, contactID)
	if err != nil {
		return Statement{}, err
	}

	invoices, err := s.store.InvoicesByContact(ctx, contactID)
	if err != nil {
		return Statement{}, err
	}

	txs, err := s.store.AllTransactions(ctx)
	if err != nil {
		return Statement{}, err
	}

	var entries []Entry
	used := make(map[string]bool, len(txs))
	for _, inv := range invoices {
		entries = append(entries, Entry{
			Date:    inv.IssueDate,
			Type:    EntryInvoice,
			Details: "Invoice #" + inv.Number,
			Amount:  inv.Total,
		})

		if payment, ok := matchPayment(inv, txs, used); ok {
			used[payment.ID] = true
			entries = append(entries, Entry{
				Date:    payment.Date,
				Type:    EntryPayment,
				Details: "Thank you",
				Amount:  payment.Amount.Neg(),
			})
		}
	}

	// Stable: date ties keep invoice-then-payment emission order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Amount)
	}

	return Statement{Contact: contact, Entries: entries, Balance: balance}, nil
}

// matchPayment finds the first unused inflow transaction settling inv:
// direct invoice reference first, description substring second.
func matchPayment(inv model.Invoice, txs []model.Transaction, used map[string]bool) (model.Transaction, bool) {
	for _, tx := range txs {
		if !used[tx.ID] && tx.InvoiceID == inv.ID && tx.Amount.IsPositive() {
			return tx, true
		}
	}

	needle := "Invoice #" + inv.Number
	for _, tx := range txs {
		if !used[tx.ID] && tx.InvoiceID == "" && tx.Amount.IsPositive() && strings.Contains(tx.Description, needle) {
			return tx, true
		}
	}
	return model.Transaction{}, false
}
