// Package reports derives read-only financial summaries from the store.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// Service computes reports. All methods are read-only scans.
type Service struct {
	store store.Store
}

// NewService creates a reports Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// BalanceLine is one account's position in the balances snapshot.
type BalanceLine struct {
	AccountID string
	Name      string
	Kind      model.AccountKind
	Balance   decimal.Decimal
}

// Balances is the cash-position snapshot across all accounts.
type Balances struct {
	Lines []BalanceLine
	Total decimal.Decimal
}

// Balances reports every account's current balance and the total held.
func (s *Service) Balances(ctx context.Context) (Balances, error) {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return Balances{}, err
	}

	out := Balances{Lines: make([]BalanceLine, 0, len(accounts))}
	for _, a := range accounts {
		out.Lines = append(out.Lines, BalanceLine{
			AccountID: a.ID,
			Name:      a.Name,
			Kind:      a.Kind,
			Balance:   a.Balance,
		})
		out.Total = out.Total.Add(a.Balance)
	}
	return out, nil
}

// AgedBucket labels a receivables age band.
type AgedBucket string

const (
	BucketCurrent AgedBucket = "0-30"
	Bucket31to60  AgedBucket = "31-60"
	Bucket61to90  AgedBucket = "61-90"
	BucketOver90  AgedBucket = "90+"
)

// AgedInvoice is one unpaid invoice with its age classification.
type AgedInvoice struct {
	InvoiceID   string
	Number      string
	ContactID   string
	DueDate     time.Time
	Total       decimal.Decimal
	DaysOverdue int
	Bucket      AgedBucket
}

// AgedReceivables groups unpaid invoice totals by age band.
type AgedReceivables struct {
	AsOf     time.Time
	Invoices []AgedInvoice
	Totals   map[AgedBucket]decimal.Decimal
	Total    decimal.Decimal
}

// AgedReceivables buckets every unpaid (non-draft) invoice by days past due
// at asOf. Invoices not yet due land in the current band with zero days.
func (s *Service) AgedReceivables(ctx context.Context, asOf time.Time) (AgedReceivables, error) {
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return AgedReceivables{}, err
	}

	out := AgedReceivables{
		AsOf: asOf,
		Totals: map[AgedBucket]decimal.Decimal{
			BucketCurrent: decimal.Zero,
			Bucket31to60:  decimal.Zero,
			Bucket61to90:  decimal.Zero,
			BucketOver90:  decimal.Zero,
		},
	}
	for _, inv := range invoices {
		if inv.Status != model.InvoiceSent {
			continue
		}
		days := 0
		if asOf.After(inv.DueDate) {
			days = int(asOf.Sub(inv.DueDate).Hours() / 24)
		}
		bucket := bucketFor(days)

		out.Invoices = append(out.Invoices, AgedInvoice{
			InvoiceID:   inv.ID,
			Number:      inv.Number,
			ContactID:   inv.ContactID,
			DueDate:     inv.DueDate,
			Total:       inv.Total,
			DaysOverdue: days,
			Bucket:      bucket,
		})
		out.Totals[bucket] = out.Totals[bucket].Add(inv.Total)
		out.Total = out.Total.Add(inv.Total)
	}
	return out, nil
}

func bucketFor(daysOverdue int) AgedBucket {
	switch {
	case daysOverdue <= 30:
		return BucketCurrent
	case daysOverdue <= 60:
		return Bucket31to60
	case daysOverdue <= 90:
		return Bucket61to90
	default:
		return BucketOver90
	}
}

// VATSummary nets output tax charged on invoices against input VAT paid on
// purchases over a date range.
type VATSummary struct {
	From      time.Time
	To        time.Time
	OutputTax decimal.Decimal // charged on invoices issued in range
	InputVAT  decimal.Decimal // paid on purchases dated in range
	NetDue    decimal.Decimal // OutputTax - InputVAT; negative = reclaimable
}

// VAT computes the VAT position for documents dated in [from, to].
func (s *Service) VAT(ctx context.Context, from, to time.Time) (VATSummary, error) {
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return VATSummary{}, err
	}
	purchases, err := s.store.Purchases(ctx)
	if err != nil {
		return VATSummary{}, err
	}

	out := VATSummary{From: from, To: to}
	for _, inv := range invoices {
		if inv.Status == model.InvoiceDraft || !inRange(inv.IssueDate, from, to) {
			continue
		}
		out.OutputTax = out.OutputTax.Add(inv.Tax)
	}
	for _, p := range purchases {
		if !inRange(p.Date, from, to) {
			continue
		}
		out.InputVAT = out.InputVAT.Add(p.VAT)
	}
	out.NetDue = out.OutputTax.Sub(out.InputVAT)
	return out, nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
