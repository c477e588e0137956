// Package documents manages invoices, quotes, and purchases. Totals are
// derived from line items on every write — a document is never stored
// inconsistent with its lines — and line items are replaced together with
// their parent in one store unit of work.
package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
	"github.com/tallybooks/tally/internal/totals"
)

// Service provides document business logic.
type Service struct {
	store          store.Store
	defaultTaxRate decimal.Decimal
}

// NewService creates a documents Service. defaultTaxRate is the configured
// percentage applied when a document doesn't specify its own.
func NewService(st store.Store, defaultTaxRate decimal.Decimal) *Service {
	return &Service{store: st, defaultTaxRate: defaultTaxRate}
}

// LineParams is one requested invoice/quote line.
type LineParams struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceParams holds parameters for creating or updating an invoice.
type InvoiceParams struct {
	ContactID string
	IssueDate time.Time
	DueDate   time.Time
	// TaxRatePercent overrides the configured default when non-nil.
	TaxRatePercent *decimal.Decimal
	Lines          []LineParams
}

// CreateInvoice validates, numbers, totals, and stores a new draft invoice.
func (s *Service) CreateInvoice(ctx context.Context, p InvoiceParams) (model.Invoice, error) {
	if err := s.checkDocumentParams(ctx, p.ContactID, p.IssueDate); err != nil {
		return model.Invoice{}, err
	}

	number, err := s.nextInvoiceNumber(ctx, p.IssueDate.Year())
	if err != nil {
		return model.Invoice{}, err
	}

	inv := model.Invoice{
		ID:        id.New(),
		Number:    number,
		ContactID: p.ContactID,
		IssueDate: p.IssueDate,
		DueDate:   p.DueDate,
		Status:    model.InvoiceDraft,
	}
	applyLines(&inv, p.Lines, s.taxRate(p.TaxRatePercent))

	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// UpdateInvoice replaces an invoice's details and full line set, recomputing
// totals. Number and status are preserved.
func (s *Service) UpdateInvoice(ctx context.Context, invoiceID string, p InvoiceParams) (model.Invoice, error) {
	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	if err := s.checkDocumentParams(ctx, p.ContactID, p.IssueDate); err != nil {
		return model.Invoice{}, err
	}

	inv.ContactID = p.ContactID
	inv.IssueDate = p.IssueDate
	inv.DueDate = p.DueDate
	rate := inv.TaxRatePercent
	if p.TaxRatePercent != nil {
		rate = *p.TaxRatePercent
	}
	applyLines(&inv, p.Lines, rate)

	if err := s.store.ReplaceInvoice(ctx, inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// SendInvoice marks a draft invoice sent.
func (s *Service) SendInvoice(ctx context.Context, invoiceID string) error {
	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != model.InvoiceDraft {
		return fmt.Errorf("invoice %s is %s: %w", invoiceID, inv.Status, model.ErrInvalidStateTransition)
	}
	return s.store.SetInvoiceStatus(ctx, invoiceID, model.InvoiceSent)
}

// RecordPayment posts the invoice total as an inflow on the given account,
// carrying the direct invoice reference the reconciler prefers, and marks
// the invoice paid. The posting and the status change share one store unit
// of work: a failed payment leaves the invoice unpaid with nothing posted,
// so retrying cannot double-post. Paying a paid invoice is rejected.
func (s *Service) RecordPayment(ctx context.Context, invoiceID, accountID string, date time.Time) (model.Transaction, error) {
	var verr model.ValidationError
	if accountID == "" {
		verr.Add("accountId", "required")
	}
	if date.IsZero() {
		verr.Add("date", "required")
	}
	if err := verr.Err(); err != nil {
		return model.Transaction{}, err
	}

	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return model.Transaction{}, err
	}

	return s.store.RecordInvoicePayment(ctx, invoiceID, model.Transaction{
		ID:          id.New(),
		AccountID:   accountID,
		Date:        date,
		Description: "Payment for Invoice #" + inv.Number,
		Amount:      inv.Total,
		InvoiceID:   inv.ID,
	})
}

// QuoteParams holds parameters for creating or updating a quote.
type QuoteParams struct {
	ContactID      string
	IssueDate      time.Time
	ExpiryDate     time.Time
	TaxRatePercent *decimal.Decimal
	Lines          []LineParams
}

// CreateQuote validates, numbers, totals, and stores a new draft quote.
func (s *Service) CreateQuote(ctx context.Context, p QuoteParams) (model.Quote, error) {
	if err := s.checkDocumentParams(ctx, p.ContactID, p.IssueDate); err != nil {
		return model.Quote{}, err
	}

	number, err := s.nextNumber(ctx, id.PrefixQuote, p.IssueDate.Year(), s.quoteNumbers)
	if err != nil {
		return model.Quote{}, err
	}

	q := model.Quote{
		ID:         id.New(),
		Number:     number,
		ContactID:  p.ContactID,
		IssueDate:  p.IssueDate,
		ExpiryDate: p.ExpiryDate,
		Status:     model.QuoteDraft,
	}
	applyQuoteLines(&q, p.Lines, s.taxRate(p.TaxRatePercent))

	if err := s.store.CreateQuote(ctx, q); err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// UpdateQuote replaces a quote's details and line set, recomputing totals.
func (s *Service) UpdateQuote(ctx context.Context, quoteID string, p QuoteParams) (model.Quote, error) {
	q, err := s.store.Quote(ctx, quoteID)
	if err != nil {
		return model.Quote{}, err
	}
	if err := s.checkDocumentParams(ctx, p.ContactID, p.IssueDate); err != nil {
		return model.Quote{}, err
	}

	q.ContactID = p.ContactID
	q.IssueDate = p.IssueDate
	q.ExpiryDate = p.ExpiryDate
	rate := q.TaxRatePercent
	if p.TaxRatePercent != nil {
		rate = *p.TaxRatePercent
	}
	applyQuoteLines(&q, p.Lines, rate)

	if err := s.store.ReplaceQuote(ctx, q); err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// SetQuoteStatus applies the quote lifecycle: Draft→Sent, Sent→Accepted or
// Sent→Declined. Anything else is an invalid transition.
func (s *Service) SetQuoteStatus(ctx context.Context, quoteID string, status model.QuoteStatus) error {
	q, err := s.store.Quote(ctx, quoteID)
	if err != nil {
		return err
	}

	valid := false
	switch q.Status {
	case model.QuoteDraft:
		valid = status == model.QuoteSent
	case model.QuoteSent:
		valid = status == model.QuoteAccepted || status == model.QuoteDeclined
	}
	if !valid {
		return fmt.Errorf("quote %s cannot move %s -> %s: %w", quoteID, q.Status, status, model.ErrInvalidStateTransition)
	}
	return s.store.SetQuoteStatus(ctx, quoteID, status)
}

// PurchaseLineParams is one requested purchase line: a flat amount with its
// own VAT contribution.
type PurchaseLineParams struct {
	Description string
	Amount      decimal.Decimal
	VAT         decimal.Decimal
}

// PurchaseParams holds parameters for creating or updating a purchase.
type PurchaseParams struct {
	ContactID string
	Date      time.Time
	Lines     []PurchaseLineParams
}

// CreatePurchase validates, numbers, totals, and stores a supplier purchase.
func (s *Service) CreatePurchase(ctx context.Context, p PurchaseParams) (model.Purchase, error) {
	if err := s.checkDocumentParams(ctx, p.ContactID, p.Date); err != nil {
		return model.Purchase{}, err
	}

	number, err := s.nextNumber(ctx, id.PrefixPurchase, p.Date.Year(), s.purchaseNumbers)
	if err != nil {
		return model.Purchase{}, err
	}

	pur := model.Purchase{
		ID:        id.New(),
		Number:    number,
		ContactID: p.ContactID,
		Date:      p.Date,
	}
	applyPurchaseLines(&pur, p.Lines)

	if err := s.store.CreatePurchase(ctx, pur); err != nil {
		return model.Purchase{}, err
	}
	return pur, nil
}

// UpdatePurchase replaces a purchase's details and line set.
func (s *Service) UpdatePurchase(ctx context.Context, purchaseID string, p PurchaseParams) (model.Purchase, error) {
	pur, err := s.store.Purchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, err
	}
	if err := s.checkDocumentParams(ctx, p.ContactID, p.Date); err != nil {
		return model.Purchase{}, err
	}

	pur.ContactID = p.ContactID
	pur.Date = p.Date
	applyPurchaseLines(&pur, p.Lines)

	if err := s.store.ReplacePurchase(ctx, pur); err != nil {
		return model.Purchase{}, err
	}
	return pur, nil
}

// --- helpers ---

func (s *Service) taxRate(override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return s.defaultTaxRate
}

func (s *Service) checkDocumentParams(ctx context.Context, contactID string, date time.Time) error {
	var verr model.ValidationError
	if contactID == "" {
		verr.Add("contactId", "required")
	}
	if date.IsZero() {
		verr.Add("date", "required")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	// NotFound on the referenced contact propagates to the caller.
	_, err := s.store.Contact(ctx, contactID)
	return err
}

func applyLines(inv *model.Invoice, lines []LineParams, rate decimal.Decimal) {
	items := make([]model.LineItem, 0, len(lines))
	for _, l := range lines {
		item := model.LineItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		item.Total = totals.LineTotal(item)
		items = append(items, item)
	}
	t := totals.Compute(items, rate)
	inv.Items = items
	inv.TaxRatePercent = rate
	inv.Subtotal = t.Subtotal
	inv.Tax = t.Tax
	inv.Total = t.Total
}

func applyQuoteLines(q *model.Quote, lines []LineParams, rate decimal.Decimal) {
	items := make([]model.LineItem, 0, len(lines))
	for _, l := range lines {
		item := model.LineItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		item.Total = totals.LineTotal(item)
		items = append(items, item)
	}
	t := totals.Compute(items, rate)
	q.Items = items
	q.TaxRatePercent = rate
	q.Subtotal = t.Subtotal
	q.Tax = t.Tax
	q.Total = t.Total
}

func applyPurchaseLines(p *model.Purchase, lines []PurchaseLineParams) {
	items := make([]model.PurchaseLineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.PurchaseLineItem{
			Description: l.Description,
			Amount:      l.Amount,
			VAT:         l.VAT,
		})
	}
	t := totals.ComputePurchase(items)
	p.Items = items
	p.Subtotal = t.Subtotal
	p.VAT = t.Tax
	p.Total = t.Total
}

// nextInvoiceNumber returns the next free invoice number for a year.
func (s *Service) nextInvoiceNumber(ctx context.Context, year int) (string, error) {
	return s.nextNumber(ctx, id.PrefixInvoice, year, s.invoiceNumbers)
}

func (s *Service) invoiceNumbers(ctx context.Context) ([]string, error) {
	invs, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(invs))
	for i, inv := range invs {
		numbers[i] = inv.Number
	}
	return numbers, nil
}

func (s *Service) quoteNumbers(ctx context.Context) ([]string, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(quotes))
	for i, q := range quotes {
		numbers[i] = q.Number
	}
	return numbers, nil
}

func (s *Service) purchaseNumbers(ctx context.Context) ([]string, error) {
	purs, err := s.store.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(purs))
	for i, p := range purs {
		numbers[i] = p.Number
	}
	return numbers, nil
}

// nextNumber scans existing document numbers and returns prefix-year-(max+1).
func (s *Service) nextNumber(ctx context.Context, prefix string, year int, list func(context.Context) ([]string, error)) (string, error) {
	numbers, err := list(ctx)
	if err != nil {
		return "", err
	}

	maxSeq := 0
	for _, n := range numbers {
		p, y, seq, err := id.ParseNumber(n)
		if err != nil || p != prefix || y != year {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return id.FormatNumber(prefix, year, maxSeq+1), nil
}
