// Package memory provides the in-memory Store used by tests and demo mode.
// It replaces the frontend-only mock-data globals with an injectable
// repository that honors the same atomicity and ordering contracts as the
// sqlite store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// Store keeps all entities in mutex-guarded maps. Every mutating method is
// atomic under the single mutex, so compound writes cannot be observed
// half-applied.
type Store struct {
	mu  sync.RWMutex
	bus *events.Bus

	accounts     map[string]model.Account
	accountOrder []string
	txs          []model.Transaction
	nextSeq      int64

	pettyCash      map[string]model.PettyCashEntry
	pettyCashOrder []string

	contacts     map[string]model.Contact
	contactOrder []string

	invoices     map[string]model.Invoice
	invoiceOrder []string

	quotes     map[string]model.Quote
	quoteOrder []string

	purchases     map[string]model.Purchase
	purchaseOrder []string

	products     map[string]model.Product
	productOrder []string
}

var _ store.Store = (*Store)(nil)

// New creates an empty Store. bus may be nil to disable change notification.
func New(bus *events.Bus) *Store {
	return &Store{
		bus:       bus,
		accounts:  make(map[string]model.Account),
		pettyCash: make(map[string]model.PettyCashEntry),
		contacts:  make(map[string]model.Contact),
		invoices:  make(map[string]model.Invoice),
		quotes:    make(map[string]model.Quote),
		purchases: make(map[string]model.Purchase),
		products:  make(map[string]model.Product),
		nextSeq:   1,
	}
}

func (s *Store) publish(kind events.Kind, entity, id string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: kind, Entity: entity, ID: id})
	}
}

// --- accounts ---

func (s *Store) CreateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return fmt.Errorf("account %s already exists: %w", a.ID, model.ErrPersistence)
	}
	s.accounts[a.ID] = a
	s.accountOrder = append(s.accountOrder, a.ID)
	s.publish(events.KindCreated, "account", a.ID)
	return nil
}

func (s *Store) Account(_ context.Context, id string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	return a, nil
}

func (s *Store) Accounts(_ context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		out = append(out, s.accounts[id])
	}
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, id string, p store.UpdateAccountParams) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Institution != nil {
		a.Institution = *p.Institution
	}
	if p.NumberMask != nil {
		a.NumberMask = *p.NumberMask
	}
	s.accounts[id] = a
	s.publish(events.KindUpdated, "account", id)
	return a, nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	delete(s.accounts, id)
	s.accountOrder = removeID(s.accountOrder, id)

	// Cascade: the account's transactions go with it.
	kept := s.txs[:0]
	for _, tx := range s.txs {
		if tx.AccountID != id {
			kept = append(kept, tx)
		}
	}
	s.txs = kept

	s.publish(events.KindDeleted, "account", id)
	return nil
}

// --- transactions ---

func (s *Store) PostTransactions(_ context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every account before touching anything.
	for _, tx := range txs {
		if _, ok := s.accounts[tx.AccountID]; !ok {
			return nil, fmt.Errorf("account %s: %w", tx.AccountID, model.ErrNotFound)
		}
	}

	posted := s.postLocked(txs)
	for _, tx := range posted {
		s.publish(events.KindPosted, "transaction", tx.ID)
	}
	return posted, nil
}

// postLocked inserts transactions and applies their balance effects.
// Callers hold the write lock and have already validated the accounts.
func (s *Store) postLocked(txs []model.Transaction) []model.Transaction {
	posted := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		tx.Seq = s.nextSeq
		s.nextSeq++
		s.txs = append(s.txs, tx)

		a := s.accounts[tx.AccountID]
		a.Balance = a.Balance.Add(tx.Amount)
		s.accounts[tx.AccountID] = a

		posted = append(posted, tx)
	}
	return posted
}

func (s *Store) Transactions(_ context.Context, accountID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, model.ErrNotFound)
	}

	var out []model.Transaction
	for _, tx := range s.txs {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func (s *Store) AllTransactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountPos := make(map[string]int, len(s.accountOrder))
	for i, id := range s.accountOrder {
		accountPos[id] = i
	}

	out := make([]model.Transaction, len(s.txs))
	copy(out, s.txs)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := accountPos[out[i].AccountID], accountPos[out[j].AccountID]
		if pi != pj {
			return pi < pj
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

// --- petty cash ---

func (s *Store) CreatePettyCashEntry(_ context.Context, e model.PettyCashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pettyCash[e.ID]; exists {
		return fmt.Errorf("petty cash entry %s already exists: %w", e.ID, model.ErrPersistence)
	}
	s.pettyCash[e.ID] = e
	s.pettyCashOrder = append(s.pettyCashOrder, e.ID)
	s.publish(events.KindCreated, "petty_cash_entry", e.ID)
	return nil
}

func (s *Store) PettyCashEntry(_ context.Context, id string) (model.PettyCashEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pettyCash[id]
	if !ok {
		return model.PettyCashEntry{}, fmt.Errorf("petty cash entry %s: %w", id, model.ErrNotFound)
	}
	return e, nil
}

func (s *Store) PettyCashEntries(_ context.Context) ([]model.PettyCashEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PettyCashEntry, 0, len(s.pettyCashOrder))
	for _, id := range s.pettyCashOrder {
		out = append(out, s.pettyCash[id])
	}
	return out, nil
}

func (s *Store) FinalizePettyCashEntry(_ context.Context, id string, status model.PettyCashStatus, txs []model.Transaction) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pettyCash[id]
	if !ok {
		return nil, fmt.Errorf("petty cash entry %s: %w", id, model.ErrNotFound)
	}
	if e.Status != model.PettyCashPending {
		return nil, fmt.Errorf("petty cash entry %s is %s: %w", id, e.Status, model.ErrInvalidStateTransition)
	}
	for _, tx := range txs {
		if _, ok := s.accounts[tx.AccountID]; !ok {
			return nil, fmt.Errorf("account %s: %w", tx.AccountID, model.ErrNotFound)
		}
	}

	e.Status = status
	s.pettyCash[id] = e
	posted := s.postLocked(txs)

	kind := events.KindApproved
	if status == model.PettyCashRejected {
		kind = events.KindRejected
	}
	s.publish(kind, "petty_cash_entry", id)
	for _, tx := range posted {
		s.publish(events.KindPosted, "transaction", tx.ID)
	}
	return posted, nil
}

// --- contacts ---

func (s *Store) CreateContact(_ context.Context, c model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contacts[c.ID]; exists {
		return fmt.Errorf("contact %s already exists: %w", c.ID, model.ErrPersistence)
	}
	s.contacts[c.ID] = c
	s.contactOrder = append(s.contactOrder, c.ID)
	s.publish(events.KindCreated, "contact", c.ID)
	return nil
}

func (s *Store) Contact(_ context.Context, id string) (model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return model.Contact{}, fmt.Errorf("contact %s: %w", id, model.ErrNotFound)
	}
	return c, nil
}

func (s *Store) Contacts(_ context.Context) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Contact, 0, len(s.contactOrder))
	for _, id := range s.contactOrder {
		out = append(out, s.contacts[id])
	}
	return out, nil
}

func (s *Store) UpdateContact(_ context.Context, id string, p store.UpdateContactParams) (model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return model.Contact{}, fmt.Errorf("contact %s: %w", id, model.ErrNotFound)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	s.contacts[id] = c
	s.publish(events.KindUpdated, "contact", id)
	return c, nil
}

func (s *Store) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return fmt.Errorf("contact %s: %w", id, model.ErrNotFound)
	}
	delete(s.contacts, id)
	s.contactOrder = removeID(s.contactOrder, id)
	s.publish(events.KindDeleted, "contact", id)
	return nil
}

// --- invoices ---

func (s *Store) CreateInvoice(_ context.Context, inv model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return fmt.Errorf("invoice %s already exists: %w", inv.ID, model.ErrPersistence)
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	s.invoiceOrder = append(s.invoiceOrder, inv.ID)
	s.publish(events.KindCreated, "invoice", inv.ID)
	return nil
}

func (s *Store) Invoice(_ context.Context, id string) (model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", id, model.ErrNotFound)
	}
	return cloneInvoice(inv), nil
}

func (s *Store) Invoices(_ context.Context) ([]model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Invoice, 0, len(s.invoiceOrder))
	for _, id := range s.invoiceOrder {
		out = append(out, cloneInvoice(s.invoices[id]))
	}
	return out, nil
}

func (s *Store) InvoicesByContact(_ context.Context, contactID string) ([]model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Invoice
	for _, id := range s.invoiceOrder {
		if inv := s.invoices[id]; inv.ContactID == contactID {
			out = append(out, cloneInvoice(inv))
		}
	}
	return out, nil
}

func (s *Store) ReplaceInvoice(_ context.Context, inv model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[inv.ID]; !ok {
		return fmt.Errorf("invoice %s: %w", inv.ID, model.ErrNotFound)
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	s.publish(events.KindUpdated, "invoice", inv.ID)
	return nil
}

func (s *Store) SetInvoiceStatus(_ context.Context, id string, status model.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, model.ErrNotFound)
	}
	inv.Status = status
	s.invoices[id] = inv
	s.publish(events.KindUpdated, "invoice", id)
	return nil
}

func (s *Store) RecordInvoicePayment(_ context.Context, invoiceID string, tx model.Transaction) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return model.Transaction{}, fmt.Errorf("invoice %s: %w", invoiceID, model.ErrNotFound)
	}
	if inv.Status == model.InvoicePaid {
		return model.Transaction{}, fmt.Errorf("invoice %s already paid: %w", invoiceID, model.ErrInvalidStateTransition)
	}
	if _, ok := s.accounts[tx.AccountID]; !ok {
		return model.Transaction{}, fmt.Errorf("account %s: %w", tx.AccountID, model.ErrNotFound)
	}

	inv.Status = model.InvoicePaid
	s.invoices[invoiceID] = inv
	posted := s.postLocked([]model.Transaction{tx})

	s.publish(events.KindUpdated, "invoice", invoiceID)
	s.publish(events.KindPosted, "transaction", posted[0].ID)
	return posted[0], nil
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return fmt.Errorf("invoice %s: %w", id, model.ErrNotFound)
	}
	delete(s.invoices, id)
	s.invoiceOrder = removeID(s.invoiceOrder, id)
	s.publish(events.KindDeleted, "invoice", id)
	return nil
}

// --- quotes ---

func (s *Store) CreateQuote(_ context.Context, q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quotes[q.ID]; exists {
		return fmt.Errorf("quote %s already exists: %w", q.ID, model.ErrPersistence)
	}
	s.quotes[q.ID] = cloneQuote(q)
	s.quoteOrder = append(s.quoteOrder, q.ID)
	s.publish(events.KindCreated, "quote", q.ID)
	return nil
}

func (s *Store) Quote(_ context.Context, id string) (model.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return model.Quote{}, fmt.Errorf("quote %s: %w", id, model.ErrNotFound)
	}
	return cloneQuote(q), nil
}

func (s *Store) Quotes(_ context.Context) ([]model.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Quote, 0, len(s.quoteOrder))
	for _, id := range s.quoteOrder {
		out = append(out, cloneQuote(s.quotes[id]))
	}
	return out, nil
}

func (s *Store) ReplaceQuote(_ context.Context, q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[q.ID]; !ok {
		return fmt.Errorf("quote %s: %w", q.ID, model.ErrNotFound)
	}
	s.quotes[q.ID] = cloneQuote(q)
	s.publish(events.KindUpdated, "quote", q.ID)
	return nil
}

func (s *Store) SetQuoteStatus(_ context.Context, id string, status model.QuoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return fmt.Errorf("quote %s: %w", id, model.ErrNotFound)
	}
	q.Status = status
	s.quotes[id] = q
	s.publish(events.KindUpdated, "quote", id)
	return nil
}

func (s *Store) DeleteQuote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[id]; !ok {
		return fmt.Errorf("quote %s: %w", id, model.ErrNotFound)
	}
	delete(s.quotes, id)
	s.quoteOrder = removeID(s.quoteOrder, id)
	s.publish(events.KindDeleted, "quote", id)
	return nil
}

// --- purchases ---

func (s *Store) CreatePurchase(_ context.Context, p model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.purchases[p.ID]; exists {
		return fmt.Errorf("purchase %s already exists: %w", p.ID, model.ErrPersistence)
	}
	s.purchases[p.ID] = clonePurchase(p)
	s.purchaseOrder = append(s.purchaseOrder, p.ID)
	s.publish(events.KindCreated, "purchase", p.ID)
	return nil
}

func (s *Store) Purchase(_ context.Context, id string) (model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return model.Purchase{}, fmt.Errorf("purchase %s: %w", id, model.ErrNotFound)
	}
	return clonePurchase(p), nil
}

func (s *Store) Purchases(_ context.Context) ([]model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Purchase, 0, len(s.purchaseOrder))
	for _, id := range s.purchaseOrder {
		out = append(out, clonePurchase(s.purchases[id]))
	}
	return out, nil
}

func (s *Store) ReplacePurchase(_ context.Context, p model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[p.ID]; !ok {
		return fmt.Errorf("purchase %s: %w", p.ID, model.ErrNotFound)
	}
	s.purchases[p.ID] = clonePurchase(p)
	s.publish(events.KindUpdated, "purchase", p.ID)
	return nil
}

func (s *Store) DeletePurchase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[id]; !ok {
		return fmt.Errorf("purchase %s: %w", id, model.ErrNotFound)
	}
	delete(s.purchases, id)
	s.purchaseOrder = removeID(s.purchaseOrder, id)
	s.publish(events.KindDeleted, "purchase", id)
	return nil
}

// --- products ---

func (s *Store) CreateProduct(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return fmt.Errorf("product %s already exists: %w", p.ID, model.ErrPersistence)
	}
	s.products[p.ID] = p
	s.productOrder = append(s.productOrder, p.ID)
	s.publish(events.KindCreated, "product", p.ID)
	return nil
}

func (s *Store) Product(_ context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func (s *Store) Products(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, p store.UpdateProductParams) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prod, ok := s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.UnitPrice != nil {
		prod.UnitPrice = *p.UnitPrice
	}
	if p.Kind != nil {
		prod.Kind = *p.Kind
	}
	s.products[id] = prod
	s.publish(events.KindUpdated, "product", id)
	return prod, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	delete(s.products, id)
	s.productOrder = removeID(s.productOrder, id)
	s.publish(events.KindDeleted, "product", id)
	return nil
}

// --- helpers ---

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func cloneInvoice(inv model.Invoice) model.Invoice {
	items := make([]model.LineItem, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	return inv
}

func cloneQuote(q model.Quote) model.Quote {
	items := make([]model.LineItem, len(q.Items))
	copy(items, q.Items)
	q.Items = items
	return q
}

func clonePurchase(p model.Purchase) model.Purchase {
	items := make([]model.PurchaseLineItem, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}
