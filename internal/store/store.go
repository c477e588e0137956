// Package store defines the persistence boundary for the ledger core.
//
// Every mutating method is a single unit of work: compound writes (a
// transaction plus its balance effect, a document plus its line items, an
// approval plus its postings) either fully commit or leave no trace. The two
// implementations — sqlite for real use, memory as the swappable test
// double — honor the same contracts.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// UpdateAccountParams names every mutable Account column. Nil fields are left
// untouched. Balance is deliberately absent: it moves only by posting.
type UpdateAccountParams struct {
	Name        *string
	Institution *string
	NumberMask  *string
}

// UpdateContactParams names every mutable Contact column.
type UpdateContactParams struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Type    *model.ContactType
}

// UpdateProductParams names every mutable Product column.
type UpdateProductParams struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	Kind        *model.ProductKind
}

// Store is the persistence boundary for all ledger-core entities.
//
// Lookups return model.ErrNotFound (wrapped) when the entity is absent;
// storage failures are wrapped in model.ErrPersistence and leave no partial
// effect.
type Store interface {
	// Accounts. Accounts lists in creation order. DeleteAccount cascades
	// to the account's transactions in the same unit of work.
	CreateAccount(ctx context.Context, a model.Account) error
	Account(ctx context.Context, id string) (model.Account, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, id string, p UpdateAccountParams) (model.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// PostTransactions inserts every transaction and applies each amount to
	// its account's balance, all in one unit of work. Seq is assigned by the
	// store in posting order. Fails with ErrNotFound if any account is
	// missing, committing nothing.
	PostTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error)

	// Transactions lists one account's transactions for display: date
	// descending, ties broken by posting order (newest first).
	Transactions(ctx context.Context, accountID string) ([]model.Transaction, error)

	// AllTransactions lists every transaction across accounts, ordered by
	// account creation order then posting order. This is the reconciler's
	// scan order.
	AllTransactions(ctx context.Context) ([]model.Transaction, error)

	// Petty cash. FinalizePettyCashEntry atomically moves a Pending entry
	// to the given terminal status and posts the supplied transactions
	// (empty for rejection). Fails with ErrInvalidStateTransition — posting
	// nothing — if the entry is not Pending.
	CreatePettyCashEntry(ctx context.Context, e model.PettyCashEntry) error
	PettyCashEntry(ctx context.Context, id string) (model.PettyCashEntry, error)
	PettyCashEntries(ctx context.Context) ([]model.PettyCashEntry, error)
	FinalizePettyCashEntry(ctx context.Context, id string, status model.PettyCashStatus, txs []model.Transaction) ([]model.Transaction, error)

	// Contacts.
	CreateContact(ctx context.Context, c model.Contact) error
	Contact(ctx context.Context, id string) (model.Contact, error)
	Contacts(ctx context.Context) ([]model.Contact, error)
	UpdateContact(ctx context.Context, id string, p UpdateContactParams) (model.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	// Invoices. Create and Replace write the invoice and its line items in
	// one unit of work; Replace swaps the full item set.
	CreateInvoice(ctx context.Context, inv model.Invoice) error
	Invoice(ctx context.Context, id string) (model.Invoice, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	InvoicesByContact(ctx context.Context, contactID string) ([]model.Invoice, error)
	ReplaceInvoice(ctx context.Context, inv model.Invoice) error
	SetInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id string) error

	// RecordInvoicePayment atomically posts the payment transaction and
	// marks the invoice paid, in one unit of work. Fails with
	// ErrInvalidStateTransition — posting nothing — if the invoice is
	// already paid.
	RecordInvoicePayment(ctx context.Context, invoiceID string, tx model.Transaction) (model.Transaction, error)

	// Quotes.
	CreateQuote(ctx context.Context, q model.Quote) error
	Quote(ctx context.Context, id string) (model.Quote, error)
	Quotes(ctx context.Context) ([]model.Quote, error)
	ReplaceQuote(ctx context.Context, q model.Quote) error
	SetQuoteStatus(ctx context.Context, id string, status model.QuoteStatus) error
	DeleteQuote(ctx context.Context, id string) error

	// Purchases.
	CreatePurchase(ctx context.Context, p model.Purchase) error
	Purchase(ctx context.Context, id string) (model.Purchase, error)
	Purchases(ctx context.Context) ([]model.Purchase, error)
	ReplacePurchase(ctx context.Context, p model.Purchase) error
	DeletePurchase(ctx context.Context, id string) error

	// Products.
	CreateProduct(ctx context.Context, p model.Product) error
	Product(ctx context.Context, id string) (model.Product, error)
	Products(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, p UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
