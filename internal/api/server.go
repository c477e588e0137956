// Package api exposes the ledger core over a JSON REST surface. Handlers
// parse and validate requests, call into the core services, and translate
// error kinds onto HTTP statuses; no business rules live here.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/pettycash"
	"github.com/tallybooks/tally/internal/reports"
	"github.com/tallybooks/tally/internal/statement"
	"github.com/tallybooks/tally/internal/store"
)

// Server wires handlers to the core services.
type Server struct {
	log        *slog.Logger
	store      store.Store
	ledger     *ledger.Service
	pettyCash  *pettycash.Service
	documents  *documents.Service
	statements *statement.Service
	reports    *reports.Service
}

// Config collects the dependencies a Server needs.
type Config struct {
	Log        *slog.Logger
	Store      store.Store
	Ledger     *ledger.Service
	PettyCash  *pettycash.Service
	Documents  *documents.Service
	Statements *statement.Service
	Reports    *reports.Service
}

// New creates a Server.
func New(cfg Config) *Server {
	return &Server{
		log:        cfg.Log,
		store:      cfg.Store,
		ledger:     cfg.Ledger,
		pettyCash:  cfg.PettyCash,
		documents:  cfg.Documents,
		statements: cfg.Statements,
		reports:    cfg.Reports,
	}
}

// Router builds the chi router for the full API surface. tokens is the
// accepted bearer-token set; empty disables auth.
func (s *Server) Router(tokens []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(BearerAuth(tokens))

	r.Route("/api", func(r chi.Router) {
		r.Route("/bank-accounts", func(r chi.Router) {
			r.Get("/", s.listAccounts)
			r.Post("/", s.createAccount)
			r.Post("/transfer", s.transfer)
			r.Get("/{id}", s.getAccount)
			r.Put("/{id}", s.updateAccount)
			r.Delete("/{id}", s.deleteAccount)
			r.Get("/{id}/transactions", s.listTransactions)
			r.Post("/{id}/transactions", s.postTransaction)
		})

		r.Route("/petty-cash", func(r chi.Router) {
			r.Get("/", s.listPettyCash)
			r.Post("/", s.createPettyCash)
			r.Get("/{id}", s.getPettyCash)
			r.Post("/{id}/approve", s.approvePettyCash)
			r.Post("/{id}/reject", s.rejectPettyCash)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.listContacts)
			r.Post("/", s.createContact)
			r.Get("/{id}", s.getContact)
			r.Put("/{id}", s.updateContact)
			r.Delete("/{id}", s.deleteContact)
			r.Get("/{id}/statement", s.contactStatement)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.listInvoices)
			r.Post("/", s.createInvoice)
			r.Get("/{id}", s.getInvoice)
			r.Put("/{id}", s.updateInvoice)
			r.Delete("/{id}", s.deleteInvoice)
			r.Post("/{id}/send", s.sendInvoice)
			r.Post("/{id}/payments", s.recordPayment)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", s.listQuotes)
			r.Post("/", s.createQuote)
			r.Get("/{id}", s.getQuote)
			r.Put("/{id}", s.updateQuote)
			r.Delete("/{id}", s.deleteQuote)
			r.Post("/{id}/status", s.setQuoteStatus)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", s.listPurchases)
			r.Post("/", s.createPurchase)
			r.Get("/{id}", s.getPurchase)
			r.Put("/{id}", s.updatePurchase)
			r.Delete("/{id}", s.deletePurchase)
		})

		r.Route("/products-services", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Post("/", s.createProduct)
			r.Get("/{id}", s.getProduct)
			r.Put("/{id}", s.updateProduct)
			r.Delete("/{id}", s.deleteProduct)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/balances", s.reportBalances)
			r.Get("/aged-receivables", s.reportAgedReceivables)
			r.Get("/vat", s.reportVAT)
		})
	})

	return r
}
