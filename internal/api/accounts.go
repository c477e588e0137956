package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

type accountResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Institution string          `json:"institution"`
	NumberMask  string          `json:"numberMask"`
	Kind        string          `json:"kind"`
	Balance     decimal.Decimal `json:"balance"`
}

func toAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Institution: a.Institution,
		NumberMask:  a.NumberMask,
		Kind:        string(a.Kind),
		Balance:     a.Balance,
	}
}

type transactionResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	InvoiceID   string          `json:"invoiceId,omitempty"`
}

func toTransactionResponse(tx model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
		Amount:      tx.Amount,
		InvoiceID:   tx.InvoiceID,
	}
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.Accounts(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

type createAccountRequest struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	NumberMask  string `json:"numberMask"`
	Kind        string `json:"kind"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}

	var verr model.ValidationError
	if req.Name == "" {
		verr.Add("name", "required")
	}
	kind := model.AccountKind(req.Kind)
	if kind != model.AccountKindBank && kind != model.AccountKindCash {
		verr.Add("kind", "must be bank or cash")
	}
	if err := verr.Err(); err != nil {
		writeError(w, s.log, err)
		return
	}

	a := model.Account{
		ID:          id.New(),
		Name:        req.Name,
		Institution: req.Institution,
		NumberMask:  req.NumberMask,
		Kind:        kind,
		Balance:     decimal.Zero,
	}
	if err := s.store.CreateAccount(r.Context(), a); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

type updateAccountRequest struct {
	Name        *string `json:"name"`
	Institution *string `json:"institution"`
	NumberMask  *string `json:"numberMask"`
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}

	a, err := s.store.UpdateAccount(r.Context(), chi.URLParam(r, "id"), store.UpdateAccountParams{
		Name:        req.Name,
		Institution: req.Institution,
		NumberMask:  req.NumberMask,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

type postTransactionRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	InvoiceID   string          `json:"invoiceId"`
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	tx, err := s.ledger.Post(r.Context(), ledger.PostParams{
		AccountID:   chi.URLParam(r, "id"),
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		InvoiceID:   req.InvoiceID,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

type transferRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
}

type transferResponse struct {
	Outflow transactionResponse `json:"outflow"`
	Inflow  transactionResponse `json:"inflow"`
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	outTx, inTx, err := s.ledger.Transfer(r.Context(), ledger.TransferParams{
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		Amount:         req.Amount,
		Date:           date,
		OutDescription: "Transfer out: " + req.Description,
		InDescription:  "Transfer in: " + req.Description,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, transferResponse{
		Outflow: toTransactionResponse(outTx),
		Inflow:  toTransactionResponse(inTx),
	})
}
