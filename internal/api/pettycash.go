package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/pettycash"
)

type pettyCashResponse struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"`
	Description      string          `json:"description"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	FundingAccountID string          `json:"fundingAccountId,omitempty"`
}

func toPettyCashResponse(e model.PettyCashEntry) pettyCashResponse {
	return pettyCashResponse{
		ID:               e.ID,
		Date:             e.Date.Format("2006-01-02"),
		Description:      e.Description,
		Kind:             string(e.Kind),
		Amount:           e.Amount,
		Status:           string(e.Status),
		FundingAccountID: e.FundingAccountID,
	}
}

func (s *Server) listPettyCash(w http.ResponseWriter, r *http.Request) {
	entries, err := s.pettyCash.Entries(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]pettyCashResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPettyCashResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type createPettyCashRequest struct {
	Date             string          `json:"date"`
	Description      string          `json:"description"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	FundingAccountID string          `json:"fundingAccountId"`
}

func (s *Server) createPettyCash(w http.ResponseWriter, r *http.Request) {
	var req createPettyCashRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	e, err := s.pettyCash.Create(r.Context(), pettycash.CreateParams{
		Date:             date,
		Description:      req.Description,
		Kind:             model.PettyCashKind(req.Kind),
		Amount:           req.Amount,
		FundingAccountID: req.FundingAccountID,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPettyCashResponse(e))
}

func (s *Server) getPettyCash(w http.ResponseWriter, r *http.Request) {
	e, err := s.pettyCash.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPettyCashResponse(e))
}

type approvePettyCashResponse struct {
	Entry        pettyCashResponse     `json:"entry"`
	Transactions []transactionResponse `json:"transactions"`
}

func (s *Server) approvePettyCash(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	posted, err := s.pettyCash.Approve(r.Context(), entryID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	e, err := s.pettyCash.Entry(r.Context(), entryID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	txs := make([]transactionResponse, 0, len(posted))
	for _, tx := range posted {
		txs = append(txs, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, approvePettyCashResponse{
		Entry:        toPettyCashResponse(e),
		Transactions: txs,
	})
}

func (s *Server) rejectPettyCash(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if err := s.pettyCash.Reject(r.Context(), entryID); err != nil {
		writeError(w, s.log, err)
		return
	}

	e, err := s.pettyCash.Entry(r.Context(), entryID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPettyCashResponse(e))
}
