package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/model"
)

type quoteResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	ContactID      string             `json:"contactId"`
	IssueDate      string             `json:"issueDate"`
	ExpiryDate     string             `json:"expiryDate"`
	Status         string             `json:"status"`
	Items          []lineItemResponse `json:"items"`
	TaxRatePercent decimal.Decimal    `json:"taxRatePercent"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
}

func toQuoteResponse(q model.Quote) quoteResponse {
	items := make([]lineItemResponse, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, lineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return quoteResponse{
		ID:             q.ID,
		Number:         q.Number,
		ContactID:      q.ContactID,
		IssueDate:      q.IssueDate.Format("2006-01-02"),
		ExpiryDate:     q.ExpiryDate.Format("2006-01-02"),
		Status:         string(q.Status),
		Items:          items,
		TaxRatePercent: q.TaxRatePercent,
		Subtotal:       q.Subtotal,
		Tax:            q.Tax,
		Total:          q.Total,
	}
}

type quoteRequest struct {
	ContactID      string            `json:"contactId"`
	IssueDate      string            `json:"issueDate"`
	ExpiryDate     string            `json:"expiryDate"`
	TaxRatePercent *decimal.Decimal  `json:"taxRatePercent"`
	Items          []lineItemRequest `json:"items"`
}

func (r quoteRequest) toParams() (documents.QuoteParams, error) {
	issue, err := parseDate("issueDate", r.IssueDate)
	if err != nil {
		return documents.QuoteParams{}, err
	}
	expiry, err := parseDate("expiryDate", r.ExpiryDate)
	if err != nil {
		return documents.QuoteParams{}, err
	}

	lines := make([]documents.LineParams, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, documents.LineParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return documents.QuoteParams{
		ContactID:      r.ContactID,
		IssueDate:      issue,
		ExpiryDate:     expiry,
		TaxRatePercent: r.TaxRatePercent,
		Lines:          lines,
	}, nil
}

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.Quotes(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	q, err := s.documents.CreateQuote(r.Context(), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuoteResponse(q))
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (s *Server) updateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	q, err := s.documents.UpdateQuote(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (s *Server) deleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteQuote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setQuoteStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req setQuoteStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}

	quoteID := chi.URLParam(r, "id")
	if err := s.documents.SetQuoteStatus(r.Context(), quoteID, model.QuoteStatus(req.Status)); err != nil {
		writeError(w, s.log, err)
		return
	}
	q, err := s.store.Quote(r.Context(), quoteID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}
