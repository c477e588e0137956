package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/model"
)

type purchaseItemRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	VAT         decimal.Decimal `json:"vat"`
}

type purchaseItemResponse struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	VAT         decimal.Decimal `json:"vat"`
}

type purchaseResponse struct {
	ID        string                 `json:"id"`
	Number    string                 `json:"number"`
	ContactID string                 `json:"contactId"`
	Date      string                 `json:"date"`
	Items     []purchaseItemResponse `json:"items"`
	Subtotal  decimal.Decimal        `json:"subtotal"`
	VAT       decimal.Decimal        `json:"vat"`
	Total     decimal.Decimal        `json:"total"`
}

func toPurchaseResponse(p model.Purchase) purchaseResponse {
	items := make([]purchaseItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, purchaseItemResponse{
			Description: item.Description,
			Amount:      item.Amount,
			VAT:         item.VAT,
		})
	}
	return purchaseResponse{
		ID:        p.ID,
		Number:    p.Number,
		ContactID: p.ContactID,
		Date:      p.Date.Format("2006-01-02"),
		Items:     items,
		Subtotal:  p.Subtotal,
		VAT:       p.VAT,
		Total:     p.Total,
	}
}

type purchaseRequest struct {
	ContactID string                `json:"contactId"`
	Date      string                `json:"date"`
	Items     []purchaseItemRequest `json:"items"`
}

func (r purchaseRequest) toParams() (documents.PurchaseParams, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return documents.PurchaseParams{}, err
	}

	lines := make([]documents.PurchaseLineParams, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, documents.PurchaseLineParams{
			Description: item.Description,
			Amount:      item.Amount,
			VAT:         item.VAT,
		})
	}
	return documents.PurchaseParams{
		ContactID: r.ContactID,
		Date:      date,
		Lines:     lines,
	}, nil
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.store.Purchases(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	p, err := s.documents.CreatePurchase(r.Context(), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseResponse(p))
}

func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Purchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (s *Server) updatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	p, err := s.documents.UpdatePurchase(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (s *Server) deletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePurchase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
