package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/model"
)

type lineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type lineItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

type invoiceResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	ContactID      string             `json:"contactId"`
	IssueDate      string             `json:"issueDate"`
	DueDate        string             `json:"dueDate"`
	Status         string             `json:"status"`
	Items          []lineItemResponse `json:"items"`
	TaxRatePercent decimal.Decimal    `json:"taxRatePercent"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
}

func toInvoiceResponse(inv model.Invoice) invoiceResponse {
	items := make([]lineItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, lineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return invoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		ContactID:      inv.ContactID,
		IssueDate:      inv.IssueDate.Format("2006-01-02"),
		DueDate:        inv.DueDate.Format("2006-01-02"),
		Status:         string(inv.Status),
		Items:          items,
		TaxRatePercent: inv.TaxRatePercent,
		Subtotal:       inv.Subtotal,
		Tax:            inv.Tax,
		Total:          inv.Total,
	}
}

type invoiceRequest struct {
	ContactID      string            `json:"contactId"`
	IssueDate      string            `json:"issueDate"`
	DueDate        string            `json:"dueDate"`
	TaxRatePercent *decimal.Decimal  `json:"taxRatePercent"`
	Items          []lineItemRequest `json:"items"`
}

func (r invoiceRequest) toParams() (documents.InvoiceParams, error) {
	issue, err := parseDate("issueDate", r.IssueDate)
	if err != nil {
		return documents.InvoiceParams{}, err
	}
	due, err := parseDate("dueDate", r.DueDate)
	if err != nil {
		return documents.InvoiceParams{}, err
	}

	lines := make([]documents.LineParams, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, documents.LineParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return documents.InvoiceParams{
		ContactID:      r.ContactID,
		IssueDate:      issue,
		DueDate:        due,
		TaxRatePercent: r.TaxRatePercent,
		Lines:          lines,
	}, nil
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.Invoices(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	inv, err := s.documents.CreateInvoice(r.Context(), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.store.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	inv, err := s.documents.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	if err := s.documents.SendInvoice(r.Context(), invoiceID); err != nil {
		writeError(w, s.log, err)
		return
	}
	inv, err := s.store.Invoice(r.Context(), invoiceID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

type recordPaymentRequest struct {
	AccountID string `json:"accountId"`
	Date      string `json:"date"`
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	tx, err := s.documents.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.AccountID, date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}
