package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

type balanceLineResponse struct {
	AccountID string          `json:"accountId"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Balance   decimal.Decimal `json:"balance"`
}

type balancesResponse struct {
	Lines []balanceLineResponse `json:"lines"`
	Total decimal.Decimal       `json:"total"`
}

func (s *Server) reportBalances(w http.ResponseWriter, r *http.Request) {
	b, err := s.reports.Balances(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	out := balancesResponse{
		Lines: make([]balanceLineResponse, 0, len(b.Lines)),
		Total: b.Total,
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, balanceLineResponse{
			AccountID: l.AccountID,
			Name:      l.Name,
			Kind:      string(l.Kind),
			Balance:   l.Balance,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type agedInvoiceResponse struct {
	InvoiceID   string          `json:"invoiceId"`
	Number      string          `json:"number"`
	ContactID   string          `json:"contactId"`
	DueDate     string          `json:"dueDate"`
	Total       decimal.Decimal `json:"total"`
	DaysOverdue int             `json:"daysOverdue"`
	Bucket      string          `json:"bucket"`
}

type agedReceivablesResponse struct {
	AsOf     string                     `json:"asOf"`
	Invoices []agedInvoiceResponse      `json:"invoices"`
	Totals   map[string]decimal.Decimal `json:"totals"`
	Total    decimal.Decimal            `json:"total"`
}

func (s *Server) reportAgedReceivables(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		t, err := parseDate("asOf", raw)
		if err != nil {
			writeError(w, s.log, err)
			return
		}
		asOf = t
	}

	aged, err := s.reports.AgedReceivables(r.Context(), asOf)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	out := agedReceivablesResponse{
		AsOf:     aged.AsOf.Format("2006-01-02"),
		Invoices: make([]agedInvoiceResponse, 0, len(aged.Invoices)),
		Totals:   make(map[string]decimal.Decimal, len(aged.Totals)),
		Total:    aged.Total,
	}
	for _, inv := range aged.Invoices {
		out.Invoices = append(out.Invoices, agedInvoiceResponse{
			InvoiceID:   inv.InvoiceID,
			Number:      inv.Number,
			ContactID:   inv.ContactID,
			DueDate:     inv.DueDate.Format("2006-01-02"),
			Total:       inv.Total,
			DaysOverdue: inv.DaysOverdue,
			Bucket:      string(inv.Bucket),
		})
	}
	for bucket, total := range aged.Totals {
		out.Totals[string(bucket)] = total
	}
	writeJSON(w, http.StatusOK, out)
}

type vatResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	OutputTax decimal.Decimal `json:"outputTax"`
	InputVAT  decimal.Decimal `json:"inputVat"`
	NetDue    decimal.Decimal `json:"netDue"`
}

func (s *Server) reportVAT(w http.ResponseWriter, r *http.Request) {
	var verr model.ValidationError
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" {
		verr.Add("from", "required")
	}
	if toRaw == "" {
		verr.Add("to", "required")
	}
	if err := verr.Err(); err != nil {
		writeError(w, s.log, err)
		return
	}

	from, err := parseDate("from", fromRaw)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	to, err := parseDate("to", toRaw)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	summary, err := s.reports.VAT(r.Context(), from, to)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, vatResponse{
		From:      summary.From.Format("2006-01-02"),
		To:        summary.To.Format("2006-01-02"),
		OutputTax: summary.OutputTax,
		InputVAT:  summary.InputVAT,
		NetDue:    summary.NetDue,
	})
}
