package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/pettycash"
	"github.com/tallybooks/tally/internal/reports"
	"github.com/tallybooks/tally/internal/statement"
	"github.com/tallybooks/tally/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testAPI struct {
	handler http.Handler
	store   *memory.Store
}

func newTestAPI(t *testing.T, tokens []string) testAPI {
	t.Helper()
	ctx := context.Background()
	st := memory.New(nil)

	require.NoError(t, st.CreateAccount(ctx, model.Account{
		ID: "petty", Name: "Petty Cash", Kind: model.AccountKindCash,
	}))

	ledgerSvc := ledger.NewService(st)
	server := New(Config{
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:      st,
		Ledger:     ledgerSvc,
		PettyCash:  pettycash.NewService(st, "petty"),
		Documents:  documents.NewService(st, dec("20")),
		Statements: statement.NewService(st),
		Reports:    reports.NewService(st),
	})
	return testAPI{handler: server.Router(tokens), store: st}
}

func (a testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestBearerAuth(t *testing.T) {
	a := newTestAPI(t, []string{"secret-token"})

	rec := a.do(t, http.MethodGet, "/api/bank-accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/bank-accounts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/bank-accounts", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth_EmptyTokenSetDisablesCheck(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/api/bank-accounts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountLifecycle(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/bank-accounts", map[string]any{
		"name":        "Current",
		"institution": "Starling",
		"numberMask":  "****4821",
		"kind":        "bank",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[accountResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Balance.IsZero())

	rec = a.do(t, http.MethodGet, "/api/bank-accounts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPut, "/api/bank-accounts/"+created.ID, map[string]any{
		"name": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[accountResponse](t, rec)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "Starling", updated.Institution)

	rec = a.do(t, http.MethodDelete, "/api/bank-accounts/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/bank-accounts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAccount_InvalidKind(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/bank-accounts", map[string]any{
		"name": "Weird",
		"kind": "crypto",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", body.Error)
}

func TestPostTransactionAndList(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/bank-accounts", map[string]any{"name": "Current", "kind": "bank"})
	require.Equal(t, http.StatusCreated, rec.Code)
	acc := decodeBody[accountResponse](t, rec)

	for _, amt := range []string{"100", "-30", "15"} {
		rec = a.do(t, http.MethodPost, "/api/bank-accounts/"+acc.ID+"/transactions", map[string]any{
			"date":        "2025-01-10",
			"description": "movement",
			"amount":      amt,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = a.do(t, http.MethodGet, "/api/bank-accounts/"+acc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[accountResponse](t, rec)
	assert.True(t, got.Balance.Equal(dec("85")), "balance = %s", got.Balance)

	rec = a.do(t, http.MethodGet, "/api/bank-accounts/"+acc.ID+"/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decodeBody[[]transactionResponse](t, rec)
	assert.Len(t, txs, 3)
}

func TestTransfer(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/bank-accounts", map[string]any{"name": "Current", "kind": "bank"})
	from := decodeBody[accountResponse](t, rec)
	rec = a.do(t, http.MethodPost, "/api/bank-accounts", map[string]any{"name": "Savings", "kind": "bank"})
	to := decodeBody[accountResponse](t, rec)

	rec = a.do(t, http.MethodPost, "/api/bank-accounts/transfer", map[string]any{
		"fromAccountId": from.ID,
		"toAccountId":   to.ID,
		"amount":        "200",
		"date":          "2025-02-01",
		"description":   "float",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody[transferResponse](t, rec)
	assert.True(t, body.Outflow.Amount.Equal(dec("-200")))
	assert.True(t, body.Inflow.Amount.Equal(dec("200")))
	assert.Equal(t, "Transfer out: float", body.Outflow.Description)
}

func TestPettyCashApproveFlow(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/petty-cash", map[string]any{
		"date":        "2025-03-02",
		"description": "Stamps",
		"kind":        "expense",
		"amount":      "12.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeBody[pettyCashResponse](t, rec)
	assert.Equal(t, "pending", entry.Status)

	rec = a.do(t, http.MethodPost, "/api/petty-cash/"+entry.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decodeBody[approvePettyCashResponse](t, rec)
	assert.Equal(t, "approved", approved.Entry.Status)
	require.Len(t, approved.Transactions, 1)
	assert.True(t, approved.Transactions[0].Amount.Equal(dec("-12.50")))

	// Second approval conflicts.
	rec = a.do(t, http.MethodPost, "/api/petty-cash/"+entry.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPettyCashReject(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/petty-cash", map[string]any{
		"date":   "2025-03-02",
		"kind":   "expense",
		"amount": "5",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := decodeBody[pettyCashResponse](t, rec)

	rec = a.do(t, http.MethodPost, "/api/petty-cash/"+entry.ID+"/reject", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rejected := decodeBody[pettyCashResponse](t, rec)
	assert.Equal(t, "rejected", rejected.Status)
}

func TestInvoicePaymentFlow(t *testing.T) {
	a := newTestAPI(t, nil)
	ctx := context.Background()

	require.NoError(t, a.store.CreateContact(ctx, model.Contact{
		ID: "con-1", Name: "Acme Ltd", Type: model.ContactCustomer,
	}))
	require.NoError(t, a.store.CreateAccount(ctx, model.Account{
		ID: "bank", Name: "Current", Kind: model.AccountKindBank,
	}))

	rec := a.do(t, http.MethodPost, "/api/invoices", map[string]any{
		"contactId": "con-1",
		"issueDate": "2025-04-01",
		"dueDate":   "2025-04-30",
		"items": []map[string]any{
			{"description": "Design", "quantity": "2", "unitPrice": "100.00"},
			{"description": "Hosting", "quantity": "1", "unitPrice": "250.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decodeBody[invoiceResponse](t, rec)
	assert.Equal(t, "draft", inv.Status)
	assert.True(t, inv.Subtotal.Equal(dec("450.00")))
	assert.True(t, inv.Total.Equal(dec("540.00")), "total = %s", inv.Total)

	rec = a.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/send", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/payments", map[string]any{
		"accountId": "bank",
		"date":      "2025-04-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decodeBody[transactionResponse](t, rec)
	assert.True(t, tx.Amount.Equal(dec("540.00")))
	assert.Equal(t, inv.ID, tx.InvoiceID)

	rec = a.do(t, http.MethodGet, "/api/invoices/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decodeBody[invoiceResponse](t, rec)
	assert.Equal(t, "paid", paid.Status)

	// Statement for the contact balances to zero.
	rec = a.do(t, http.MethodGet, "/api/contacts/con-1/statement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stmt := decodeBody[statementResponse](t, rec)
	require.Len(t, stmt.Entries, 2)
	assert.True(t, stmt.Balance.IsZero(), "balance = %s", stmt.Balance)
}

func TestInvoiceMissingContactIs404(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/invoices", map[string]any{
		"contactId": "nope",
		"issueDate": "2025-04-01",
		"dueDate":   "2025-04-30",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactStatement_MissingContact(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/api/contacts/missing-id/statement", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportBalances(t *testing.T) {
	a := newTestAPI(t, nil)
	ctx := context.Background()
	require.NoError(t, a.store.CreateAccount(ctx, model.Account{
		ID: "bank", Name: "Current", Kind: model.AccountKindBank,
	}))
	_, err := a.store.PostTransactions(ctx, []model.Transaction{
		{ID: "t1", AccountID: "bank", Amount: dec("1000")},
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodGet, "/api/reports/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[balancesResponse](t, rec)
	assert.True(t, body.Total.Equal(dec("1000")))
}

func TestReportVAT_RequiresRange(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/api/reports/vat", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/reports/vat?from=2025-04-01&to=2025-06-30", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedJSONIs400(t *testing.T) {
	a := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/bank-accounts", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductsCRUD(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/products-services", map[string]any{
		"name":      "Consulting day",
		"unitPrice": "600",
		"kind":      "service",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[productResponse](t, rec)

	rec = a.do(t, http.MethodPut, "/api/products-services/"+created.ID, map[string]any{
		"unitPrice": "650",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[productResponse](t, rec)
	assert.True(t, updated.UnitPrice.Equal(dec("650")))
	assert.Equal(t, "service", updated.Kind)

	rec = a.do(t, http.MethodDelete, "/api/products-services/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestQuoteStatusTransitions(t *testing.T) {
	a := newTestAPI(t, nil)
	require.NoError(t, a.store.CreateContact(context.Background(), model.Contact{
		ID: "con-1", Name: "Acme Ltd", Type: model.ContactCustomer,
	}))

	rec := a.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"contactId":  "con-1",
		"issueDate":  "2025-04-01",
		"expiryDate": "2025-05-01",
		"items": []map[string]any{
			{"description": "Design", "quantity": "1", "unitPrice": "100.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decodeBody[quoteResponse](t, rec)

	// Draft cannot jump straight to accepted.
	rec = a.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/status", map[string]any{"status": "accepted"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/status", map[string]any{"status": "sent"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/status", map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)
}
