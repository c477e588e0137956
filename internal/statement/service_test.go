package statement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	svc *Service
	st  *memory.Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New(nil)
	require.NoError(t, st.CreateAccount(ctx, model.Account{
		ID: "bank", Name: "Current", Kind: model.AccountKindBank,
	}))
	require.NoError(t, st.CreateContact(ctx, model.Contact{
		ID: "con-1", Name: "Acme Ltd", Type: model.ContactCustomer,
	}))
	return fixture{svc: NewService(st), st: st}
}

func (f fixture) addInvoice(t *testing.T, id, number, issue string, total string) {
	t.Helper()
	require.NoError(t, f.st.CreateInvoice(context.Background(), model.Invoice{
		ID:        id,
		Number:    number,
		ContactID: "con-1",
		IssueDate: day(issue),
		DueDate:   day(issue).AddDate(0, 1, 0),
		Status:    model.InvoiceSent,
		Total:     dec(total),
	}))
}

func (f fixture) post(t *testing.T, tx model.Transaction) {
	t.Helper()
	tx.AccountID = "bank"
	_, err := f.st.PostTransactions(context.Background(), []model.Transaction{tx})
	require.NoError(t, err)
}

func TestBuild_InvoiceAndMatchedPaymentBalanceToZero(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-01", "5500")
	f.post(t, model.Transaction{
		ID:          "tx-1",
		Date:        day("2025-04-20"),
		Description: "BACS payment Invoice #INV-001",
		Amount:      dec("5500"),
	})

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 2)
	assert.Equal(t, EntryInvoice, stmt.Entries[0].Type)
	assert.Equal(t, "Invoice #INV-001", stmt.Entries[0].Details)
	assert.True(t, stmt.Entries[0].Amount.Equal(dec("5500")))
	assert.Equal(t, EntryPayment, stmt.Entries[1].Type)
	assert.True(t, stmt.Entries[1].Amount.Equal(dec("-5500")))
	assert.True(t, stmt.Balance.IsZero(), "balance = %s", stmt.Balance)
}

func TestBuild_UnpaidInvoiceLeavesBalanceOwed(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-01", "5500")

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 1)
	assert.True(t, stmt.Balance.Equal(dec("5500")))
}

func TestBuild_MissingContact(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Build(context.Background(), "missing-id")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBuild_DirectReferenceBeatsDescriptionMatch(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-01", "100")

	// The description-only candidate posts first, but the directly
	// referenced transaction wins.
	f.post(t, model.Transaction{
		ID:          "by-desc",
		Date:        day("2025-04-10"),
		Description: "payment Invoice #INV-001",
		Amount:      dec("100"),
	})
	f.post(t, model.Transaction{
		ID:        "by-ref",
		Date:      day("2025-04-15"),
		Amount:    dec("100"),
		InvoiceID: "inv-1",
	})

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 2)
	payment := stmt.Entries[1]
	assert.Equal(t, EntryPayment, payment.Type)
	assert.True(t, payment.Date.Equal(day("2025-04-15")), "matched wrong transaction")
}

func TestBuild_NegativeAmountsNeverMatch(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-01", "100")
	f.post(t, model.Transaction{
		ID:          "refund",
		Date:        day("2025-04-10"),
		Description: "refund Invoice #INV-001",
		Amount:      dec("-100"),
	})

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 1)
	assert.True(t, stmt.Balance.Equal(dec("100")))
}

func TestBuild_OnePaymentSettlesOneInvoice(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-01", "100")
	f.addInvoice(t, "inv-2", "INV-001", "2025-05-01", "100")

	// Both invoices carry the same number; the single matching payment must
	// settle only the first.
	f.post(t, model.Transaction{
		ID:          "tx-1",
		Date:        day("2025-05-10"),
		Description: "payment Invoice #INV-001",
		Amount:      dec("100"),
	})

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 3)
	assert.True(t, stmt.Balance.Equal(dec("100")), "balance = %s", stmt.Balance)
}

func TestBuild_EntriesSortedByDatePaymentAfterInvoiceOnTies(t *testing.T) {
	f := setup(t)
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-05", "100")
	f.addInvoice(t, "inv-2", "INV-002", "2025-04-01", "200")

	// Payment dated the same day as the invoice it settles.
	f.post(t, model.Transaction{
		ID:        "tx-1",
		Date:      day("2025-04-05"),
		Amount:    dec("100"),
		InvoiceID: "inv-1",
	})

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 3)
	assert.True(t, stmt.Entries[0].Date.Equal(day("2025-04-01")))
	assert.Equal(t, EntryInvoice, stmt.Entries[1].Type)
	assert.Equal(t, EntryPayment, stmt.Entries[2].Type)
	assert.True(t, stmt.Balance.Equal(dec("200")))
}

func TestBuild_OtherContactsInvoicesExcluded(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.st.CreateContact(ctx, model.Contact{
		ID: "con-2", Name: "Bravo Ltd", Type: model.ContactCustomer,
	}))
	require.NoError(t, f.st.CreateInvoice(ctx, model.Invoice{
		ID:        "inv-other",
		Number:    "INV-900",
		ContactID: "con-2",
		IssueDate: day("2025-04-01"),
		Status:    model.InvoiceSent,
		Total:     dec("999"),
	}))
	f.addInvoice(t, "inv-1", "INV-001", "2025-04-02", "100")

	stmt, err := f.svc.Build(ctx, "con-1")
	require.NoError(t, err)

	require.Len(t, stmt.Entries, 1)
	assert.Equal(t, "Invoice #INV-001", stmt.Entries[0].Details)
}

func TestBuild_NoInvoicesEmptyStatement(t *testing.T) {
	f := setup(t)

	stmt, err := f.svc.Build(context.Background(), "con-1")
	require.NoError(t, err)

	assert.Empty(t, stmt.Entries)
	assert.True(t, stmt.Balance.IsZero())
	assert.Equal(t, "Acme Ltd", stmt.Contact.Name)
}
