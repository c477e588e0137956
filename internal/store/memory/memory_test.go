package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
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

func newAccount(t *testing.T, s *Store, id, name string) model.Account {
	t.Helper()
	a := model.Account{ID: id, Name: name, Kind: model.AccountKindBank}
	require.NoError(t, s.CreateAccount(context.Background(), a))
	return a
}

func TestPostTransactions_BalanceIsSumOfPostings(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "Current")

	for i, amt := range []string{"100", "-30", "15"} {
		_, err := s.PostTransactions(ctx, []model.Transaction{{
			ID:        "tx-" + string(rune('a'+i)),
			AccountID: "acc-1",
			Amount:    dec(amt),
			Date:      day("2025-01-10"),
		}})
		require.NoError(t, err)
	}

	a, err := s.Account(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("85")), "balance = %s", a.Balance)
}

func TestPostTransactions_MultiLegIsAtomic(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "Current")

	// Second leg targets a missing account; the first must not commit.
	_, err := s.PostTransactions(ctx, []model.Transaction{
		{ID: "tx-1", AccountID: "acc-1", Amount: dec("-500"), Date: day("2025-01-10")},
		{ID: "tx-2", AccountID: "missing", Amount: dec("500"), Date: day("2025-01-10")},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	a, err := s.Account(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero(), "balance = %s", a.Balance)

	txs, err := s.Transactions(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransactions_NewestFirstSeqBreaksTies(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "Current")

	_, err := s.PostTransactions(ctx, []model.Transaction{
		{ID: "older", AccountID: "acc-1", Amount: dec("10"), Date: day("2025-01-01")},
		{ID: "same-day-1", AccountID: "acc-1", Amount: dec("20"), Date: day("2025-01-05")},
		{ID: "same-day-2", AccountID: "acc-1", Amount: dec("30"), Date: day("2025-01-05")},
	})
	require.NoError(t, err)

	txs, err := s.Transactions(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "same-day-2", txs[0].ID)
	assert.Equal(t, "same-day-1", txs[1].ID)
	assert.Equal(t, "older", txs[2].ID)
}

func TestAllTransactions_AccountOrderThenPostingOrder(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "First")
	newAccount(t, s, "acc-2", "Second")

	// Interleave postings across accounts.
	_, err := s.PostTransactions(ctx, []model.Transaction{
		{ID: "b1", AccountID: "acc-2", Amount: dec("1"), Date: day("2025-01-01")},
		{ID: "a1", AccountID: "acc-1", Amount: dec("1"), Date: day("2025-01-02")},
		{ID: "b2", AccountID: "acc-2", Amount: dec("1"), Date: day("2025-01-03")},
		{ID: "a2", AccountID: "acc-1", Amount: dec("1"), Date: day("2025-01-04")},
	})
	require.NoError(t, err)

	txs, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID, txs[3].ID}
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, ids)
}

func TestDeleteAccount_CascadesTransactions(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "Doomed")
	newAccount(t, s, "acc-2", "Kept")

	_, err := s.PostTransactions(ctx, []model.Transaction{
		{ID: "tx-1", AccountID: "acc-1", Amount: dec("10"), Date: day("2025-01-01")},
		{ID: "tx-2", AccountID: "acc-2", Amount: dec("20"), Date: day("2025-01-01")},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, "acc-1"))

	txs, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx-2", txs[0].ID)
}

func TestFinalizePettyCashEntry_OnlyPendingMoves(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "petty", "Petty Cash")

	entry := model.PettyCashEntry{
		ID:     "pc-1",
		Date:   day("2025-02-01"),
		Kind:   model.PettyCashExpense,
		Amount: dec("25"),
		Status: model.PettyCashPending,
	}
	require.NoError(t, s.CreatePettyCashEntry(ctx, entry))

	posted, err := s.FinalizePettyCashEntry(ctx, "pc-1", model.PettyCashApproved, []model.Transaction{
		{ID: "tx-1", AccountID: "petty", Amount: dec("-25"), Date: entry.Date},
	})
	require.NoError(t, err)
	require.Len(t, posted, 1)

	// Second finalize must not post again.
	_, err = s.FinalizePettyCashEntry(ctx, "pc-1", model.PettyCashApproved, []model.Transaction{
		{ID: "tx-2", AccountID: "petty", Amount: dec("-25"), Date: entry.Date},
	})
	require.ErrorIs(t, err, model.ErrInvalidStateTransition)

	a, err := s.Account(ctx, "petty")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("-25")), "balance = %s", a.Balance)
}

func TestFinalizePettyCashEntry_BadAccountLeavesStatusPending(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	entry := model.PettyCashEntry{
		ID:     "pc-1",
		Date:   day("2025-02-01"),
		Kind:   model.PettyCashExpense,
		Amount: dec("25"),
		Status: model.PettyCashPending,
	}
	require.NoError(t, s.CreatePettyCashEntry(ctx, entry))

	_, err := s.FinalizePettyCashEntry(ctx, "pc-1", model.PettyCashApproved, []model.Transaction{
		{ID: "tx-1", AccountID: "missing", Amount: dec("-25"), Date: entry.Date},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.PettyCashEntry(ctx, "pc-1")
	require.NoError(t, err)
	assert.Equal(t, model.PettyCashPending, got.Status)
}

func TestReplaceInvoice_SwapsFullItemSet(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	inv := model.Invoice{
		ID:     "inv-1",
		Number: "INV-2025-0001",
		Status: model.InvoiceDraft,
		Items: []model.LineItem{
			{Description: "old", Quantity: dec("1"), UnitPrice: dec("10"), Total: dec("10")},
		},
	}
	require.NoError(t, s.CreateInvoice(ctx, inv))

	inv.Items = []model.LineItem{
		{Description: "new a", Quantity: dec("2"), UnitPrice: dec("5"), Total: dec("10")},
		{Description: "new b", Quantity: dec("1"), UnitPrice: dec("7"), Total: dec("7")},
	}
	require.NoError(t, s.ReplaceInvoice(ctx, inv))

	got, err := s.Invoice(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "new a", got.Items[0].Description)
	assert.Equal(t, "new b", got.Items[1].Description)
}

func TestRecordInvoicePayment_AtomicStatusAndPosting(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "bank", "Current")

	inv := model.Invoice{
		ID:     "inv-1",
		Number: "INV-2025-0001",
		Status: model.InvoiceSent,
		Total:  dec("240.00"),
	}
	require.NoError(t, s.CreateInvoice(ctx, inv))

	posted, err := s.RecordInvoicePayment(ctx, "inv-1", model.Transaction{
		ID: "tx-1", AccountID: "bank", Amount: dec("240.00"), Date: day("2025-04-20"), InvoiceID: "inv-1",
	})
	require.NoError(t, err)
	assert.NotZero(t, posted.Seq)

	got, err := s.Invoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, got.Status)

	// Paying again must fail without posting.
	_, err = s.RecordInvoicePayment(ctx, "inv-1", model.Transaction{
		ID: "tx-2", AccountID: "bank", Amount: dec("240.00"), Date: day("2025-04-21"), InvoiceID: "inv-1",
	})
	require.ErrorIs(t, err, model.ErrInvalidStateTransition)

	a, err := s.Account(ctx, "bank")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("240.00")), "balance = %s", a.Balance)
}

func TestRecordInvoicePayment_FailedPostingKeepsStatus(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	inv := model.Invoice{
		ID:     "inv-1",
		Number: "INV-2025-0001",
		Status: model.InvoiceSent,
		Total:  dec("240.00"),
	}
	require.NoError(t, s.CreateInvoice(ctx, inv))

	_, err := s.RecordInvoicePayment(ctx, "inv-1", model.Transaction{
		ID: "tx-1", AccountID: "missing", Amount: dec("240.00"), Date: day("2025-04-20"),
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.Invoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceSent, got.Status)
}

func TestInvoice_ReturnedItemsAreDetached(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	inv := model.Invoice{
		ID:     "inv-1",
		Number: "INV-2025-0001",
		Items:  []model.LineItem{{Description: "line", Quantity: dec("1"), UnitPrice: dec("10")}},
	}
	require.NoError(t, s.CreateInvoice(ctx, inv))

	got, err := s.Invoice(ctx, "inv-1")
	require.NoError(t, err)
	got.Items[0].Description = "mutated"

	again, err := s.Invoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "line", again.Items[0].Description)
}

func TestUpdateAccount_NilFieldsUntouched(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	newAccount(t, s, "acc-1", "Original")

	name := "Renamed"
	got, err := s.UpdateAccount(ctx, "acc-1", store.UpdateAccountParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, model.AccountKindBank, got.Kind)
}

func TestLookupsReturnNotFound(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	_, err := s.Account(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Contact(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Invoice(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.PettyCashEntry(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Product(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteQuote(ctx, "nope"), model.ErrNotFound)
	assert.ErrorIs(t, s.DeletePurchase(ctx, "nope"), model.ErrNotFound)
}
