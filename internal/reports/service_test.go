package reports

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

func TestBalances(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	svc := NewService(st)

	require.NoError(t, st.CreateAccount(ctx, model.Account{ID: "bank", Name: "Current", Kind: model.AccountKindBank}))
	require.NoError(t, st.CreateAccount(ctx, model.Account{ID: "petty", Name: "Petty Cash", Kind: model.AccountKindCash}))
	_, err := st.PostTransactions(ctx, []model.Transaction{
		{ID: "t1", AccountID: "bank", Amount: dec("1000"), Date: day("2025-01-01")},
		{ID: "t2", AccountID: "petty", Amount: dec("-40"), Date: day("2025-01-02")},
	})
	require.NoError(t, err)

	b, err := svc.Balances(ctx)
	require.NoError(t, err)

	require.Len(t, b.Lines, 2)
	assert.Equal(t, "Current", b.Lines[0].Name)
	assert.True(t, b.Lines[0].Balance.Equal(dec("1000")))
	assert.True(t, b.Lines[1].Balance.Equal(dec("-40")))
	assert.True(t, b.Total.Equal(dec("960")), "total = %s", b.Total)
}

func sentInvoice(id, number, due string, total string) model.Invoice {
	return model.Invoice{
		ID:        id,
		Number:    number,
		ContactID: "con-1",
		IssueDate: day(due).AddDate(0, -1, 0),
		DueDate:   day(due),
		Status:    model.InvoiceSent,
		Total:     dec(total),
	}
}

func TestAgedReceivables_Buckets(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	svc := NewService(st)
	require.NoError(t, st.CreateContact(ctx, model.Contact{ID: "con-1", Name: "Acme", Type: model.ContactCustomer}))

	asOf := day("2025-06-30")
	require.NoError(t, st.CreateInvoice(ctx, sentInvoice("current", "INV-2025-0001", "2025-06-20", "100"))) // 10 days
	require.NoError(t, st.CreateInvoice(ctx, sentInvoice("mid", "INV-2025-0002", "2025-05-15", "200")))     // 46 days
	require.NoError(t, st.CreateInvoice(ctx, sentInvoice("old", "INV-2025-0003", "2025-04-10", "300")))     // 81 days
	require.NoError(t, st.CreateInvoice(ctx, sentInvoice("ancient", "INV-2025-0004", "2025-01-01", "400"))) // 180 days
	require.NoError(t, st.CreateInvoice(ctx, sentInvoice("future", "INV-2025-0005", "2025-07-31", "500")))  // not yet due

	draft := sentInvoice("draft", "INV-2025-0006", "2025-01-01", "999")
	draft.Status = model.InvoiceDraft
	require.NoError(t, st.CreateInvoice(ctx, draft))
	paid := sentInvoice("paid", "INV-2025-0007", "2025-01-01", "999")
	paid.Status = model.InvoicePaid
	require.NoError(t, st.CreateInvoice(ctx, paid))

	aged, err := svc.AgedReceivables(ctx, asOf)
	require.NoError(t, err)

	require.Len(t, aged.Invoices, 5)
	assert.True(t, aged.Totals[BucketCurrent].Equal(dec("600")), "0-30 = %s", aged.Totals[BucketCurrent])
	assert.True(t, aged.Totals[Bucket31to60].Equal(dec("200")))
	assert.True(t, aged.Totals[Bucket61to90].Equal(dec("300")))
	assert.True(t, aged.Totals[BucketOver90].Equal(dec("400")))
	assert.True(t, aged.Total.Equal(dec("1500")))

	for _, inv := range aged.Invoices {
		if inv.InvoiceID == "future" {
			assert.Zero(t, inv.DaysOverdue)
			assert.Equal(t, BucketCurrent, inv.Bucket)
		}
	}
}

func TestVAT_NetsOutputAgainstInput(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	svc := NewService(st)
	require.NoError(t, st.CreateContact(ctx, model.Contact{ID: "con-1", Name: "Acme", Type: model.ContactCustomer}))

	inRangeInv := sentInvoice("in-range", "INV-2025-0001", "2025-05-01", "120")
	inRangeInv.IssueDate = day("2025-04-10")
	inRangeInv.Tax = dec("20")
	require.NoError(t, st.CreateInvoice(ctx, inRangeInv))

	outOfRange := sentInvoice("out-of-range", "INV-2025-0002", "2025-08-01", "120")
	outOfRange.IssueDate = day("2025-07-10")
	outOfRange.Tax = dec("20")
	require.NoError(t, st.CreateInvoice(ctx, outOfRange))

	draft := sentInvoice("draft", "INV-2025-0003", "2025-05-01", "120")
	draft.IssueDate = day("2025-04-15")
	draft.Tax = dec("20")
	draft.Status = model.InvoiceDraft
	require.NoError(t, st.CreateInvoice(ctx, draft))

	require.NoError(t, st.CreatePurchase(ctx, model.Purchase{
		ID:        "pur-1",
		Number:    "PUR-2025-0001",
		ContactID: "con-1",
		Date:      day("2025-04-20"),
		Subtotal:  dec("40"),
		VAT:       dec("8"),
		Total:     dec("48"),
	}))

	summary, err := svc.VAT(ctx, day("2025-04-01"), day("2025-06-30"))
	require.NoError(t, err)

	assert.True(t, summary.OutputTax.Equal(dec("20")), "output = %s", summary.OutputTax)
	assert.True(t, summary.InputVAT.Equal(dec("8")))
	assert.True(t, summary.NetDue.Equal(dec("12")))
}

func TestVAT_ReclaimableWhenInputExceedsOutput(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	svc := NewService(st)
	require.NoError(t, st.CreateContact(ctx, model.Contact{ID: "ven-1", Name: "Supplies Co", Type: model.ContactVendor}))

	require.NoError(t, st.CreatePurchase(ctx, model.Purchase{
		ID:        "pur-1",
		Number:    "PUR-2025-0001",
		ContactID: "ven-1",
		Date:      day("2025-04-20"),
		Subtotal:  dec("500"),
		VAT:       dec("100"),
		Total:     dec("600"),
	}))

	summary, err := svc.VAT(ctx, day("2025-04-01"), day("2025-06-30"))
	require.NoError(t, err)

	assert.True(t, summary.NetDue.Equal(dec("-100")), "net = %s", summary.NetDue)
}
