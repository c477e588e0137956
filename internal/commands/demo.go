package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
	"github.com/tallybooks/tally/internal/store/memory"
	"github.com/tallybooks/tally/internal/totals"
)

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the API server in-memory with sample data, no auth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(log)

	cfg := config.Default("Demo Trading Ltd")
	cfg.Server.Tokens = nil

	st := memory.New(events.NewBus())
	if err := seedDemoData(context.Background(), st, cfg); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	log.Info("demo mode: in-memory store, data is lost on exit")
	return serve(log, cfg, st)
}

func seedDemoData(ctx context.Context, st store.Store, cfg *config.Config) error {
	bank := model.Account{
		ID:          id.New(),
		Name:        "Business Current",
		Institution: "Starling",
		NumberMask:  "****4821",
		Kind:        model.AccountKindBank,
	}
	if err := st.CreateAccount(ctx, bank); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	opening := model.Transaction{
		ID:          id.New(),
		AccountID:   bank.ID,
		Amount:      decimal.NewFromInt(12500),
		Date:        now.AddDate(0, -2, 0),
		Description: "Opening balance",
	}
	if _, err := st.PostTransactions(ctx, []model.Transaction{opening}); err != nil {
		return err
	}

	customer := model.Contact{
		ID:    id.New(),
		Name:  "Acme Widgets Ltd",
		Email: "accounts@acmewidgets.example",
		Type:  model.ContactCustomer,
	}
	if err := st.CreateContact(ctx, customer); err != nil {
		return err
	}

	if err := st.CreateProduct(ctx, model.Product{
		ID:          id.New(),
		Name:        "Consulting day",
		Description: "On-site consulting, per day",
		UnitPrice:   decimal.NewFromInt(600),
		Kind:        model.ProductService,
	}); err != nil {
		return err
	}

	rate := decimal.NewFromFloat(cfg.Tax.DefaultRatePercent)
	items := []model.LineItem{
		{Description: "Consulting day", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(600)},
	}
	for i := range items {
		items[i].Total = totals.LineTotal(items[i])
	}
	sums := totals.Compute(items, rate)

	invoice := model.Invoice{
		ID:             id.New(),
		Number:         id.FormatNumber(id.PrefixInvoice, now.Year(), 1),
		ContactID:      customer.ID,
		IssueDate:      now.AddDate(0, -1, 0),
		DueDate:        now.AddDate(0, 0, -2),
		Status:         model.InvoiceSent,
		Items:          items,
		TaxRatePercent: rate,
		Subtotal:       sums.Subtotal,
		Tax:            sums.Tax,
		Total:          sums.Total,
	}
	return st.CreateInvoice(ctx, invoice)
}
