package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
	"github.com/tallybooks/tally/internal/store/sqlite"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Tally workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runInit(ctx context.Context, dir, name string) error {
	cfg := config.Default(name)
	if err := config.Save(filepath.Join(dir, "tally.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database and seed the petty-cash account so funding and
	// expense entries have somewhere to post from day one.
	st, err := sqlite.Open(filepath.Join(dir, cfg.Storage.SQLitePath), events.NewBus())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	if _, err := ensurePettyCashAccount(ctx, st, cfg.PettyCash.AccountName); err != nil {
		return fmt.Errorf("seeding petty-cash account: %w", err)
	}

	fmt.Printf("Initialized Tally workspace at %s\n", dir)
	return nil
}

// ensurePettyCashAccount returns the ID of the cash account with the given
// name, creating it if absent.
func ensurePettyCashAccount(ctx context.Context, st store.Store, name string) (string, error) {
	accounts, err := st.Accounts(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.Kind == model.AccountKindCash && a.Name == name {
			return a.ID, nil
		}
	}

	account := model.Account{
		ID:   id.New(),
		Name: name,
		Kind: model.AccountKindCash,
	}
	if err := st.CreateAccount(ctx, account); err != nil {
		return "", err
	}
	return account.ID, nil
}
