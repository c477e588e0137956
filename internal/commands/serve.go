package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/api"
	"github.com/tallybooks/tally/internal/config"
	"github.com/tallybooks/tally/internal/documents"
	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/ledger"
	"github.com/tallybooks/tally/internal/pettycash"
	"github.com/tallybooks/tally/internal/reports"
	"github.com/tallybooks/tally/internal/statement"
	"github.com/tallybooks/tally/internal/store"
	"github.com/tallybooks/tally/internal/store/sqlite"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "tally.yaml", "path to config file")

	return cmd
}

func runServe(configPath string) error {
	// Local overrides from .env, if present.
	_ = godotenv.Load()

	if p := os.Getenv("TALLY_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if dbPath := os.Getenv("TALLY_DB"); dbPath != "" {
		cfg.Storage.SQLitePath = dbPath
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	bus := events.NewBus()
	st, err := sqlite.Open(cfg.Storage.SQLitePath, bus)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("closing store", "error", err)
		}
	}()
	log.Info("database opened", "path", cfg.Storage.SQLitePath)

	return serve(log, cfg, st)
}

// serve wires the services and runs the HTTP server until interrupted. It is
// shared by the serve and demo commands.
func serve(log *slog.Logger, cfg *config.Config, st store.Store) error {
	ctx := context.Background()

	pettyAccountID, err := ensurePettyCashAccount(ctx, st, cfg.PettyCash.AccountName)
	if err != nil {
		return fmt.Errorf("resolving petty-cash account: %w", err)
	}

	ledgerSvc := ledger.NewService(st)
	pettySvc := pettycash.NewService(st, pettyAccountID)
	docsSvc := documents.NewService(st, decimal.NewFromFloat(cfg.Tax.DefaultRatePercent))
	stmtSvc := statement.NewService(st)
	reportsSvc := reports.NewService(st)

	server := api.New(api.Config{
		Log:        log,
		Store:      st,
		Ledger:     ledgerSvc,
		PettyCash:  pettySvc,
		Documents:  docsSvc,
		Statements: stmtSvc,
		Reports:    reportsSvc,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router(cfg.Server.Tokens),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.Server.Addr, "business", cfg.Business.Name)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("stopped")
	return nil
}
