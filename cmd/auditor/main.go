package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"lendbook/internal/config"
	"lendbook/internal/repository"
	"lendbook/internal/service"
	"lendbook/pkg/logging"
)

// The auditor periodically recomputes every member's due amount from
// principal, rate and collected total, and repairs any stored value that
// drifted from the formula.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)
	slog.Info("starting balance auditor")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	memberRepo := repository.NewMemberRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	ledgerService := service.NewLedgerService(memberRepo, txRepo, nil)

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc(cfg.Auditor.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		repaired, err := ledgerService.AuditBalances(ctx)
		if err != nil {
			slog.Error("balance audit failed", "error", err)
			return
		}
		slog.Info("balance audit finished", "repaired", repaired)
	})
	if err != nil {
		slog.Error("failed to schedule audit job", "error", err)
		os.Exit(1)
	}

	c.Start()
	slog.Info("auditor started", "schedule", cfg.Auditor.Schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down auditor")
	<-c.Stop().Done()
	slog.Info("auditor stopped")
}
