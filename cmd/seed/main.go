package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"paysync/internal/config"
	"paysync/internal/seed"
	"paysync/internal/server"
)

func main() {
	cfg := config.Load()

	logger := server.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	report, err := seed.NewSeeder(store, logger).Run(ctx)
	if err != nil {
		slog.Error("Seeding failed", "error", err)
		store.Close()
		os.Exit(1)
	}

	fmt.Println("Final balances:")
	for _, b := range report {
		fmt.Printf("  %-4d %-20s %-24s %s\n", b.UserID, b.Name, b.Email, b.Balance.StringFixed(2))
	}
}
