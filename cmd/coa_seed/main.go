// Package main seeds a tenant's chart of accounts from a YAML file or the
// built-in school chart. Accounts that already exist are left alone.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/school_ledger/internal/core/services"
	"github.com/SscSPs/school_ledger/internal/platform/config"
	"github.com/SscSPs/school_ledger/internal/platform/storage"
	"github.com/SscSPs/school_ledger/internal/utils/chart"
)

func main() {
	var (
		tenantID  string
		userID    string
		chartPath string
	)
	flag.StringVar(&tenantID, "tenant", "", "tenant id to seed (required)")
	flag.StringVar(&userID, "user", "system", "user id recorded as creator")
	flag.StringVar(&chartPath, "chart", "", "path to a chart YAML file (default: built-in chart)")
	flag.Parse()

	if tenantID == "" {
		fmt.Fprintln(os.Stderr, "Error: -tenant is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(tenantID, userID, chartPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tenantID, userID, chartPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := loadChart(chartPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	repos, closeDB, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	svc := services.NewContainer(repos)
	res, err := chart.Apply(ctx, svc.Account, tenantID, userID, c)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded tenant %s: %d created, %d already present\n", tenantID, len(res.Created), len(res.Existing))
	for _, code := range res.Created {
		fmt.Printf("  + %s\n", code)
	}
	return nil
}

func loadChart(path string) (*chart.Chart, error) {
	if path == "" {
		return chart.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chart file: %w", err)
	}
	defer f.Close()
	return chart.Load(f)
}
