package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/ingest"
	"github.com/dvloznov/spendsense/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	projectID := flag.String("project", "", "GCP project ID (required)")
	numUsers := flag.Int("users", 50, "Number of synthetic users to generate")
	seed := flag.Int64("seed", 42, "RNG seed - same seed yields the same dataset")
	historyDays := flag.Int("history-days", 180, "Days of transaction history per user")
	consentRate := flag.Float64("consent-rate", 0.9, "Fraction of users generated with active consent")
	dryRun := flag.Bool("dry-run", false, "Generate and report counts without loading")
	flag.Parse()

	if *projectID == "" && !*dryRun {
		log.Fatal().Msg("Error: --project is required unless --dry-run is set")
	}

	cfg := ingest.DefaultConfig(civil.DateOf(time.Now()))
	cfg.NumUsers = *numUsers
	cfg.Seed = *seed
	cfg.HistoryDays = *historyDays
	cfg.ConsentRate = *consentRate

	log.Info().
		Int("users", cfg.NumUsers).
		Int64("seed", cfg.Seed).
		Int("history_days", cfg.HistoryDays).
		Bool("dry_run", *dryRun).
		Msg("Generating synthetic dataset")

	ds := ingest.NewGenerator(cfg, log).Generate()

	log.Info().
		Int("users", len(ds.Users)).
		Int("accounts", len(ds.Accounts)).
		Int("transactions", len(ds.Transactions)).
		Int("liabilities", len(ds.Liabilities)).
		Msg("Dataset generated")

	if *dryRun {
		fmt.Println("Dry run - nothing loaded.")
		return
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bigquery.NewRepository(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	if err := ingest.Load(ctx, repo, ds); err != nil {
		log.Fatal().Err(err).Msg("Load failed")
	}

	fmt.Println("Seed completed successfully.")
}
