package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/notionsync"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	projectID := flag.String("project", "", "GCP project ID (required)")
	notionToken := flag.String("notion-token", "", "Notion API token (required)")
	assignmentsDBID := flag.String("assignments-db-id", "", "Notion database ID for the assignments board")
	recommendationsDBID := flag.String("recommendations-db-id", "", "Notion database ID for the recommendations board")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	// Validate required flags
	if *projectID == "" {
		log.Fatal().Msg("Error: --project is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *assignmentsDBID == "" && *recommendationsDBID == "" {
		log.Fatal().Msg("Error: at least one of --assignments-db-id or --recommendations-db-id is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := bigquery.NewRepository(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	userIDs, err := repo.ListUserIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list users")
	}

	// Initialize Notion client
	notionClient := notionsync.NewNotionClient(*notionToken)

	if *assignmentsDBID != "" {
		if err := notionsync.SyncAssignments(ctx, repo, notionClient, *assignmentsDBID, userIDs, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Assignment sync failed")
		}
	}

	if *recommendationsDBID != "" {
		if err := notionsync.SyncRecommendations(ctx, repo, notionClient, *recommendationsDBID, userIDs, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Recommendation sync failed")
		}
	}

	fmt.Println("Sync completed successfully.")
}
