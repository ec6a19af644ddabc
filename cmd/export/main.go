package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/export"
	"github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	projectID := flag.String("project", "", "GCP project ID (required)")
	bucket := flag.String("bucket", "", "GCS bucket for report uploads (required)")
	verify := flag.Bool("verify", false, "Read each report back and report its line count")
	flag.Parse()

	if *projectID == "" {
		log.Fatal().Msg("Error: --project is required")
	}
	if *bucket == "" {
		log.Fatal().Msg("Error: --bucket is required")
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

	userIDs, err := repo.ListUserIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list users")
	}

	exporter := export.NewExporter(repo, repo, export.NewGCSObjectStore(), log)

	assignmentsObject, err := exporter.ExportAssignments(ctx, *bucket, userIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("Assignment export failed")
	}

	recommendationsObject, err := exporter.ExportRecommendations(ctx, *bucket, userIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("Recommendation export failed")
	}

	if *verify {
		for _, object := range []string{assignmentsObject, recommendationsObject} {
			uri := fmt.Sprintf("gs://%s/%s", *bucket, object)
			lines, err := exporter.VerifyReport(ctx, uri)
			if err != nil {
				log.Fatal().Err(err).Str("uri", uri).Msg("Report verification failed")
			}
			log.Info().Str("uri", uri).Int("lines", lines).Msg("Report verified")
		}
	}

	fmt.Println("Export completed successfully.")
}
