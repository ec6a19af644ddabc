// The worker runs a batch refresh: it enqueues one refresh job per user and
// processes them through the recommendation pipeline. With no -user flags it
// sweeps the whole population.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/guardrails"
	infraBQ "github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/jobs/inmemory"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/personas"
	"github.com/dvloznov/spendsense/internal/recommend"
	"github.com/dvloznov/spendsense/internal/signals"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Parse CLI flags
	projectID := flag.String("project", "", "GCP project ID (required)")
	userList := flag.String("users", "", "Comma-separated user IDs to refresh (default: all users)")
	force := flag.Bool("force", false, "Reassign personas even when cached signals are fresh")
	useLLM := flag.Bool("llm", false, "Rewrite rationales with the generative model")
	flag.Parse()

	if *projectID == "" {
		log.Fatal().Msg("Error: --project is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	// Analysis core
	windower := signals.NewPartitioner(repo, civil.DateOf(time.Now()))
	aggregator := signals.NewAggregator(repo, windower, logger.WithComponent(log, "signals"))
	controller := signals.NewController(aggregator, logger.WithComponent(log, "signals"))
	assigner := personas.NewAssigner(controller, repo, logger.WithComponent(log, "personas"))
	enforcer := guardrails.NewEnforcer(repo, logger.WithComponent(log, "guardrails"))

	var rewriter recommend.RationaleRewriter
	if *useLLM {
		rewriter = recommend.NewLLMRationaleWriter(logger.WithComponent(log, "recommend"))
	}
	engine := recommend.NewEngine(assigner, controller, repo, enforcer, rewriter, logger.WithComponent(log, "recommend"))

	// Resolve the user set
	var userIDs []string
	if *userList != "" {
		for _, id := range strings.Split(*userList, ",") {
			if id = strings.TrimSpace(id); id != "" {
				userIDs = append(userIDs, id)
			}
		}
	} else {
		userIDs, err = repo.ListUserIDs(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list users")
		}
	}

	log.Info().Int("user_count", len(userIDs)).Bool("force", *force).Msg("Starting batch refresh")

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(userIDs)+1, jobStore)

	handler := func(ctx context.Context, job jobs.Job) error {
		refreshJob, ok := job.(*jobs.RefreshUserJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		if refreshJob.ForceRecompute {
			if _, err := assigner.AssignPersona(ctx, refreshJob.UserID, true); err != nil {
				return err
			}
		}
		_, err := engine.GenerateAndSave(ctx, refreshJob.UserID)
		return err
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	for _, userID := range userIDs {
		job := &jobs.RefreshUserJob{UserID: userID, ForceRecompute: *force}
		if err := jobQueue.PublishRefreshUser(ctx, job); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to enqueue refresh job")
		}
	}

	// Poll until every job reaches a terminal state.
	for {
		pending, err := countUnfinished(ctx, jobStore)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to poll job store")
		}
		if pending == 0 {
			break
		}
		select {
		case <-ctx.Done():
			log.Fatal().Int("unfinished", pending).Msg("Timed out waiting for refresh jobs")
		case <-time.After(500 * time.Millisecond):
		}
	}

	if err := jobQueue.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	failed, _ := jobStore.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	for _, job := range failed {
		log.Warn().Str("user_id", job.UserID).Str("error", job.Error).Msg("Refresh failed for user")
	}

	log.Info().
		Int("total", len(userIDs)).
		Int("failed", len(failed)).
		Msg("Batch refresh completed")
	fmt.Println("Batch refresh completed.")
}

func countUnfinished(ctx context.Context, jobStore jobs.JobStore) (int, error) {
	count := 0
	for _, status := range []jobs.JobStatus{jobs.JobStatusPending, jobs.JobStatusRunning, jobs.JobStatusRetrying} {
		list, err := jobStore.ListJobs(ctx, jobs.JobFilter{Status: status})
		if err != nil {
			return 0, err
		}
		count += len(list)
	}
	return count, nil
}
