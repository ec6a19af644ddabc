package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/api/handlers"
	"github.com/dvloznov/spendsense/internal/api/middleware"
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
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		projectID = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		useLLM    = flag.Bool("llm", false, "Rewrite rationales with the generative model")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("No GCP project configured - set --project or GCP_PROJECT")
	}

	ctx := context.Background()

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

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for processing refresh jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		refreshJob, ok := job.(*jobs.RefreshUserJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", refreshJob.JobID).
			Str("user_id", refreshJob.UserID).
			Bool("force", refreshJob.ForceRecompute).
			Msg("Processing refresh job")

		if refreshJob.ForceRecompute {
			if _, err := assigner.AssignPersona(ctx, refreshJob.UserID, true); err != nil {
				log.Error().
					Err(err).
					Str("job_id", refreshJob.JobID).
					Str("user_id", refreshJob.UserID).
					Msg("Persona reassignment failed")
				return err
			}
		}

		if _, err := engine.GenerateAndSave(ctx, refreshJob.UserID); err != nil {
			log.Error().
				Err(err).
				Str("job_id", refreshJob.JobID).
				Str("user_id", refreshJob.UserID).
				Msg("Recommendation refresh failed")
			return err
		}

		log.Info().
			Str("job_id", refreshJob.JobID).
			Str("user_id", refreshJob.UserID).
			Msg("Refresh job completed successfully")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	consentManager := guardrails.NewConsentManager(repo, repo, logger.WithComponent(log, "guardrails"))
	consentHandler := handlers.NewConsentHandler(consentManager, repo, log)
	signalsHandler := handlers.NewSignalsHandler(controller, consentManager, log)
	personasHandler := handlers.NewPersonasHandler(assigner, consentManager, log)
	recsHandler := handlers.NewRecommendationsHandler(engine, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// User-scoped endpoints: /api/users/{id}/<resource>
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		userID, resource := parts[0], parts[1]

		switch resource {
		case "consent":
			switch r.Method {
			case http.MethodGet:
				consentHandler.GetConsent(w, r, userID)
			case http.MethodPost:
				consentHandler.RecordConsent(w, r, userID)
			case http.MethodDelete:
				consentHandler.RevokeConsent(w, r, userID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "signals":
			if r.Method == http.MethodGet {
				signalsHandler.GetSignals(w, r, userID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "persona":
			switch r.Method {
			case http.MethodGet:
				personasHandler.GetCurrentPersona(w, r, userID)
			case http.MethodPost:
				personasHandler.AssignPersona(w, r, userID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "recommendations":
			switch r.Method {
			case http.MethodGet:
				recsHandler.ListRecommendations(w, r, userID)
			case http.MethodPost:
				recsHandler.GenerateRecommendations(w, r, userID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "refresh":
			if r.Method == http.MethodPost {
				recsHandler.EnqueueRefresh(w, r, userID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
