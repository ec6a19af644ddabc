// Package handlers implements the HTTP API: consent management, signal
// queries with graceful degradation, persona assignment, and recommendation
// generation. Every user-scoped read is gated on active consent.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/api/middleware"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/guardrails"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/personas"
	"github.com/dvloznov/spendsense/internal/recommend"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/store"
)

// ConsentHandler handles consent endpoints.
type ConsentHandler struct {
	consent *guardrails.ConsentManager
	users   store.ConsentStore
	log     zerolog.Logger
}

// NewConsentHandler creates a new consent handler.
func NewConsentHandler(consent *guardrails.ConsentManager, users store.ConsentStore, log zerolog.Logger) *ConsentHandler {
	return &ConsentHandler{
		consent: consent,
		users:   users,
		log:     log,
	}
}

// GetConsent handles GET /api/users/{id}/consent
func (h *ConsentHandler) GetConsent(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	u, ok, err := h.users.User(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":           u.UserID,
		"consent_status":    u.ConsentStatus,
		"consent_timestamp": u.ConsentTimestamp,
	})
}

// RecordConsent handles POST /api/users/{id}/consent
func (h *ConsentHandler) RecordConsent(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if err := h.consent.Record(ctx, userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to record consent")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record consent")
		return
	}

	h.log.Info().Str("user_id", userID).Msg("Consent recorded")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        userID,
		"consent_status": true,
	})
}

// RevokeConsent handles DELETE /api/users/{id}/consent.
// Stored recommendations for the user are deleted in the same call.
func (h *ConsentHandler) RevokeConsent(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if err := h.consent.Revoke(ctx, userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to revoke consent")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to revoke consent")
		return
	}

	h.log.Info().Str("user_id", userID).Msg("Consent revoked, recommendations deleted")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        userID,
		"consent_status": false,
	})
}

// SignalsHandler handles signal endpoints.
type SignalsHandler struct {
	controller *signals.Controller
	consent    *guardrails.ConsentManager
	log        zerolog.Logger
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(controller *signals.Controller, consent *guardrails.ConsentManager, log zerolog.Logger) *SignalsHandler {
	return &SignalsHandler{
		controller: controller,
		consent:    consent,
		log:        log,
	}
}

// GetSignals handles GET /api/users/{id}/signals
// Returns the best-available signal set with the data availability tier and,
// for users with limited history, a disclaimer.
func (h *SignalsHandler) GetSignals(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if !requireConsent(w, h.consent.Require(ctx, userID), h.log, userID) {
		return
	}

	degraded, err := h.controller.SignalsWithDegradation(ctx, userID, false)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute signals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute signals")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, degraded)
}

// PersonasHandler handles persona endpoints.
type PersonasHandler struct {
	assigner *personas.Assigner
	consent  *guardrails.ConsentManager
	log      zerolog.Logger
}

// NewPersonasHandler creates a new personas handler.
func NewPersonasHandler(assigner *personas.Assigner, consent *guardrails.ConsentManager, log zerolog.Logger) *PersonasHandler {
	return &PersonasHandler{
		assigner: assigner,
		consent:  consent,
		log:      log,
	}
}

// AssignPersona handles POST /api/users/{id}/persona
// Runs classification and appends a new assignment with its decision trace.
// With ?force=true the signal cache is bypassed.
func (h *PersonasHandler) AssignPersona(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if !requireConsent(w, h.consent.Require(ctx, userID), h.log, userID) {
		return
	}

	force := r.URL.Query().Get("force") == "true"

	assignment, err := h.assigner.AssignPersona(ctx, userID, force)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to assign persona")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to assign persona")
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Str("persona", string(assignment.Persona)).
		Str("assignment_id", assignment.AssignmentID).
		Msg("Persona assigned")
	middleware.WriteJSON(w, http.StatusOK, assignment)
}

// GetCurrentPersona handles GET /api/users/{id}/persona
func (h *PersonasHandler) GetCurrentPersona(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if !requireConsent(w, h.consent.Require(ctx, userID), h.log, userID) {
		return
	}

	assignment, ok, err := h.assigner.CurrentAssignment(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load current assignment")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load current assignment")
		return
	}
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "User has no persona assignment")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, assignment)
}

// RecommendationsHandler handles recommendation endpoints.
type RecommendationsHandler struct {
	engine    *recommend.Engine
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(engine *recommend.Engine, publisher jobs.Publisher, log zerolog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{
		engine:    engine,
		publisher: publisher,
		log:       log,
	}
}

// ListRecommendations handles GET /api/users/{id}/recommendations
func (h *RecommendationsHandler) ListRecommendations(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	recs, err := h.engine.Recommendations(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list recommendations")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list recommendations")
		return
	}

	if recs == nil {
		recs = []domain.Recommendation{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// GenerateRecommendations handles POST /api/users/{id}/recommendations
// Runs the full pipeline synchronously: signals, persona, candidate content,
// guardrails, persistence. Returns the approved set, which is empty for
// users without consent.
func (h *RecommendationsHandler) GenerateRecommendations(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	recs, err := h.engine.GenerateAndSave(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate recommendations")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate recommendations")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// EnqueueRefresh handles POST /api/users/{id}/refresh
// Publishes an asynchronous refresh job for the user.
func (h *RecommendationsHandler) EnqueueRefresh(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	force := r.URL.Query().Get("force") == "true"

	job := &jobs.RefreshUserJob{
		UserID:         userID,
		ForceRecompute: force,
	}
	if err := h.publisher.PublishRefreshUser(ctx, job); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to enqueue refresh job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue refresh job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("user_id", userID).Msg("Refresh job enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"user_id": userID,
		"status":  string(job.Status),
	})
}

// JobsHandler handles job endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// requireConsent translates a consent check error into an HTTP response.
// Returns true when the request may proceed.
func requireConsent(w http.ResponseWriter, err error, log zerolog.Logger, userID string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, domain.ErrConsentRequired) {
		middleware.WriteError(w, http.StatusForbidden, "User consent required")
		return false
	}
	log.Error().Err(err).Str("user_id", userID).Msg("Consent check failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Consent check failed")
	return false
}
