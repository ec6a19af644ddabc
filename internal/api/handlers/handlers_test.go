package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/guardrails"
	"github.com/dvloznov/spendsense/internal/jobs/inmemory"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/personas"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

func newSignalsController(st *memory.Store) *signals.Controller {
	log := logger.NewWithWriter(nil)
	agg := signals.NewAggregator(st, signals.NewPartitioner(st, civil.Date{Year: 2025, Month: 6, Day: 15}), log)
	agg.DisableCache()
	return signals.NewController(agg, log)
}

func TestGetConsent_UnknownUserIs404(t *testing.T) {
	st := memory.New()
	log := logger.NewWithWriter(nil)
	h := NewConsentHandler(guardrails.NewConsentManager(st, st, log), st, log)

	rec := httptest.NewRecorder()
	h.GetConsent(rec, httptest.NewRequest(http.MethodGet, "/api/users/user_404/consent", nil), "user_404")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestConsentRoundTrip(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "user_001"})
	log := logger.NewWithWriter(nil)
	h := NewConsentHandler(guardrails.NewConsentManager(st, st, log), st, log)

	rec := httptest.NewRecorder()
	h.RecordConsent(rec, httptest.NewRequest(http.MethodPost, "/api/users/user_001/consent", nil), "user_001")
	if rec.Code != http.StatusOK {
		t.Fatalf("record status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	h.GetConsent(rec, httptest.NewRequest(http.MethodGet, "/api/users/user_001/consent", nil), "user_001")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		ConsentStatus bool `json:"consent_status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !body.ConsentStatus {
		t.Error("consent_status = false after recording consent")
	}
}

func TestRevokeConsent_DeletesRecommendations(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: true})
	err := st.SaveRecommendations(ctx, []domain.Recommendation{{
		RecommendationID: "rec-1",
		UserID:           "user_001",
		Type:             domain.ContentEducation,
		Title:            "Understanding Credit Utilization",
	}})
	if err != nil {
		t.Fatalf("SaveRecommendations: %v", err)
	}

	log := logger.NewWithWriter(nil)
	h := NewConsentHandler(guardrails.NewConsentManager(st, st, log), st, log)

	rec := httptest.NewRecorder()
	h.RevokeConsent(rec, httptest.NewRequest(http.MethodDelete, "/api/users/user_001/consent", nil), "user_001")
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, want %d", rec.Code, http.StatusOK)
	}

	recs, err := st.RecommendationsByUser(ctx, "user_001")
	if err != nil {
		t.Fatalf("RecommendationsByUser: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("%d recommendations survive revocation, want 0", len(recs))
	}
}

func TestGetSignals_WithoutConsentIs403(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: false})
	log := logger.NewWithWriter(nil)
	h := NewSignalsHandler(newSignalsController(st), guardrails.NewConsentManager(st, st, log), log)

	rec := httptest.NewRecorder()
	h.GetSignals(rec, httptest.NewRequest(http.MethodGet, "/api/users/user_001/signals", nil), "user_001")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestGetCurrentPersona_UnassignedIs404(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: true})
	log := logger.NewWithWriter(nil)

	assigner := personas.NewAssigner(newSignalsController(st), st, log)
	h := NewPersonasHandler(assigner, guardrails.NewConsentManager(st, st, log), log)

	rec := httptest.NewRecorder()
	h.GetCurrentPersona(rec, httptest.NewRequest(http.MethodGet, "/api/users/user_001/persona", nil), "user_001")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestEnqueueRefresh_ReturnsAcceptedWithJobID(t *testing.T) {
	log := logger.NewWithWriter(nil)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(10, jobStore)
	defer queue.Close()

	h := NewRecommendationsHandler(nil, queue, log)

	rec := httptest.NewRecorder()
	h.EnqueueRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/users/user_001/refresh?force=true", nil), "user_001")

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var body struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.JobID == "" {
		t.Error("response carries no job_id")
	}
	if body.Status != "pending" {
		t.Errorf("status = %q, want pending", body.Status)
	}

	stored, err := jobStore.GetJob(context.Background(), body.JobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.UserID != "user_001" || !stored.ForceRecompute {
		t.Errorf("stored job = %+v, want user_001 with force_recompute", stored)
	}
}

func TestListJobs_FiltersByUser(t *testing.T) {
	log := logger.NewWithWriter(nil)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(10, jobStore)
	defer queue.Close()

	rh := NewRecommendationsHandler(nil, queue, log)
	for _, userID := range []string{"user_001", "user_002"} {
		rec := httptest.NewRecorder()
		rh.EnqueueRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/refresh", nil), userID)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("enqueue for %s: status %d", userID, rec.Code)
		}
	}

	h := NewJobsHandler(jobStore, log)
	rec := httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?user_id=user_001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}
