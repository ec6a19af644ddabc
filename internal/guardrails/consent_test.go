package guardrails

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

func newTestConsent(st *memory.Store) *ConsentManager {
	return NewConsentManager(st, st, logger.NewWithWriter(nil))
}

func TestConsent_Check(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "opted-in", ConsentStatus: true})
	st.PutUser(domain.User{UserID: "opted-out", ConsentStatus: false})
	m := newTestConsent(st)

	tests := []struct {
		userID string
		want   bool
	}{
		{"opted-in", true},
		{"opted-out", false},
		{"unknown", false},
	}
	for _, tt := range tests {
		got, err := m.Check(context.Background(), tt.userID)
		if err != nil {
			t.Fatalf("Check(%s): %v", tt.userID, err)
		}
		if got != tt.want {
			t.Errorf("Check(%s) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestConsent_RecordAndRevoke(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1"})
	m := newTestConsent(st)
	ctx := context.Background()

	if err := m.Record(ctx, "u1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ok, _ := m.Check(ctx, "u1"); !ok {
		t.Error("Check = false after Record")
	}

	if err := m.Revoke(ctx, "u1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ok, _ := m.Check(ctx, "u1"); ok {
		t.Error("Check = true after Revoke")
	}
}

func TestConsent_RevokeDeletesRecommendations(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	m := newTestConsent(st)
	ctx := context.Background()

	err := st.SaveRecommendations(ctx, []domain.Recommendation{
		{RecommendationID: "r1", UserID: "u1", Type: domain.ContentEducation, Title: "Budgeting basics", GeneratedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("SaveRecommendations: %v", err)
	}

	if err := m.Revoke(ctx, "u1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	recs, err := st.RecommendationsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("RecommendationsByUser: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("%d recommendations survive revocation, want 0", len(recs))
	}
}

func TestConsent_Require(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	st.PutUser(domain.User{UserID: "u2", ConsentStatus: false})
	m := newTestConsent(st)
	ctx := context.Background()

	if err := m.Require(ctx, "u1"); err != nil {
		t.Errorf("Require(u1) = %v, want nil", err)
	}
	if err := m.Require(ctx, "u2"); !errors.Is(err, domain.ErrConsentRequired) {
		t.Errorf("Require(u2) = %v, want ErrConsentRequired", err)
	}
	if err := m.Require(ctx, "unknown"); !errors.Is(err, domain.ErrConsentRequired) {
		t.Errorf("Require(unknown) = %v, want ErrConsentRequired", err)
	}
}
