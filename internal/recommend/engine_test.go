package recommend

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/guardrails"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/personas"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func newTestEngine(st *memory.Store, reference civil.Date) *Engine {
	log := logger.NewWithWriter(nil)
	agg := signals.NewAggregator(st, signals.NewPartitioner(st, reference), log)
	agg.DisableCache()
	controller := signals.NewController(agg, log)
	assigner := personas.NewAssigner(controller, st, log)
	enforcer := guardrails.NewEnforcer(st, log)
	return NewEngine(assigner, controller, st, enforcer, nil, log)
}

func seedConsentingUser(st *memory.Store, reference civil.Date, ageDays int) {
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	st.PutAccount(domain.Account{
		AccountID: "chk1", UserID: "u1",
		Type: domain.AccountTypeDepository, Subtype: domain.SubtypeChecking,
		BalanceCurrent: 2000,
	})
	st.PutTransactions([]domain.Transaction{
		{TransactionID: "t-old", AccountID: "chk1", Date: reference.AddDays(-ageDays), Amount: -30, MerchantName: "Grocer"},
		{TransactionID: "t-new", AccountID: "chk1", Date: reference.AddDays(-1), Amount: -30, MerchantName: "Grocer"},
	})
}

func TestGenerateAndSave(t *testing.T) {
	reference := date(2025, time.June, 15)
	st := memory.New()
	seedConsentingUser(st, reference, 200)
	e := newTestEngine(st, reference)
	ctx := context.Background()

	got, err := e.GenerateAndSave(ctx, "u1")
	if err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("GenerateAndSave returned no recommendations")
	}

	education := 0
	for _, rec := range got {
		if rec.Type == domain.ContentEducation {
			education++
		}
		if rec.UserID != "u1" {
			t.Errorf("recommendation %q has user %q", rec.Title, rec.UserID)
		}
		if rec.RecommendationID == "" {
			t.Errorf("recommendation %q has no ID", rec.Title)
		}
		if !strings.Contains(rec.Rationale, guardrails.DisclosureText) {
			t.Errorf("recommendation %q missing disclosure", rec.Title)
		}
	}
	if education != DefaultEducationCount {
		t.Errorf("%d education items, want %d", education, DefaultEducationCount)
	}

	stored, err := e.Recommendations(ctx, "u1")
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(stored) != len(got) {
		t.Errorf("stored %d recommendations, returned %d", len(stored), len(got))
	}
}

func TestGenerateAndSave_AssignsPersonaWhenMissing(t *testing.T) {
	reference := date(2025, time.June, 15)
	st := memory.New()
	seedConsentingUser(st, reference, 200)
	e := newTestEngine(st, reference)
	ctx := context.Background()

	if _, ok, _ := st.CurrentAssignment(ctx, "u1"); ok {
		t.Fatal("user already has an assignment before the test")
	}
	if _, err := e.GenerateAndSave(ctx, "u1"); err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}
	if _, ok, _ := st.CurrentAssignment(ctx, "u1"); !ok {
		t.Error("GenerateAndSave did not assign a persona")
	}
}

func TestGenerateAndSave_NoConsentStoresNothing(t *testing.T) {
	reference := date(2025, time.June, 15)
	st := memory.New()
	seedConsentingUser(st, reference, 200)
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: false})
	e := newTestEngine(st, reference)
	ctx := context.Background()

	got, err := e.GenerateAndSave(ctx, "u1")
	if err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GenerateAndSave returned %d items without consent", len(got))
	}
	stored, _ := st.RecommendationsByUser(ctx, "u1")
	if len(stored) != 0 {
		t.Errorf("%d recommendations stored without consent", len(stored))
	}
}

func TestGenerateAndSave_WelcomeUserGetsStarterContent(t *testing.T) {
	reference := date(2025, time.June, 15)
	st := memory.New()
	seedConsentingUser(st, reference, 3)
	e := newTestEngine(st, reference)

	got, err := e.GenerateAndSave(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GenerateAndSave: %v", err)
	}
	for _, rec := range got {
		if rec.Persona != domain.PersonaWelcome {
			t.Errorf("recommendation %q tagged %s, want Welcome", rec.Title, rec.Persona)
		}
	}
	found := false
	for _, rec := range got {
		if rec.Title == "Getting Started with Financial Planning" {
			found = true
		}
	}
	if !found {
		t.Error("Welcome starter content missing from recommendations")
	}
}
