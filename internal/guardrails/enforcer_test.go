package guardrails

import (
	"context"
	"strings"
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

func newTestEnforcer(st *memory.Store) *Enforcer {
	return NewEnforcer(st, logger.NewWithWriter(nil))
}

func candidateSet() []domain.Recommendation {
	return []domain.Recommendation{
		{Type: domain.ContentEducation, Title: "Understanding credit utilization", Rationale: "Paying down balances lowers utilization."},
		{Type: domain.ContentOffer, Title: "Fast Payday Loan", OfferType: domain.OfferCreditCard, Rationale: "Quick cash."},
		{Type: domain.ContentOffer, Title: "High-Yield Savings Account", OfferType: domain.OfferSavingsAccount, Rationale: "Earn more on your balance."},
	}
}

func TestEnforce_NoConsentReturnsEmpty(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: false})
	e := newTestEnforcer(st)

	got, err := e.Enforce(context.Background(), "u1", candidateSet(), domain.SignalBundle{})
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if got == nil {
		t.Fatal("Enforce returned nil, want an empty slice")
	}
	if len(got) != 0 {
		t.Errorf("Enforce returned %d items without consent, want 0", len(got))
	}
}

func TestEnforce_UnknownUserFailsClosed(t *testing.T) {
	e := newTestEnforcer(memory.New())

	got, err := e.Enforce(context.Background(), "ghost", candidateSet(), domain.SignalBundle{})
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Enforce returned %d items for an unknown user, want 0", len(got))
	}
}

func TestEnforce_Pipeline(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	e := newTestEnforcer(st)

	got, err := e.Enforce(context.Background(), "u1", candidateSet(), domain.SignalBundle{})
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}

	// The payday loan is filtered; education and the savings offer survive
	// in their original relative order, each with the disclosure attached.
	if len(got) != 2 {
		t.Fatalf("Enforce returned %d items, want 2", len(got))
	}
	if got[0].Title != "Understanding credit utilization" || got[1].Title != "High-Yield Savings Account" {
		t.Errorf("order not preserved: %q, %q", got[0].Title, got[1].Title)
	}
	for _, rec := range got {
		if !strings.Contains(rec.Rationale, DisclosureText) {
			t.Errorf("%q missing disclosure", rec.Title)
		}
		if rec.Disclosure != DisclosureText {
			t.Errorf("%q Disclosure field not set", rec.Title)
		}
	}
}

func TestEnforce_SanitizesToneKeepsTitle(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	e := newTestEnforcer(st)

	recs := []domain.Recommendation{{
		Type:      domain.ContentEducation,
		Title:     "You're overspending guide",
		Rationale: "You're overspending on subscriptions.",
	}}
	got, err := e.Enforce(context.Background(), "u1", recs, domain.SignalBundle{})
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Enforce returned %d items, want 1: tone issues sanitize, never block", len(got))
	}
	if strings.Contains(strings.ToLower(got[0].Rationale), "overspending") {
		t.Errorf("Rationale = %q, want sanitized", got[0].Rationale)
	}
	if !strings.Contains(got[0].Rationale, toneReplacement) {
		t.Errorf("Rationale = %q, want replacement phrase", got[0].Rationale)
	}
	if got[0].Title != "You're overspending guide" {
		t.Errorf("Title = %q, guardrails must never rewrite titles", got[0].Title)
	}
}

func TestEnforce_EducationSkipsEligibility(t *testing.T) {
	st := memory.New()
	st.PutUser(domain.User{UserID: "u1", ConsentStatus: true})
	e := newTestEnforcer(st)

	// Education content mentioning a harmful product by name is not an
	// offer and passes through the eligibility stage untouched.
	recs := []domain.Recommendation{{
		Type:      domain.ContentEducation,
		Title:     "Why payday loan cycles are hard to escape",
		Rationale: "High fees compound quickly.",
	}}
	got, err := e.Enforce(context.Background(), "u1", recs, domain.SignalBundle{})
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Enforce returned %d items, want 1", len(got))
	}
}
