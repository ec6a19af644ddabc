package personas

import (
	"reflect"
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
)

func TestSelect_NoMatches(t *testing.T) {
	selected, trace := Select(nil, domain.SignalBundle{})

	if selected != domain.PersonaCreditBuilder {
		t.Errorf("selected = %s, want Credit Builder default", selected)
	}
	if trace.Reason != domain.ReasonNoMatches {
		t.Errorf("trace.Reason = %s, want no_matches", trace.Reason)
	}
	if trace.Selected != domain.PersonaCreditBuilder {
		t.Errorf("trace.Selected = %s, want Credit Builder", trace.Selected)
	}
}

func TestSelect_SingleMatch(t *testing.T) {
	matched := []domain.Persona{domain.PersonaSavingsBuilder}

	selected, trace := Select(matched, domain.SignalBundle{})
	if selected != domain.PersonaSavingsBuilder {
		t.Errorf("selected = %s, want Savings Builder", selected)
	}
	if trace.Reason != domain.ReasonSingleMatch {
		t.Errorf("trace.Reason = %s, want single_match", trace.Reason)
	}
}

func TestSelect_PriorityWins(t *testing.T) {
	// Utilization 80% with recurring subscriptions: High Utilization
	// (priority 1) must beat Subscription-Heavy (priority 4).
	matched := []domain.Persona{domain.PersonaHighUtilization, domain.PersonaSubscriptionHeavy}
	bundle := domain.SignalBundle{
		Credit:        domain.CreditSignals{Utilization: 80, Utilization30Flag: true, Utilization50Flag: true, Utilization80Flag: true},
		Subscriptions: domain.SubscriptionSignals{Count: 2, MonthlyRecurringSpend: 30},
	}

	selected, trace := Select(matched, bundle)
	if selected != domain.PersonaHighUtilization {
		t.Errorf("selected = %s, want High Utilization", selected)
	}
	if trace.Reason != domain.ReasonPrioritySelection {
		t.Errorf("trace.Reason = %s, want priority_selection", trace.Reason)
	}
	if trace.HighestPriority != 1 {
		t.Errorf("trace.HighestPriority = %d, want 1", trace.HighestPriority)
	}
	if trace.TieBreaker != domain.TieBreakNone {
		t.Errorf("trace.TieBreaker = %q, want none for a singleton priority group", trace.TieBreaker)
	}
}

// tiedTable puts two personas at the same priority so the strength and
// defined-order tie-breaks are reachable.
func tiedTable(strengthA, strengthB float64) []Rule {
	return []Rule{
		{
			Persona:  domain.PersonaVariableIncome,
			Priority: 2,
			Strength: func(domain.SignalBundle) float64 { return strengthA },
		},
		{
			Persona:  domain.PersonaSubscriptionHeavy,
			Priority: 2,
			Strength: func(domain.SignalBundle) float64 { return strengthB },
		},
	}
}

func TestSelect_StrengthBreaksPriorityTie(t *testing.T) {
	matched := []domain.Persona{domain.PersonaVariableIncome, domain.PersonaSubscriptionHeavy}

	selected, trace := selectFrom(tiedTable(0.4, 1.7), matched, domain.SignalBundle{})
	if selected != domain.PersonaSubscriptionHeavy {
		t.Errorf("selected = %s, want the stronger Subscription-Heavy", selected)
	}
	if trace.TieBreaker != domain.TieBreakSignalStrength {
		t.Errorf("trace.TieBreaker = %s, want signal_strength", trace.TieBreaker)
	}
	if trace.SignalStrengths[domain.PersonaSubscriptionHeavy] != 1.7 {
		t.Errorf("trace.SignalStrengths = %v, want recorded strengths", trace.SignalStrengths)
	}
}

func TestSelect_DefinedOrderBreaksStrengthTie(t *testing.T) {
	matched := []domain.Persona{domain.PersonaSubscriptionHeavy, domain.PersonaVariableIncome}

	// Equal strengths: Variable Income precedes Subscription-Heavy in the
	// fixed order and must win regardless of matched order.
	for i := 0; i < 10; i++ {
		selected, trace := selectFrom(tiedTable(1.0, 1.0), matched, domain.SignalBundle{})
		if selected != domain.PersonaVariableIncome {
			t.Fatalf("run %d: selected = %s, want Variable Income Budgeter", i, selected)
		}
		if trace.TieBreaker != domain.TieBreakDefinedOrder {
			t.Fatalf("run %d: trace.TieBreaker = %s, want defined_order", i, trace.TieBreaker)
		}
	}
}

func TestSelect_SelectedAlwaysInMatchedSet(t *testing.T) {
	bundles := []domain.SignalBundle{
		{},
		{Credit: domain.CreditSignals{Utilization: 80, Utilization80Flag: true, Utilization50Flag: true, Utilization30Flag: true}},
		{Savings: domain.SavingsSignals{SavingsGrowthRate: 10, NetSavingsInflow: 500}},
		{
			Credit:        domain.CreditSignals{InterestCharges: 40},
			Subscriptions: domain.SubscriptionSignals{Count: 6, MonthlyRecurringSpend: 200},
			Income:        domain.IncomeSignals{MedianPayGapDays: 50, CashFlowBufferMonths: 0.2},
		},
	}

	for i, bundle := range bundles {
		matched := Match(bundle)
		selected, trace := Select(matched, bundle)

		if len(matched) == 0 {
			if selected != domain.PersonaCreditBuilder {
				t.Errorf("bundle %d: empty match must default to Credit Builder", i)
			}
			continue
		}
		found := false
		for _, p := range matched {
			if p == selected {
				found = true
			}
		}
		if !found {
			t.Errorf("bundle %d: selected %s not in matched set %v", i, selected, matched)
		}
		if trace.Selected != selected {
			t.Errorf("bundle %d: trace.Selected = %s, result = %s", i, trace.Selected, selected)
		}
	}
}

func TestSelect_TraceReproducible(t *testing.T) {
	bundle := domain.SignalBundle{
		Credit:        domain.CreditSignals{Utilization: 60, Utilization50Flag: true, Utilization30Flag: true, InterestCharges: 25},
		Subscriptions: domain.SubscriptionSignals{Count: 4, MonthlyRecurringSpend: 80},
	}
	matched := Match(bundle)

	_, first := Select(matched, bundle)
	_, second := Select(matched, bundle)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Traces differ across identical calls:\n%+v\n%+v", first, second)
	}
}
