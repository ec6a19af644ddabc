package personas

import (
	"reflect"
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
)

// quietBundle has no credit activity, so only Credit Builder matches.
func quietBundle() domain.SignalBundle {
	return domain.SignalBundle{UserID: "u1", WindowType: domain.Window30d}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		bundle domain.SignalBundle
		want   []domain.Persona
	}{
		{
			name:   "no credit activity matches credit builder",
			bundle: quietBundle(),
			want:   []domain.Persona{domain.PersonaCreditBuilder},
		},
		{
			name: "high utilization",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{
					Utilization:       80,
					Utilization30Flag: true,
					Utilization50Flag: true,
					Utilization80Flag: true,
				},
			},
			want: []domain.Persona{domain.PersonaHighUtilization},
		},
		{
			name: "interest charges alone trigger high utilization",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{Utilization: 10, Utilization30Flag: false, InterestCharges: 12.5},
			},
			want: []domain.Persona{domain.PersonaHighUtilization},
		},
		{
			name: "overdue alone triggers high utilization",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{IsOverdue: true},
			},
			// Zero utilization and no interest also satisfies Credit Builder.
			want: []domain.Persona{domain.PersonaHighUtilization, domain.PersonaCreditBuilder},
		},
		{
			name: "variable income",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{Utilization: 5, InterestCharges: 1},
				Income: domain.IncomeSignals{MedianPayGapDays: 60, CashFlowBufferMonths: 0.5},
			},
			want: []domain.Persona{domain.PersonaHighUtilization, domain.PersonaVariableIncome},
		},
		{
			name: "subscription heavy by spend",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{Utilization: 40, Utilization30Flag: true, InterestCharges: 5},
				Subscriptions: domain.SubscriptionSignals{
					Count:                 4,
					MonthlyRecurringSpend: 75,
				},
			},
			want: []domain.Persona{domain.PersonaHighUtilization, domain.PersonaSubscriptionHeavy},
		},
		{
			name: "subscription heavy by share",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{Utilization: 40, Utilization30Flag: true, InterestCharges: 5},
				Subscriptions: domain.SubscriptionSignals{
					Count:                 3,
					MonthlyRecurringSpend: 20,
					RecurringSpendShare:   15,
				},
			},
			want: []domain.Persona{domain.PersonaHighUtilization, domain.PersonaSubscriptionHeavy},
		},
		{
			name: "two recurring merchants is not subscription heavy",
			bundle: domain.SignalBundle{
				Credit: domain.CreditSignals{InterestCharges: 5, Utilization: 10},
				Subscriptions: domain.SubscriptionSignals{
					Count:                 2,
					MonthlyRecurringSpend: 100,
				},
			},
			want: []domain.Persona{domain.PersonaHighUtilization},
		},
		{
			name: "savings builder",
			bundle: domain.SignalBundle{
				Credit:  domain.CreditSignals{Utilization: 10, Utilization30Flag: false, InterestCharges: 2},
				Savings: domain.SavingsSignals{SavingsGrowthRate: 5, NetSavingsInflow: 300},
			},
			want: []domain.Persona{domain.PersonaHighUtilization, domain.PersonaSavingsBuilder},
		},
		{
			name: "savings positive but utilization too high",
			bundle: domain.SignalBundle{
				Credit:  domain.CreditSignals{Utilization: 45, Utilization30Flag: true, InterestCharges: 3},
				Savings: domain.SavingsSignals{SavingsGrowthRate: 5, NetSavingsInflow: 300},
			},
			want: []domain.Persona{domain.PersonaHighUtilization},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.bundle)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_Pure(t *testing.T) {
	bundle := domain.SignalBundle{
		Credit:        domain.CreditSignals{Utilization: 80, Utilization50Flag: true, Utilization80Flag: true, Utilization30Flag: true},
		Subscriptions: domain.SubscriptionSignals{Count: 5, MonthlyRecurringSpend: 120},
	}

	first := Match(bundle)
	second := Match(bundle)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Match is not pure: %v vs %v", first, second)
	}
}
