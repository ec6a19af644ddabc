// Package personas classifies users into behavioral archetypes from their
// signal bundles and records how each choice was made.
package personas

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// Rule is one row of the fixed persona table: the archetype, its urgency
// (lower = more urgent), the predicate deciding whether a bundle matches,
// and the strength score used only to break same-priority ties.
type Rule struct {
	Persona  domain.Persona
	Priority int
	Matches  func(b domain.SignalBundle) bool
	Strength func(b domain.SignalBundle) float64
}

// normalize min-max clamps value into [0, 1].
func normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	n := (value - min) / (max - min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// rules is the fixed ordered persona table. Evaluation order, priority and
// the defined tie-break order all follow the slice order.
var rules = []Rule{
	{
		Persona:  domain.PersonaHighUtilization,
		Priority: 1,
		Matches: func(b domain.SignalBundle) bool {
			c := b.Credit
			return c.Utilization >= 50 || c.InterestCharges > 0 || c.MinPaymentOnly || c.IsOverdue
		},
		Strength: func(b domain.SignalBundle) float64 {
			c := b.Credit
			s := normalize(c.Utilization, 0, 100) + normalize(c.InterestCharges, 0, 500)
			if c.IsOverdue {
				s++
			}
			return s
		},
	},
	{
		Persona:  domain.PersonaVariableIncome,
		Priority: 2,
		Matches: func(b domain.SignalBundle) bool {
			return b.Income.MedianPayGapDays > 45 && b.Income.CashFlowBufferMonths < 1
		},
		Strength: func(b domain.SignalBundle) float64 {
			return normalize(b.Income.MedianPayGapDays, 0, 90) +
				(1 - normalize(b.Income.CashFlowBufferMonths, 0, 3))
		},
	},
	{
		Persona:  domain.PersonaCreditBuilder,
		Priority: 3,
		Matches: func(b domain.SignalBundle) bool {
			// The absence of credit-card activity, not its presence.
			c := b.Credit
			active := c.Utilization > 0 ||
				c.Utilization30Flag || c.Utilization50Flag || c.Utilization80Flag ||
				c.InterestCharges > 0
			return !active
		},
		Strength: func(b domain.SignalBundle) float64 {
			return 1 - normalize(b.Credit.Utilization, 0, 100)
		},
	},
	{
		Persona:  domain.PersonaSubscriptionHeavy,
		Priority: 4,
		Matches: func(b domain.SignalBundle) bool {
			s := b.Subscriptions
			return s.Count >= 3 && (s.MonthlyRecurringSpend >= 50 || s.RecurringSpendShare >= 10)
		},
		Strength: func(b domain.SignalBundle) float64 {
			s := b.Subscriptions
			return normalize(float64(s.Count), 0, 10) +
				normalize(s.MonthlyRecurringSpend, 0, 500) +
				normalize(s.RecurringSpendShare, 0, 50)
		},
	},
	{
		Persona:  domain.PersonaSavingsBuilder,
		Priority: 5,
		Matches: func(b domain.SignalBundle) bool {
			positive := b.Savings.SavingsGrowthRate >= 2 || b.Savings.NetSavingsInflow >= 200
			return positive && b.Credit.Utilization < 30
		},
		Strength: func(b domain.SignalBundle) float64 {
			return normalize(b.Savings.SavingsGrowthRate, -10, 20) +
				normalize(b.Savings.NetSavingsInflow, 0, 1000) +
				(1 - normalize(b.Credit.Utilization, 0, 30))
		},
	},
}

// Rules returns the fixed persona table in evaluation order.
func Rules() []Rule {
	return rules
}

// ruleFor returns the table row for a persona, or nil for personas outside
// the table (Welcome).
func ruleFor(p domain.Persona) *Rule {
	for i := range rules {
		if rules[i].Persona == p {
			return &rules[i]
		}
	}
	return nil
}

// PriorityOf returns a persona's fixed priority level, 0 for Welcome.
func PriorityOf(p domain.Persona) int {
	if r := ruleFor(p); r != nil {
		return r.Priority
	}
	return 0
}

// StrengthOf computes a persona's signal strength against a bundle, 0 for
// personas outside the table.
func StrengthOf(p domain.Persona, b domain.SignalBundle) float64 {
	if r := ruleFor(p); r != nil {
		return r.Strength(b)
	}
	return 0
}
