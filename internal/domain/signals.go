package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// WindowType identifies a rolling analysis window.
type WindowType string

const (
	Window30d  WindowType = "30d"
	Window180d WindowType = "180d"
)

// Days returns the window length in days, or 0 for an unknown window type.
func (w WindowType) Days() int {
	switch w {
	case Window30d:
		return 30
	case Window180d:
		return 180
	}
	return 0
}

// Valid reports whether w is one of the supported window types.
func (w WindowType) Valid() bool {
	return w == Window30d || w == Window180d
}

// Window is a trailing date range, inclusive on both ends. It never includes
// the reference day itself: data for "today" is considered in-flight.
type Window struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !w.End.Before(d)
}

// SubscriptionSignals are the subscription detector outputs.
type SubscriptionSignals struct {
	Count                 int      `json:"subscriptions_count"`
	RecurringMerchants    []string `json:"recurring_merchants"`
	MonthlyRecurringSpend float64  `json:"monthly_recurring_spend"`
	RecurringSpendShare   float64  `json:"recurring_spend_share"`
}

// SavingsSignals are the savings detector outputs. NetSavingsInflow is the
// extrapolated monthly inflow rate, not the raw in-window sum.
type SavingsSignals struct {
	NetSavingsInflow    float64 `json:"net_savings_inflow"`
	SavingsGrowthRate   float64 `json:"savings_growth_rate"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
}

// CreditSignals are the credit detector outputs. Utilization is the maximum
// across the user's cards, as a percentage.
type CreditSignals struct {
	Utilization       float64 `json:"credit_utilization"`
	Utilization30Flag bool    `json:"utilization_30_flag"`
	Utilization50Flag bool    `json:"utilization_50_flag"`
	Utilization80Flag bool    `json:"utilization_80_flag"`
	MinPaymentOnly    bool    `json:"min_payment_only"`
	InterestCharges   float64 `json:"interest_charges"`
	IsOverdue         bool    `json:"is_overdue"`
}

// PayFrequency classifies the cadence of detected payroll deposits.
type PayFrequency string

const (
	PayMonthly     PayFrequency = "monthly"
	PaySemiMonthly PayFrequency = "semi_monthly"
	PayBiweekly    PayFrequency = "biweekly"
	PayUnknown     PayFrequency = "unknown"
)

// IncomeSignals are the income detector outputs.
type IncomeSignals struct {
	PayrollFrequency     PayFrequency `json:"payroll_frequency"`
	MedianPayGapDays     float64      `json:"median_pay_gap_days"`
	IncomeVariability    float64      `json:"income_variability"`
	MonthlyIncome        float64      `json:"monthly_income"`
	CashFlowBufferMonths float64      `json:"cash_flow_buffer_months"`
}

// SignalBundle is the aggregated output of all four detectors for one user
// and one window. Bundles are superseded on recompute, never mutated.
type SignalBundle struct {
	UserID        string              `json:"user_id"`
	WindowType    WindowType          `json:"window_type"`
	ComputedAt    time.Time           `json:"computed_at"`
	Subscriptions SubscriptionSignals `json:"subscriptions"`
	Savings       SavingsSignals      `json:"savings"`
	Credit        CreditSignals       `json:"credit"`
	Income        IncomeSignals       `json:"income"`
}

// AvailabilityTier classifies how much transaction history a user has. It is
// always derived from current data, never stored as authoritative state.
type AvailabilityTier string

const (
	TierNew     AvailabilityTier = "new"      // <7 days
	TierLimited AvailabilityTier = "limited"  // 7-29 days
	TierFull30  AvailabilityTier = "full_30"  // 30-179 days
	TierFull180 AvailabilityTier = "full_180" // >=180 days
)
