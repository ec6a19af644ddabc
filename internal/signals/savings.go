package signals

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// DetectSavings measures flow into the user's savings and money-market
// accounts over the window. Growth rate is computed against the estimated
// starting balance (current balance minus net inflow) and is skipped for
// windows under 30 days or when the estimate is non-positive.
func DetectSavings(txs []domain.Transaction, accounts []domain.Account, windowDays int) domain.SavingsSignals {
	var out domain.SavingsSignals
	if len(txs) == 0 || windowDays <= 0 {
		return out
	}

	savingsIDs := make(map[string]bool)
	currentSavings := 0.0
	for _, acc := range accounts {
		if acc.IsSavings() {
			savingsIDs[acc.AccountID] = true
			currentSavings += acc.BalanceCurrent
		}
	}

	netInflow := 0.0
	totalExpenses := 0.0
	for _, tx := range txs {
		if savingsIDs[tx.AccountID] {
			netInflow += tx.Amount // withdrawals are already negative
		}
		if tx.Amount < 0 {
			totalExpenses += -tx.Amount
		}
	}

	out.NetSavingsInflow = netInflow / float64(windowDays) * 30

	if currentSavings > 0 && windowDays >= 30 {
		startBalance := currentSavings - netInflow
		if startBalance > 0 {
			out.SavingsGrowthRate = netInflow / startBalance * 100
		}
	}

	monthlyExpenses := totalExpenses / float64(windowDays) * 30
	if monthlyExpenses > 0 {
		out.EmergencyFundMonths = currentSavings / monthlyExpenses
	}
	return out
}
