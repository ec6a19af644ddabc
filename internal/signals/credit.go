package signals

import (
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Payments must exceed the summed minimum payments by this factor before the
// user stops counting as minimum-payment-only.
const minPaymentSlack = 1.1

// DetectCredit computes utilization, interest and payment-pattern signals
// across the user's credit accounts. Cards with a non-positive limit are
// excluded from utilization. The minimum-payment-only check is a best-effort
// heuristic over observed payment transactions, not a statement-level fact.
func DetectCredit(txs []domain.Transaction, accounts []domain.Account, liabilities map[string]domain.Liability) domain.CreditSignals {
	var out domain.CreditSignals

	creditIDs := make(map[string]bool)
	var creditAccounts []domain.Account
	for _, acc := range accounts {
		if acc.Type == domain.AccountTypeCredit {
			creditAccounts = append(creditAccounts, acc)
			creditIDs[acc.AccountID] = true
		}
	}
	if len(creditAccounts) == 0 {
		return out
	}

	maxUtilization := 0.0
	totalInterest := 0.0
	totalMinimum := 0.0
	for _, acc := range creditAccounts {
		if acc.BalanceLimit > 0 {
			utilization := acc.BalanceCurrent / acc.BalanceLimit * 100
			if utilization > maxUtilization {
				maxUtilization = utilization
			}
		}
		l, ok := liabilities[acc.AccountID]
		if !ok {
			continue
		}
		if l.IsOverdue {
			out.IsOverdue = true
		}
		if l.APR > 0 && acc.BalanceCurrent > 0 {
			totalInterest += l.APR / 100 * acc.BalanceCurrent / 12
		}
		totalMinimum += l.MinimumPayment
	}

	totalPayments := 0.0
	for _, tx := range txs {
		if creditIDs[tx.AccountID] && tx.Amount > 0 &&
			strings.Contains(strings.ToLower(tx.MerchantName), "payment") {
			totalPayments += tx.Amount
		}
	}

	out.Utilization = maxUtilization
	out.Utilization30Flag = maxUtilization >= 30
	out.Utilization50Flag = maxUtilization >= 50
	out.Utilization80Flag = maxUtilization >= 80
	out.InterestCharges = totalInterest
	out.MinPaymentOnly = !(totalMinimum > 0 && totalPayments > totalMinimum*minPaymentSlack)
	return out
}
