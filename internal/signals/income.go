package signals

import (
	"math"
	"sort"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Deposits at or above this amount on an ACH/other channel count as payroll
// even without a payroll-looking merchant name.
const largeDepositThreshold = 500

type payrollDeposit struct {
	date   civil.Date
	amount float64
}

// isPayrollDeposit is a best-effort heuristic: ACH credits, merchant names
// containing "payroll" or "deposit", and large ACH/other-channel credits all
// count. Imprecise on real data; do not strengthen without product guidance.
func isPayrollDeposit(tx domain.Transaction) bool {
	if tx.Amount <= 0 {
		return false
	}
	if tx.PaymentChannel == domain.ChannelACH {
		return true
	}
	merchant := strings.ToLower(tx.MerchantName)
	if strings.Contains(merchant, "payroll") || strings.Contains(merchant, "deposit") {
		return true
	}
	return tx.Amount >= largeDepositThreshold &&
		(tx.PaymentChannel == domain.ChannelACH || tx.PaymentChannel == domain.ChannelOther)
}

// DetectIncome analyzes payroll deposit cadence, variability and the user's
// cash-flow buffer over the window.
func DetectIncome(txs []domain.Transaction, accounts []domain.Account, windowDays int) domain.IncomeSignals {
	out := domain.IncomeSignals{PayrollFrequency: domain.PayUnknown}
	if len(txs) == 0 || windowDays <= 0 {
		return out
	}

	var deposits []payrollDeposit
	for _, tx := range txs {
		if isPayrollDeposit(tx) {
			deposits = append(deposits, payrollDeposit{date: tx.Date, amount: tx.Amount})
		}
	}
	if len(deposits) == 0 {
		return out
	}
	sort.Slice(deposits, func(i, j int) bool { return deposits[i].date.Before(deposits[j].date) })

	gaps := make([]float64, 0, len(deposits)-1)
	amounts := make([]float64, 0, len(deposits))
	totalIncome := 0.0
	for i, d := range deposits {
		if i > 0 {
			gaps = append(gaps, float64(d.date.DaysSince(deposits[i-1].date)))
		}
		amounts = append(amounts, d.amount)
		totalIncome += d.amount
	}

	medianGap := median(gaps)
	out.MedianPayGapDays = medianGap
	switch {
	case medianGap >= 25:
		out.PayrollFrequency = domain.PayMonthly
	case medianGap >= 13:
		out.PayrollFrequency = domain.PaySemiMonthly
	case medianGap >= 12:
		out.PayrollFrequency = domain.PayBiweekly
	}

	if mean := meanOf(amounts); mean > 0 {
		out.IncomeVariability = stddevOf(amounts, mean) / mean * 100
	}

	out.MonthlyIncome = totalIncome / float64(windowDays) * 30

	checkingBalance := 0.0
	for _, acc := range accounts {
		if acc.IsChecking() {
			checkingBalance += acc.BalanceCurrent
		}
	}
	totalExpenses := 0.0
	for _, tx := range txs {
		if tx.Amount < 0 {
			totalExpenses += -tx.Amount
		}
	}
	monthlyExpenses := totalExpenses / float64(windowDays) * 30
	if monthlyExpenses > 0 {
		out.CashFlowBufferMonths = checkingBalance / monthlyExpenses
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddevOf is the population standard deviation.
func stddevOf(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(vals)))
}
