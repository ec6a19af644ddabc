package signals

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

const (
	// A merchant needs at least this many debits to count as recurring.
	minRecurringCount = 3
	// All of a recurring merchant's debits must fall within this many days.
	recurringSpanDays = 90
)

type merchantDebit struct {
	date   civil.Date
	amount float64 // absolute value
}

// DetectSubscriptions finds recurring merchants in a window's transactions.
// A merchant is recurring when it has at least three debits whose first-to-
// last span is 90 days or less. Spend figures are extrapolated to monthly
// rates; the recurring share is relative to the window's average daily total
// spend and capped at 100%.
func DetectSubscriptions(txs []domain.Transaction, windowDays int) domain.SubscriptionSignals {
	out := domain.SubscriptionSignals{RecurringMerchants: []string{}}
	if len(txs) == 0 || windowDays <= 0 {
		return out
	}

	byMerchant := make(map[string][]merchantDebit)
	totalSpend := 0.0
	for _, tx := range txs {
		if tx.Amount >= 0 {
			continue
		}
		totalSpend += -tx.Amount
		if tx.MerchantName == "" {
			continue
		}
		byMerchant[tx.MerchantName] = append(byMerchant[tx.MerchantName], merchantDebit{
			date:   tx.Date,
			amount: -tx.Amount,
		})
	}

	recurringMonthly := 0.0
	for merchant, debits := range byMerchant {
		if len(debits) < minRecurringCount {
			continue
		}
		sort.Slice(debits, func(i, j int) bool { return debits[i].date.Before(debits[j].date) })
		first, last := debits[0].date, debits[len(debits)-1].date
		if last.DaysSince(first) > recurringSpanDays {
			continue
		}

		merchantTotal := 0.0
		for _, d := range debits {
			merchantTotal += d.amount
		}
		spanDays := last.DaysSince(first) + 1
		recurringMonthly += merchantTotal / float64(spanDays) * 30

		out.RecurringMerchants = append(out.RecurringMerchants, merchant)
	}
	sort.Strings(out.RecurringMerchants)

	out.Count = len(out.RecurringMerchants)
	out.MonthlyRecurringSpend = recurringMonthly

	if totalSpend > 0 {
		monthlyTotal := totalSpend / float64(windowDays) * 30
		share := recurringMonthly / monthlyTotal * 100
		if share > 100 {
			share = 100
		}
		out.RecurringSpendShare = share
	}
	return out
}
