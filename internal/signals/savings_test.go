package signals

import (
	"testing"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
)

func savingsAccount(id string, balance float64) domain.Account {
	return domain.Account{
		AccountID:      id,
		UserID:         "u1",
		Type:           domain.AccountTypeDepository,
		Subtype:        domain.SubtypeSavings,
		BalanceCurrent: balance,
	}
}

func TestDetectSavings_GrowthRate(t *testing.T) {
	// Current balance 1100 with 100 net inflow: starting balance 1000,
	// growth 10% over the window.
	accounts := []domain.Account{savingsAccount("sav1", 1100)}
	txs := []domain.Transaction{
		{AccountID: "sav1", Date: date(2025, time.June, 1), Amount: 150},
		{AccountID: "sav1", Date: date(2025, time.June, 10), Amount: -50},
	}

	got := DetectSavings(txs, accounts, 30)

	if !almostEqual(got.SavingsGrowthRate, 10, 0.001) {
		t.Errorf("SavingsGrowthRate = %.2f, want 10", got.SavingsGrowthRate)
	}
	if !almostEqual(got.NetSavingsInflow, 100, 0.001) {
		t.Errorf("NetSavingsInflow = %.2f, want 100 (net 100 over 30 days)", got.NetSavingsInflow)
	}
}

func TestDetectSavings_GrowthSkippedForShortWindow(t *testing.T) {
	accounts := []domain.Account{savingsAccount("sav1", 1100)}
	txs := []domain.Transaction{
		{AccountID: "sav1", Date: date(2025, time.June, 1), Amount: 100},
	}

	got := DetectSavings(txs, accounts, 14)
	if got.SavingsGrowthRate != 0 {
		t.Errorf("SavingsGrowthRate = %.2f, want 0 for window under 30 days", got.SavingsGrowthRate)
	}
}

func TestDetectSavings_GrowthSkippedForNonPositiveStart(t *testing.T) {
	// Net inflow exceeds current balance: estimated start <= 0.
	accounts := []domain.Account{savingsAccount("sav1", 500)}
	txs := []domain.Transaction{
		{AccountID: "sav1", Date: date(2025, time.June, 1), Amount: 600},
	}

	got := DetectSavings(txs, accounts, 30)
	if got.SavingsGrowthRate != 0 {
		t.Errorf("SavingsGrowthRate = %.2f, want 0 for non-positive starting balance", got.SavingsGrowthRate)
	}
}

func TestDetectSavings_EmergencyFund(t *testing.T) {
	accounts := []domain.Account{
		savingsAccount("sav1", 6000),
		{AccountID: "chk1", UserID: "u1", Type: domain.AccountTypeDepository, Subtype: domain.SubtypeChecking, BalanceCurrent: 800},
	}
	// 2000 of spend over 30 days -> 2000/month expenses -> 3 months coverage.
	txs := []domain.Transaction{
		{AccountID: "chk1", Date: date(2025, time.June, 1), Amount: -1200},
		{AccountID: "chk1", Date: date(2025, time.June, 12), Amount: -800},
	}

	got := DetectSavings(txs, accounts, 30)
	if !almostEqual(got.EmergencyFundMonths, 3, 0.001) {
		t.Errorf("EmergencyFundMonths = %.2f, want 3", got.EmergencyFundMonths)
	}
}

func TestDetectSavings_NoSavingsAccounts(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "chk1", UserID: "u1", Type: domain.AccountTypeDepository, Subtype: domain.SubtypeChecking, BalanceCurrent: 500},
	}
	txs := []domain.Transaction{
		{AccountID: "chk1", Date: date(2025, time.June, 1), Amount: -100},
	}

	got := DetectSavings(txs, accounts, 30)
	if got.NetSavingsInflow != 0 || got.SavingsGrowthRate != 0 || got.EmergencyFundMonths != 0 {
		t.Errorf("Expected zero-valued signals without savings accounts, got %+v", got)
	}
}

func TestDetectSavings_Empty(t *testing.T) {
	got := DetectSavings(nil, nil, 30)
	if got != (domain.SavingsSignals{}) {
		t.Errorf("Expected zero value for no transactions, got %+v", got)
	}
}
