package signals

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

func payroll(d civil.Date, amount float64) domain.Transaction {
	return domain.Transaction{
		AccountID:      "chk1",
		Date:           d,
		Amount:         amount,
		MerchantName:   "Acme Payroll",
		PaymentChannel: domain.ChannelACH,
	}
}

func checking(balance float64) []domain.Account {
	return []domain.Account{{
		AccountID:      "chk1",
		UserID:         "u1",
		Type:           domain.AccountTypeDepository,
		Subtype:        domain.SubtypeChecking,
		BalanceCurrent: balance,
	}}
}

func TestDetectIncome_Frequency(t *testing.T) {
	tests := []struct {
		name    string
		gapDays int
		want    domain.PayFrequency
	}{
		{name: "monthly", gapDays: 30, want: domain.PayMonthly},
		{name: "semi monthly", gapDays: 15, want: domain.PaySemiMonthly},
		{name: "biweekly boundary", gapDays: 12, want: domain.PayBiweekly},
		{name: "too frequent", gapDays: 7, want: domain.PayUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := date(2025, time.January, 3)
			txs := []domain.Transaction{
				payroll(start, 2000),
				payroll(start.AddDays(tt.gapDays), 2000),
				payroll(start.AddDays(2*tt.gapDays), 2000),
			}
			got := DetectIncome(txs, checking(1000), 180)
			if got.PayrollFrequency != tt.want {
				t.Errorf("PayrollFrequency = %s, want %s (median gap %.0f)",
					got.PayrollFrequency, tt.want, got.MedianPayGapDays)
			}
			if !almostEqual(got.MedianPayGapDays, float64(tt.gapDays), 0.001) {
				t.Errorf("MedianPayGapDays = %.1f, want %d", got.MedianPayGapDays, tt.gapDays)
			}
		})
	}
}

func TestDetectIncome_PayrollHeuristics(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.Transaction
		want bool
	}{
		{
			name: "ach credit",
			tx:   domain.Transaction{Amount: 100, PaymentChannel: domain.ChannelACH},
			want: true,
		},
		{
			name: "merchant mentions payroll",
			tx:   domain.Transaction{Amount: 100, MerchantName: "Gusto Payroll", PaymentChannel: domain.ChannelOnline},
			want: true,
		},
		{
			name: "merchant mentions deposit",
			tx:   domain.Transaction{Amount: 100, MerchantName: "Direct Deposit", PaymentChannel: domain.ChannelOnline},
			want: true,
		},
		{
			name: "large other-channel credit",
			tx:   domain.Transaction{Amount: 750, PaymentChannel: domain.ChannelOther},
			want: true,
		},
		{
			name: "small online credit",
			tx:   domain.Transaction{Amount: 100, MerchantName: "Refund", PaymentChannel: domain.ChannelOnline},
			want: false,
		},
		{
			name: "debit never counts",
			tx:   domain.Transaction{Amount: -2000, PaymentChannel: domain.ChannelACH},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPayrollDeposit(tt.tx); got != tt.want {
				t.Errorf("isPayrollDeposit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectIncome_VariabilityAndMonthlyIncome(t *testing.T) {
	start := date(2025, time.January, 1)
	txs := []domain.Transaction{
		payroll(start, 2000),
		payroll(start.AddDays(15), 2000),
		payroll(start.AddDays(30), 2000),
		payroll(start.AddDays(45), 2000),
	}

	got := DetectIncome(txs, checking(3000), 60)

	if !almostEqual(got.IncomeVariability, 0, 0.001) {
		t.Errorf("IncomeVariability = %.2f, want 0 for constant amounts", got.IncomeVariability)
	}
	// 8000 over 60 days -> 4000/month.
	if !almostEqual(got.MonthlyIncome, 4000, 0.001) {
		t.Errorf("MonthlyIncome = %.2f, want 4000", got.MonthlyIncome)
	}
}

func TestDetectIncome_CashFlowBuffer(t *testing.T) {
	start := date(2025, time.January, 1)
	txs := []domain.Transaction{
		payroll(start, 1000),
		{AccountID: "chk1", Date: start.AddDays(5), Amount: -500},
		{AccountID: "chk1", Date: start.AddDays(20), Amount: -500},
	}

	// 1000 of spend over 30 days -> 1000/month; 2000 checking -> 2 months.
	got := DetectIncome(txs, checking(2000), 30)
	if !almostEqual(got.CashFlowBufferMonths, 2, 0.001) {
		t.Errorf("CashFlowBufferMonths = %.2f, want 2", got.CashFlowBufferMonths)
	}
}

func TestDetectIncome_NoDeposits(t *testing.T) {
	txs := []domain.Transaction{
		{AccountID: "chk1", Date: date(2025, time.June, 1), Amount: -50, PaymentChannel: domain.ChannelInStore},
	}

	got := DetectIncome(txs, checking(1000), 30)
	if got.PayrollFrequency != domain.PayUnknown || got.MonthlyIncome != 0 {
		t.Errorf("Expected unknown frequency and zero income, got %+v", got)
	}
}
