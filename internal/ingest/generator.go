// Package ingest generates deterministic synthetic banking data shaped to
// exercise every persona: payroll deposits, recurring subscriptions, credit
// card activity and savings transfers over a configurable history.
package ingest

import (
	"fmt"
	"math/rand"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Config controls dataset generation. The same Config always produces the
// same dataset.
type Config struct {
	NumUsers    int
	Seed        int64
	HistoryDays int
	Today       civil.Date
	ConsentRate float64
}

// DefaultConfig returns the standard generation parameters.
func DefaultConfig(today civil.Date) Config {
	return Config{
		NumUsers:    50,
		Seed:        42,
		HistoryDays: 180,
		Today:       today,
		ConsentRate: 0.9,
	}
}

// Dataset is one generated batch ready for loading into a store.
type Dataset struct {
	Users        []domain.User
	Accounts     []domain.Account
	Transactions []domain.Transaction
	Liabilities  []domain.Liability
}

// Annual income quartiles.
var incomeQuartiles = [][2]float64{
	{20000, 40000},
	{40000, 65000},
	{65000, 100000},
	{100000, 200000},
}

var payFrequencies = []domain.PayFrequency{
	domain.PayMonthly,
	domain.PaySemiMonthly,
	domain.PayBiweekly,
}

type subscriptionMerchant struct {
	name   string
	amount float64
}

var subscriptionMerchants = []subscriptionMerchant{
	{"Netflix", 14.99},
	{"Spotify", 9.99},
	{"Amazon Prime", 14.99},
	{"Disney+", 10.99},
	{"Hulu", 12.99},
	{"Apple Music", 9.99},
	{"Gym Membership", 50.00},
	{"Streaming Service", 15.99},
	{"Software Subscription", 29.99},
	{"Newspaper", 9.99},
	{"Insurance Premium", 150.00},
}

var spendMerchants = []struct {
	name     string
	category string
	min, max float64
}{
	{"Grocery Store", "Food and Drink", 20, 150},
	{"Coffee Shop", "Food and Drink", 3, 12},
	{"Restaurant", "Food and Drink", 15, 80},
	{"Gas Station", "Transportation", 25, 60},
	{"Online Retail", "Shops", 10, 120},
	{"Pharmacy", "Healthcare", 5, 45},
	{"Utility Company", "Bills", 40, 180},
}

// Generator produces synthetic datasets.
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	txSeq int
	log   zerolog.Logger
}

// NewGenerator creates a generator with its own seeded source.
func NewGenerator(cfg Config, log zerolog.Logger) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		log: log,
	}
}

// Generate builds the full dataset.
func (g *Generator) Generate() Dataset {
	var ds Dataset
	start := g.cfg.Today.AddDays(-g.cfg.HistoryDays)
	end := g.cfg.Today.AddDays(-1)

	for i := 0; i < g.cfg.NumUsers; i++ {
		userID := fmt.Sprintf("user_%03d", i+1)
		user := domain.User{UserID: userID}
		if g.rng.Float64() < g.cfg.ConsentRate {
			user.ConsentStatus = true
			user.ConsentTimestamp = start.String() + "T00:00:00Z"
		}
		ds.Users = append(ds.Users, user)

		accounts := g.generateAccounts(userID)
		ds.Accounts = append(ds.Accounts, accounts...)

		for _, a := range accounts {
			switch a.Type {
			case domain.AccountTypeDepository:
				if a.IsChecking() {
					ds.Transactions = append(ds.Transactions, g.generateCheckingActivity(a, start, end)...)
				} else if a.IsSavings() {
					ds.Transactions = append(ds.Transactions, g.generateSavingsTransfers(a, start, end)...)
				}
			case domain.AccountTypeCredit:
				txs, liab := g.generateCreditActivity(a, start, end)
				ds.Transactions = append(ds.Transactions, txs...)
				ds.Liabilities = append(ds.Liabilities, liab)
			}
		}
	}

	g.log.Info().
		Int("users", len(ds.Users)).
		Int("accounts", len(ds.Accounts)).
		Int("transactions", len(ds.Transactions)).
		Int("liabilities", len(ds.Liabilities)).
		Msg("Synthetic dataset generated")
	return ds
}

func (g *Generator) generateAccounts(userID string) []domain.Account {
	quartile := incomeQuartiles[g.rng.Intn(len(incomeQuartiles))]
	monthlyIncome := g.uniform(quartile[0], quartile[1]) / 12

	accounts := []domain.Account{{
		AccountID:      userID + "_checking",
		UserID:         userID,
		Type:           domain.AccountTypeDepository,
		Subtype:        domain.SubtypeChecking,
		BalanceCurrent: g.uniform(500, monthlyIncome*2),
		CurrencyCode:   "USD",
	}}
	accounts[0].BalanceAvailable = accounts[0].BalanceCurrent

	if g.rng.Float64() < 0.8 {
		balance := g.uniform(1000, monthlyIncome*6)
		accounts = append(accounts, domain.Account{
			AccountID: userID + "_savings", UserID: userID,
			Type: domain.AccountTypeDepository, Subtype: domain.SubtypeSavings,
			BalanceAvailable: balance, BalanceCurrent: balance, CurrencyCode: "USD",
		})
	}
	if g.rng.Float64() < 0.6 {
		limit := g.uniform(monthlyIncome*2, monthlyIncome*10)
		balance := g.uniform(0, limit*g.uniform(0.1, 0.8))
		accounts = append(accounts, domain.Account{
			AccountID: userID + "_credit", UserID: userID,
			Type: domain.AccountTypeCredit, Subtype: domain.SubtypeCreditCard,
			BalanceAvailable: limit - balance, BalanceCurrent: balance,
			BalanceLimit: limit, CurrencyCode: "USD",
		})
	}
	if g.rng.Float64() < 0.2 {
		balance := g.uniform(5000, monthlyIncome*12)
		accounts = append(accounts, domain.Account{
			AccountID: userID + "_money_market", UserID: userID,
			Type: domain.AccountTypeDepository, Subtype: domain.SubtypeMoneyMarket,
			BalanceAvailable: balance, BalanceCurrent: balance, CurrencyCode: "USD",
		})
	}
	if g.rng.Float64() < 0.15 {
		balance := g.uniform(1000, monthlyIncome*3)
		accounts = append(accounts, domain.Account{
			AccountID: userID + "_hsa", UserID: userID,
			Type: domain.AccountTypeDepository, Subtype: domain.SubtypeHSA,
			BalanceAvailable: balance, BalanceCurrent: balance, CurrencyCode: "USD",
		})
	}
	return accounts
}

// generateCheckingActivity produces payroll deposits, subscription charges
// and discretionary spending on a checking account.
func (g *Generator) generateCheckingActivity(a domain.Account, start, end civil.Date) []domain.Transaction {
	var txs []domain.Transaction

	quartile := incomeQuartiles[g.rng.Intn(len(incomeQuartiles))]
	monthlyIncome := g.uniform(quartile[0], quartile[1]) / 12
	frequency := payFrequencies[g.rng.Intn(len(payFrequencies))]

	for _, payday := range paydays(frequency, start, end) {
		amount := monthlyIncome
		if frequency != domain.PayMonthly {
			amount = monthlyIncome / 2
		}
		txs = append(txs, g.tx(a.AccountID, payday, amount, "Payroll Deposit", domain.ChannelACH, "Transfer", "Payroll"))
	}

	subCount := 2 + g.rng.Intn(7)
	for _, sub := range g.pickSubscriptions(subCount) {
		day := start.AddDays(g.rng.Intn(28))
		for ; day.Before(end) || day == end; day = day.AddDays(30) {
			txs = append(txs, g.tx(a.AccountID, day, -sub.amount, sub.name, domain.ChannelOnline, "Entertainment", "Streaming Services"))
		}
	}

	for day := start; day.Before(end) || day == end; day = day.AddDays(1) {
		for n := g.rng.Intn(3); n > 0; n-- {
			m := spendMerchants[g.rng.Intn(len(spendMerchants))]
			txs = append(txs, g.tx(a.AccountID, day, -g.uniform(m.min, m.max), m.name, domain.ChannelInStore, m.category, ""))
		}
	}
	return txs
}

// generateSavingsTransfers produces periodic inbound transfers so savings
// growth signals have something to find.
func (g *Generator) generateSavingsTransfers(a domain.Account, start, end civil.Date) []domain.Transaction {
	var txs []domain.Transaction
	if g.rng.Float64() < 0.3 {
		// Some savers are dormant.
		return txs
	}
	amount := g.uniform(50, 600)
	for day := start.AddDays(g.rng.Intn(14)); day.Before(end) || day == end; day = day.AddDays(14) {
		txs = append(txs, g.tx(a.AccountID, day, amount, "Transfer to Savings", domain.ChannelACH, "Transfer", "Savings"))
	}
	return txs
}

func (g *Generator) generateCreditActivity(a domain.Account, start, end civil.Date) ([]domain.Transaction, domain.Liability) {
	var txs []domain.Transaction

	for day := start; day.Before(end) || day == end; day = day.AddDays(1) {
		if g.rng.Float64() < 0.25 {
			m := spendMerchants[g.rng.Intn(len(spendMerchants))]
			txs = append(txs, g.tx(a.AccountID, day, -g.uniform(m.min, m.max), m.name, domain.ChannelOnline, m.category, ""))
		}
	}

	minimumPayment := a.BalanceCurrent * 0.02
	if minimumPayment < 25 {
		minimumPayment = 25
	}
	// Minimum-only payers make exactly the minimum; the rest pay several
	// times it, which keeps the heuristic on both sides.
	paysMinimumOnly := g.rng.Float64() < 0.35
	for day := start.AddDays(4); day.Before(end) || day == end; day = day.AddDays(30) {
		payment := minimumPayment
		if !paysMinimumOnly {
			payment = minimumPayment * g.uniform(2, 6)
		}
		txs = append(txs, g.tx(a.AccountID, day, payment, "Credit Card Payment", domain.ChannelACH, "Transfer", "Payment"))
	}

	liability := domain.Liability{
		LiabilityID:          a.AccountID + "_liability",
		AccountID:            a.AccountID,
		APR:                  g.uniform(15, 30),
		MinimumPayment:       minimumPayment,
		IsOverdue:            g.rng.Float64() < 0.1,
		LastStatementBalance: a.BalanceCurrent,
		NextPaymentDue:       end.AddDays(15),
	}
	return txs, liability
}

func (g *Generator) pickSubscriptions(n int) []subscriptionMerchant {
	perm := g.rng.Perm(len(subscriptionMerchants))
	if n > len(perm) {
		n = len(perm)
	}
	picked := make([]subscriptionMerchant, n)
	for i := 0; i < n; i++ {
		picked[i] = subscriptionMerchants[perm[i]]
	}
	return picked
}

func (g *Generator) tx(accountID string, day civil.Date, amount float64, merchant, channel, category, detail string) domain.Transaction {
	labels := []string{category}
	if detail != "" {
		labels = append(labels, detail)
	}
	g.txSeq++
	return domain.Transaction{
		TransactionID:  fmt.Sprintf("%s_tx_%06d", accountID, g.txSeq),
		AccountID:      accountID,
		Date:           day,
		Amount:         round2(amount),
		MerchantName:   merchant,
		PaymentChannel: channel,
		CategoryLabels: labels,
	}
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

// paydays lists deposit dates for a frequency over [start, end].
func paydays(freq domain.PayFrequency, start, end civil.Date) []civil.Date {
	var days []civil.Date
	switch freq {
	case domain.PayMonthly:
		day := civil.Date{Year: start.Year, Month: start.Month, Day: 1}
		for !day.After(end) {
			if !day.Before(start) {
				days = append(days, day)
			}
			day = civil.Date{Year: day.Year, Month: day.Month, Day: 1}.AddDays(32)
			day = civil.Date{Year: day.Year, Month: day.Month, Day: 1}
		}
	case domain.PaySemiMonthly:
		day := civil.Date{Year: start.Year, Month: start.Month, Day: 1}
		for !day.After(end) {
			first := day
			fifteenth := civil.Date{Year: day.Year, Month: day.Month, Day: 15}
			for _, d := range []civil.Date{first, fifteenth} {
				if !d.Before(start) && !d.After(end) {
					days = append(days, d)
				}
			}
			day = first.AddDays(32)
			day = civil.Date{Year: day.Year, Month: day.Month, Day: 1}
		}
	case domain.PayBiweekly:
		for day := start; !day.After(end); day = day.AddDays(14) {
			days = append(days, day)
		}
	}
	return days
}
