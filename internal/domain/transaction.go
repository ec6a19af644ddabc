package domain

import (
	"cloud.google.com/go/civil"
)

// Account types as they appear in the accounts table.
const (
	AccountTypeDepository = "depository"
	AccountTypeCredit     = "credit"
)

// Account subtypes.
const (
	SubtypeChecking    = "checking"
	SubtypeSavings     = "savings"
	SubtypeMoneyMarket = "money_market"
	SubtypeHSA         = "hsa"
	SubtypeCreditCard  = "credit_card"
)

// Payment channels.
const (
	ChannelACH      = "ach"
	ChannelInStore  = "in_store"
	ChannelOnline   = "online"
	ChannelOther    = "other"
)

// Transaction is one immutable transaction fact as returned by the store.
// Amounts are signed: positive = money in, negative = money out.
type Transaction struct {
	TransactionID  string     `json:"transaction_id"`
	AccountID      string     `json:"account_id"`
	Date           civil.Date `json:"date"`
	Amount         float64    `json:"amount"`
	MerchantName   string     `json:"merchant_name,omitempty"`
	PaymentChannel string     `json:"payment_channel,omitempty"`
	CategoryLabels []string   `json:"category_labels,omitempty"`
	Pending        bool       `json:"pending"`
}

// Account is a user's financial account. BalanceLimit is only meaningful for
// credit accounts.
type Account struct {
	AccountID        string  `json:"account_id"`
	UserID           string  `json:"user_id"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype,omitempty"`
	BalanceAvailable float64 `json:"balance_available"`
	BalanceCurrent   float64 `json:"balance_current"`
	BalanceLimit     float64 `json:"balance_limit,omitempty"`
	CurrencyCode     string  `json:"iso_currency_code"`
}

// IsSavings reports whether the account counts as a savings destination for
// the savings detector.
func (a Account) IsSavings() bool {
	return a.Type == AccountTypeDepository &&
		(a.Subtype == SubtypeSavings || a.Subtype == SubtypeMoneyMarket)
}

// IsChecking reports whether the account is a checking account.
func (a Account) IsChecking() bool {
	return a.Type == AccountTypeDepository && a.Subtype == SubtypeChecking
}

// Liability holds the credit-card liability record attached to a credit
// account.
type Liability struct {
	LiabilityID          string     `json:"liability_id"`
	AccountID            string     `json:"account_id"`
	APR                  float64    `json:"apr"`
	MinimumPayment       float64    `json:"minimum_payment"`
	LastPayment          float64    `json:"last_payment,omitempty"`
	IsOverdue            bool       `json:"is_overdue"`
	NextPaymentDue       civil.Date `json:"next_payment_due,omitempty"`
	LastStatementBalance float64    `json:"last_statement_balance,omitempty"`
}

// User is the account owner. Consent fields gate all recommendation output.
type User struct {
	UserID           string `json:"user_id"`
	ConsentStatus    bool   `json:"consent_status"`
	ConsentTimestamp string `json:"consent_timestamp,omitempty"`
}
