// Package bigquery is the BigQuery-backed implementation of the store
// interfaces. All tables live in one dataset; signal bundles and decision
// traces are stored as JSON columns so schema changes in the analysis layer
// never require a migration.
package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

const (
	datasetID = "spendsense"

	usersTable           = "users"
	accountsTable        = "accounts"
	liabilitiesTable     = "liabilities"
	transactionsTable    = "transactions"
	signalsTable         = "signals"
	personasTable        = "personas"
	recommendationsTable = "recommendations"
)

// UserRow represents a user record in BigQuery.
type UserRow struct {
	UserID           string              `bigquery:"user_id"`
	ConsentStatus    bool                `bigquery:"consent_status"`
	ConsentTimestamp bigquery.NullString `bigquery:"consent_timestamp"`
	LastUpdated      time.Time           `bigquery:"last_updated"`
}

func userRowFromDomain(u domain.User, now time.Time) *UserRow {
	row := &UserRow{
		UserID:        u.UserID,
		ConsentStatus: u.ConsentStatus,
		LastUpdated:   now,
	}
	if u.ConsentTimestamp != "" {
		row.ConsentTimestamp = bigquery.NullString{StringVal: u.ConsentTimestamp, Valid: true}
	}
	return row
}

func (r *UserRow) toDomain() domain.User {
	return domain.User{
		UserID:           r.UserID,
		ConsentStatus:    r.ConsentStatus,
		ConsentTimestamp: r.ConsentTimestamp.StringVal,
	}
}

// AccountRow represents an account record in BigQuery.
type AccountRow struct {
	AccountID        string               `bigquery:"account_id"`
	UserID           string               `bigquery:"user_id"`
	Type             string               `bigquery:"type"`
	Subtype          string               `bigquery:"subtype"`
	BalanceAvailable float64              `bigquery:"balance_available"`
	BalanceCurrent   float64              `bigquery:"balance_current"`
	BalanceLimit     bigquery.NullFloat64 `bigquery:"balance_limit"`
	CurrencyCode     string               `bigquery:"iso_currency_code"`
}

func accountRowFromDomain(a domain.Account) *AccountRow {
	row := &AccountRow{
		AccountID:        a.AccountID,
		UserID:           a.UserID,
		Type:             a.Type,
		Subtype:          a.Subtype,
		BalanceAvailable: a.BalanceAvailable,
		BalanceCurrent:   a.BalanceCurrent,
		CurrencyCode:     a.CurrencyCode,
	}
	if a.BalanceLimit != 0 {
		row.BalanceLimit = bigquery.NullFloat64{Float64: a.BalanceLimit, Valid: true}
	}
	return row
}

func (r *AccountRow) toDomain() domain.Account {
	return domain.Account{
		AccountID:        r.AccountID,
		UserID:           r.UserID,
		Type:             r.Type,
		Subtype:          r.Subtype,
		BalanceAvailable: r.BalanceAvailable,
		BalanceCurrent:   r.BalanceCurrent,
		BalanceLimit:     r.BalanceLimit.Float64,
		CurrencyCode:     r.CurrencyCode,
	}
}

// LiabilityRow represents a credit liability record in BigQuery.
type LiabilityRow struct {
	LiabilityID          string               `bigquery:"liability_id"`
	AccountID            string               `bigquery:"account_id"`
	APR                  float64              `bigquery:"apr"`
	MinimumPayment       float64              `bigquery:"minimum_payment"`
	LastPayment          bigquery.NullFloat64 `bigquery:"last_payment"`
	IsOverdue            bool                 `bigquery:"is_overdue"`
	NextPaymentDue       bigquery.NullDate    `bigquery:"next_payment_due"`
	LastStatementBalance bigquery.NullFloat64 `bigquery:"last_statement_balance"`
}

func liabilityRowFromDomain(l domain.Liability) *LiabilityRow {
	row := &LiabilityRow{
		LiabilityID:    l.LiabilityID,
		AccountID:      l.AccountID,
		APR:            l.APR,
		MinimumPayment: l.MinimumPayment,
		IsOverdue:      l.IsOverdue,
	}
	if l.LastPayment != 0 {
		row.LastPayment = bigquery.NullFloat64{Float64: l.LastPayment, Valid: true}
	}
	if l.NextPaymentDue.IsValid() {
		row.NextPaymentDue = bigquery.NullDate{Date: l.NextPaymentDue, Valid: true}
	}
	if l.LastStatementBalance != 0 {
		row.LastStatementBalance = bigquery.NullFloat64{Float64: l.LastStatementBalance, Valid: true}
	}
	return row
}

func (r *LiabilityRow) toDomain() domain.Liability {
	return domain.Liability{
		LiabilityID:          r.LiabilityID,
		AccountID:            r.AccountID,
		APR:                  r.APR,
		MinimumPayment:       r.MinimumPayment,
		LastPayment:          r.LastPayment.Float64,
		IsOverdue:            r.IsOverdue,
		NextPaymentDue:       r.NextPaymentDue.Date,
		LastStatementBalance: r.LastStatementBalance.Float64,
	}
}

// TransactionRow represents a transaction record in BigQuery.
type TransactionRow struct {
	TransactionID  string              `bigquery:"transaction_id"`
	AccountID      string              `bigquery:"account_id"`
	UserID         string              `bigquery:"user_id"`
	Date           civil.Date          `bigquery:"date"`
	Amount         float64             `bigquery:"amount"`
	MerchantName   bigquery.NullString `bigquery:"merchant_name"`
	PaymentChannel string              `bigquery:"payment_channel"`
	CategoryLabels []string            `bigquery:"category_labels"`
	Pending        bool                `bigquery:"pending"`
}

func transactionRowFromDomain(tx domain.Transaction, userID string) *TransactionRow {
	row := &TransactionRow{
		TransactionID:  tx.TransactionID,
		AccountID:      tx.AccountID,
		UserID:         userID,
		Date:           tx.Date,
		Amount:         tx.Amount,
		PaymentChannel: tx.PaymentChannel,
		CategoryLabels: tx.CategoryLabels,
		Pending:        tx.Pending,
	}
	if tx.MerchantName != "" {
		row.MerchantName = bigquery.NullString{StringVal: tx.MerchantName, Valid: true}
	}
	return row
}

func (r *TransactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		TransactionID:  r.TransactionID,
		AccountID:      r.AccountID,
		Date:           r.Date,
		Amount:         r.Amount,
		MerchantName:   r.MerchantName.StringVal,
		PaymentChannel: r.PaymentChannel,
		CategoryLabels: r.CategoryLabels,
		Pending:        r.Pending,
	}
}

// SignalRow represents a cached signal bundle. The bundle body is stored as
// JSON; user_id, window_type and computed_at are lifted into columns for
// freshness queries.
type SignalRow struct {
	SignalID   string    `bigquery:"signal_id"`
	UserID     string    `bigquery:"user_id"`
	WindowType string    `bigquery:"window_type"`
	ComputedAt time.Time `bigquery:"computed_at"`
	BundleJSON string    `bigquery:"bundle_json"`
}

func signalRowFromDomain(signalID string, b domain.SignalBundle) (*SignalRow, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("signalRowFromDomain: %w", err)
	}
	return &SignalRow{
		SignalID:   signalID,
		UserID:     b.UserID,
		WindowType: string(b.WindowType),
		ComputedAt: b.ComputedAt,
		BundleJSON: string(body),
	}, nil
}

func (r *SignalRow) toDomain() (domain.SignalBundle, error) {
	var b domain.SignalBundle
	if err := json.Unmarshal([]byte(r.BundleJSON), &b); err != nil {
		return domain.SignalBundle{}, fmt.Errorf("SignalRow.toDomain: %w", err)
	}
	return b, nil
}

// PersonaRow represents one persona assignment in the append-only history.
type PersonaRow struct {
	AssignmentID   string    `bigquery:"assignment_id"`
	UserID         string    `bigquery:"user_id"`
	PersonaName    string    `bigquery:"persona_name"`
	PriorityLevel  int64     `bigquery:"priority_level"`
	SignalStrength float64   `bigquery:"signal_strength"`
	TraceJSON      string    `bigquery:"trace_json"`
	AssignedAt     time.Time `bigquery:"assigned_at"`
}

func personaRowFromDomain(a domain.PersonaAssignment) (*PersonaRow, error) {
	trace, err := json.Marshal(a.Trace)
	if err != nil {
		return nil, fmt.Errorf("personaRowFromDomain: %w", err)
	}
	return &PersonaRow{
		AssignmentID:   a.AssignmentID,
		UserID:         a.UserID,
		PersonaName:    string(a.Persona),
		PriorityLevel:  int64(a.PriorityLevel),
		SignalStrength: a.SignalStrength,
		TraceJSON:      string(trace),
		AssignedAt:     a.AssignedAt,
	}, nil
}

func (r *PersonaRow) toDomain() (domain.PersonaAssignment, error) {
	var trace domain.DecisionTrace
	if err := json.Unmarshal([]byte(r.TraceJSON), &trace); err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("PersonaRow.toDomain: %w", err)
	}
	return domain.PersonaAssignment{
		AssignmentID:   r.AssignmentID,
		UserID:         r.UserID,
		Persona:        domain.Persona(r.PersonaName),
		PriorityLevel:  int(r.PriorityLevel),
		SignalStrength: r.SignalStrength,
		Trace:          trace,
		AssignedAt:     r.AssignedAt,
	}, nil
}

// RecommendationRow represents a stored recommendation in BigQuery.
type RecommendationRow struct {
	RecommendationID string              `bigquery:"recommendation_id"`
	UserID           string              `bigquery:"user_id"`
	PersonaName      string              `bigquery:"persona_name"`
	Type             string              `bigquery:"type"`
	Title            string              `bigquery:"title"`
	Rationale        string              `bigquery:"rationale"`
	OfferType        bigquery.NullString `bigquery:"offer_type"`
	Disclosure       string              `bigquery:"disclosure"`
	GeneratedAt      time.Time           `bigquery:"generated_at"`
	Deleted          bool                `bigquery:"deleted"`
}

func recommendationRowFromDomain(rec domain.Recommendation) *RecommendationRow {
	row := &RecommendationRow{
		RecommendationID: rec.RecommendationID,
		UserID:           rec.UserID,
		PersonaName:      string(rec.Persona),
		Type:             string(rec.Type),
		Title:            rec.Title,
		Rationale:        rec.Rationale,
		Disclosure:       rec.Disclosure,
		GeneratedAt:      rec.GeneratedAt,
	}
	if rec.OfferType != "" {
		row.OfferType = bigquery.NullString{StringVal: rec.OfferType, Valid: true}
	}
	return row
}

func (r *RecommendationRow) toDomain() domain.Recommendation {
	return domain.Recommendation{
		RecommendationID: r.RecommendationID,
		UserID:           r.UserID,
		Persona:          domain.Persona(r.PersonaName),
		Type:             domain.ContentType(r.Type),
		Title:            r.Title,
		Rationale:        r.Rationale,
		OfferType:        r.OfferType.StringVal,
		Disclosure:       r.Disclosure,
		GeneratedAt:      r.GeneratedAt,
	}
}
