// Package store defines the storage interfaces the analysis core consumes.
// The BigQuery implementation lives in internal/infra/bigquery; an in-process
// implementation for seeding and tests lives in store/memory.
package store

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

// TransactionStore reads immutable transaction facts.
type TransactionStore interface {
	// TransactionsInRange returns all transactions across the user's
	// accounts with start <= date <= end, ordered by date ascending.
	// Pending transactions are excluded unless includePending is set.
	// A user with no transactions yields an empty slice, not an error.
	TransactionsInRange(ctx context.Context, userID string, start, end civil.Date, includePending bool) ([]domain.Transaction, error)

	// DataSpan returns the earliest and latest non-pending transaction
	// dates for a user. ok is false when the user has no transactions.
	DataSpan(ctx context.Context, userID string) (earliest, latest civil.Date, ok bool, err error)
}

// AccountStore reads account and liability records.
type AccountStore interface {
	AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)

	// LiabilitiesByUser returns the user's liability records keyed by
	// account ID. Accounts without a liability record are absent.
	LiabilitiesByUser(ctx context.Context, userID string) (map[string]domain.Liability, error)
}

// SignalStore is the advisory signal-bundle cache. Freshness is checked at
// read time; rows are superseded by newer computed_at values, never mutated.
type SignalStore interface {
	// FreshBundle returns the most recent bundle for (user, window) with
	// ComputedAt after notBefore, or ok=false when none qualifies.
	FreshBundle(ctx context.Context, userID string, window domain.WindowType, notBefore time.Time) (domain.SignalBundle, bool, error)

	SaveBundle(ctx context.Context, bundle domain.SignalBundle) error
}

// PersonaStore keeps the append-only persona assignment history.
type PersonaStore interface {
	SaveAssignment(ctx context.Context, a domain.PersonaAssignment) error

	// CurrentAssignment returns the assignment with the latest AssignedAt
	// for the user, or ok=false when the user has never been assigned.
	CurrentAssignment(ctx context.Context, userID string) (domain.PersonaAssignment, bool, error)
}

// ConsentStore reads and writes the per-user consent flag.
type ConsentStore interface {
	// User returns the user record, or ok=false for an unknown user.
	User(ctx context.Context, userID string) (domain.User, bool, error)

	RecordConsent(ctx context.Context, userID string, at time.Time) error
	RevokeConsent(ctx context.Context, userID string, at time.Time) error
}

// RecommendationStore persists guardrail-approved recommendations so consent
// revocation can delete them with immediate effect.
type RecommendationStore interface {
	SaveRecommendations(ctx context.Context, recs []domain.Recommendation) error
	RecommendationsByUser(ctx context.Context, userID string) ([]domain.Recommendation, error)
	DeleteRecommendationsByUser(ctx context.Context, userID string) error
}

// Store is the full storage surface used by the service wiring.
type Store interface {
	TransactionStore
	AccountStore
	SignalStore
	PersonaStore
	ConsentStore
	RecommendationStore
}
