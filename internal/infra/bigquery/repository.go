package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Repository is the BigQuery-backed implementation of store.Store. It holds
// a shared BigQuery client to avoid creating a new connection for each
// operation.
type Repository struct {
	client *bigquery.Client

	// owners maps account IDs to user IDs for the current ingest run.
	owners map[string]string
}

// NewRepository creates a repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// TransactionsInRange implements store.TransactionStore.
func (r *Repository) TransactionsInRange(ctx context.Context, userID string, start, end civil.Date, includePending bool) ([]domain.Transaction, error) {
	rows, err := QueryTransactionsInRangeWithClient(ctx, r.client, userID, start, end, includePending)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// DataSpan implements store.TransactionStore.
func (r *Repository) DataSpan(ctx context.Context, userID string) (civil.Date, civil.Date, bool, error) {
	return QueryDataSpanWithClient(ctx, r.client, userID)
}

// AccountsByUser implements store.AccountStore.
func (r *Repository) AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := ListAccountsByUserWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// LiabilitiesByUser implements store.AccountStore.
func (r *Repository) LiabilitiesByUser(ctx context.Context, userID string) (map[string]domain.Liability, error) {
	rows, err := ListLiabilitiesByUserWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Liability, len(rows))
	for _, row := range rows {
		out[row.AccountID] = row.toDomain()
	}
	return out, nil
}

// FreshBundle implements store.SignalStore.
func (r *Repository) FreshBundle(ctx context.Context, userID string, window domain.WindowType, notBefore time.Time) (domain.SignalBundle, bool, error) {
	row, err := FindFreshSignalWithClient(ctx, r.client, userID, string(window), notBefore)
	if err != nil {
		return domain.SignalBundle{}, false, err
	}
	if row == nil {
		return domain.SignalBundle{}, false, nil
	}
	bundle, err := row.toDomain()
	if err != nil {
		return domain.SignalBundle{}, false, err
	}
	return bundle, true, nil
}

// SaveBundle implements store.SignalStore.
func (r *Repository) SaveBundle(ctx context.Context, bundle domain.SignalBundle) error {
	row, err := signalRowFromDomain(uuid.NewString(), bundle)
	if err != nil {
		return err
	}
	return InsertSignalWithClient(ctx, r.client, row)
}

// SaveAssignment implements store.PersonaStore.
func (r *Repository) SaveAssignment(ctx context.Context, a domain.PersonaAssignment) error {
	row, err := personaRowFromDomain(a)
	if err != nil {
		return err
	}
	return InsertPersonaAssignmentWithClient(ctx, r.client, row)
}

// CurrentAssignment implements store.PersonaStore.
func (r *Repository) CurrentAssignment(ctx context.Context, userID string) (domain.PersonaAssignment, bool, error) {
	row, err := FindCurrentAssignmentWithClient(ctx, r.client, userID)
	if err != nil {
		return domain.PersonaAssignment{}, false, err
	}
	if row == nil {
		return domain.PersonaAssignment{}, false, nil
	}
	a, err := row.toDomain()
	if err != nil {
		return domain.PersonaAssignment{}, false, err
	}
	return a, true, nil
}

// AssignmentHistory returns the user's full assignment history, newest
// first. Used by the operator sync and the export job.
func (r *Repository) AssignmentHistory(ctx context.Context, userID string) ([]domain.PersonaAssignment, error) {
	rows, err := ListAssignmentHistoryWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PersonaAssignment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// User implements store.ConsentStore.
func (r *Repository) User(ctx context.Context, userID string) (domain.User, bool, error) {
	row, err := FindUserWithClient(ctx, r.client, userID)
	if err != nil {
		return domain.User{}, false, err
	}
	if row == nil {
		return domain.User{}, false, nil
	}
	return row.toDomain(), true, nil
}

// ListUserIDs returns every known user ID. Used by the operator sync, the
// export job, and the worker's full-population sweep.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	return ListUserIDsWithClient(ctx, r.client)
}

// RecordConsent implements store.ConsentStore.
func (r *Repository) RecordConsent(ctx context.Context, userID string, at time.Time) error {
	return SetConsentWithClient(ctx, r.client, userID, true, at)
}

// RevokeConsent implements store.ConsentStore.
func (r *Repository) RevokeConsent(ctx context.Context, userID string, at time.Time) error {
	if err := SetConsentWithClient(ctx, r.client, userID, false, at); err != nil {
		return err
	}
	return DeleteRecommendationsByUserWithClient(ctx, r.client, userID)
}

// SaveRecommendations implements store.RecommendationStore.
func (r *Repository) SaveRecommendations(ctx context.Context, recs []domain.Recommendation) error {
	rows := make([]*RecommendationRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, recommendationRowFromDomain(rec))
	}
	return InsertRecommendationsWithClient(ctx, r.client, rows)
}

// RecommendationsByUser implements store.RecommendationStore.
func (r *Repository) RecommendationsByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	rows, err := ListRecommendationsByUserWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// DeleteRecommendationsByUser implements store.RecommendationStore.
func (r *Repository) DeleteRecommendationsByUser(ctx context.Context, userID string) error {
	return DeleteRecommendationsByUserWithClient(ctx, r.client, userID)
}

// InsertUsers implements the ingest sink.
func (r *Repository) InsertUsers(ctx context.Context, users []domain.User) error {
	now := time.Now()
	rows := make([]*UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRowFromDomain(u, now))
	}
	return InsertUsersWithClient(ctx, r.client, rows)
}

// InsertAccounts implements the ingest sink.
func (r *Repository) InsertAccounts(ctx context.Context, accounts []domain.Account) error {
	rows := make([]*AccountRow, 0, len(accounts))
	ownerOf := make(map[string]string, len(accounts))
	for _, a := range accounts {
		ownerOf[a.AccountID] = a.UserID
		rows = append(rows, accountRowFromDomain(a))
	}
	r.owners = ownerOf
	return InsertAccountsWithClient(ctx, r.client, rows)
}

// InsertTransactions implements the ingest sink. Accounts must be inserted
// first in the same process so transaction rows can be stamped with their
// owning user.
func (r *Repository) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRowFromDomain(tx, r.owners[tx.AccountID]))
	}
	return InsertTransactionsWithClient(ctx, r.client, rows)
}

// InsertLiabilities implements the ingest sink.
func (r *Repository) InsertLiabilities(ctx context.Context, liabilities []domain.Liability) error {
	rows := make([]*LiabilityRow, 0, len(liabilities))
	for _, l := range liabilities {
		rows = append(rows, liabilityRowFromDomain(l))
	}
	return InsertLiabilitiesWithClient(ctx, r.client, rows)
}
