// Package memory is an in-process implementation of the store interfaces.
// It is safe for concurrent use. Data is lost on restart - for persistence,
// use the BigQuery-backed store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Store holds all entities in memory behind a single mutex.
type Store struct {
	mu              sync.RWMutex
	users           map[string]domain.User
	accounts        map[string][]domain.Account        // keyed by user ID
	liabilities     map[string]domain.Liability        // keyed by account ID
	transactions    map[string][]domain.Transaction    // keyed by account ID
	accountOwner    map[string]string                  // account ID -> user ID
	bundles         []domain.SignalBundle
	assignments     []domain.PersonaAssignment
	recommendations map[string][]domain.Recommendation // keyed by user ID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:           make(map[string]domain.User),
		accounts:        make(map[string][]domain.Account),
		liabilities:     make(map[string]domain.Liability),
		transactions:    make(map[string][]domain.Transaction),
		accountOwner:    make(map[string]string),
		recommendations: make(map[string][]domain.Recommendation),
	}
}

// PutUser creates or replaces a user record.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

// PutAccount registers an account under its owner.
func (s *Store) PutAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID] = append(s.accounts[a.UserID], a)
	s.accountOwner[a.AccountID] = a.UserID
}

// PutLiability attaches a liability record to an account.
func (s *Store) PutLiability(l domain.Liability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liabilities[l.AccountID] = l
}

// PutTransactions appends transactions to their accounts.
func (s *Store) PutTransactions(txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.transactions[tx.AccountID] = append(s.transactions[tx.AccountID], tx)
	}
}

// InsertUsers implements the ingest sink.
func (s *Store) InsertUsers(ctx context.Context, users []domain.User) error {
	for _, u := range users {
		s.PutUser(u)
	}
	return nil
}

// InsertAccounts implements the ingest sink.
func (s *Store) InsertAccounts(ctx context.Context, accounts []domain.Account) error {
	for _, a := range accounts {
		s.PutAccount(a)
	}
	return nil
}

// InsertTransactions implements the ingest sink.
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	s.PutTransactions(txs)
	return nil
}

// InsertLiabilities implements the ingest sink.
func (s *Store) InsertLiabilities(ctx context.Context, liabilities []domain.Liability) error {
	for _, l := range liabilities {
		s.PutLiability(l)
	}
	return nil
}

// TransactionsInRange implements store.TransactionStore.
func (s *Store) TransactionsInRange(ctx context.Context, userID string, start, end civil.Date, includePending bool) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, acc := range s.accounts[userID] {
		for _, tx := range s.transactions[acc.AccountID] {
			if tx.Pending && !includePending {
				continue
			}
			if tx.Date.Before(start) || end.Before(tx.Date) {
				continue
			}
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DataSpan implements store.TransactionStore.
func (s *Store) DataSpan(ctx context.Context, userID string) (civil.Date, civil.Date, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest, latest civil.Date
	found := false
	for _, acc := range s.accounts[userID] {
		for _, tx := range s.transactions[acc.AccountID] {
			if tx.Pending {
				continue
			}
			if !found {
				earliest, latest = tx.Date, tx.Date
				found = true
				continue
			}
			if tx.Date.Before(earliest) {
				earliest = tx.Date
			}
			if latest.Before(tx.Date) {
				latest = tx.Date
			}
		}
	}
	return earliest, latest, found, nil
}

// AccountsByUser implements store.AccountStore.
func (s *Store) AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accs := make([]domain.Account, len(s.accounts[userID]))
	copy(accs, s.accounts[userID])
	return accs, nil
}

// LiabilitiesByUser implements store.AccountStore.
func (s *Store) LiabilitiesByUser(ctx context.Context, userID string) (map[string]domain.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Liability)
	for _, acc := range s.accounts[userID] {
		if l, ok := s.liabilities[acc.AccountID]; ok {
			out[acc.AccountID] = l
		}
	}
	return out, nil
}

// FreshBundle implements store.SignalStore.
func (s *Store) FreshBundle(ctx context.Context, userID string, window domain.WindowType, notBefore time.Time) (domain.SignalBundle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best domain.SignalBundle
	found := false
	for _, b := range s.bundles {
		if b.UserID != userID || b.WindowType != window {
			continue
		}
		if !b.ComputedAt.After(notBefore) {
			continue
		}
		if !found || b.ComputedAt.After(best.ComputedAt) {
			best = b
			found = true
		}
	}
	return best, found, nil
}

// SaveBundle implements store.SignalStore.
func (s *Store) SaveBundle(ctx context.Context, bundle domain.SignalBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles = append(s.bundles, bundle)
	return nil
}

// SaveAssignment implements store.PersonaStore.
func (s *Store) SaveAssignment(ctx context.Context, a domain.PersonaAssignment) error {
	if a.AssignmentID == "" {
		return fmt.Errorf("SaveAssignment: assignment ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, a)
	return nil
}

// CurrentAssignment implements store.PersonaStore.
func (s *Store) CurrentAssignment(ctx context.Context, userID string) (domain.PersonaAssignment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current domain.PersonaAssignment
	found := false
	for _, a := range s.assignments {
		if a.UserID != userID {
			continue
		}
		if !found || a.AssignedAt.After(current.AssignedAt) {
			current = a
			found = true
		}
	}
	return current, found, nil
}

// ListUserIDs returns every known user ID in ascending order.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AssignmentHistory returns the user's full assignment history, newest
// first. Used by the operator sync and the export job.
func (s *Store) AssignmentHistory(ctx context.Context, userID string) ([]domain.PersonaAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []domain.PersonaAssignment
	for _, a := range s.assignments {
		if a.UserID == userID {
			history = append(history, a)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].AssignedAt.After(history[j].AssignedAt)
	})
	return history, nil
}

// User implements store.ConsentStore.
func (s *Store) User(ctx context.Context, userID string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	return u, ok, nil
}

// RecordConsent implements store.ConsentStore.
func (s *Store) RecordConsent(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("RecordConsent: user not found: %s", userID)
	}
	u.ConsentStatus = true
	u.ConsentTimestamp = at.Format(time.RFC3339)
	s.users[userID] = u
	return nil
}

// RevokeConsent implements store.ConsentStore. Stored recommendations for the
// user are deleted in the same call so revocation takes immediate effect.
func (s *Store) RevokeConsent(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("RevokeConsent: user not found: %s", userID)
	}
	u.ConsentStatus = false
	u.ConsentTimestamp = ""
	s.users[userID] = u
	delete(s.recommendations, userID)
	return nil
}

// SaveRecommendations implements store.RecommendationStore.
func (s *Store) SaveRecommendations(ctx context.Context, recs []domain.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.recommendations[rec.UserID] = append(s.recommendations[rec.UserID], rec)
	}
	return nil
}

// RecommendationsByUser implements store.RecommendationStore.
func (s *Store) RecommendationsByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]domain.Recommendation, len(s.recommendations[userID]))
	copy(recs, s.recommendations[userID])
	return recs, nil
}

// DeleteRecommendationsByUser implements store.RecommendationStore.
func (s *Store) DeleteRecommendationsByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recommendations, userID)
	return nil
}
