// Package guardrails gates every piece of generated content behind consent,
// eligibility, tone and disclosure checks before it can reach a user.
package guardrails

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// ConsentManager reads and writes the per-user consent flag. Consent is
// explicit opt-in: unknown users and users who never opted in read as no
// consent, never as an error.
type ConsentManager struct {
	users store.ConsentStore
	recs  store.RecommendationStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewConsentManager creates a consent manager.
func NewConsentManager(users store.ConsentStore, recs store.RecommendationStore, log zerolog.Logger) *ConsentManager {
	return &ConsentManager{
		users: users,
		recs:  recs,
		now:   time.Now,
		log:   log,
	}
}

// Check reports whether the user has active consent. Unknown users have no
// consent.
func (m *ConsentManager) Check(ctx context.Context, userID string) (bool, error) {
	u, ok, err := m.users.User(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("Check: loading user %s: %w", userID, err)
	}
	if !ok {
		return false, nil
	}
	return u.ConsentStatus, nil
}

// Record stores the user's opt-in with the current timestamp.
func (m *ConsentManager) Record(ctx context.Context, userID string) error {
	if err := m.users.RecordConsent(ctx, userID, m.now()); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	m.log.Info().Str("user_id", userID).Msg("Consent recorded")
	return nil
}

// Revoke stores the user's opt-out and deletes all stored recommendations so
// revocation takes immediate effect.
func (m *ConsentManager) Revoke(ctx context.Context, userID string) error {
	if err := m.users.RevokeConsent(ctx, userID, m.now()); err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	if err := m.recs.DeleteRecommendationsByUser(ctx, userID); err != nil {
		return fmt.Errorf("Revoke: deleting recommendations for %s: %w", userID, err)
	}
	m.log.Info().Str("user_id", userID).Msg("Consent revoked, recommendations deleted")
	return nil
}

// Require returns ErrConsentRequired unless the user has active consent.
func (m *ConsentManager) Require(ctx context.Context, userID string) error {
	ok, err := m.Check(ctx, userID)
	if err != nil {
		return fmt.Errorf("Require: %w", err)
	}
	if !ok {
		return fmt.Errorf("Require: user %s: %w", userID, domain.ErrConsentRequired)
	}
	return nil
}
