package guardrails

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// Enforcer runs every candidate recommendation through the full guardrail
// pipeline: consent gate, eligibility filter for offers, tone sanitization,
// disclosure injection. Stages run in that order and the pipeline preserves
// the relative order of surviving items. Titles are never rewritten.
type Enforcer struct {
	consent     *ConsentManager
	eligibility *EligibilityChecker
	tone        *ToneValidator
	log         zerolog.Logger
}

// NewEnforcer creates a guardrails enforcer over the given store.
func NewEnforcer(st store.Store, log zerolog.Logger) *Enforcer {
	return &Enforcer{
		consent:     NewConsentManager(st, st, log),
		eligibility: NewEligibilityChecker(st, log),
		tone:        NewToneValidator(),
		log:         log,
	}
}

// Consent exposes the enforcer's consent manager for the API layer.
func (e *Enforcer) Consent() *ConsentManager {
	return e.consent
}

// Enforce applies all guardrails to the candidate recommendations. Without
// active consent the result is an empty list, never an error: the consent
// gate fails closed.
func (e *Enforcer) Enforce(ctx context.Context, userID string, recs []domain.Recommendation, signals domain.SignalBundle) ([]domain.Recommendation, error) {
	ok, err := e.consent.Check(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Enforce: %w", err)
	}
	if !ok {
		e.log.Warn().Str("user_id", userID).Msg("No consent, blocking recommendations")
		return []domain.Recommendation{}, nil
	}

	passed := make([]domain.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.Type == domain.ContentOffer {
			eligible, reasons, err := e.eligibility.CheckOffer(ctx, userID, rec, signals)
			if err != nil {
				return nil, fmt.Errorf("Enforce: %w", err)
			}
			if !eligible {
				e.log.Debug().
					Str("user_id", userID).
					Str("title", rec.Title).
					Str("reasons", strings.Join(reasons, ", ")).
					Msg("Offer filtered")
				continue
			}
		}

		if valid, _ := e.tone.Validate(rec.Rationale); !valid {
			rec.Rationale = e.tone.Sanitize(rec.Rationale)
			e.log.Info().Str("title", rec.Title).Msg("Tone sanitized")
		}

		passed = append(passed, InjectDisclosure(rec))
	}

	e.log.Info().
		Str("user_id", userID).
		Int("passed", len(passed)).
		Int("candidates", len(recs)).
		Msg("Guardrails enforced")
	return passed, nil
}
