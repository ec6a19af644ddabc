package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/guardrails"
	"github.com/dvloznov/spendsense/internal/personas"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/store"
)

// RationaleRewriter optionally rephrases a template rationale. Any error
// keeps the template text.
type RationaleRewriter interface {
	Rewrite(ctx context.Context, rec domain.Recommendation) (string, error)
}

// Engine assembles candidate recommendations for a user, runs them through
// the guardrails pipeline and persists the survivors.
type Engine struct {
	assigner   *personas.Assigner
	controller *signals.Controller
	offers     *OfferGenerator
	enforcer   *guardrails.Enforcer
	recs       store.RecommendationStore
	rewriter   RationaleRewriter
	now        func() time.Time
	log        zerolog.Logger
}

// NewEngine creates a recommendation engine. rewriter may be nil, in which
// case template rationales are used as-is.
func NewEngine(
	assigner *personas.Assigner,
	controller *signals.Controller,
	st store.Store,
	enforcer *guardrails.Enforcer,
	rewriter RationaleRewriter,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		assigner:   assigner,
		controller: controller,
		offers:     NewOfferGenerator(st, log),
		enforcer:   enforcer,
		recs:       st,
		rewriter:   rewriter,
		now:        time.Now,
		log:        log,
	}
}

// GenerateAndSave builds education and offer candidates for the user's
// current persona, enforces guardrails and stores the result. Users without
// a persona assignment get one first. Without consent the result is empty
// and nothing is stored.
func (e *Engine) GenerateAndSave(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	assignment, ok, err := e.assigner.CurrentAssignment(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GenerateAndSave: %w", err)
	}
	if !ok {
		assignment, err = e.assigner.AssignPersona(ctx, userID, false)
		if err != nil {
			return nil, fmt.Errorf("GenerateAndSave: %w", err)
		}
	}
	persona := assignment.Persona

	bundle, _, err := e.controller.PrimarySignals(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("GenerateAndSave: computing signals: %w", err)
	}

	var candidates []domain.Recommendation
	for _, item := range EducationItems(persona, DefaultEducationCount) {
		candidates = append(candidates, domain.Recommendation{
			RecommendationID: uuid.NewString(),
			UserID:           userID,
			Persona:          persona,
			Type:             domain.ContentEducation,
			Title:            item.Title,
			Rationale:        EducationRationale(item, bundle, persona),
			GeneratedAt:      e.now(),
		})
	}

	offers, err := e.offers.GenerateOffers(ctx, userID, persona, bundle, DefaultOfferCount)
	if err != nil {
		return nil, fmt.Errorf("GenerateAndSave: %w", err)
	}
	for _, offer := range offers {
		candidates = append(candidates, domain.Recommendation{
			RecommendationID: uuid.NewString(),
			UserID:           userID,
			Persona:          persona,
			Type:             domain.ContentOffer,
			Title:            offer.Title,
			Rationale:        OfferRationale(offer, bundle),
			OfferType:        offer.OfferType,
			GeneratedAt:      e.now(),
		})
	}

	if e.rewriter != nil {
		for i := range candidates {
			text, err := e.rewriter.Rewrite(ctx, candidates[i])
			if err != nil {
				e.log.Warn().Err(err).Str("title", candidates[i].Title).Msg("Rationale rewrite failed, keeping template")
				continue
			}
			candidates[i].Rationale = text
		}
	}

	approved, err := e.enforcer.Enforce(ctx, userID, candidates, bundle)
	if err != nil {
		return nil, fmt.Errorf("GenerateAndSave: %w", err)
	}
	if len(approved) > 0 {
		if err := e.recs.SaveRecommendations(ctx, approved); err != nil {
			return nil, fmt.Errorf("GenerateAndSave: %w", err)
		}
	}

	e.log.Info().
		Str("user_id", userID).
		Str("persona", string(persona)).
		Int("candidates", len(candidates)).
		Int("approved", len(approved)).
		Msg("Recommendations generated")
	return approved, nil
}

// Recommendations returns the user's stored recommendations.
func (e *Engine) Recommendations(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	recs, err := e.recs.RecommendationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Recommendations: %w", err)
	}
	return recs, nil
}
