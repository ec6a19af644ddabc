package personas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/store"
)

// Assigner orchestrates degradation, matching and prioritization into one
// persisted persona assignment per call. History is append-only: a new
// assignment supersedes the previous one by timestamp, nothing is deleted.
type Assigner struct {
	controller *signals.Controller
	personas   store.PersonaStore
	now        func() time.Time
	log        zerolog.Logger
}

// NewAssigner creates a persona assigner.
func NewAssigner(controller *signals.Controller, personas store.PersonaStore, log zerolog.Logger) *Assigner {
	return &Assigner{
		controller: controller,
		personas:   personas,
		now:        time.Now,
		log:        log,
	}
}

// AssignPersona computes and persists the user's current persona assignment.
// Users in the new tier get the Welcome assignment without any rule
// evaluation. With force the signal cache is bypassed, so the assignment
// reflects current data even when cached bundles are still fresh.
func (a *Assigner) AssignPersona(ctx context.Context, userID string, force bool) (domain.PersonaAssignment, error) {
	bundle, tier, err := a.controller.PrimarySignals(ctx, userID, force)
	if err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("AssignPersona: computing signals: %w", err)
	}

	var assignment domain.PersonaAssignment
	if tier == domain.TierNew {
		assignment = domain.PersonaAssignment{
			AssignmentID: uuid.NewString(),
			UserID:       userID,
			Persona:      domain.PersonaWelcome,
			Trace: domain.DecisionTrace{
				Reason:           domain.ReasonNewUser,
				MatchedPersonas:  []domain.Persona{},
				Selected:         domain.PersonaWelcome,
				DataAvailability: tier,
			},
			AssignedAt: a.now(),
		}
	} else {
		matched := Match(bundle)
		selected, trace := Select(matched, bundle)
		trace.DataAvailability = tier
		trace.WindowType = bundle.WindowType

		assignment = domain.PersonaAssignment{
			AssignmentID:   uuid.NewString(),
			UserID:         userID,
			Persona:        selected,
			PriorityLevel:  PriorityOf(selected),
			SignalStrength: StrengthOf(selected, bundle),
			Trace:          trace,
			AssignedAt:     a.now(),
		}
	}

	if err := a.personas.SaveAssignment(ctx, assignment); err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("AssignPersona: saving assignment: %w", err)
	}

	a.log.Info().
		Str("user_id", userID).
		Str("persona", string(assignment.Persona)).
		Int("priority", assignment.PriorityLevel).
		Float64("strength", assignment.SignalStrength).
		Str("reason", string(assignment.Trace.Reason)).
		Msg("Assigned persona")

	return assignment, nil
}

// CurrentAssignment returns the user's latest assignment, or ok=false when
// the user has never been assigned.
func (a *Assigner) CurrentAssignment(ctx context.Context, userID string) (domain.PersonaAssignment, bool, error) {
	return a.personas.CurrentAssignment(ctx, userID)
}
