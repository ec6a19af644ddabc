package signals

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Disclaimers surfaced with degraded signal sets.
const (
	DisclaimerNewUser = "Welcome! We're still learning about your financial patterns. " +
		"As we gather more data, your insights will become more personalized."
	DisclaimerPreliminary = "We're building your financial profile. These are preliminary insights. " +
		"After 30 days of data, you'll receive more detailed recommendations."
)

// ClassifyTier maps a user's data age in days to an availability tier. Pure
// classification: the tier always reflects current data, it is never stored.
func ClassifyTier(dataAgeDays int) domain.AvailabilityTier {
	switch {
	case dataAgeDays < 7:
		return domain.TierNew
	case dataAgeDays < 30:
		return domain.TierLimited
	case dataAgeDays < 180:
		return domain.TierFull30
	default:
		return domain.TierFull180
	}
}

// DegradedSignals is the best-available signal set for a user, with the
// windows that could not be computed left nil.
type DegradedSignals struct {
	Tier          domain.AvailabilityTier `json:"data_availability"`
	CanCompute30  bool                    `json:"can_compute_30d"`
	CanCompute180 bool                    `json:"can_compute_180d"`
	Signals30d    *domain.SignalBundle    `json:"signals_30d,omitempty"`
	Signals180d   *domain.SignalBundle    `json:"signals_180d,omitempty"`
	Disclaimer    string                  `json:"disclaimer,omitempty"`
}

// Controller applies graceful degradation: it decides which windows are
// computable from the user's data age and annotates partial results.
type Controller struct {
	agg      *Aggregator
	windower *Partitioner
	log      zerolog.Logger
}

// NewController creates a degradation controller around an aggregator.
func NewController(agg *Aggregator, log zerolog.Logger) *Controller {
	return &Controller{agg: agg, windower: agg.windower, log: log}
}

// Availability classifies the user's current data availability.
func (c *Controller) Availability(ctx context.Context, userID string) (domain.AvailabilityTier, error) {
	age, err := c.windower.DataAgeDays(ctx, userID)
	if err != nil {
		return "", err
	}
	return ClassifyTier(age), nil
}

// SignalsWithDegradation computes the best available signal set for a user.
// New users get no signals and a welcome disclaimer; limited users get a
// preliminary 30d bundle; the full tiers get one or both windows. With
// bypassCache every computable window is recomputed even when a cached
// bundle is still fresh.
func (c *Controller) SignalsWithDegradation(ctx context.Context, userID string, bypassCache bool) (DegradedSignals, error) {
	tier, err := c.Availability(ctx, userID)
	if err != nil {
		return DegradedSignals{}, err
	}

	out := DegradedSignals{Tier: tier}
	switch tier {
	case domain.TierNew:
		out.Disclaimer = DisclaimerNewUser
	case domain.TierLimited:
		out.Disclaimer = DisclaimerPreliminary
		out.CanCompute30 = true
	case domain.TierFull30:
		out.CanCompute30 = true
	case domain.TierFull180:
		out.CanCompute30 = true
		out.CanCompute180 = true
	}

	if out.CanCompute30 {
		b, err := c.agg.ComputeSignals(ctx, userID, domain.Window30d, bypassCache)
		if err != nil {
			return DegradedSignals{}, err
		}
		out.Signals30d = &b
	}
	if out.CanCompute180 {
		b, err := c.agg.ComputeSignals(ctx, userID, domain.Window180d, bypassCache)
		if err != nil {
			return DegradedSignals{}, err
		}
		out.Signals180d = &b
	}

	c.log.Debug().
		Str("user_id", userID).
		Str("tier", string(tier)).
		Bool("can_30d", out.CanCompute30).
		Bool("can_180d", out.CanCompute180).
		Msg("Degradation applied")

	return out, nil
}

// PrimarySignals returns the bundle downstream persona logic should use:
// the 180d bundle when available, else the 30d bundle, else an all-zero
// placeholder for brand-new users.
func (c *Controller) PrimarySignals(ctx context.Context, userID string, bypassCache bool) (domain.SignalBundle, domain.AvailabilityTier, error) {
	degraded, err := c.SignalsWithDegradation(ctx, userID, bypassCache)
	if err != nil {
		return domain.SignalBundle{}, "", err
	}
	switch {
	case degraded.Signals180d != nil:
		return *degraded.Signals180d, degraded.Tier, nil
	case degraded.Signals30d != nil:
		return *degraded.Signals30d, degraded.Tier, nil
	default:
		// Placeholder bundle for users with no computable window.
		return domain.SignalBundle{
			UserID: userID,
			Income: domain.IncomeSignals{PayrollFrequency: domain.PayUnknown},
		}, degraded.Tier, nil
	}
}
