package signals

import (
	"fmt"
	"time"

	"context"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// CacheTTL is the advisory freshness horizon for cached signal bundles.
// The cache is a performance optimization only: a stale or racing entry is
// never a correctness problem because recomputation is idempotent.
const CacheTTL = 24 * time.Hour

// Repository is the storage surface the aggregator needs.
type Repository interface {
	store.TransactionStore
	store.AccountStore
	store.SignalStore
}

// Aggregator runs the window partitioner and all four detectors, assembling
// one SignalBundle per (user, window).
type Aggregator struct {
	repo     Repository
	windower *Partitioner
	useCache bool
	now      func() time.Time
	log      zerolog.Logger
}

// NewAggregator creates an aggregator with caching enabled.
func NewAggregator(repo Repository, windower *Partitioner, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		repo:     repo,
		windower: windower,
		useCache: true,
		now:      time.Now,
		log:      log,
	}
}

// DisableCache turns the signal cache off entirely (reads and writes).
func (a *Aggregator) DisableCache() {
	a.useCache = false
}

// ComputeSignals computes the full signal bundle for a user and window.
// With bypassCache the cached bundle is ignored but the recomputed one still
// overwrites it. Returns InvalidWindowError for unsupported window types.
func (a *Aggregator) ComputeSignals(ctx context.Context, userID string, window domain.WindowType, bypassCache bool) (domain.SignalBundle, error) {
	if !window.Valid() {
		return domain.SignalBundle{}, &domain.InvalidWindowError{WindowType: string(window)}
	}

	if a.useCache && !bypassCache {
		cutoff := a.now().Add(-CacheTTL)
		cached, ok, err := a.repo.FreshBundle(ctx, userID, window, cutoff)
		if err != nil {
			return domain.SignalBundle{}, fmt.Errorf("ComputeSignals: cache lookup: %w", err)
		}
		if ok {
			a.log.Debug().
				Str("user_id", userID).
				Str("window", string(window)).
				Time("computed_at", cached.ComputedAt).
				Msg("Using cached signals")
			return cached, nil
		}
	}

	txs, err := a.windower.TransactionsInWindow(ctx, userID, window)
	if err != nil {
		return domain.SignalBundle{}, err
	}
	accounts, err := a.repo.AccountsByUser(ctx, userID)
	if err != nil {
		return domain.SignalBundle{}, fmt.Errorf("ComputeSignals: fetching accounts: %w", err)
	}
	liabilities, err := a.repo.LiabilitiesByUser(ctx, userID)
	if err != nil {
		return domain.SignalBundle{}, fmt.Errorf("ComputeSignals: fetching liabilities: %w", err)
	}

	windowDays := window.Days()
	bundle := domain.SignalBundle{
		UserID:        userID,
		WindowType:    window,
		ComputedAt:    a.now(),
		Subscriptions: DetectSubscriptions(txs, windowDays),
		Savings:       DetectSavings(txs, accounts, windowDays),
		Credit:        DetectCredit(txs, accounts, liabilities),
		Income:        DetectIncome(txs, accounts, windowDays),
	}

	if a.useCache {
		if err := a.repo.SaveBundle(ctx, bundle); err != nil {
			return domain.SignalBundle{}, fmt.Errorf("ComputeSignals: caching bundle: %w", err)
		}
	}

	a.log.Info().
		Str("user_id", userID).
		Str("window", string(window)).
		Int("subscriptions", bundle.Subscriptions.Count).
		Float64("utilization", bundle.Credit.Utilization).
		Msg("Computed signals")

	return bundle, nil
}
