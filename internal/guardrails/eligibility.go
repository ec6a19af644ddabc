package guardrails

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// harmfulProducts are product categories that are never shown, regardless of
// eligibility.
var harmfulProducts = []string{
	"payday loan",
	"payday lending",
	"title loan",
	"pawn shop",
	"predatory lending",
	"high-cost loan",
}

const minCreditScoreProxy = 650

// EligibilityChecker filters partner offers the user cannot or should not
// take: harmful products, products the user already holds, and offers whose
// minimum requirements the user's signals do not meet.
type EligibilityChecker struct {
	accounts store.AccountStore
	log      zerolog.Logger
}

// NewEligibilityChecker creates an eligibility checker.
func NewEligibilityChecker(accounts store.AccountStore, log zerolog.Logger) *EligibilityChecker {
	return &EligibilityChecker{accounts: accounts, log: log}
}

// CheckOffer reports whether the user is eligible for the offer, with the
// reasons for a rejection.
func (c *EligibilityChecker) CheckOffer(ctx context.Context, userID string, rec domain.Recommendation, signals domain.SignalBundle) (bool, []string, error) {
	if isHarmfulProduct(rec.Title) {
		return false, []string{"harmful financial product"}, nil
	}

	has, err := c.userHasProduct(ctx, userID, rec)
	if err != nil {
		return false, nil, fmt.Errorf("CheckOffer: %w", err)
	}
	if has {
		return false, []string{fmt.Sprintf("user already has %s", rec.OfferType)}, nil
	}

	if ok, reasons := meetsMinimumRequirements(rec, signals); !ok {
		return false, reasons, nil
	}
	return true, nil, nil
}

func isHarmfulProduct(title string) bool {
	lower := strings.ToLower(title)
	for _, h := range harmfulProducts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// userHasProduct checks account holdings against the offer. A high-yield
// savings offer is redundant for money market or HSA holders; a secured card
// is redundant for users who already carry credit.
func (c *EligibilityChecker) userHasProduct(ctx context.Context, userID string, rec domain.Recommendation) (bool, error) {
	accounts, err := c.accounts.AccountsByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("userHasProduct: %w", err)
	}
	title := strings.ToLower(rec.Title)

	switch rec.OfferType {
	case domain.OfferSavingsAccount:
		if !strings.Contains(title, "high-yield") {
			return false, nil
		}
		for _, a := range accounts {
			if a.Subtype == domain.SubtypeMoneyMarket || a.Subtype == domain.SubtypeHSA {
				return true, nil
			}
		}
	case domain.OfferCreditCard:
		if !strings.Contains(title, "secured") {
			return false, nil
		}
		for _, a := range accounts {
			if a.Type == domain.AccountTypeCredit {
				return true, nil
			}
		}
	}
	return false, nil
}

// meetsMinimumRequirements applies per-offer-type floors. The credit score
// proxy is a rough estimate derived from utilization.
func meetsMinimumRequirements(rec domain.Recommendation, signals domain.SignalBundle) (bool, []string) {
	if rec.OfferType != domain.OfferCreditCard {
		return true, nil
	}
	if !strings.Contains(strings.ToLower(rec.Title), "balance transfer") {
		return true, nil
	}
	proxy := 750 - signals.Credit.Utilization*2
	if proxy < minCreditScoreProxy {
		return false, []string{fmt.Sprintf("credit score proxy %.0f below minimum %d", proxy, minCreditScoreProxy)}
	}
	return true, nil
}
