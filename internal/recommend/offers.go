package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// PartnerOffer is one entry of the static partner offer catalog.
type PartnerOffer struct {
	Title            string
	Description      string
	OfferType        string
	Requirements     []string
	EstimatedBenefit string
}

// DefaultOfferCount caps how many offers a recommendation set carries.
const DefaultOfferCount = 3

const securedCardMinCheckingBalance = 500

// OfferGenerator selects catalog offers a user plausibly qualifies for.
// These checks gate candidate generation only; the guardrails pipeline
// re-judges every offer before it can be shown.
type OfferGenerator struct {
	accounts store.AccountStore
	log      zerolog.Logger
}

// NewOfferGenerator creates an offer generator.
func NewOfferGenerator(accounts store.AccountStore, log zerolog.Logger) *OfferGenerator {
	return &OfferGenerator{accounts: accounts, log: log}
}

// GenerateOffers returns up to maxOffers catalog offers matching the user's
// persona and signals, in catalog order.
func (g *OfferGenerator) GenerateOffers(ctx context.Context, userID string, persona domain.Persona, b domain.SignalBundle, maxOffers int) ([]PartnerOffer, error) {
	accounts, err := g.accounts.AccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GenerateOffers: %w", err)
	}

	var out []PartnerOffer
	for _, offer := range offerCatalog {
		if len(out) >= maxOffers {
			break
		}
		if g.qualifies(offer, persona, b, accounts) {
			out = append(out, offer)
		}
	}
	return out, nil
}

func (g *OfferGenerator) qualifies(offer PartnerOffer, persona domain.Persona, b domain.SignalBundle, accounts []domain.Account) bool {
	switch offer.Title {
	case offerBalanceTransfer:
		proxy := 750 - b.Credit.Utilization*2
		return b.Credit.Utilization >= 30 && proxy >= 650

	case offerHighYieldSavings:
		building := b.Savings.EmergencyFundMonths < 3 || b.Savings.SavingsGrowthRate > 0
		for _, a := range accounts {
			if a.Subtype == domain.SubtypeMoneyMarket {
				return false
			}
		}
		return building

	case offerBudgetingApp:
		return persona == domain.PersonaVariableIncome

	case offerSubscriptionTool:
		return b.Subscriptions.Count >= 5

	case offerSubscriptionAudit:
		return persona == domain.PersonaSubscriptionHeavy && b.Subscriptions.Count >= 2

	case offerSecuredCard:
		if persona != domain.PersonaCreditBuilder {
			return false
		}
		checking := 0.0
		for _, a := range accounts {
			if a.IsChecking() {
				checking += a.BalanceCurrent
			}
		}
		return checking >= securedCardMinCheckingBalance
	}
	return false
}

const (
	offerBalanceTransfer   = "Balance Transfer Credit Card"
	offerHighYieldSavings  = "High-Yield Savings Account"
	offerBudgetingApp      = "Budgeting App Subscription"
	offerSubscriptionTool  = "Subscription Management Tool"
	offerSecuredCard       = "Secured Credit Card"
	offerSubscriptionAudit = "Subscription Audit Service"
)

var offerCatalog = []PartnerOffer{
	{
		Title:            offerBalanceTransfer,
		Description:      "Transfer high-interest debt to a card with 0% APR for 15-18 months. Save on interest while paying down debt.",
		OfferType:        domain.OfferCreditCard,
		Requirements:     []string{"Credit utilization >= 30%", "Credit score >= 650"},
		EstimatedBenefit: "Save $50-200/month on interest charges",
	},
	{
		Title:            offerHighYieldSavings,
		Description:      "Earn 4-5% APY on your savings compared to traditional savings accounts. FDIC insured up to $250,000.",
		OfferType:        domain.OfferSavingsAccount,
		Requirements:     []string{"Building emergency fund", "No existing HYSA"},
		EstimatedBenefit: "Earn $100-500/year more on savings",
	},
	{
		Title:            offerBudgetingApp,
		Description:      "Track income, expenses, and savings goals with automated categorization. Perfect for variable income earners.",
		OfferType:        domain.OfferApp,
		Requirements:     []string{"Variable income", "No existing budgeting app"},
		EstimatedBenefit: "Save 2-3 hours/month on budgeting",
	},
	{
		Title:            offerSubscriptionTool,
		Description:      "Track all your subscriptions in one place, get alerts for price changes, and find cancellation opportunities.",
		OfferType:        domain.OfferApp,
		Requirements:     []string{"5+ active subscriptions"},
		EstimatedBenefit: "Save $20-50/month on unused subscriptions",
	},
	{
		Title:            offerSecuredCard,
		Description:      "Build credit history with a secured card that reports to all three credit bureaus. Your deposit secures the credit line.",
		OfferType:        domain.OfferCreditCard,
		Requirements:     []string{"Credit builder persona", "Checking balance >= $500"},
		EstimatedBenefit: "Build credit score 50-100 points in 6-12 months",
	},
	{
		Title:            offerSubscriptionAudit,
		Description:      "Professional review of your subscriptions with personalized recommendations. Identify hidden costs and cancellation opportunities.",
		OfferType:        domain.OfferService,
		Requirements:     []string{"Subscription-heavy profile", "2+ active subscriptions"},
		EstimatedBenefit: "Save $50-150/month on subscriptions",
	},
}
