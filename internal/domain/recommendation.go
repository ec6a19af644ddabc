package domain

import "time"

// ContentType distinguishes educational content from partner offers.
type ContentType string

const (
	ContentEducation ContentType = "education"
	ContentOffer     ContentType = "offer"
)

// Offer types used by the eligibility filter.
const (
	OfferSavingsAccount = "savings_account"
	OfferCreditCard     = "credit_card"
	OfferApp            = "app"
	OfferService        = "service"
)

// Recommendation is a candidate content item judged by the guardrails
// pipeline. Guardrails may rewrite Rationale and set Disclosure but never
// touch Title.
type Recommendation struct {
	RecommendationID string      `json:"recommendation_id,omitempty"`
	UserID           string      `json:"user_id,omitempty"`
	Persona          Persona     `json:"persona_name,omitempty"`
	Type             ContentType `json:"type"`
	Title            string      `json:"title"`
	Rationale        string      `json:"rationale"`
	OfferType        string      `json:"offer_type,omitempty"`
	Disclosure       string      `json:"disclosure,omitempty"`
	GeneratedAt      time.Time   `json:"generated_at,omitempty"`
}
