package guardrails

import (
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

// DisclosureText is appended to every recommendation's rationale.
const DisclosureText = "This is educational content, not financial advice. " +
	"Consult a licensed financial advisor for personalized guidance."

// InjectDisclosure appends the standard disclosure to the rationale and sets
// the Disclosure field. Injection is idempotent: a rationale that already
// carries the disclosure is returned unchanged.
func InjectDisclosure(rec domain.Recommendation) domain.Recommendation {
	if strings.Contains(rec.Rationale, DisclosureText) {
		rec.Disclosure = DisclosureText
		return rec
	}
	rec.Rationale = rec.Rationale + "\n\n" + DisclosureText
	rec.Disclosure = DisclosureText
	return rec
}
