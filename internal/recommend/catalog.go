// Package recommend builds candidate education content and partner offers
// for a user's persona, generates plain-language rationales, and persists
// whatever survives the guardrails pipeline.
package recommend

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// EducationItem is one entry of the static education catalog.
type EducationItem struct {
	Title       string
	Description string
	Category    string
	Persona     domain.Persona
}

// DefaultEducationCount is how many education items a recommendation set
// carries by default.
const DefaultEducationCount = 5

// EducationItems returns up to count catalog items for the persona, in
// catalog order. Unknown personas get an empty slice.
func EducationItems(persona domain.Persona, count int) []EducationItem {
	items := educationCatalog[persona]
	if count < len(items) {
		return items[:count]
	}
	return items
}

var educationCatalog = map[domain.Persona][]EducationItem{
	domain.PersonaHighUtilization: {
		{Title: "Avalanche vs Snowball: Debt Paydown Strategies", Description: "Compare two popular debt payoff methods to find the best approach for your situation.", Category: "Debt Management", Persona: domain.PersonaHighUtilization},
		{Title: "How Credit Utilization Affects Your Score", Description: "Learn how keeping your credit utilization below 30% can improve your credit score.", Category: "Credit Education", Persona: domain.PersonaHighUtilization},
		{Title: "Setting Up Autopay to Avoid Late Fees", Description: "Step-by-step guide to setting up automatic payments and saving on late fees.", Category: "Payment Management", Persona: domain.PersonaHighUtilization},
		{Title: "Balance Transfer Cards: Pros and Cons", Description: "Understand when balance transfer cards can help and when they might not be worth it.", Category: "Debt Management", Persona: domain.PersonaHighUtilization},
		{Title: "Creating a Debt Payoff Timeline", Description: "Build a realistic timeline to become debt-free based on your current situation.", Category: "Financial Planning", Persona: domain.PersonaHighUtilization},
	},
	domain.PersonaVariableIncome: {
		{Title: "Percent-Based Budgeting for Irregular Income", Description: "Learn to budget using percentages instead of fixed amounts when income varies.", Category: "Budgeting", Persona: domain.PersonaVariableIncome},
		{Title: "Building a 3-Month Emergency Fund", Description: "Why 3 months matters for variable income earners and how to build it gradually.", Category: "Emergency Fund", Persona: domain.PersonaVariableIncome},
		{Title: "Smoothing Income with Savings Buffers", Description: "Use savings to smooth out income fluctuations and maintain consistent spending.", Category: "Cash Flow", Persona: domain.PersonaVariableIncome},
		{Title: "Essential vs Discretionary: Priority Spending", Description: "Identify must-have expenses and prioritize them when income is uncertain.", Category: "Budgeting", Persona: domain.PersonaVariableIncome},
		{Title: "Cash Flow Forecasting Basics", Description: "Simple methods to predict your cash flow and avoid shortfalls.", Category: "Financial Planning", Persona: domain.PersonaVariableIncome},
	},
	domain.PersonaCreditBuilder: {
		{Title: "Credit 101: How Credit Works", Description: "Fundamentals of credit scores, credit reports, and how they affect your financial options.", Category: "Credit Basics", Persona: domain.PersonaCreditBuilder},
		{Title: "Secured Credit Cards Explained", Description: "How secured cards work and why they're a great first step to building credit.", Category: "Credit Building", Persona: domain.PersonaCreditBuilder},
		{Title: "Building Credit Without Going Into Debt", Description: "Smart strategies to build credit history without accumulating debt.", Category: "Credit Building", Persona: domain.PersonaCreditBuilder},
		{Title: "Credit Myths Debunked", Description: "Common misconceptions about credit and the truth behind them.", Category: "Credit Education", Persona: domain.PersonaCreditBuilder},
		{Title: "When to Use Credit vs Debit", Description: "Guidelines for choosing between credit and debit cards for different situations.", Category: "Credit Education", Persona: domain.PersonaCreditBuilder},
	},
	domain.PersonaSubscriptionHeavy: {
		{Title: "The $200 Subscription Audit Checklist", Description: "A systematic approach to reviewing all your subscriptions and identifying savings.", Category: "Subscription Management", Persona: domain.PersonaSubscriptionHeavy},
		{Title: "Negotiating Lower Bills: Scripts That Work", Description: "Proven scripts and strategies for negotiating lower subscription rates.", Category: "Subscription Management", Persona: domain.PersonaSubscriptionHeavy},
		{Title: "Setting Up Subscription Alerts", Description: "How to set up alerts and reminders to avoid forgotten subscriptions.", Category: "Subscription Management", Persona: domain.PersonaSubscriptionHeavy},
		{Title: "Free Alternatives to Paid Services", Description: "Quality free alternatives to common paid subscriptions.", Category: "Subscription Management", Persona: domain.PersonaSubscriptionHeavy},
		{Title: "Annual vs Monthly: The True Cost", Description: "Calculate whether annual subscriptions actually save you money.", Category: "Subscription Management", Persona: domain.PersonaSubscriptionHeavy},
	},
	domain.PersonaSavingsBuilder: {
		{Title: "SMART Goal Setting for Savings", Description: "Set Specific, Measurable, Achievable, Relevant, and Time-bound savings goals.", Category: "Goal Setting", Persona: domain.PersonaSavingsBuilder},
		{Title: "Automating Savings: Set It and Forget It", Description: "How to automate your savings so you don't have to think about it.", Category: "Savings Automation", Persona: domain.PersonaSavingsBuilder},
		{Title: "High-Yield Savings Accounts Explained", Description: "Why HYSA rates matter and how to find the best accounts.", Category: "Savings Optimization", Persona: domain.PersonaSavingsBuilder},
		{Title: "CD Laddering for Better Returns", Description: "Advanced strategy for maximizing returns on your savings with certificates of deposit.", Category: "Savings Optimization", Persona: domain.PersonaSavingsBuilder},
		{Title: "Emergency Fund vs Investment: What Goes Where", Description: "How to balance emergency fund needs with long-term investment goals.", Category: "Financial Planning", Persona: domain.PersonaSavingsBuilder},
	},
	domain.PersonaWelcome: {
		{Title: "Getting Started with Financial Planning", Description: "Basic steps to take control of your finances and build healthy habits.", Category: "Getting Started", Persona: domain.PersonaWelcome},
		{Title: "Understanding Your Financial Dashboard", Description: "Learn how to read and use your insights effectively.", Category: "Getting Started", Persona: domain.PersonaWelcome},
		{Title: "Building Your First Budget", Description: "Simple budgeting strategies for beginners.", Category: "Budgeting", Persona: domain.PersonaWelcome},
		{Title: "The Importance of Emergency Funds", Description: "Why emergency funds matter and how to start building one.", Category: "Emergency Fund", Persona: domain.PersonaWelcome},
		{Title: "Credit Basics for Beginners", Description: "Essential credit concepts everyone should understand.", Category: "Credit Basics", Persona: domain.PersonaWelcome},
	},
}
