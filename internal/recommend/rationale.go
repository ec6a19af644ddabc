package recommend

import (
	"fmt"
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

// EducationRationale produces a plain-language rationale tying an education
// item to the user's persona and signals. The wording references concrete
// numbers from the bundle so users can see why the item was picked.
func EducationRationale(item EducationItem, b domain.SignalBundle, persona domain.Persona) string {
	switch persona {
	case domain.PersonaHighUtilization:
		return highUtilizationRationale(item, b.Credit)
	case domain.PersonaVariableIncome:
		return variableIncomeRationale(item, b.Income)
	case domain.PersonaCreditBuilder:
		return creditBuilderRationale(item)
	case domain.PersonaSubscriptionHeavy:
		return subscriptionHeavyRationale(item, b.Subscriptions)
	case domain.PersonaSavingsBuilder:
		return savingsBuilderRationale(item, b.Savings)
	}
	return fmt.Sprintf("This content is tailored to your %s profile and can help you achieve your financial goals.", persona)
}

// OfferRationale produces a plain-language rationale for a partner offer.
func OfferRationale(offer PartnerOffer, b domain.SignalBundle) string {
	title := strings.ToLower(offer.Title)

	switch {
	case offer.OfferType == domain.OfferCreditCard && strings.Contains(title, "balance transfer"):
		return fmt.Sprintf(
			"We noticed your credit utilization is at %.1f%%. A balance transfer card with 0%% APR could help you save approximately $%.2f/month in interest charges while you pay down your debt.",
			b.Credit.Utilization, b.Credit.InterestCharges)

	case offer.OfferType == domain.OfferSavingsAccount:
		return fmt.Sprintf(
			"Your savings are growing at %.1f%% and you have %.1f months of expenses covered. A high-yield savings account could help you earn 4-5%% APY, significantly more than traditional savings.",
			b.Savings.SavingsGrowthRate, b.Savings.EmergencyFundMonths)

	case offer.OfferType == domain.OfferApp && strings.Contains(title, "subscription"):
		return fmt.Sprintf(
			"You have %d active subscriptions totaling $%.2f/month. A subscription management tool can help you track these services and identify opportunities to save.",
			b.Subscriptions.Count, b.Subscriptions.MonthlyRecurringSpend)

	case offer.OfferType == domain.OfferCreditCard && strings.Contains(title, "secured"):
		return "A secured credit card is a great first step to building credit history. Your deposit secures the credit line, and responsible use will help establish your credit profile with all three major credit bureaus."
	}
	return "This offer aligns with your financial goals and current situation."
}

func highUtilizationRationale(item EducationItem, c domain.CreditSignals) string {
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "debt") || strings.Contains(title, "payoff"):
		return fmt.Sprintf(
			"Your credit utilization is at %.1f%%, which is above the recommended 30%%. This content can help you develop a strategy to pay down your debt and save approximately $%.2f/month in interest charges.",
			c.Utilization, c.InterestCharges)
	case strings.Contains(title, "utilization") || strings.Contains(title, "score"):
		return fmt.Sprintf(
			"Your current credit utilization of %.1f%% is impacting your credit score. Reducing this to below 30%% could improve your score and lower your interest rates.",
			c.Utilization)
	case strings.Contains(title, "autopay"):
		return fmt.Sprintf(
			"Setting up autopay can help you avoid late fees and improve your credit score. With your current utilization at %.1f%%, on-time payments are especially important.",
			c.Utilization)
	}
	return fmt.Sprintf(
		"This content addresses your high credit utilization (%.1f%%) and can help you reduce debt and improve your financial health.",
		c.Utilization)
}

func variableIncomeRationale(item EducationItem, in domain.IncomeSignals) string {
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "budget"):
		return fmt.Sprintf(
			"With %.0f days between paychecks and only %.1f months of cash buffer, percent-based budgeting can help you manage irregular income more effectively.",
			in.MedianPayGapDays, in.CashFlowBufferMonths)
	case strings.Contains(title, "emergency"):
		return fmt.Sprintf(
			"Your cash buffer is currently %.1f months. Building a 3-month emergency fund will provide stability when income is irregular.",
			in.CashFlowBufferMonths)
	}
	return fmt.Sprintf(
		"This content addresses your variable income situation (%.0f day pay gaps) and can help you better manage cash flow.",
		in.MedianPayGapDays)
}

func creditBuilderRationale(item EducationItem) string {
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "secured"):
		return "A secured credit card is an excellent first step to building credit. Your deposit secures the credit line, and responsible use will establish your credit history with all three major credit bureaus."
	case strings.Contains(title, "credit 101") || strings.Contains(title, "how credit works"):
		return "Understanding how credit works is essential for building a strong financial foundation. This content will help you learn the basics and make informed decisions."
	}
	return "This content will help you build credit responsibly and understand how to use credit as a tool for financial growth."
}

func subscriptionHeavyRationale(item EducationItem, s domain.SubscriptionSignals) string {
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "audit"):
		return fmt.Sprintf(
			"You have %d active subscriptions totaling $%.2f/month. An audit can help you identify services you may no longer need and save money.",
			s.Count, s.MonthlyRecurringSpend)
	case strings.Contains(title, "negotiat"):
		return fmt.Sprintf(
			"With $%.2f/month in subscription costs, negotiating lower rates could save you $10-50/month on your bills.",
			s.MonthlyRecurringSpend)
	}
	return fmt.Sprintf(
		"This content addresses your %d active subscriptions and can help you optimize your recurring expenses.",
		s.Count)
}

func savingsBuilderRationale(item EducationItem, sv domain.SavingsSignals) string {
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "goal"):
		return fmt.Sprintf(
			"Your savings are growing at %.1f%% with $%.2f/month in new savings. Setting SMART goals can help you maximize this growth.",
			sv.SavingsGrowthRate, sv.NetSavingsInflow)
	case strings.Contains(title, "automat"):
		return fmt.Sprintf(
			"Automating your savings can help you maintain your current growth rate of %.1f%% without having to think about it.",
			sv.SavingsGrowthRate)
	case strings.Contains(title, "high-yield") || strings.Contains(title, "hysa"):
		return fmt.Sprintf(
			"With your healthy savings habits ($%.2f/month), a high-yield savings account could help you earn 4-5%% APY instead of the typical 0.01-0.5%%.",
			sv.NetSavingsInflow)
	}
	return fmt.Sprintf(
		"This content builds on your strong savings foundation (%.1f%% growth) and can help you optimize your financial strategy.",
		sv.SavingsGrowthRate)
}
