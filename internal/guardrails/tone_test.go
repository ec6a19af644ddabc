package guardrails

import (
	"strings"
	"testing"
)

func TestToneValidate(t *testing.T) {
	v := NewToneValidator()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean text", "Your recurring subscriptions total $45/month. Reviewing them could free up cash.", true},
		{"direct shaming", "You're overspending on subscriptions.", false},
		{"case insensitive", "YOU'RE OVERSPENDING on subscriptions.", false},
		{"mid-sentence", "We noticed bad choices in your spending.", false},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := v.Validate(tt.text)
			if got != tt.want {
				t.Errorf("Validate(%q) = %v (issues %v), want %v", tt.text, got, issues, tt.want)
			}
		})
	}
}

func TestToneSanitize(t *testing.T) {
	v := NewToneValidator()

	got := v.Sanitize("You're overspending on subscriptions and making poor choices.")
	if strings.Contains(strings.ToLower(got), "overspending") || strings.Contains(got, "poor choices") {
		t.Errorf("Sanitize left blocked phrases in %q", got)
	}
	if strings.Count(got, toneReplacement) != 2 {
		t.Errorf("Sanitize = %q, want both phrases replaced", got)
	}
	if valid, issues := v.Validate(got); !valid {
		t.Errorf("sanitized text still fails validation: %v", issues)
	}
}

func TestToneSanitize_CleanTextUnchanged(t *testing.T) {
	v := NewToneValidator()
	text := "Setting up an automatic transfer can grow your emergency fund."
	if got := v.Sanitize(text); got != text {
		t.Errorf("Sanitize(%q) = %q, want unchanged", text, got)
	}
}
