package guardrails

import (
	"regexp"
)

// toneReplacement is substituted for every blocked phrase.
const toneReplacement = "there's an opportunity to improve"

// shamingPhrases is the case-insensitive blocklist of shaming language.
// Matching is substring-based over the rationale text.
var shamingPhrases = []string{
	`you're overspending`,
	`you are overspending`,
	`you overspent`,
	`bad choices`,
	`poor choices`,
	`you're wasting money`,
	`you're bad with money`,
	`you're irresponsible`,
	`you're reckless`,
	`you should feel bad`,
	`you're terrible at`,
	`you fail at`,
	`you're horrible at`,
	`you're wrong`,
	`you're stupid`,
	`you're dumb`,
	`you're lazy`,
	`you're careless`,
	`you're foolish`,
	`you're incompetent`,
	`you're a failure`,
	`you're pathetic`,
	`you're hopeless`,
	`you're clueless`,
	`you're ignorant`,
	`you're uneducated`,
	`you're broke`,
	`you're poor`,
	`you're destitute`,
	`you're bankrupt`,
	`you're in debt`,
	`you're drowning in debt`,
	`you're buried in debt`,
	`you're a debtor`,
	`you're a deadbeat`,
	`you're a spendthrift`,
	`you're a wastrel`,
	`you're throwing away money`,
	`you're burning money`,
	`you're flushing money down the toilet`,
	`you're squandering`,
	`you're being wasteful`,
	`you're being irresponsible`,
	`you're being reckless`,
	`you're being foolish`,
	`you're being stupid`,
	`you're being dumb`,
	`you're being lazy`,
	`you're being careless`,
	`you're being incompetent`,
	`you're being a failure`,
	`you're being pathetic`,
	`you're being hopeless`,
	`you're being clueless`,
	`you're being ignorant`,
	`you're being uneducated`,
	`you're being broke`,
	`you're being poor`,
	`you're being destitute`,
	`you're being bankrupt`,
	`you're being in debt`,
	`you're being a debtor`,
	`you're being a deadbeat`,
	`you're being a spendthrift`,
	`you're being a wastrel`,
}

// ToneValidator detects and rewrites shaming language in rationale text.
type ToneValidator struct {
	patterns []*regexp.Regexp
}

// NewToneValidator compiles the blocklist.
func NewToneValidator() *ToneValidator {
	v := &ToneValidator{patterns: make([]*regexp.Regexp, 0, len(shamingPhrases))}
	for _, phrase := range shamingPhrases {
		v.patterns = append(v.patterns, regexp.MustCompile(`(?i)`+phrase))
	}
	return v
}

// Validate reports whether the text is free of blocked phrases, with the
// phrases it found.
func (v *ToneValidator) Validate(text string) (bool, []string) {
	var issues []string
	for i, p := range v.patterns {
		if p.MatchString(text) {
			issues = append(issues, shamingPhrases[i])
		}
	}
	return len(issues) == 0, issues
}

// Sanitize replaces every blocked phrase with a neutral alternative. Clean
// text comes back unchanged.
func (v *ToneValidator) Sanitize(text string) string {
	out := text
	for _, p := range v.patterns {
		out = p.ReplaceAllString(out, toneReplacement)
	}
	return out
}
