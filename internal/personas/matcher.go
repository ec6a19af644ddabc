package personas

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// Match evaluates every rule predicate against the bundle and returns all
// matching personas in table order. Any subset may match; order here carries
// no priority meaning. Pure function: identical bundles always produce the
// identical matched set.
func Match(b domain.SignalBundle) []domain.Persona {
	var matched []domain.Persona
	for _, r := range rules {
		if r.Matches(b) {
			matched = append(matched, r.Persona)
		}
	}
	return matched
}
