package personas

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// Select picks exactly one persona from the matched set and emits the
// decision trace. Selection: lowest priority number wins; same-priority ties
// go to the highest signal strength; strength ties fall back to the fixed
// table order. Given identical inputs the result and trace are identical.
func Select(matched []domain.Persona, b domain.SignalBundle) (domain.Persona, domain.DecisionTrace) {
	return selectFrom(rules, matched, b)
}

func selectFrom(table []Rule, matched []domain.Persona, b domain.SignalBundle) (domain.Persona, domain.DecisionTrace) {
	if len(matched) == 0 {
		return domain.PersonaCreditBuilder, domain.DecisionTrace{
			Reason:          domain.ReasonNoMatches,
			MatchedPersonas: []domain.Persona{},
			Selected:        domain.PersonaCreditBuilder,
		}
	}

	if len(matched) == 1 {
		return matched[0], domain.DecisionTrace{
			Reason:          domain.ReasonSingleMatch,
			MatchedPersonas: matched,
			Selected:        matched[0],
		}
	}

	priorityIn := func(p domain.Persona) int {
		for i := range table {
			if table[i].Persona == p {
				return table[i].Priority
			}
		}
		return 0
	}

	highest := 0
	for _, p := range matched {
		if pr := priorityIn(p); highest == 0 || pr < highest {
			highest = pr
		}
	}
	var candidates []domain.Persona
	for _, p := range matched {
		if priorityIn(p) == highest {
			candidates = append(candidates, p)
		}
	}

	trace := domain.DecisionTrace{
		Reason:               domain.ReasonPrioritySelection,
		MatchedPersonas:      matched,
		HighestPriority:      highest,
		CandidatesAtPriority: candidates,
	}

	if len(candidates) == 1 {
		trace.Selected = candidates[0]
		return candidates[0], trace
	}

	strengths := make(map[domain.Persona]float64, len(candidates))
	maxStrength := 0.0
	for i, p := range candidates {
		var s float64
		for j := range table {
			if table[j].Persona == p {
				s = table[j].Strength(b)
				break
			}
		}
		strengths[p] = s
		if i == 0 || s > maxStrength {
			maxStrength = s
		}
	}
	trace.SignalStrengths = strengths

	var strongest []domain.Persona
	for _, p := range candidates {
		if strengths[p] == maxStrength {
			strongest = append(strongest, p)
		}
	}

	if len(strongest) == 1 {
		trace.TieBreaker = domain.TieBreakSignalStrength
		trace.Selected = strongest[0]
		return strongest[0], trace
	}

	// Final tie-break: first in the fixed table order wins.
	trace.TieBreaker = domain.TieBreakDefinedOrder
	for i := range table {
		for _, p := range strongest {
			if p == table[i].Persona {
				trace.Selected = p
				return p, trace
			}
		}
	}

	// Unreachable: strongest is a non-empty subset of the table.
	trace.Selected = strongest[0]
	return strongest[0], trace
}
