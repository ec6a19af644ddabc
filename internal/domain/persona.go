package domain

import "time"

// Persona is one of the fixed behavioral archetypes.
type Persona string

const (
	PersonaHighUtilization   Persona = "High Utilization"
	PersonaVariableIncome    Persona = "Variable Income Budgeter"
	PersonaCreditBuilder     Persona = "Credit Builder"
	PersonaSubscriptionHeavy Persona = "Subscription-Heavy"
	PersonaSavingsBuilder    Persona = "Savings Builder"

	// PersonaWelcome is assigned to users with under a week of data, before
	// any signal computation is possible. Priority 0, outside the rule table.
	PersonaWelcome Persona = "Welcome"
)

// TraceReason explains which selection path the prioritizer took.
type TraceReason string

const (
	ReasonNoMatches         TraceReason = "no_matches"
	ReasonSingleMatch       TraceReason = "single_match"
	ReasonPrioritySelection TraceReason = "priority_selection"
	ReasonNewUser           TraceReason = "new_user"
)

// TieBreak names the rule that resolved a same-priority tie.
type TieBreak string

const (
	TieBreakNone           TieBreak = ""
	TieBreakSignalStrength TieBreak = "signal_strength"
	TieBreakDefinedOrder   TieBreak = "defined_order"
)

// DecisionTrace is the audit record of one persona selection. It is the sole
// record of how the choice was made and must be reproducible from the same
// inputs. Serialized to JSON only at the storage and API boundaries.
type DecisionTrace struct {
	Reason               TraceReason         `json:"reason"`
	MatchedPersonas      []Persona           `json:"matched_personas"`
	HighestPriority      int                 `json:"highest_priority,omitempty"`
	CandidatesAtPriority []Persona           `json:"candidates_at_priority,omitempty"`
	SignalStrengths      map[Persona]float64 `json:"signal_strengths,omitempty"`
	TieBreaker           TieBreak            `json:"tie_breaker,omitempty"`
	Selected             Persona             `json:"selected"`
	DataAvailability     AvailabilityTier    `json:"data_availability,omitempty"`
	WindowType           WindowType          `json:"window_type,omitempty"`
}

// PersonaAssignment is one row of the append-only assignment history. The
// current assignment for a user is the one with the latest AssignedAt.
type PersonaAssignment struct {
	AssignmentID   string        `json:"assignment_id"`
	UserID         string        `json:"user_id"`
	Persona        Persona       `json:"persona_name"`
	PriorityLevel  int           `json:"priority_level"`
	SignalStrength float64       `json:"signal_strength"`
	Trace          DecisionTrace `json:"decision_trace"`
	AssignedAt     time.Time     `json:"assigned_at"`
}
