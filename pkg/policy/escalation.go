package policy

import "fmt"

const (
	DefaultMaxTurns = 6
	DefaultMinScore = 0.12
)

// ReasonLowConfidence is reported when retrieval cannot ground an answer.
const ReasonLowConfidence = "Insufficient documentation coverage (low retrieval confidence)"

// Decision is the outcome of an escalation check. Reason is empty when
// Escalate is false.
type Decision struct {
	Escalate bool
	Reason   string
}

// EscalationPolicy decides when to stop answering and hand off to a human.
type EscalationPolicy struct {
	MaxTurns int
	MinScore float64
}

func NewEscalationPolicy(maxTurns int, minScore float64) EscalationPolicy {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if minScore < 0 {
		minScore = DefaultMinScore
	}
	return EscalationPolicy{MaxTurns: maxTurns, MinScore: minScore}
}

// ShouldEscalate checks the turn limit first; the confidence check only runs
// when the limit is not reached.
func (p EscalationPolicy) ShouldEscalate(turns int, bestScore float64) Decision {
	if turns >= p.MaxTurns {
		return Decision{Escalate: true, Reason: fmt.Sprintf("Exceeded max turns (%d)", p.MaxTurns)}
	}
	if bestScore < p.MinScore {
		return Decision{Escalate: true, Reason: ReasonLowConfidence}
	}
	return Decision{}
}
