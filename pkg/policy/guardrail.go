package policy

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxResponseLength = 5000

// BannedPhrases are matched case-insensitively, in this order.
var BannedPhrases = []string{
	"disable antivirus",
	"turn off mfa",
	"bypass",
	"crack",
	"steal",
	"phishing",
	"password please",
}

// GuardrailResult is a normal outcome, not an error: a failed check redirects
// the turn to escalation.
type GuardrailResult struct {
	OK     bool
	Reason string
}

// CheckResponse validates a generated answer before it reaches the user.
func CheckResponse(text string) GuardrailResult {
	lower := strings.ToLower(text)
	for _, p := range BannedPhrases {
		if strings.Contains(lower, p) {
			return GuardrailResult{OK: false, Reason: fmt.Sprintf("Banned phrase detected: %s", p)}
		}
	}
	if utf8.RuneCountInString(text) > MaxResponseLength {
		return GuardrailResult{OK: false, Reason: "Response too long"}
	}
	return GuardrailResult{OK: true}
}

// EscalationReason is the ticket reason recorded for a blocked answer.
func (r GuardrailResult) EscalationReason() string {
	return fmt.Sprintf("Guardrail blocked response: %s", r.Reason)
}
