package ticket

import (
	"fmt"
	"strings"

	"pin-support-be/pkg/retrieval"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	UnknownCategory  = "unknown"
	DefaultReason    = "Escalated"
	maxSummaryLength = 120
)

// Ticket is the handoff record created once, at escalation.
type Ticket struct {
	Summary          string               `json:"summary"`
	Category         string               `json:"category"`
	Impact           Level                `json:"impact"`
	Urgency          Level                `json:"urgency"`
	User             map[string]any       `json:"user"`
	Device           map[string]any       `json:"device"`
	Diagnostics      map[string]any       `json:"diagnostics"`
	StepsAttempted   []string             `json:"steps_attempted"`
	ErrorText        string               `json:"error_text,omitempty"`
	EscalationReason string               `json:"escalation_reason"`
	Citations        []retrieval.Citation `json:"citations"`
}

// Input carries everything known about the conversation at escalation time.
type Input struct {
	Message   string
	Category  string
	OrgID     string
	UserID    string
	Context   map[string]any
	Collected map[string]any
	Steps     []string
	Citations []retrieval.Citation
	Reason    string
}

// Build assembles a ticket. Maps and slices are copied so later session
// mutations cannot leak into it.
func Build(in Input) Ticket {
	t := Ticket{
		Summary:          summaryFor(in),
		Category:         in.Category,
		Impact:           levelFrom(in.Collected["impact"]),
		Urgency:          levelFrom(in.Collected["urgency"]),
		User:             map[string]any{},
		Device:           map[string]any{},
		Diagnostics:      copyMap(in.Collected),
		StepsAttempted:   append([]string{}, in.Steps...),
		ErrorText:        nonBlankString(in.Collected["error_message"]),
		EscalationReason: in.Reason,
		Citations:        append([]retrieval.Citation{}, in.Citations...),
	}
	if t.Category == "" {
		t.Category = UnknownCategory
	}
	if t.EscalationReason == "" {
		t.EscalationReason = DefaultReason
	}

	if in.OrgID != "" {
		t.User["org_id"] = in.OrgID
	}
	if in.UserID != "" {
		t.User["user_id"] = in.UserID
	}
	for k, v := range in.Context {
		key := strings.ToLower(k)
		switch {
		case strings.HasPrefix(key, "user_"):
			t.User[key] = v
		case strings.HasPrefix(key, "device_"):
			t.Device[key] = v
		}
	}

	return t
}

func summaryFor(in Input) string {
	if s := nonBlankString(in.Collected["summary"]); s != "" {
		return s
	}
	msg := []rune(strings.TrimSpace(in.Message))
	if len(msg) > maxSummaryLength {
		msg = msg[:maxSummaryLength]
	}
	return string(msg)
}

func levelFrom(v any) Level {
	switch Level(strings.ToLower(nonBlankString(v))) {
	case LevelLow:
		return LevelLow
	case LevelHigh:
		return LevelHigh
	default:
		return LevelMedium
	}
}

func nonBlankString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
