package ticket

import (
	"fmt"
	"sort"
	"strings"
)

// Render produces the plain-text ticket body emailed to the helpdesk. Map
// sections are written with sorted keys so equal tickets render identically.
func Render(t Ticket) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summary: %s\n", t.Summary)
	fmt.Fprintf(&b, "Category: %s\n", t.Category)
	fmt.Fprintf(&b, "Impact/Urgency: %s/%s\n", t.Impact, t.Urgency)

	b.WriteString("\nUser:\n")
	writeMap(&b, t.User)
	b.WriteString("Device:\n")
	writeMap(&b, t.Device)

	b.WriteString("\nDiagnostics:\n")
	writeMap(&b, t.Diagnostics)

	if t.ErrorText != "" {
		b.WriteString("\nError:\n")
		b.WriteString(t.ErrorText)
		b.WriteString("\n")
	}

	if len(t.StepsAttempted) > 0 {
		b.WriteString("\nSteps attempted:\n")
		for _, s := range t.StepsAttempted {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	fmt.Fprintf(&b, "\nEscalation reason: %s\n", t.EscalationReason)

	if len(t.Citations) > 0 {
		b.WriteString("\nSources:\n")
		for _, c := range t.Citations {
			fmt.Fprintf(&b, "  - %s :: %s\n", c.SourceID, c.Title)
		}
	}

	return strings.TrimSpace(b.String()) + "\n"
}

func writeMap(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  - %s: %v\n", k, m[k])
	}
}
