package prompt

import (
	"fmt"
	"sort"
	"strings"

	"pin-support-be/pkg/llm"
	"pin-support-be/pkg/retrieval"
)

const SystemInstruction = "You are a Tier 0/Tier 1 IT support technician for a single company. " +
	"Stay in scope. Use ONLY the provided KB excerpts as your source of truth. " +
	"If the KB does not contain a safe/clear procedure, say you will escalate. " +
	"Ask concise follow-up questions only if absolutely required. " +
	"Never ask for passwords or secrets."

// GroundedBuilder builds the completion request for one answered turn.
type GroundedBuilder struct {
	message   string
	collected map[string]any
	citations []retrieval.Citation
}

func NewGroundedBuilder(message string, collected map[string]any, citations []retrieval.Citation) *GroundedBuilder {
	return &GroundedBuilder{
		message:   message,
		collected: collected,
		citations: citations,
	}
}

// Messages returns the system instruction followed by the user block.
func (b *GroundedBuilder) Messages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemInstruction},
		{Role: llm.RoleUser, Content: b.Build()},
	}
}

func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeIssue(&prompt)
	b.writeCollected(&prompt)
	b.writeExcerpts(&prompt)
	prompt.WriteString("Respond with: (1) a short diagnosis, (2) numbered steps, (3) what to report back.")

	return prompt.String()
}

func (b *GroundedBuilder) writeIssue(prompt *strings.Builder) {
	prompt.WriteString("User issue:\n")
	prompt.WriteString(b.message)
	prompt.WriteString("\n\n")
}

func (b *GroundedBuilder) writeCollected(prompt *strings.Builder) {
	prompt.WriteString("Collected context:\n")
	lines := SortedPairs(b.collected)
	for i, line := range lines {
		if i > 0 {
			prompt.WriteString("\n")
		}
		prompt.WriteString("- ")
		prompt.WriteString(line)
	}
	prompt.WriteString("\n\n")
}

func (b *GroundedBuilder) writeExcerpts(prompt *strings.Builder) {
	prompt.WriteString("KB excerpts (use these, cite by SOURCE #):\n")
	for i, c := range b.citations {
		if i > 0 {
			prompt.WriteString("\n\n")
		}
		fmt.Fprintf(prompt, "SOURCE %d: %s\n%s", i+1, c.Title, c.Snippet)
	}
	prompt.WriteString("\n\n")
}

// RetrievalQuery is the message followed by the collected fields, one
// "key: value" line each in key order.
func RetrievalQuery(message string, collected map[string]any) string {
	return message + "\n" + strings.Join(SortedPairs(collected), "\n")
}

func SortedPairs(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s: %v", k, m[k])
	}
	return out
}
