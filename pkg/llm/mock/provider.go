package mock

import (
	"context"
	"fmt"
	"strings"

	"pin-support-be/pkg/llm"
)

// MockProvider answers without any network call. The reply echoes the issue
// line of the last user message so flows can be exercised offline.
type MockProvider struct{}

var _ llm.LLMProvider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			last = history[i].Content
			break
		}
	}
	return fmt.Sprintf("(MOCK) I can help. Based on what you said: %s\n\n"+
		"If I don't have enough documented steps, I'll escalate to a ticket.", issueLine(last)), nil
}

func (p *MockProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// issueLine pulls the block after "User issue:" when the prompt has one.
func issueLine(content string) string {
	_, rest, found := strings.Cut(content, "User issue:\n")
	if !found {
		return strings.TrimSpace(content)
	}
	issue, _, _ := strings.Cut(rest, "\n\n")
	return strings.TrimSpace(issue)
}
