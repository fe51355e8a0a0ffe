package summary

import (
	"context"
	"fmt"
	"log"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/gateway"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/prompt"
)

// Summarizer compresses a conversation history into a short context string
// voiced through one persona's system prompt. Results are not cached across
// personas because the instructions are persona-specific.
type Summarizer struct {
	builder *prompt.Builder
	gateway gateway.Client
}

// New wires the summarizer to the prompt builder and gateway.
func New(builder *prompt.Builder, gw gateway.Client) *Summarizer {
	return &Summarizer{builder: builder, gateway: gw}
}

// Summarize returns the generated summary verbatim. An empty history yields
// an empty summary without a gateway call.
func (s *Summarizer) Summarize(ctx context.Context, messages []chat.Message, personaSystemPrompt string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	req := s.builder.Summarize(personaSystemPrompt, messages)
	resp, err := s.gateway.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarize conversation: %w", err)
	}

	log.Printf("[summary] compressed %d messages into %d chars", len(messages), len(resp.Content))
	return resp.Content, nil
}
