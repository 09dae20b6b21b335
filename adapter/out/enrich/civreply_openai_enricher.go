// Package enrich provides the optional LLM reply enrichment adapter.
package enrich

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"civreply_server/core/port/out"
)

// =============================================================================
// OpenAI Enricher
// =============================================================================

const systemPrompt = "You write one short, factual intro sentence for a council's " +
	"reply to a resident enquiry. Plain text, no links, no promises of " +
	"specific outcomes, no personal data. One or two sentences at most."

const defaultModel = "gpt-4o-mini"

// OpenAIEnricher implements out.ReplyEnricher. When no API key is
// configured, Available reports false and the pipeline keeps its
// deterministic template intro.
type OpenAIEnricher struct {
	client *openai.Client
	model  string
}

// NewOpenAIEnricher creates the enricher. apiKey may be empty.
func NewOpenAIEnricher(apiKey, model string) *OpenAIEnricher {
	e := &OpenAIEnricher{model: model}
	if e.model == "" {
		e.model = defaultModel
	}
	if apiKey != "" {
		e.client = openai.NewClient(apiKey)
	}
	return e
}

// Available reports whether enrichment is configured.
func (e *OpenAIEnricher) Available() bool {
	return e.client != nil
}

// Enrich produces an intro sentence for the reply.
func (e *OpenAIEnricher) Enrich(ctx context.Context, req *out.EnrichRequest) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("enricher not configured")
	}

	user := fmt.Sprintf(
		"Council: %s\nTopics: %s\nSubject: %s\nEnquiry: %s",
		req.CouncilName,
		strings.Join(req.Topics, ", "),
		req.Subject,
		truncateRunes(req.Body, 1500),
	)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.3,
		MaxTokens:   120,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
