package llm

import (
	"context"
	"fmt"

	"github.com/liliang-cn/chatspark/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAIClient creates a completion client. An empty baseURL uses the
// official OpenAI endpoint; any OpenAI-compatible server works otherwise.
func NewOpenAIClient(baseURL, apiKey, defaultModel string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

// Complete issues a single chat completion with a system and a user message.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt, conversationID, modelID string) (domain.CompletionResult, error) {
	model := modelID
	if model == "" {
		model = c.defaultModel
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		User: conversationID,
	})
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResult{TotalTokens: resp.Usage.TotalTokens}, nil
	}

	return domain.CompletionResult{
		Reply:       resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}
