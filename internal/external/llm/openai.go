package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// OpenAICompleter backs Completer with the OpenAI chat completions
// API. Grounded on the donor's internal/llm/client.go OpenAI branch.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger *logging.Logger
}

// NewOpenAICompleter builds an OpenAI-backed Completer. model falls
// back to gpt-4o-mini, matching the donor's cost-efficient default.
func NewOpenAICompleter(apiKey, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logging.With("component", "llm.openai"),
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt, purpose string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Respond concisely for purpose: " + purpose},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.0,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion", "purpose", purpose, "prompt_length", len(prompt), "response_length", len(text))
	return text, nil
}
