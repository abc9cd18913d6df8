package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// GeminiCompleter backs Completer with Google's Generative AI API.
// Grounded on the donor's internal/llm/gemini_client.go, trimmed to
// the single-shot text completion path (no tool calling/history — no
// knowledge source in this engine needs multi-turn agent calls).
type GeminiCompleter struct {
	client *genai.Client
	model  string
	logger *logging.Logger
}

// NewGeminiCompleter builds a Gemini-backed Completer. model falls
// back to gemini-2.0-flash, the donor's default.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiCompleter{
		client: client,
		model:  model,
		logger: logging.With("component", "llm.gemini"),
	}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt, purpose string) (string, error) {
	systemInstruction := genai.Text("Respond concisely for purpose: " + purpose)[0]
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       ptrFloat32(0.1),
		MaxOutputTokens:   2000,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	c.logger.Debug("gemini completion", "purpose", purpose, "prompt_length", len(prompt), "response_length", len(text))
	return text, nil
}

func ptrFloat32(f float64) *float32 {
	v := float32(f)
	return &v
}
