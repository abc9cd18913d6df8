package llm

import (
	"context"
	"fmt"
)

// Options configures NewFromConfig; mirrors internal/config.LLMConfig
// without importing it, to keep this package independent of the
// config layer's shape.
type Options struct {
	Provider    string // "openai", "gemini", "none"
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
	RedisAddr   string // empty disables the proactive rate limiter
}

// NewFromConfig builds the configured Completer, optionally wrapped in
// a rate limiter when RedisAddr is set.
func NewFromConfig(ctx context.Context, opts Options) (Completer, error) {
	var completer Completer
	var err error

	switch opts.Provider {
	case "openai":
		completer, err = NewOpenAICompleter(opts.OpenAIKey, opts.OpenAIModel)
	case "gemini":
		completer, err = NewGeminiCompleter(ctx, opts.GeminiKey, opts.GeminiModel)
	case "none", "":
		return NoneCompleter{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	if opts.RedisAddr == "" {
		return completer, nil
	}
	return NewRateLimited(completer, opts.RedisAddr, 0)
}
