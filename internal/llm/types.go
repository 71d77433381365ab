package llm

import (
	"context"
	"errors"
)

// ErrGenerationUnavailable marks transport failures, non-2xx responses and
// timeouts from the generation backend. Callers recover with a canned
// fallback rather than surfacing the failure.
var ErrGenerationUnavailable = errors.New("generation unavailable")

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

type Message struct {
	Role    string
	Content string
}

// Params tune one generation call. Zero values fall back to provider
// defaults.
type Params struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

type LLM interface {
	Generate(ctx context.Context, systemPrompt string, messages []Message, params Params) (string, error)
}
