package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const maxRetries = 3
const baseDelay = 2 * time.Second

const defaultMaxTokens = 1024

type claude struct {
	client anthropic.Client
	model  string
}

func newClaude(apiKey, model string) LLM {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &claude{client: client, model: model}
}

func (c *claude) Generate(ctx context.Context, systemPrompt string, messages []Message, params Params) (string, error) {
	var anthropicMessages []anthropic.MessageParam
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(block))
		} else {
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(block))
		}
	}

	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages:  anthropicMessages,
	}

	if systemPrompt != "" {
		req.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}
	if params.TopP > 0 {
		req.TopP = anthropic.Float(params.TopP)
	}
	// frequency/presence penalties are not supported by this backend

	var resp *anthropic.Message
	var err error
	for attempt := range maxRetries {
		resp, err = c.client.Messages.New(ctx, req)
		if err == nil {
			break
		}
		if !isRetryableError(err) {
			return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
		}
		if attempt < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<attempt))
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}

func isRetryableError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "529") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "502")
}
