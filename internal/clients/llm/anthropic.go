package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"TikTokFactCheck/internal/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicModel = "claude-3-opus-20240229"

type anthropicClient struct {
	client anthropic.Client
}

func newAnthropicClient(cfg config.LLMConfig, httpClient *http.Client) (*anthropicClient, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingAPIKey)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.AnthropicURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AnthropicURL))
	}
	return &anthropicClient{client: anthropic.NewClient(opts...)}, nil
}

func (c *anthropicClient) complete(ctx context.Context, prompt string) (string, json.RawMessage, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(anthropicModel),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("Anthropic API 呼叫失敗: %w", err)
	}
	if len(message.Content) == 0 {
		return "", nil, fmt.Errorf("%w: Anthropic 沒有內容區塊", ErrEmptyResponse)
	}

	raw := json.RawMessage(message.RawJSON())
	if len(raw) == 0 {
		if b, err := json.Marshal(message); err == nil {
			raw = b
		}
	}
	return message.Content[0].Text, raw, nil
}
