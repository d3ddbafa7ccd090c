package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"TikTokFactCheck/internal/config"
)

const (
	openAIModel          = "gpt-4"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

type openAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func newOpenAIClient(cfg config.LLMConfig, httpClient *http.Client) (*openAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
	}
	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIClient{
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *openAIClient) complete(ctx context.Context, prompt string) (string, json.RawMessage, error) {
	reqBody := map[string]any{
		"model": openAIModel,
		"messages": []map[string]string{
			{"role": "system", "content": SystemMessage},
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("無法編碼 OpenAI 請求: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("OpenAI 請求失敗: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("讀取 OpenAI 回應失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("OpenAI API 狀態碼 %d: %s", resp.StatusCode, firstNChars(string(body), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil, fmt.Errorf("無法解析 OpenAI 回應: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", nil, fmt.Errorf("%w: OpenAI 沒有 choices", ErrEmptyResponse)
	}
	return result.Choices[0].Message.Content, json.RawMessage(body), nil
}

func firstNChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
