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

// localClient 呼叫 Ollama 相容的 /api/generate
type localClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func newLocalClient(cfg config.LLMConfig, httpClient *http.Client) (*localClient, error) {
	baseURL := cfg.LocalURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.LocalModel
	if model == "" {
		model = "llama2"
	}
	return &localClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}, nil
}

func (c *localClient) complete(ctx context.Context, prompt string) (string, json.RawMessage, error) {
	bodyBytes, err := json.Marshal(map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return "", nil, fmt.Errorf("無法編碼本地 LLM 請求: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("本地 LLM 請求失敗: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: %d", ErrLocalStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("讀取本地 LLM 回應失敗: %w", err)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil, fmt.Errorf("無法解析本地 LLM 回應: %w", err)
	}
	return result.Response, json.RawMessage(body), nil
}
