package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedProvider 表示不支援的 LLM 供應商
var ErrUnsupportedProvider = errors.New("不支援的 LLM 供應商")

// Provider 為 LLM 供應商的封閉列舉
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderLocal     Provider = "local"
	ProviderGemini    Provider = "gemini"
)

// ParseProvider 將字串轉為 Provider，未知值回傳 ErrUnsupportedProvider
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderLocal, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, s)
	}
}

// AnalysisResult 為 LLM 分析結果，RawResponse 保留供應商原始回應
type AnalysisResult struct {
	Provider    Provider        `json:"provider"`
	Analysis    string          `json:"analysis"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}
