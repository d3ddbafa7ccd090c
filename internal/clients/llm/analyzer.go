// Package llm 將轉錄文字送往單一 LLM 供應商進行內容分析。
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
)

var (
	// ErrMissingAPIKey 表示供應商需要的 API 金鑰未設定
	ErrMissingAPIKey = errors.New("API 金鑰未設定")
	// ErrLocalStatus 表示本地 LLM 回傳非 200 狀態碼
	ErrLocalStatus = errors.New("本地 LLM API 錯誤")
	// ErrEmptyResponse 表示供應商沒有回傳任何內容
	ErrEmptyResponse = errors.New("LLM 回應為空")
)

const (
	temperature = 0.7
	maxTokens   = 2000
)

// completer 為每個供應商各自實作的呼叫
type completer interface {
	complete(ctx context.Context, prompt string) (text string, raw json.RawMessage, err error)
}

// Analyzer 在建立時固定供應商，之後每次分析都只呼叫該供應商
type Analyzer struct {
	provider models.Provider
	backend  completer
	observe  func(provider models.Provider, elapsed time.Duration, err error)
	log      logger.Logger
}

// Option 調整 Analyzer
type Option func(*analyzerOptions)

type analyzerOptions struct {
	httpClient *http.Client
	observe    func(models.Provider, time.Duration, error)
}

// WithHTTPClient 指定 openai / anthropic / local 使用的 HTTP 客戶端
func WithHTTPClient(c *http.Client) Option {
	return func(o *analyzerOptions) { o.httpClient = c }
}

// WithObserver 在每次呼叫後回報耗時與錯誤 (供指標使用)
func WithObserver(fn func(models.Provider, time.Duration, error)) Option {
	return func(o *analyzerOptions) { o.observe = fn }
}

// NewAnalyzer 依供應商建立分析器；金鑰缺漏或供應商未知時立即失敗
func NewAnalyzer(provider models.Provider, cfg config.LLMConfig, log logger.Logger, opts ...Option) (*Analyzer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	o := analyzerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var (
		backend completer
		err     error
	)
	switch provider {
	case models.ProviderOpenAI:
		backend, err = newOpenAIClient(cfg, o.httpClient)
	case models.ProviderAnthropic:
		backend, err = newAnthropicClient(cfg, o.httpClient)
	case models.ProviderLocal:
		backend, err = newLocalClient(cfg, o.httpClient)
	case models.ProviderGemini:
		backend, err = newGeminiClient(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedProvider, provider)
	}
	if err != nil {
		return nil, err
	}

	log.Info("[Analyzer] 初始化完成", logger.String("provider", string(provider)))
	return &Analyzer{
		provider: provider,
		backend:  backend,
		observe:  o.observe,
		log:      log.With(logger.String("component", "analyzer"), logger.String("provider", string(provider))),
	}, nil
}

// Provider 回傳建立時選定的供應商
func (a *Analyzer) Provider() models.Provider {
	return a.provider
}

// AnalyzeContent 以固定提示分析轉錄文字；供應商錯誤直接回傳，不重試
func (a *Analyzer) AnalyzeContent(ctx context.Context, transcription string, metadata *models.VideoMetadata) (*models.AnalysisResult, error) {
	prompt := BuildPrompt(transcription, metadata)
	a.log.Info("[Analyzer] 送出分析請求", logger.Int("prompt_chars", len([]rune(prompt))))

	start := time.Now()
	text, raw, err := a.backend.complete(ctx, prompt)
	elapsed := time.Since(start)
	if a.observe != nil {
		a.observe(a.provider, elapsed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s 分析失敗: %w", a.provider, err)
	}

	a.log.Info("[Analyzer] 分析完成", logger.Duration("elapsed", elapsed), logger.Int("analysis_chars", len([]rune(text))))
	return &models.AnalysisResult{
		Provider:    a.provider,
		Analysis:    text,
		RawResponse: raw,
	}, nil
}
