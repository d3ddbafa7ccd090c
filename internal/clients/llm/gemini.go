package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"TikTokFactCheck/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

type geminiClient struct {
	model     *genai.GenerativeModel
	modelName string
}

func newGeminiClient(ctx context.Context, cfg config.LLMConfig) (*geminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey)
	}
	modelName := cfg.GeminiModel
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	sdkClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
	}
	model := sdkClient.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxTokens)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemMessage))

	return &geminiClient{model: model, modelName: modelName}, nil
}

func (c *geminiClient) complete(ctx context.Context, prompt string) (string, json.RawMessage, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", nil, fmt.Errorf("Gemini API GenerateContent 失敗: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil, fmt.Errorf("%w: Gemini 沒有候選回應", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", nil, fmt.Errorf("%w: Gemini 回應被阻止或為空 (FinishReason: %s)", ErrEmptyResponse, candidate.FinishReason.String())
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := cleanResponseText(sb.String())
	if text == "" {
		return "", nil, fmt.Errorf("%w: Gemini 回傳的文字內容為空", ErrEmptyResponse)
	}

	raw, err := json.Marshal(map[string]any{
		"model":         c.modelName,
		"finish_reason": candidate.FinishReason.String(),
		"text":          text,
	})
	if err != nil {
		return "", nil, fmt.Errorf("無法編碼 Gemini 原始回應: %w", err)
	}
	return text, raw, nil
}

// cleanResponseText 去除 markdown 代碼塊標記、無效 UTF-8 與控制字元
func cleanResponseText(s string) string {
	cleaned := strings.TrimSpace(s)
	for _, fence := range []string{"```markdown", "```md", "```"} {
		if strings.HasPrefix(cleaned, fence) {
			cleaned = strings.TrimPrefix(cleaned, fence)
			cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
			break
		}
	}
	if !utf8.ValidString(cleaned) {
		cleaned = strings.ToValidUTF8(cleaned, "")
	}

	var sb strings.Builder
	for _, r := range cleaned {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(strings.TrimPrefix(sb.String(), "\uFEFF"))
}
