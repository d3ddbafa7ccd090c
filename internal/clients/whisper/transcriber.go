package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"TikTokFactCheck/internal/clients/cmdrun"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
)

var (
	// ErrFileNotFound 表示要轉錄的檔案不存在
	ErrFileNotFound = fmt.Errorf("找不到影片檔案: %w", fs.ErrNotExist)
	// ErrInvalidModelSize 表示不支援的 whisper 模型大小
	ErrInvalidModelSize = errors.New("不支援的 whisper 模型大小")
)

// ModelSizes 為可用的 whisper 模型
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

const defaultLanguage = "fr"

// Transcriber 以 whisper CLI 轉錄影片或音訊
type Transcriber struct {
	binary    string
	modelSize string
	runner    cmdrun.Runner
	log       logger.Logger
}

// Option 調整 Transcriber
type Option func(*Transcriber)

// WithRunner 替換指令執行器
func WithRunner(r cmdrun.Runner) Option {
	return func(t *Transcriber) { t.runner = r }
}

// NewTranscriber 檢查模型大小並確認 whisper 可用；此呼叫會阻塞直到檢查完成
func NewTranscriber(ctx context.Context, cfg config.TranscriberConfig, log logger.Logger, opts ...Option) (*Transcriber, error) {
	if log == nil {
		log = logger.NewNop()
	}
	size := cfg.ModelSize
	if size == "" {
		size = "base"
	}
	if !validModelSize(size) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModelSize, size)
	}
	t := &Transcriber{
		binary:    cfg.Binary,
		modelSize: size,
		runner:    cmdrun.ExecRunner{},
		log:       log.With(logger.String("component", "transcriber")),
	}
	if t.binary == "" {
		t.binary = "whisper"
	}
	for _, opt := range opts {
		opt(t)
	}

	t.log.Info("[Transcriber] 載入 whisper 模型中...", logger.String("model", size))
	if _, stderr, err := t.runner.Run(ctx, t.binary, "--help"); err != nil {
		return nil, fmt.Errorf("whisper 無法使用 (%s): %w", strings.TrimSpace(string(stderr)), err)
	}
	t.log.Info("[Transcriber] 模型載入成功", logger.String("model", size))
	return t, nil
}

// ModelSize 回傳使用中的模型大小
func (t *Transcriber) ModelSize() string {
	return t.modelSize
}

// TranscribeVideo 轉錄影片音軌；language 為空時使用法文
func (t *Transcriber) TranscribeVideo(ctx context.Context, path string, language string) (*models.Transcription, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("檢查檔案 '%s' 時發生錯誤: %w", path, err)
	}
	if language == "" {
		language = defaultLanguage
	}

	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("無法建立暫存目錄: %w", err)
	}
	defer os.RemoveAll(outDir)

	t.log.Info("[Transcriber] 開始轉錄", logger.String("file", filepath.Base(path)), logger.String("language", language))
	args := []string{
		path,
		"--model", t.modelSize,
		"--language", language,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if _, stderr, err := t.runner.Run(ctx, t.binary, args...); err != nil {
		return nil, fmt.Errorf("whisper 轉錄 '%s' 失敗 (%s): %w", path, strings.TrimSpace(string(stderr)), err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("讀取 whisper 輸出失敗: %w", err)
	}
	result, err := parseOutput(data, language)
	if err != nil {
		return nil, err
	}
	t.log.Info("[Transcriber] 轉錄完成",
		logger.Int("segments", len(result.Segments)), logger.Float64("duration", result.Duration))
	return result, nil
}

// TranscribeAudio 與 TranscribeVideo 相同，音訊檔也可直接轉錄
func (t *Transcriber) TranscribeAudio(ctx context.Context, path string, language string) (*models.Transcription, error) {
	return t.TranscribeVideo(ctx, path, language)
}

func parseOutput(data []byte, language string) (*models.Transcription, error) {
	var out struct {
		Text     string           `json:"text"`
		Segments []models.Segment `json:"segments"`
		Language string           `json:"language"`
		Duration float64          `json:"duration"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("無法解析 whisper 輸出: %w", err)
	}
	result := &models.Transcription{
		Text:     out.Text,
		Segments: out.Segments,
		Language: out.Language,
		Duration: out.Duration,
	}
	if result.Segments == nil {
		result.Segments = []models.Segment{}
	}
	if result.Language == "" {
		result.Language = language
	}
	if result.Duration == 0 && len(result.Segments) > 0 {
		result.Duration = result.Segments[len(result.Segments)-1].End
	}
	return result, nil
}

func validModelSize(size string) bool {
	for _, s := range ModelSizes {
		if s == size {
			return true
		}
	}
	return false
}
