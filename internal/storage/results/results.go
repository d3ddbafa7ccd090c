// Package results 將分析結果存成 JSON 與 Markdown 報告。
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
)

// ErrNoResults 表示輸出目錄中沒有任何結果檔
var ErrNoResults = errors.New("找不到任何結果檔")

const (
	defaultPrefix   = "analysis"
	timestampLayout = "20060102_150405"
)

// SavedPaths 為一次儲存產生的兩個檔案
type SavedPaths struct {
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
}

// ResultStorage 管理輸出目錄中的結果檔
type ResultStorage struct {
	outputDir string
	now       func() time.Time
	log       logger.Logger
}

// Option 調整 ResultStorage
type Option func(*ResultStorage)

// WithClock 指定檔名與報告標題使用的時鐘
func WithClock(now func() time.Time) Option {
	return func(s *ResultStorage) { s.now = now }
}

// NewResultStorage 建立 ResultStorage 並確保輸出目錄存在
func NewResultStorage(outputDir string, log logger.Logger, opts ...Option) (*ResultStorage, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("ResultStorage：輸出目錄不得為空")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立輸出目錄 '%s': %w", outputDir, err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &ResultStorage{outputDir: outputDir, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OutputDir 回傳輸出目錄
func (s *ResultStorage) OutputDir() string {
	return s.outputDir
}

// SaveResults 寫出 {prefix}_{timestamp}.json 與同名 .md；prefix 為空時使用 "analysis"
func (s *ResultStorage) SaveResults(results any, prefix string) (*SavedPaths, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	base := fmt.Sprintf("%s_%s", prefix, s.now().Format(timestampLayout))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, fmt.Errorf("無法序列化結果: %w", err)
	}

	markdown, err := s.GenerateMarkdown(results)
	if err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(s.outputDir, base+".json")
	if err := os.WriteFile(jsonPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("寫入 JSON 檔案 '%s' 失敗: %w", jsonPath, err)
	}
	mdPath := filepath.Join(s.outputDir, base+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("寫入 Markdown 檔案 '%s' 失敗: %w", mdPath, err)
	}

	s.log.Info("[ResultStorage] 結果已儲存", logger.String("json", jsonPath), logger.String("markdown", mdPath))
	return &SavedPaths{JSON: jsonPath, Markdown: mdPath}, nil
}

// LoadResults 讀回 JSON 結果檔，只檢查 JSON 格式
func (s *ResultStorage) LoadResults(path string) (any, error) {
	return LoadResults(path)
}

// LoadResults 讀回 JSON 結果檔，只檢查 JSON 格式
func LoadResults(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("讀取結果檔 '%s' 失敗: %w", path, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("結果檔 '%s' 不是有效的 JSON: %w", path, err)
	}
	return out, nil
}

// LoadReport 將結果檔解析為 models.Report
func LoadReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("讀取結果檔 '%s' 失敗: %w", path, err)
	}
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("無法解析報告 '%s': %w", path, err)
	}
	return &report, nil
}

// LatestJSON 回傳輸出目錄中修改時間最新的 JSON 結果檔
func (s *ResultStorage) LatestJSON() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.outputDir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoResults
	}

	type entry struct {
		path string
		mod  time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		entries = append(entries, entry{path: m, mod: info.ModTime()})
	}
	if len(entries) == 0 {
		return "", ErrNoResults
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].mod.Equal(entries[j].mod) {
			return strings.Compare(entries[i].path, entries[j].path) > 0
		}
		return entries[i].mod.After(entries[j].mod)
	})
	return entries[0].path, nil
}

// LatestReport 讀取最新的結果檔
func (s *ResultStorage) LatestReport() (*models.Report, string, error) {
	path, err := s.LatestJSON()
	if err != nil {
		return nil, "", err
	}
	report, err := LoadReport(path)
	if err != nil {
		return nil, "", err
	}
	return report, path, nil
}
