package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"TikTokFactCheck/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfig 表示設定內容不合法
var ErrInvalidConfig = errors.New("設定不合法")

// LLMConfig 對應 LLM 分析器的設定
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"`
	OpenAIAPIKey    string        `mapstructure:"openaiApiKey"`
	OpenAIBaseURL   string        `mapstructure:"openaiBaseUrl"`
	AnthropicAPIKey string        `mapstructure:"anthropicApiKey"`
	AnthropicURL    string        `mapstructure:"anthropicBaseUrl"`
	GeminiAPIKey    string        `mapstructure:"geminiApiKey"`
	GeminiModel     string        `mapstructure:"geminiModel"`
	LocalURL        string        `mapstructure:"localUrl"`
	LocalModel      string        `mapstructure:"localModel"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// StorageConfig 對應結果與影片目錄
type StorageConfig struct {
	OutputDir  string `mapstructure:"outputDir"`
	VideosDir  string `mapstructure:"videosDir"`
	KeepVideos bool   `mapstructure:"keepVideos"`
}

// DownloaderConfig 對應 yt-dlp 設定
type DownloaderConfig struct {
	Binary    string `mapstructure:"binary"`
	Format    string `mapstructure:"format"`
	MaxVideos int    `mapstructure:"maxVideos"`
}

// TranscriberConfig 對應 whisper 設定
type TranscriberConfig struct {
	Binary    string `mapstructure:"binary"`
	ModelSize string `mapstructure:"modelSize"`
	Language  string `mapstructure:"language"`
}

// SearchConfig 對應搜尋引擎設定
type SearchConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// FactCheckConfig 對應事實查核設定
type FactCheckConfig struct {
	MaxClaims int `mapstructure:"maxClaims"`
}

// CacheConfig 對應搜尋結果的 Redis 快取
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig 對應 MySQL 設定
type DatabaseConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Driver        string `mapstructure:"driver"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbName"`
	MigrationPath string `mapstructure:"migrationPath"`
}

// SchedulerConfig 對應定期監控設定
type SchedulerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	CronSpec   string   `mapstructure:"cronSpec"`
	WatchUsers []string `mapstructure:"watchUsers"`
	MaxVideos  int      `mapstructure:"maxVideos"`
}

// ServerConfig 對應 HTTP 伺服器
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config 為整個應用程式的設定，建立一次後傳給各元件
type Config struct {
	AppName     string            `mapstructure:"appName"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Downloader  DownloaderConfig  `mapstructure:"downloader"`
	Transcriber TranscriberConfig `mapstructure:"transcriber"`
	Search      SearchConfig      `mapstructure:"search"`
	FactCheck   FactCheckConfig   `mapstructure:"factCheck"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         logger.Config     `mapstructure:"log"`
}

// 扁平環境變數與設定鍵的對應
var envBindings = map[string]string{
	"llm.openaiApiKey":    "OPENAI_API_KEY",
	"llm.anthropicApiKey": "ANTHROPIC_API_KEY",
	"llm.geminiApiKey":    "GEMINI_API_KEY",
	"llm.localUrl":        "LOCAL_LLM_URL",
	"llm.localModel":      "LOCAL_LLM_MODEL",
	"llm.provider":        "DEFAULT_LLM_PROVIDER",
	"storage.outputDir":   "OUTPUT_DIR",
	"storage.videosDir":   "VIDEOS_DIR",
	"log.level":           "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "TikTokFactCheck")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openaiApiKey", "")
	v.SetDefault("llm.openaiBaseUrl", "https://api.openai.com/v1")
	v.SetDefault("llm.anthropicApiKey", "")
	v.SetDefault("llm.anthropicBaseUrl", "")
	v.SetDefault("llm.geminiApiKey", "")
	v.SetDefault("llm.geminiModel", "gemini-1.5-flash-latest")
	v.SetDefault("llm.localUrl", "http://localhost:11434")
	v.SetDefault("llm.localModel", "llama2")
	v.SetDefault("llm.timeout", time.Duration(0))

	v.SetDefault("storage.outputDir", "results")
	v.SetDefault("storage.videosDir", "videos")
	v.SetDefault("storage.keepVideos", true)

	v.SetDefault("downloader.binary", "yt-dlp")
	v.SetDefault("downloader.format", "best[ext=mp4]")
	v.SetDefault("downloader.maxVideos", 5)

	v.SetDefault("transcriber.binary", "whisper")
	v.SetDefault("transcriber.modelSize", "base")
	v.SetDefault("transcriber.language", "fr")

	v.SetDefault("search.endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.region", "fr-fr")
	v.SetDefault("search.requestsPerSecond", 1.0)
	v.SetDefault("search.timeout", 20*time.Second)

	v.SetDefault("factCheck.maxClaims", 5)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "127.0.0.1:6379")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.migrationPath", "file://scripts/migrate/mysql")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cronSpec", "0 0 */6 * * *")
	v.SetDefault("scheduler.maxVideos", 5)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
}

// Load 讀取 .env、設定檔與環境變數，回傳完整的設定
func Load(configPath string, configName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("讀取 .env 檔案失敗: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("綁定環境變數 %s 失敗: %w", env, err)
		}
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
		fmt.Fprintln(os.Stderr, "警告：找不到設定檔，將使用預設值和環境變數。")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}
	cfg.LLM.Provider = NormalizeProvider(cfg.LLM.Provider)
	return &cfg, nil
}

// NormalizeProvider 統一供應商名稱的大小寫與空白
func NormalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

// Validate 檢查所選 LLM 供應商所需的金鑰
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: 使用 OpenAI 需要 OPENAI_API_KEY", ErrInvalidConfig)
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: 使用 Anthropic 需要 ANTHROPIC_API_KEY", ErrInvalidConfig)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("%w: 使用 Gemini 需要 GEMINI_API_KEY", ErrInvalidConfig)
		}
	case "local":
	default:
		return fmt.Errorf("%w: 不支援的 LLM 供應商 '%s'", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Database.Enabled && c.Database.Driver != "mysql" {
		return fmt.Errorf("%w: 不支援的資料庫驅動程式 '%s'", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

// EnsureDirs 建立結果與影片目錄
func EnsureDirs(c *Config) error {
	for _, dir := range []string{c.Storage.OutputDir, c.Storage.VideosDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("無法建立目錄 '%s': %w", dir, err)
		}
	}
	return nil
}
