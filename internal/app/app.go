// Package app 組裝整條查核流程所需的元件，供命令列與 HTTP 伺服器共用
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"TikTokFactCheck/internal/clients/llm"
	"TikTokFactCheck/internal/clients/search"
	"TikTokFactCheck/internal/clients/whisper"
	"TikTokFactCheck/internal/clients/ytdlp"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/metrics"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/services"
	"TikTokFactCheck/internal/storage/mysql"
	"TikTokFactCheck/internal/storage/results"
	"TikTokFactCheck/internal/storage/videostore"
	"TikTokFactCheck/internal/visualizer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// App 持有所有已初始化的元件
type App struct {
	Config     *config.Config
	Log        logger.Logger
	Metrics    *metrics.Metrics
	Videos     *videostore.FileSystemStorage
	Results    *results.ResultStorage
	DB         *mysql.MySQLStore
	Visualizer *visualizer.Visualizer
	Pipeline   *services.Pipeline

	closers []func() error
}

// New 依設定建立所有元件；provider 為空時使用設定中的供應商。
// 覆寫只作用在 App 自己的設定副本上
func New(ctx context.Context, cfg *config.Config, provider string, log logger.Logger) (*App, error) {
	if provider = config.NormalizeProvider(provider); provider != "" {
		local := *cfg
		local.LLM.Provider = provider
		cfg = &local
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(cfg); err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Log:        log,
		Metrics:    metrics.New(prometheus.NewRegistry()),
		Visualizer: visualizer.New(log),
	}

	var err error
	a.Videos, err = videostore.NewFileSystemStorage(cfg.Storage.VideosDir, log)
	if err != nil {
		return nil, fmt.Errorf("初始化影片儲存失敗: %w", err)
	}
	a.Results, err = results.NewResultStorage(cfg.Storage.OutputDir, log)
	if err != nil {
		return nil, fmt.Errorf("初始化結果儲存失敗: %w", err)
	}

	downloader, err := ytdlp.NewDownloader(cfg.Downloader, a.Videos, log)
	if err != nil {
		return nil, fmt.Errorf("初始化 yt-dlp 失敗: %w", err)
	}
	if err := downloader.CheckAvailable(ctx); err != nil {
		return nil, err
	}
	transcriber, err := whisper.NewTranscriber(ctx, cfg.Transcriber, log)
	if err != nil {
		return nil, fmt.Errorf("初始化 whisper 失敗: %w", err)
	}

	p, err := models.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	analyzer, err := llm.NewAnalyzer(p, cfg.LLM, log, llm.WithObserver(func(prov models.Provider, elapsed time.Duration, err error) {
		a.Metrics.ObserveLLM(string(prov), elapsed, err)
	}))
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM 分析器失敗: %w", err)
	}

	searcher, err := a.newSearcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	checker, err := services.NewFactChecker(searcher, a.Metrics, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := services.PipelineDeps{
		Downloader:  downloader,
		Transcriber: transcriber,
		Analyzer:    analyzer,
		Checker:     checker,
		Reports:     a.Results,
		Files:       a.Videos,
		Metrics:     a.Metrics,
	}
	if cfg.Database.Enabled {
		if err := mysql.RunMigrations(cfg.Database, log); err != nil {
			a.Close()
			return nil, err
		}
		a.DB, err = mysql.NewMySQLStore(cfg.Database, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("初始化 MySQL 資料庫連線失敗: %w", err)
		}
		a.closers = append(a.closers, a.DB.Close)
		deps.Runs = a.DB
	}

	a.Pipeline, err = services.NewPipeline(cfg, deps, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) newSearcher(ctx context.Context) (search.Searcher, error) {
	cfg := a.Config
	var searcher search.Searcher = search.NewDDGClient(cfg.Search, a.Log, &http.Client{Timeout: cfg.Search.Timeout})
	if !cfg.Cache.Enabled {
		return searcher, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("無法連線到 Redis %s: %w", cfg.Cache.Addr, err)
	}
	a.closers = append(a.closers, rdb.Close)
	a.Log.Info("[App] 已啟用搜尋結果快取", logger.String("addr", cfg.Cache.Addr), logger.Duration("ttl", cfg.Cache.TTL))
	return search.NewCachedSearcher(searcher, rdb, cfg.Cache.TTL, a.Log), nil
}

// Close 依建立的相反順序釋放資源
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
