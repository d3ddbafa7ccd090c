package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TikTokFactCheck/internal/app"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/scheduler"
	"TikTokFactCheck/internal/web"
)

func main() {
	cfg, err := config.Load("./configs", "config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "錯誤：無法載入設定: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "錯誤：無法初始化日誌: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("[App] 應用程式設定載入成功", logger.String("app", cfg.AppName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, "", log)
	if err != nil {
		log.Fatal("[App] 初始化失敗", logger.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Warn("[App] 釋放資源失敗", logger.Error(err))
		}
	}()

	if cfg.Scheduler.Enabled {
		log.Info("[App] 排程器已在設定檔中啟用，正在初始化...")
		appScheduler, err := scheduler.NewScheduler(ctx, application.Pipeline,
			cfg.Scheduler.CronSpec, cfg.Scheduler.WatchUsers, cfg.Scheduler.MaxVideos, log)
		if err != nil {
			log.Fatal("[App] 初始化排程器失敗", logger.Error(err))
		}
		appScheduler.Start()
		defer appScheduler.Stop()
	} else {
		log.Info("[App] 排程器已在設定檔中禁用")
	}

	deps := web.RouterDeps{
		Runner:  application.Pipeline,
		Reports: application.Results,
		Videos:  application.Videos,
		Viz:     application.Visualizer,
		Metrics: application.Metrics,
	}
	if application.DB != nil {
		deps.DB = application.DB
		deps.Runs = application.DB
	}
	router, err := web.SetupRouter(ctx, deps, log)
	if err != nil {
		log.Fatal("[App] 設定 HTTP 路由失敗", logger.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("[App] HTTP 伺服器正在監聽", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("[App] HTTP 伺服器監聽失敗", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("[App] 收到關閉訊號，正在關閉應用程式...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("[App] HTTP 伺服器優雅關閉失敗", logger.Error(err))
	}
	log.Info("[App] 應用程式已成功關閉")
}
