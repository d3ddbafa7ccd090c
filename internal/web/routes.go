package web

import (
	"context"
	"fmt"
	"net/http"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/metrics"
	"TikTokFactCheck/internal/visualizer"
	"TikTokFactCheck/internal/web/handlers"
)

// RouterDeps 為 HTTP 路由需要的元件；DB 與 Metrics 可為 nil
type RouterDeps struct {
	Runner  handlers.AnalyzeRunner
	DB      handlers.VideoLister
	Runs    handlers.RunReader
	Reports handlers.ReportLoader
	Videos  handlers.PathResolver
	Viz     *visualizer.Visualizer
	Metrics *metrics.Metrics
}

// SetupRouter 註冊所有路由；ctx 為手動觸發任務的生命週期
func SetupRouter(ctx context.Context, deps RouterDeps, log logger.Logger) (http.Handler, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("SetupRouter：分析流程不得為空")
	}
	if deps.Reports == nil && deps.DB == nil {
		return nil, fmt.Errorf("SetupRouter：需要資料庫或結果目錄")
	}
	if deps.Viz == nil {
		deps.Viz = visualizer.New(log)
	}

	mux := http.NewServeMux()
	source := handlers.NewRecordSource(deps.DB, deps.Reports)

	mux.Handle("/dashboard", handlers.NewDashboardHandler(source, deps.Viz, log))
	mux.Handle("/manual-analyze", handlers.NewTriggerAnalysisHandler(ctx, deps.Runner, log))
	mux.Handle("/export", handlers.NewExportHandler(source, log))
	if deps.Videos != nil {
		// StripPrefix 移除 "/media/" 後，剩餘的相對路徑交給 VideoHandler
		mux.Handle("/media/", http.StripPrefix("/media/", handlers.NewVideoHandler(deps.Videos, log)))
	}
	if deps.Runs != nil {
		mux.Handle("/runs/", http.StripPrefix("/runs/", handlers.NewRunHandler(deps.Runs, log)))
	}
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		log.Warn("[Router] 未匹配的路由", logger.String("path", r.URL.Path))
		http.NotFound(w, r)
	})

	log.Info("[Router] HTTP 路由設定完成")
	return mux, nil
}
