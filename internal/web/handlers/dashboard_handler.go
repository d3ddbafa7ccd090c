package handlers

import (
	"net/http"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/visualizer"
)

const dashboardLimit = 100

// DashboardHandler 以最近的查核結果產生 ECharts 儀表板
type DashboardHandler struct {
	source *RecordSource
	viz    *visualizer.Visualizer
	log    logger.Logger
}

// NewDashboardHandler 建立一個 DashboardHandler 實例
func NewDashboardHandler(source *RecordSource, viz *visualizer.Visualizer, log logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DashboardHandler{source: source, viz: viz, log: log}
}

// ServeHTTP 實現 http.Handler 介面
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.log.Info("[DashboardHandler] 收到請求", logger.String("method", r.Method), logger.String("path", r.URL.Path))

	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.source.Recent(r.Context(), dashboardLimit)
	if err != nil {
		h.log.Error("[DashboardHandler] 讀取影片紀錄失敗", logger.Error(err))
		http.Error(w, "無法載入儀表板數據", http.StatusInternalServerError)
		return
	}

	chartRecords := make([]models.ChartRecord, 0, len(records))
	for _, rec := range records {
		if !rec.CredibilityScore.Valid {
			continue
		}
		chartRecords = append(chartRecords, rec.ChartRecord())
	}

	page, err := h.viz.CreateDashboard(chartRecords, "")
	if err != nil {
		h.log.Error("[DashboardHandler] 建立儀表板失敗", logger.Error(err))
		http.Error(w, "無法建立儀表板", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		h.log.Error("[DashboardHandler] 輸出儀表板失敗", logger.Error(err))
	}
}
