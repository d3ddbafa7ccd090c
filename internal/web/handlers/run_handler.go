package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/mysql"
)

// RunReader 為讀取單次執行紀錄的資料庫操作
type RunReader interface {
	GetRun(ctx context.Context, id string) (*models.RunRecord, error)
	ListVideosByRun(ctx context.Context, runID string) ([]models.VideoRecord, error)
}

// RunResponse 為 /runs/{id} 的回應內容
type RunResponse struct {
	Run    *models.RunRecord    `json:"run"`
	Videos []models.VideoRecord `json:"videos"`
}

// RunHandler 以 JSON 回傳單次執行及其影片
type RunHandler struct {
	db  RunReader
	log logger.Logger
}

// NewRunHandler 建立一個 RunHandler 實例
func NewRunHandler(db RunReader, log logger.Logger) *RunHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &RunHandler{db: db, log: log}
}

// ServeHTTP 期望已移除 /runs/ 前綴的執行 ID
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}
	id := strings.Trim(r.URL.Path, "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "無效的執行 ID"})
		return
	}

	run, err := h.db.GetRun(r.Context(), id)
	if errors.Is(err, mysql.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "找不到執行紀錄"})
		return
	}
	if err != nil {
		h.log.Error("[RunHandler] 讀取執行紀錄失敗", logger.String("run_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "無法讀取執行紀錄"})
		return
	}
	videos, err := h.db.ListVideosByRun(r.Context(), id)
	if err != nil {
		h.log.Error("[RunHandler] 讀取影片紀錄失敗", logger.String("run_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "無法讀取影片紀錄"})
		return
	}
	if videos == nil {
		videos = []models.VideoRecord{}
	}
	writeJSON(w, http.StatusOK, RunResponse{Run: run, Videos: videos})
}
