package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"TikTokFactCheck/internal/logger"
)

// PathResolver 將相對路徑解析為影片根目錄下的絕對路徑
type PathResolver interface {
	AbsolutePath(relativePath string) (string, error)
}

// VideoHandler 負責提供已下載影片的串流
type VideoHandler struct {
	files PathResolver
	log   logger.Logger
}

// NewVideoHandler 建立一個 VideoHandler 實例
func NewVideoHandler(files PathResolver, log logger.Logger) *VideoHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &VideoHandler{files: files, log: log}
}

// ServeHTTP 期望已移除 /media/ 前綴的相對路徑，例如 user/video.mp4
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	relativePath := strings.TrimPrefix(r.URL.Path, "/")
	if relativePath == "" || strings.HasSuffix(relativePath, "/") {
		http.Error(w, "無效的影片路徑", http.StatusBadRequest)
		return
	}

	fullPath, err := h.files.AbsolutePath(relativePath)
	if err != nil {
		h.log.Warn("[VideoHandler] 偵測到潛在的路徑遍歷嘗試", logger.String("path", relativePath), logger.Error(err))
		http.Error(w, "禁止存取", http.StatusForbidden)
		return
	}

	info, err := os.Stat(fullPath)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("[VideoHandler] 檢查影片檔案時發生錯誤", logger.String("path", fullPath), logger.Error(err))
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}

	h.log.Debug("[VideoHandler] 正在提供影片", logger.String("path", fullPath))
	http.ServeFile(w, r, fullPath)
}
