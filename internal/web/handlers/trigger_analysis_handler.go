package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/services"
)

// AnalyzeRunner 為手動觸發所需的流程
type AnalyzeRunner interface {
	AnalyzeURL(ctx context.Context, url string, trigger string) (*services.RunOutput, error)
	AnalyzeUser(ctx context.Context, username string, maxVideos int, trigger string) (*services.RunOutput, error)
}

// TriggerRequest 為手動分析的請求內容；URL 與 Username 擇一
type TriggerRequest struct {
	URL       string `json:"url"`
	Username  string `json:"username"`
	MaxVideos int    `json:"max_videos"`
}

// TriggerAnalysisHandler 在背景執行手動觸發的分析，同時間只允許一個
type TriggerAnalysisHandler struct {
	ctx         context.Context
	runner      AnalyzeRunner
	log         logger.Logger
	mu          sync.Mutex
	isAnalyzing bool
	done        func()
}

// NewTriggerAnalysisHandler 建立 TriggerAnalysisHandler；ctx 取消時背景任務隨之取消
func NewTriggerAnalysisHandler(ctx context.Context, runner AnalyzeRunner, log logger.Logger) *TriggerAnalysisHandler {
	if runner == nil {
		panic("TriggerAnalysisHandler：AnalyzeRunner 不得為空")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TriggerAnalysisHandler{ctx: ctx, runner: runner, log: log}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ServeHTTP 實現 http.Handler 介面
func (h *TriggerAnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.log.Info("[TriggerAnalysisHandler] 收到請求",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.String("remote", r.RemoteAddr))

	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "無效的 JSON 內容"})
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Username = strings.TrimSpace(req.Username)
	if (req.URL == "") == (req.Username == "") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url 與 username 必須擇一提供"})
		return
	}

	h.mu.Lock()
	if h.isAnalyzing {
		h.mu.Unlock()
		h.log.Warn("[TriggerAnalysisHandler] 手動分析已在進行中，拒絕新的觸發")
		writeJSON(w, http.StatusConflict, map[string]string{"error": "分析任務已在進行中，請稍候。"})
		return
	}
	h.isAnalyzing = true
	h.mu.Unlock()

	go h.run(req)

	writeJSON(w, http.StatusOK, map[string]string{"message": "分析已觸發，正在背景執行。請稍後查看結果。"})
}

func (h *TriggerAnalysisHandler) run(req TriggerRequest) {
	defer func() {
		h.mu.Lock()
		h.isAnalyzing = false
		h.mu.Unlock()
		if h.done != nil {
			h.done()
		}
	}()

	var (
		out *services.RunOutput
		err error
	)
	if req.URL != "" {
		out, err = h.runner.AnalyzeURL(h.ctx, req.URL, services.TriggerManual)
	} else {
		out, err = h.runner.AnalyzeUser(h.ctx, req.Username, req.MaxVideos, services.TriggerManual)
	}
	if err != nil {
		h.log.Error("[TriggerAnalysisHandler] 手動觸發的分析任務執行失敗", logger.Error(err))
		return
	}
	h.log.Info("[TriggerAnalysisHandler] 手動觸發的分析任務執行成功",
		logger.String("run_id", out.RunID),
		logger.String("json", out.Paths.JSON))
}
