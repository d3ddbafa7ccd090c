package services

import (
	"context"

	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/results"
)

// VideoDownloader 取得影片檔與中繼資料
type VideoDownloader interface {
	DownloadVideo(ctx context.Context, url string, filename string) (string, error)
	DownloadUserVideos(ctx context.Context, username string, maxVideos int) ([]models.DownloadedVideo, error)
	GetVideoInfo(ctx context.Context, url string) (*models.VideoMetadata, error)
}

// SpeechTranscriber 將影片轉成文字
type SpeechTranscriber interface {
	TranscribeVideo(ctx context.Context, path string, language string) (*models.Transcription, error)
}

// ContentAnalyzer 以 LLM 分析轉錄文字
type ContentAnalyzer interface {
	AnalyzeContent(ctx context.Context, transcription string, metadata *models.VideoMetadata) (*models.AnalysisResult, error)
	Provider() models.Provider
}

// ClaimVerifier 查核主張
type ClaimVerifier interface {
	VerifyClaims(ctx context.Context, claims []string, language string) map[string]models.ClaimVerification
}

// ReportStore 儲存報告檔
type ReportStore interface {
	SaveResults(results any, prefix string) (*results.SavedPaths, error)
}

// RunStore 將結果寫入資料庫
type RunStore interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	SaveVideoRecord(ctx context.Context, rec *models.VideoRecord) error
}

// VideoFiles 管理已下載的影片檔
type VideoFiles interface {
	DeleteVideo(path string) error
}
