package models

import (
	"database/sql"
	"time"
)

// VideoMetadata 為 yt-dlp 取得的影片資訊，下載後唯讀
type VideoMetadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"` // YYYYMMDD
	Duration    float64 `json:"duration"`
	ViewCount   int64   `json:"view_count"`
	LikeCount   int64   `json:"like_count"`
	URL         string  `json:"url,omitempty"`
}

// DownloadedVideo 為帳號下載中的單筆輸出：本機路徑與影片頁面網址
type DownloadedVideo struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// Segment 為帶時間軸的轉錄片段
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription 為 whisper 的轉錄結果
type Transcription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
}

// AnalysisStatus 定義單支影片在流程中的狀態
type AnalysisStatus string

const (
	StatusPending     AnalysisStatus = "pending"
	StatusDownloaded  AnalysisStatus = "downloaded"
	StatusTranscribed AnalysisStatus = "transcribed"
	StatusAnalyzed    AnalysisStatus = "analyzed"
	StatusCompleted   AnalysisStatus = "completed"
	StatusFailed      AnalysisStatus = "failed"
)

// VideoRecord 對應 video_results 資料表
type VideoRecord struct {
	ID               int64           `json:"id"`
	RunID            string          `json:"run_id"`
	VideoURL         string          `json:"video_url"`
	Title            sql.NullString  `json:"-"`
	Uploader         sql.NullString  `json:"-"`
	UploadDate       sql.NullString  `json:"-"`
	ViewCount        int64           `json:"view_count"`
	LikeCount        int64           `json:"like_count"`
	Status           AnalysisStatus  `json:"status"`
	Provider         sql.NullString  `json:"-"`
	CredibilityScore sql.NullInt64   `json:"-"`
	Verdict          sql.NullString  `json:"-"`
	Transcript       *JsonNullString `json:"transcript,omitempty"`
	Analysis         *JsonNullString `json:"analysis,omitempty"`
	ErrorMessage     *JsonNullString `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ChartRecord 回傳可供圖表使用的扁平紀錄
func (r VideoRecord) ChartRecord() ChartRecord {
	score := 0
	if r.CredibilityScore.Valid {
		score = int(r.CredibilityScore.Int64)
	}
	verdict := VerdictNonVerifie
	if r.Verdict.Valid && r.Verdict.String != "" {
		verdict = Verdict(r.Verdict.String)
	}
	return ChartRecord{
		Title:            r.Title.String,
		CredibilityScore: score,
		Verdict:          verdict,
		UploadDate:       r.UploadDate.String,
	}
}

// RunRecord 對應 analysis_runs 資料表
type RunRecord struct {
	ID                 string         `json:"id"`
	Source             string         `json:"source"`
	VideoCount         int            `json:"video_count"`
	AverageCredibility float64        `json:"average_credibility"`
	VerifiedCount      int            `json:"verified_count"`
	UnverifiedCount    int            `json:"unverified_count"`
	JSONPath           sql.NullString `json:"-"`
	MarkdownPath       sql.NullString `json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
}
