package models

import "database/sql"

// ReportMetadata 為報告的總覽資訊
type ReportMetadata struct {
	Source       string `json:"source"`
	VideoCount   int    `json:"video_count"`
	AnalysisDate string `json:"analysis_date"`
	Provider     string `json:"provider,omitempty"`
}

// VideoResult 為單支影片的完整結果
type VideoResult struct {
	Title         string            `json:"title"`
	URL           string            `json:"url,omitempty"`
	VideoPath     string            `json:"video_path,omitempty"`
	Metadata      *VideoMetadata    `json:"metadata,omitempty"`
	Transcription *Transcription    `json:"transcription,omitempty"`
	LLMAnalysis   *AnalysisResult   `json:"llm_analysis,omitempty"`
	FactChecking  *FactCheckSummary `json:"fact_checking,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Statistics 為整份報告的統計
type Statistics struct {
	AverageCredibility float64 `json:"average_credibility"`
	VerifiedCount      int     `json:"verified_count"`
	UnverifiedCount    int     `json:"unverified_count"`
}

// Report 彙整多支影片的結果，由 ResultStorage 持久化
type Report struct {
	Metadata   ReportMetadata `json:"metadata"`
	Videos     []VideoResult  `json:"videos"`
	Statistics Statistics     `json:"statistics"`
}

// ChartRecord 為圖表使用的扁平紀錄
type ChartRecord struct {
	Title            string  `json:"title"`
	CredibilityScore int     `json:"credibility_score"`
	Verdict          Verdict `json:"verdict"`
	UploadDate       string  `json:"upload_date"`
}

// ChartRecords 將報告中已完成查核的影片轉為圖表紀錄
func (r *Report) ChartRecords() []ChartRecord {
	records := make([]ChartRecord, 0, len(r.Videos))
	for _, v := range r.Videos {
		if v.FactChecking == nil {
			continue
		}
		rec := ChartRecord{
			Title:            v.Title,
			CredibilityScore: v.FactChecking.CredibilityScore,
			Verdict:          v.FactChecking.Verdict,
		}
		if v.Metadata != nil {
			rec.UploadDate = v.Metadata.UploadDate
		}
		records = append(records, rec)
	}
	return records
}

// Transcripts 回傳所有影片的轉錄文字
func (r *Report) Transcripts() []string {
	var texts []string
	for _, v := range r.Videos {
		if v.Transcription != nil && v.Transcription.Text != "" {
			texts = append(texts, v.Transcription.Text)
		}
	}
	return texts
}

// ComputeStatistics 依影片結果計算統計；失敗的影片不列入平均
func ComputeStatistics(videos []VideoResult) Statistics {
	var stats Statistics
	total := 0
	for _, v := range videos {
		if v.FactChecking == nil {
			continue
		}
		total += v.FactChecking.CredibilityScore
		if v.FactChecking.Verdict == VerdictNonVerifie {
			stats.UnverifiedCount++
		} else {
			stats.VerifiedCount++
		}
	}
	if n := stats.VerifiedCount + stats.UnverifiedCount; n > 0 {
		stats.AverageCredibility = float64(total) / float64(n)
	}
	return stats
}

// Record 將影片結果轉為 video_results 資料列；沒有網址時以影片路徑作為鍵
func (v VideoResult) Record(runID string) *VideoRecord {
	key := v.URL
	if key == "" {
		key = v.VideoPath
	}
	rec := &VideoRecord{
		RunID:        runID,
		VideoURL:     key,
		Title:        nullString(v.Title),
		ErrorMessage: NewJsonNullString(v.Error),
	}
	if v.Metadata != nil {
		rec.Uploader = nullString(v.Metadata.Uploader)
		rec.UploadDate = nullString(v.Metadata.UploadDate)
		rec.ViewCount = v.Metadata.ViewCount
		rec.LikeCount = v.Metadata.LikeCount
	}
	if v.Transcription != nil {
		rec.Transcript = NewJsonNullString(v.Transcription.Text)
	}
	if v.LLMAnalysis != nil {
		rec.Provider = nullString(string(v.LLMAnalysis.Provider))
		rec.Analysis = NewJsonNullString(v.LLMAnalysis.Analysis)
	}
	if v.FactChecking != nil {
		rec.CredibilityScore = sql.NullInt64{Int64: int64(v.FactChecking.CredibilityScore), Valid: true}
		rec.Verdict = nullString(string(v.FactChecking.Verdict))
	}

	switch {
	case v.Error != "":
		rec.Status = StatusFailed
	case v.FactChecking != nil:
		rec.Status = StatusCompleted
	case v.LLMAnalysis != nil:
		rec.Status = StatusAnalyzed
	case v.Transcription != nil:
		rec.Status = StatusTranscribed
	case v.VideoPath != "":
		rec.Status = StatusDownloaded
	default:
		rec.Status = StatusPending
	}
	return rec
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
