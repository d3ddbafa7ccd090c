package handlers

import (
	"context"
	"errors"

	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/results"
)

// VideoLister 為資料庫中讀取影片紀錄的操作
type VideoLister interface {
	ListRecentVideos(ctx context.Context, limit int) ([]models.VideoRecord, error)
}

// ReportLoader 讀取最新的結果檔
type ReportLoader interface {
	LatestReport() (*models.Report, string, error)
}

// RecordSource 提供儀表板與匯出使用的影片紀錄；有資料庫時優先使用資料庫
type RecordSource struct {
	db      VideoLister
	reports ReportLoader
}

// NewRecordSource 建立 RecordSource；db 可為 nil
func NewRecordSource(db VideoLister, reports ReportLoader) *RecordSource {
	return &RecordSource{db: db, reports: reports}
}

// Recent 回傳最多 limit 筆影片紀錄
func (s *RecordSource) Recent(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if s.db != nil {
		return s.db.ListRecentVideos(ctx, limit)
	}
	if s.reports == nil {
		return nil, nil
	}

	report, _, err := s.reports.LatestReport()
	if errors.Is(err, results.ErrNoResults) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	records := make([]models.VideoRecord, 0, len(report.Videos))
	for _, v := range report.Videos {
		if limit > 0 && len(records) >= limit {
			break
		}
		records = append(records, *v.Record(""))
	}
	return records, nil
}
