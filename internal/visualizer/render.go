package visualizer

import (
	"fmt"
	"os"
	"path/filepath"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
)

// 輸出檔名
const (
	CredibilityFile = "credibility.html"
	VerdictFile     = "verdicts.html"
	TimelineFile    = "timeline.html"
	WordCloudFile   = "wordcloud.html"
	DashboardFile   = "dashboard.html"
)

// RenderReport 將報告的所有圖表寫入 dir，回傳實際寫出的檔案；沒有日期時不產生時間軸
func (v *Visualizer) RenderReport(report *models.Report, dir string) ([]string, error) {
	if report == nil {
		return nil, fmt.Errorf("報告不得為空")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立圖表目錄 '%s': %w", dir, err)
	}

	records := report.ChartRecords()
	var written []string
	path := func(name string) string { return filepath.Join(dir, name) }

	if _, err := v.CreateCredibilityChart(records, path(CredibilityFile)); err != nil {
		return written, err
	}
	written = append(written, path(CredibilityFile))

	if _, err := v.CreateVerdictPie(records, path(VerdictFile)); err != nil {
		return written, err
	}
	written = append(written, path(VerdictFile))

	line, err := v.CreateTimelineChart(records, path(TimelineFile))
	if err != nil {
		return written, err
	}
	if line != nil {
		written = append(written, path(TimelineFile))
	}

	if _, err := v.CreateWordCloud(report.Transcripts(), path(WordCloudFile)); err != nil {
		return written, err
	}
	written = append(written, path(WordCloudFile))

	if _, err := v.CreateDashboard(records, path(DashboardFile)); err != nil {
		return written, err
	}
	written = append(written, path(DashboardFile))

	v.log.Info("[Visualizer] 報告圖表已產生", logger.String("dir", dir), logger.Int("files", len(written)))
	return written, nil
}
