package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"TikTokFactCheck/internal/clients/llm"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/metrics"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/results"
	"TikTokFactCheck/internal/storage/videostore"

	"github.com/google/uuid"
)

// 觸發來源
const (
	TriggerCLI       = "cli"
	TriggerManual    = "manual"
	TriggerScheduler = "scheduler"
)

// PipelineDeps 為流程所需的元件；Runs、Files、Metrics 可為 nil
type PipelineDeps struct {
	Downloader  VideoDownloader
	Transcriber SpeechTranscriber
	Analyzer    ContentAnalyzer
	Checker     ClaimVerifier
	Reports     ReportStore
	Runs        RunStore
	Files       VideoFiles
	Metrics     *metrics.Metrics
}

// RunOutput 為一次執行的結果
type RunOutput struct {
	RunID  string
	Report *models.Report
	Paths  *results.SavedPaths
}

// Pipeline 依序處理每支影片：下載 → 轉錄 → 分析 → 擷取主張 → 查核
type Pipeline struct {
	deps       PipelineDeps
	language   string
	maxClaims  int
	maxVideos  int
	keepVideos bool
	now        func() time.Time
	newID      func() string
	log        logger.Logger
}

// NewPipeline 建立 Pipeline
func NewPipeline(cfg *config.Config, deps PipelineDeps, log logger.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Pipeline：設定不得為空")
	}
	if deps.Downloader == nil {
		return nil, fmt.Errorf("Pipeline：Downloader 不得為空")
	}
	if deps.Transcriber == nil {
		return nil, fmt.Errorf("Pipeline：Transcriber 不得為空")
	}
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("Pipeline：Analyzer 不得為空")
	}
	if deps.Checker == nil {
		return nil, fmt.Errorf("Pipeline：FactChecker 不得為空")
	}
	if deps.Reports == nil {
		return nil, fmt.Errorf("Pipeline：ResultStorage 不得為空")
	}
	if log == nil {
		log = logger.NewNop()
	}

	language := cfg.Transcriber.Language
	if language == "" {
		language = "fr"
	}
	maxClaims := cfg.FactCheck.MaxClaims
	if maxClaims <= 0 {
		maxClaims = 5
	}
	log.Info("[Pipeline] 初始化完成",
		logger.String("provider", string(deps.Analyzer.Provider())),
		logger.String("language", language),
		logger.Int("max_claims", maxClaims))

	return &Pipeline{
		deps:       deps,
		language:   language,
		maxClaims:  maxClaims,
		maxVideos:  cfg.Downloader.MaxVideos,
		keepVideos: cfg.Storage.KeepVideos,
		now:        time.Now,
		newID:      uuid.NewString,
		log:        log.With(logger.String("component", "pipeline")),
	}, nil
}

// AnalyzeURL 分析單支影片
func (p *Pipeline) AnalyzeURL(ctx context.Context, url string, trigger string) (*RunOutput, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("影片網址不得為空")
	}
	p.deps.Metrics.ObserveRun(trigger)
	p.log.Info("[Pipeline] 開始分析影片", logger.String("url", url), logger.String("trigger", trigger))

	video := models.VideoResult{URL: url}
	metadata, err := p.deps.Downloader.GetVideoInfo(ctx, url)
	if err != nil {
		p.log.Warn("[Pipeline] 無法取得影片資訊，繼續下載", logger.String("url", url), logger.Error(err))
	} else {
		video.Metadata = metadata
		video.Title = metadata.Title
	}

	path, err := p.deps.Downloader.DownloadVideo(ctx, url, "")
	if err != nil {
		p.log.Error("[Pipeline] 影片下載失敗", logger.String("url", url), logger.Error(err))
		video.Error = "téléchargement: " + err.Error()
	} else {
		video.VideoPath = path
		if video.Title == "" {
			video.Title = titleFromPath(path)
		}
		video = p.processVideo(ctx, video)
	}
	p.recordVideo(video)

	return p.finish(ctx, url, "video", []models.VideoResult{video})
}

// AnalyzeUser 下載並分析帳號最近的影片
func (p *Pipeline) AnalyzeUser(ctx context.Context, username string, maxVideos int, trigger string) (*RunOutput, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("帳號名稱不得為空")
	}
	if maxVideos <= 0 {
		maxVideos = p.maxVideos
	}
	p.deps.Metrics.ObserveRun(trigger)
	p.log.Info("[Pipeline] 開始分析帳號", logger.String("username", username), logger.Int("max_videos", maxVideos), logger.String("trigger", trigger))

	downloaded, err := p.deps.Downloader.DownloadUserVideos(ctx, username, maxVideos)
	if err != nil {
		return nil, fmt.Errorf("下載 @%s 的影片失敗: %w", username, err)
	}
	p.log.Info("[Pipeline] 影片下載完成", logger.Int("count", len(downloaded)))

	var (
		videos                  []models.VideoResult
		successCount, failCount int
	)
	for i, entry := range downloaded {
		if err := ctx.Err(); err != nil {
			p.log.Warn("[Pipeline] 流程被取消，停止處理剩餘影片", logger.Int("remaining", len(downloaded)-i))
			break
		}
		p.log.Info("[Pipeline] 處理影片", logger.Int("index", i+1), logger.Int("total", len(downloaded)), logger.String("path", entry.Path))
		video := p.processVideo(ctx, p.describe(ctx, entry))
		p.recordVideo(video)
		if video.Error != "" {
			failCount++
		} else {
			successCount++
		}
		videos = append(videos, video)
	}
	p.log.Info("[Pipeline] 帳號影片處理完成", logger.Int("success", successCount), logger.Int("failed", failCount))

	return p.finish(ctx, "@"+username, "user_"+videostore.SanitizeName(username), videos)
}

// describe 以影片網址補上中繼資料；取不到時仍以檔名為標題繼續處理
func (p *Pipeline) describe(ctx context.Context, entry models.DownloadedVideo) models.VideoResult {
	video := models.VideoResult{URL: entry.URL, VideoPath: entry.Path}
	if entry.URL != "" {
		metadata, err := p.deps.Downloader.GetVideoInfo(ctx, entry.URL)
		if err != nil {
			p.log.Warn("[Pipeline] 無法取得影片資訊", logger.String("url", entry.URL), logger.Error(err))
		} else {
			video.Metadata = metadata
			video.Title = metadata.Title
		}
	}
	if video.Title == "" {
		video.Title = titleFromPath(entry.Path)
	}
	return video
}

// processVideo 執行轉錄、分析與查核；任一階段失敗即在 Error 記錄原因
func (p *Pipeline) processVideo(ctx context.Context, video models.VideoResult) models.VideoResult {
	transcription, err := p.deps.Transcriber.TranscribeVideo(ctx, video.VideoPath, p.language)
	if err != nil {
		p.log.Error("[Pipeline] 轉錄失敗", logger.String("path", video.VideoPath), logger.Error(err))
		video.Error = "transcription: " + err.Error()
		return video
	}
	video.Transcription = transcription

	analysis, err := p.deps.Analyzer.AnalyzeContent(ctx, transcription.Text, video.Metadata)
	if err != nil {
		p.log.Error("[Pipeline] LLM 分析失敗", logger.String("path", video.VideoPath), logger.Error(err))
		video.Error = "analyse: " + err.Error()
		return video
	}
	video.LLMAnalysis = analysis

	claims := llm.ExtractClaims(analysis.Analysis, transcription.Text, p.maxClaims)
	p.log.Info("[Pipeline] 擷取主張", logger.Int("claims", len(claims)))
	verifications := p.deps.Checker.VerifyClaims(ctx, claims, p.language)
	summary := Summarize(verifications)
	video.FactChecking = &summary

	p.log.Info("[Pipeline] 影片查核完成",
		logger.String("title", video.Title),
		logger.Int("credibility", summary.CredibilityScore),
		logger.String("verdict", string(summary.Verdict)))
	return video
}

func (p *Pipeline) recordVideo(video models.VideoResult) {
	if video.Error != "" {
		p.deps.Metrics.ObserveVideo(metrics.StatusFailed)
		return
	}
	p.deps.Metrics.ObserveVideo(metrics.StatusSuccess)
	if video.FactChecking != nil {
		p.deps.Metrics.ObserveVerdict(string(video.FactChecking.Verdict))
	}
}

// finish 彙整報告、寫檔、寫入資料庫並清理影片
func (p *Pipeline) finish(ctx context.Context, source string, prefix string, videos []models.VideoResult) (*RunOutput, error) {
	if videos == nil {
		videos = []models.VideoResult{}
	}
	report := &models.Report{
		Metadata: models.ReportMetadata{
			Source:       source,
			VideoCount:   len(videos),
			AnalysisDate: p.now().Format(time.RFC3339),
			Provider:     string(p.deps.Analyzer.Provider()),
		},
		Videos:     videos,
		Statistics: models.ComputeStatistics(videos),
	}

	paths, err := p.deps.Reports.SaveResults(report, prefix)
	if err != nil {
		return nil, fmt.Errorf("儲存結果失敗: %w", err)
	}

	out := &RunOutput{RunID: p.newID(), Report: report, Paths: paths}
	if p.deps.Runs != nil {
		if err := p.persist(ctx, out); err != nil {
			p.log.Error("[Pipeline] 寫入資料庫失敗", logger.String("run_id", out.RunID), logger.Error(err))
		}
	}
	if !p.keepVideos {
		p.cleanup(videos)
	}

	p.log.Info("[Pipeline] 執行完成",
		logger.String("run_id", out.RunID),
		logger.String("json", paths.JSON),
		logger.Float64("average_credibility", report.Statistics.AverageCredibility))
	return out, ctx.Err()
}

func (p *Pipeline) persist(ctx context.Context, out *RunOutput) error {
	report := out.Report
	run := &models.RunRecord{
		ID:                 out.RunID,
		Source:             report.Metadata.Source,
		VideoCount:         report.Metadata.VideoCount,
		AverageCredibility: report.Statistics.AverageCredibility,
		VerifiedCount:      report.Statistics.VerifiedCount,
		UnverifiedCount:    report.Statistics.UnverifiedCount,
		JSONPath:           nullString(out.Paths.JSON),
		MarkdownPath:       nullString(out.Paths.Markdown),
		CreatedAt:          p.now(),
	}
	// 影片紀錄以外鍵參照執行紀錄，必須先寫入執行紀錄
	if err := p.deps.Runs.SaveRun(ctx, run); err != nil {
		return err
	}

	var errs []error
	for _, v := range report.Videos {
		if err := p.deps.Runs.SaveVideoRecord(ctx, v.Record(out.RunID)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) cleanup(videos []models.VideoResult) {
	if p.deps.Files == nil {
		return
	}
	for _, v := range videos {
		if v.VideoPath == "" {
			continue
		}
		if err := p.deps.Files.DeleteVideo(v.VideoPath); err != nil {
			p.log.Warn("[Pipeline] 刪除影片失敗", logger.String("path", v.VideoPath), logger.Error(err))
		}
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
