package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"TikTokFactCheck/internal/clients/cmdrun"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/videostore"
)

// ErrExtraction 表示 yt-dlp 無法擷取影片
var ErrExtraction = errors.New("影片擷取失敗")

const (
	defaultFormat    = "best[ext=mp4]"
	defaultMaxVideos = 5
	titleTemplate    = "%(title)s.%(ext)s"
	profileURLFormat = "https://www.tiktok.com/@%s"

	printPath       = "after_move:filepath"
	printPathAndURL = "after_move:%(filepath)s\t%(webpage_url)s"
)

// Downloader 透過 yt-dlp 下載 TikTok 影片與取得中繼資料
type Downloader struct {
	binary    string
	format    string
	maxVideos int
	store     *videostore.FileSystemStorage
	runner    cmdrun.Runner
	log       logger.Logger
}

// Option 調整 Downloader
type Option func(*Downloader)

// WithRunner 替換指令執行器
func WithRunner(r cmdrun.Runner) Option {
	return func(d *Downloader) { d.runner = r }
}

// NewDownloader 建立 Downloader
func NewDownloader(cfg config.DownloaderConfig, store *videostore.FileSystemStorage, log logger.Logger, opts ...Option) (*Downloader, error) {
	if store == nil {
		return nil, fmt.Errorf("Downloader：影片儲存不得為空")
	}
	if log == nil {
		log = logger.NewNop()
	}
	d := &Downloader{
		binary:    cfg.Binary,
		format:    cfg.Format,
		maxVideos: cfg.MaxVideos,
		store:     store,
		runner:    cmdrun.ExecRunner{},
		log:       log.With(logger.String("component", "downloader")),
	}
	if d.binary == "" {
		d.binary = "yt-dlp"
	}
	if d.format == "" {
		d.format = defaultFormat
	}
	if d.maxVideos <= 0 {
		d.maxVideos = defaultMaxVideos
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// CheckAvailable 確認 yt-dlp 可執行
func (d *Downloader) CheckAvailable(ctx context.Context) error {
	out, _, err := d.runner.Run(ctx, d.binary, "--version")
	if err != nil {
		return fmt.Errorf("yt-dlp 未安裝或不在 PATH 中: %w", err)
	}
	d.log.Info("[Downloader] yt-dlp 可用", logger.String("version", strings.TrimSpace(string(out))))
	return nil
}

// DownloadVideo 下載單支影片並回傳檔案路徑；filename 為空時以影片標題命名
func (d *Downloader) DownloadVideo(ctx context.Context, url string, filename string) (string, error) {
	tmpl := titleTemplate
	if filename != "" {
		tmpl = filename
	}
	outTmpl := filepath.Join(d.store.BasePath(), tmpl)

	d.log.Info("[Downloader] 開始下載影片", logger.String("url", url))
	stdout, stderr, err := d.runner.Run(ctx, d.binary, d.downloadArgs(outTmpl, url, printPath, "--no-playlist")...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s: %w", ErrExtraction, url, lastLine(stderr), err)
	}
	paths := parsePaths(stdout)
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: %s: yt-dlp 未回報輸出檔案", ErrExtraction, url)
	}
	path := paths[len(paths)-1]
	d.log.Info("[Downloader] 影片下載完成", logger.String("path", path))
	return path, nil
}

// DownloadUserVideos 下載使用者最近的影片到其子目錄，並回報每支影片的頁面網址；
// 單筆失敗只記錄並略過
func (d *Downloader) DownloadUserVideos(ctx context.Context, username string, maxVideos int) ([]models.DownloadedVideo, error) {
	if maxVideos <= 0 {
		maxVideos = d.maxVideos
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	userDir, err := d.store.UserDir(username)
	if err != nil {
		return nil, err
	}
	userURL := fmt.Sprintf(profileURLFormat, username)
	outTmpl := filepath.Join(userDir, titleTemplate)

	d.log.Info("[Downloader] 開始下載使用者影片",
		logger.String("user", username), logger.Int("max_videos", maxVideos))
	args := d.downloadArgs(outTmpl, userURL, printPathAndURL,
		"--playlist-end", fmt.Sprint(maxVideos),
		"--ignore-errors",
	)
	stdout, stderr, runErr := d.runner.Run(ctx, d.binary, args...)
	for _, line := range strings.Split(string(stderr), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "ERROR:") {
			d.log.Warn("[Downloader] 略過下載失敗的影片", logger.String("user", username), logger.String("detail", strings.TrimSpace(line)))
		}
	}
	if runErr != nil {
		d.log.Warn("[Downloader] 使用者影片下載未完全成功", logger.String("user", username), logger.Error(runErr))
	}

	videos := parseEntries(stdout)
	if len(videos) > maxVideos {
		videos = videos[:maxVideos]
	}
	d.log.Info("[Downloader] 使用者影片下載結束", logger.String("user", username), logger.Int("count", len(videos)))
	return videos, nil
}

// GetVideoInfo 只取得影片中繼資料，不寫入任何檔案
func (d *Downloader) GetVideoInfo(ctx context.Context, url string) (*models.VideoMetadata, error) {
	stdout, stderr, err := d.runner.Run(ctx, d.binary, "--dump-json", "--skip-download", "--no-playlist", "--no-warnings", url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s: %w", ErrExtraction, url, lastLine(stderr), err)
	}
	var info struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Uploader    string  `json:"uploader"`
		UploadDate  string  `json:"upload_date"`
		Duration    float64 `json:"duration"`
		ViewCount   int64   `json:"view_count"`
		LikeCount   int64   `json:"like_count"`
		WebpageURL  string  `json:"webpage_url"`
	}
	if err := json.Unmarshal(firstJSONLine(stdout), &info); err != nil {
		return nil, fmt.Errorf("無法解析 yt-dlp 中繼資料 (%s): %w", url, err)
	}
	meta := &models.VideoMetadata{
		Title:       info.Title,
		Description: info.Description,
		Uploader:    info.Uploader,
		UploadDate:  info.UploadDate,
		Duration:    info.Duration,
		ViewCount:   info.ViewCount,
		LikeCount:   info.LikeCount,
		URL:         info.WebpageURL,
	}
	if meta.URL == "" {
		meta.URL = url
	}
	return meta, nil
}

func (d *Downloader) downloadArgs(outTmpl, url, printTmpl string, extra ...string) []string {
	args := []string{
		"-f", d.format,
		"-o", outTmpl,
		"--no-simulate",
		"--print", printTmpl,
	}
	args = append(args, extra...)
	return append(args, url)
}

func parsePaths(stdout []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// parseEntries 解析 "路徑\t網址" 格式的輸出；yt-dlp 無法提供網址時為 "NA"
func parseEntries(stdout []byte) []models.DownloadedVideo {
	var videos []models.DownloadedVideo
	for _, line := range parsePaths(stdout) {
		path, url, _ := strings.Cut(line, "\t")
		url = strings.TrimSpace(url)
		if url == "NA" {
			url = ""
		}
		videos = append(videos, models.DownloadedVideo{Path: strings.TrimSpace(path), URL: url})
	}
	return videos
}

func firstJSONLine(stdout []byte) []byte {
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "{") {
			return []byte(line)
		}
	}
	return stdout
}

func lastLine(b []byte) string {
	lines := parsePaths(b)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
