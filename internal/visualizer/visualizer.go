// Package visualizer 將查核結果繪製成獨立的 HTML 圖表。
package visualizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	credibilityTitle = "Scores de Crédibilité par Vidéo"
	credibilityAxis  = "Score de Crédibilité (%)"
	verdictTitle     = "Répartition des Verdicts"
	timelineTitle    = "Évolution de la Crédibilité dans le Temps"
	wordCloudTitle   = "Nuage de Mots - Sujets Principaux"
	dashboardTitle   = "Tableau de Bord d'Analyse"
	dashboardBar     = "Scores de Crédibilité"

	barColor     = "#4682b4"
	unknownColor = "#95a5a6"
)

// VerdictColors 為每個結論的固定顏色
var VerdictColors = map[models.Verdict]string{
	models.VerdictVrai:              "#2ecc71",
	models.VerdictFaux:              "#e74c3c",
	models.VerdictPartiellementVrai: "#f39c12",
	models.VerdictProbablementVrai:  "#3498db",
	models.VerdictNonVerifie:        "#95a5a6",
}

// ColorFor 回傳結論顏色，未知結論使用灰色
func ColorFor(v models.Verdict) string {
	if c, ok := VerdictColors[v]; ok {
		return c
	}
	return unknownColor
}

type renderer interface {
	Render(w io.Writer) error
}

// Visualizer 產生圖表；savePath 為空時只回傳記憶體中的圖表
type Visualizer struct {
	log logger.Logger
}

// New 建立 Visualizer
func New(log logger.Logger) *Visualizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Visualizer{log: log.With(logger.String("component", "visualizer"))}
}

func (v *Visualizer) save(chart renderer, savePath string) error {
	if savePath == "" {
		return nil
	}
	if dir := filepath.Dir(savePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("無法建立圖表目錄 '%s': %w", dir, err)
		}
	}
	f, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("無法建立圖表檔案 '%s': %w", savePath, err)
	}
	defer f.Close()
	if err := chart.Render(f); err != nil {
		return fmt.Errorf("繪製圖表 '%s' 失敗: %w", savePath, err)
	}
	v.log.Info("[Visualizer] 圖表已輸出", logger.String("path", savePath))
	return nil
}

func chartTitle(r models.ChartRecord, index int) string {
	if r.Title == "" {
		return fmt.Sprintf("Vidéo %d", index+1)
	}
	return r.Title
}

func newCredibilityBar(records []models.ChartRecord, title string) *charts.Bar {
	titles := make([]string, 0, len(records))
	items := make([]opts.BarData, 0, len(records))
	for i, r := range records {
		titles = append(titles, chartTitle(r, i))
		items = append(items, opts.BarData{
			Name:      chartTitle(r, i),
			Value:     r.CredibilityScore,
			ItemStyle: &opts.ItemStyle{Color: barColor},
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: credibilityAxis, Min: 0, Max: 100}),
	)
	bar.SetXAxis(titles).AddSeries(dashboardBar, items)
	return bar
}

// CreateCredibilityChart 每支影片一條橫向長條，數值軸 0 到 100
func (v *Visualizer) CreateCredibilityChart(records []models.ChartRecord, savePath string) (*charts.Bar, error) {
	bar := newCredibilityBar(records, credibilityTitle)
	bar.XYReversal()
	return bar, v.save(bar, savePath)
}

func verdictCounts(records []models.ChartRecord) []opts.PieData {
	counts := make(map[models.Verdict]int)
	var order []models.Verdict
	for _, r := range records {
		verdict := r.Verdict
		if verdict == "" {
			verdict = models.VerdictNonVerifie
		}
		if _, seen := counts[verdict]; !seen {
			order = append(order, verdict)
		}
		counts[verdict]++
	}

	items := make([]opts.PieData, 0, len(order))
	for _, verdict := range order {
		items = append(items, opts.PieData{
			Name:      string(verdict),
			Value:     counts[verdict],
			ItemStyle: &opts.ItemStyle{Color: ColorFor(verdict)},
		})
	}
	return items
}

// CreateVerdictPie 統計各結論的影片數
func (v *Visualizer) CreateVerdictPie(records []models.ChartRecord, savePath string) (*charts.Pie, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: verdictTitle}))
	pie.AddSeries(verdictTitle, verdictCounts(records))
	return pie, v.save(pie, savePath)
}

// CreateTimelineChart 依上傳日期排序的可信度折線；沒有任何有效日期時回傳 nil
func (v *Visualizer) CreateTimelineChart(records []models.ChartRecord, savePath string) (*charts.Line, error) {
	type point struct {
		date  time.Time
		score int
	}
	var points []point
	for _, r := range records {
		if r.UploadDate == "" {
			continue
		}
		d, err := time.Parse("20060102", r.UploadDate)
		if err != nil {
			v.log.Warn("[Visualizer] 無法解析上傳日期，略過", logger.String("upload_date", r.UploadDate))
			continue
		}
		points = append(points, point{date: d, score: r.CredibilityScore})
	}
	if len(points) == 0 {
		return nil, nil
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })

	dates := make([]string, 0, len(points))
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.date.Format("2006-01-02"))
		items = append(items, opts.LineData{Value: p.score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: timelineTitle}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: credibilityAxis, Min: 0, Max: 100}),
	)
	line.SetXAxis(dates).AddSeries(credibilityAxis, items)
	return line, v.save(line, savePath)
}

// CreateWordCloud 以轉錄文字的高頻詞建立文字雲
func (v *Visualizer) CreateWordCloud(transcriptions []string, savePath string) (*charts.WordCloud, error) {
	freqs := TopWords(transcriptions, maxWords)
	items := make([]opts.WordCloudData, 0, len(freqs))
	for _, f := range freqs {
		items = append(items, opts.WordCloudData{Name: f.Word, Value: f.Count})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: wordCloudTitle}))
	wc.AddSeries("mots", items)
	return wc, v.save(wc, savePath)
}

// CreateDashboard 把可信度長條圖與結論圓餅圖放在同一頁
func (v *Visualizer) CreateDashboard(records []models.ChartRecord, savePath string) (*components.Page, error) {
	bar := newCredibilityBar(records, dashboardBar)
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: verdictTitle}))
	pie.AddSeries(verdictTitle, verdictCounts(records))

	page := components.NewPage()
	page.PageTitle = dashboardTitle
	page.AddCharts(bar, pie)
	return page, v.save(page, savePath)
}
