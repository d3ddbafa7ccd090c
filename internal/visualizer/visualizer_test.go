package visualizer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []models.ChartRecord {
	return []models.ChartRecord{
		{Title: "Terre plate", CredibilityScore: 55, Verdict: models.VerdictFaux, UploadDate: "20240310"},
		{Title: "", CredibilityScore: 65, Verdict: models.VerdictProbablementVrai, UploadDate: "20240101"},
		{Title: "Vaccins", CredibilityScore: 50, Verdict: models.VerdictFaux, UploadDate: ""},
		{Title: "Inconnu", CredibilityScore: 70, Verdict: models.Verdict("douteux"), UploadDate: "pas-une-date"},
	}
}

func TestCreateCredibilityChart(t *testing.T) {
	v := New(logger.NewNop())
	path := filepath.Join(t.TempDir(), "charts", "credibility.html")

	bar, err := v.CreateCredibilityChart(sampleRecords(), path)
	require.NoError(t, err)
	assert.Equal(t, "Scores de Crédibilité par Vidéo", bar.Title.Title)

	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 4)
	assert.Equal(t, "Vidéo 2", data[1].Name)
	assert.Equal(t, 65, data[1].Value)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")
}

func TestCreateCredibilityChart_NoPath(t *testing.T) {
	v := New(nil)
	dir := t.TempDir()
	_, err := v.CreateCredibilityChart(nil, "")
	require.NoError(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestCreateVerdictPie(t *testing.T) {
	v := New(nil)
	pie, err := v.CreateVerdictPie(sampleRecords(), "")
	require.NoError(t, err)
	assert.Equal(t, "Répartition des Verdicts", pie.Title.Title)

	data, ok := pie.MultiSeries[0].Data.([]opts.PieData)
	require.True(t, ok)
	require.Len(t, data, 3)
	assert.Equal(t, "faux", data[0].Name)
	assert.Equal(t, 2, data[0].Value)
	assert.Equal(t, "#e74c3c", data[0].ItemStyle.Color)
	assert.Equal(t, "#3498db", data[1].ItemStyle.Color)
	assert.Equal(t, "douteux", data[2].Name)
	assert.Equal(t, "#95a5a6", data[2].ItemStyle.Color)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#2ecc71", ColorFor(models.VerdictVrai))
	assert.Equal(t, "#f39c12", ColorFor(models.VerdictPartiellementVrai))
	assert.Equal(t, "#95a5a6", ColorFor(models.VerdictNonVerifie))
	assert.Equal(t, "#95a5a6", ColorFor("autre"))
}

func TestCreateTimelineChart(t *testing.T) {
	v := New(nil)
	line, err := v.CreateTimelineChart(sampleRecords(), "")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "Évolution de la Crédibilité dans le Temps", line.Title.Title)

	data, ok := line.MultiSeries[0].Data.([]opts.LineData)
	require.True(t, ok)
	require.Len(t, data, 2)
	assert.Equal(t, 65, data[0].Value)
	assert.Equal(t, 55, data[1].Value)
}

func TestCreateTimelineChart_NoDates(t *testing.T) {
	v := New(nil)
	path := filepath.Join(t.TempDir(), "timeline.html")
	line, err := v.CreateTimelineChart([]models.ChartRecord{{Title: "a"}}, path)
	require.NoError(t, err)
	assert.Nil(t, line)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTopWords(t *testing.T) {
	freqs := TopWords([]string{
		"Les vaccins contiennent des puces. Les vaccins sont dangereux!",
		"Vaccins, puces et 5G: c'est pour nous contrôler dans le monde.",
	}, 100)

	words := make([]string, 0, len(freqs))
	for _, f := range freqs {
		words = append(words, f.Word)
	}
	assert.Equal(t, "vaccins", freqs[0].Word)
	assert.Equal(t, 3, freqs[0].Count)
	assert.Equal(t, "puces", freqs[1].Word)
	assert.Contains(t, words, "contrôler")
	assert.Contains(t, words, "monde")
	for _, stop := range []string{"pour", "dans", "sont", "les", "c", "est", "5g"} {
		assert.NotContains(t, words, stop)
	}
}

func TestTopWords_Limit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		b.WriteString("mot")
		b.WriteRune(rune('a' + i%26))
		b.WriteRune(rune('a' + i/26))
		b.WriteString(" ")
	}
	assert.Len(t, TopWords([]string{b.String()}, 100), 100)
}

func TestCreateWordCloud(t *testing.T) {
	v := New(nil)
	wc, err := v.CreateWordCloud([]string{"vérité vérité mensonge"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Nuage de Mots - Sujets Principaux", wc.Title.Title)
	data, ok := wc.MultiSeries[0].Data.([]opts.WordCloudData)
	require.True(t, ok)
	require.Len(t, data, 2)
	assert.Equal(t, "vérité", data[0].Name)
	assert.Equal(t, 2, data[0].Value)
}

func TestCreateDashboard(t *testing.T) {
	v := New(nil)
	path := filepath.Join(t.TempDir(), "dashboard.html")
	page, err := v.CreateDashboard(sampleRecords(), path)
	require.NoError(t, err)
	assert.Equal(t, "Tableau de Bord d'Analyse", page.PageTitle)
	assert.Len(t, page.Charts, 2)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), "Tableau de Bord d")
	assert.Contains(t, buf.String(), "echarts")
}

func TestRenderReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	report := &models.Report{Videos: []models.VideoResult{
		{
			Title:         "Vaccins",
			Metadata:      &models.VideoMetadata{UploadDate: "20240102"},
			Transcription: &models.Transcription{Text: "les vaccins provoquent toujours autisme vaccins"},
			FactChecking:  &models.FactCheckSummary{CredibilityScore: 55, Verdict: models.VerdictFaux},
		},
		{Title: "Échec", Error: "transcription: boom"},
	}}

	written, err := New(nil).RenderReport(report, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, CredibilityFile),
		filepath.Join(dir, VerdictFile),
		filepath.Join(dir, TimelineFile),
		filepath.Join(dir, WordCloudFile),
		filepath.Join(dir, DashboardFile),
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}

	noDates := &models.Report{Videos: []models.VideoResult{
		{Title: "x", FactChecking: &models.FactCheckSummary{CredibilityScore: 50, Verdict: models.VerdictNonVerifie}},
	}}
	written, err = New(nil).RenderReport(noDates, filepath.Join(t.TempDir(), "c"))
	require.NoError(t, err)
	assert.Len(t, written, 4)

	_, err = New(nil).RenderReport(nil, dir)
	assert.Error(t, err)
}
