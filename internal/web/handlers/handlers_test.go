package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/services"
	"TikTokFactCheck/internal/storage/mysql"
	"TikTokFactCheck/internal/storage/results"
	"TikTokFactCheck/internal/storage/videostore"
	"TikTokFactCheck/internal/visualizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeLister struct {
	records []models.VideoRecord
	err     error
}

func (f *fakeLister) ListRecentVideos(_ context.Context, limit int) ([]models.VideoRecord, error) {
	return f.records, f.err
}

type fakeReports struct {
	report *models.Report
	err    error
}

func (f *fakeReports) LatestReport() (*models.Report, string, error) {
	return f.report, "/out/latest.json", f.err
}

func sampleRecords() []models.VideoRecord {
	return []models.VideoRecord{
		{
			VideoURL:         "https://www.tiktok.com/@a/video/1",
			Title:            sql.NullString{String: "Vaccins", Valid: true},
			Uploader:         sql.NullString{String: "a", Valid: true},
			UploadDate:       sql.NullString{String: "20240101", Valid: true},
			ViewCount:        1200,
			Status:           models.StatusCompleted,
			CredibilityScore: sql.NullInt64{Int64: 55, Valid: true},
			Verdict:          sql.NullString{String: "faux", Valid: true},
		},
		{
			VideoURL:     "/videos/a/2.mp4",
			Status:       models.StatusFailed,
			ErrorMessage: models.NewJsonNullString("transcription: boom"),
		},
	}
}

func TestRecordSource(t *testing.T) {
	ctx := context.Background()

	db := &fakeLister{records: sampleRecords()}
	got, err := NewRecordSource(db, &fakeReports{err: errors.New("unused")}).Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	report := &models.Report{Videos: []models.VideoResult{
		{Title: "a", URL: "u1", FactChecking: &models.FactCheckSummary{CredibilityScore: 70, Verdict: models.VerdictProbablementVrai}},
		{Title: "b", URL: "u2"},
	}}
	got, err = NewRecordSource(nil, &fakeReports{report: report}).Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].VideoURL)
	assert.Equal(t, int64(70), got[0].CredibilityScore.Int64)

	got, err = NewRecordSource(nil, &fakeReports{err: results.ErrNoResults}).Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewRecordSource(nil, &fakeReports{err: errors.New("corrupt")}).Recent(ctx, 10)
	assert.Error(t, err)
}

func TestDashboardHandler(t *testing.T) {
	h := NewDashboardHandler(NewRecordSource(&fakeLister{records: sampleRecords()}, nil), visualizer.New(logger.NewNop()), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
	assert.Contains(t, rec.Body.String(), "Vaccins")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	failing := NewDashboardHandler(NewRecordSource(&fakeLister{err: errors.New("db down")}, nil), visualizer.New(nil), nil)
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportHandler_CSV(t *testing.T) {
	h := NewExportHandler(NewRecordSource(&fakeLister{records: sampleRecords()}, nil), nil)
	h.now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=verification_2024-03-05.csv", rec.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"Vaccins", "https://www.tiktok.com/@a/video/1", "a", "20240101", "1200", "0", "completed", "", "55", "faux", ""}, rows[1])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "transcription: boom", rows[2][10])
}

func TestExportHandler_XLSX(t *testing.T) {
	h := NewExportHandler(NewRecordSource(&fakeLister{records: sampleRecords()}, nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Score de crédibilité", rows[0][8])
	assert.Equal(t, "55", rows[1][8])
}

func TestExportHandler_Errors(t *testing.T) {
	h := NewExportHandler(NewRecordSource(&fakeLister{}, nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/export", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type fakeRunner struct {
	mu      sync.Mutex
	urls    []string
	users   []string
	release chan struct{}
	err     error
}

func (f *fakeRunner) wait() {
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeRunner) AnalyzeURL(_ context.Context, url string, trigger string) (*services.RunOutput, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url+"|"+trigger)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &services.RunOutput{RunID: "r", Report: &models.Report{}, Paths: &results.SavedPaths{JSON: "x.json"}}, nil
}

func (f *fakeRunner) AnalyzeUser(_ context.Context, username string, maxVideos int, trigger string) (*services.RunOutput, error) {
	f.mu.Lock()
	f.users = append(f.users, username+"|"+trigger)
	f.mu.Unlock()
	f.wait()
	return &services.RunOutput{RunID: "r", Report: &models.Report{}, Paths: &results.SavedPaths{JSON: "x.json"}}, nil
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manual-analyze", strings.NewReader(body)))
	return rec
}

func TestTriggerAnalysisHandler_Validation(t *testing.T) {
	h := NewTriggerAnalysisHandler(context.Background(), &fakeRunner{}, nil)

	assert.Equal(t, http.StatusBadRequest, post(h, "{").Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"url":"u","username":"a"}`).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manual-analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTriggerAnalysisHandler_RunsInBackground(t *testing.T) {
	runner := &fakeRunner{}
	h := NewTriggerAnalysisHandler(context.Background(), runner, nil)
	done := make(chan struct{}, 2)
	h.done = func() { done <- struct{}{} }

	rec := post(h, `{"url":" https://www.tiktok.com/@a/video/1 "}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	<-done

	rec = post(h, `{"username":"someone","max_videos":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	<-done

	assert.Equal(t, []string{"https://www.tiktok.com/@a/video/1|manual"}, runner.urls)
	assert.Equal(t, []string{"someone|manual"}, runner.users)
}

func TestTriggerAnalysisHandler_ConflictWhileRunning(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{}), err: errors.New("failed")}
	h := NewTriggerAnalysisHandler(context.Background(), runner, nil)
	done := make(chan struct{}, 1)
	h.done = func() { done <- struct{}{} }

	assert.Equal(t, http.StatusOK, post(h, `{"url":"u"}`).Code)
	rec := post(h, `{"url":"u2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	close(runner.release)
	<-done
	assert.Equal(t, http.StatusOK, post(h, `{"url":"u3"}`).Code)
	<-done
}

func TestVideoHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "someone"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "someone", "v.mp4"), []byte("video-bytes"), 0o644))

	store, err := videostore.NewFileSystemStorage(dir, logger.NewNop())
	require.NoError(t, err)
	h := NewVideoHandler(store, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/someone/v.mp4", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/someone/missing.mp4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/someone/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.URL.Path = "../../etc/passwd"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type fakeRunReader struct {
	run    *models.RunRecord
	err    error
	videos []models.VideoRecord
}

func (f *fakeRunReader) GetRun(_ context.Context, id string) (*models.RunRecord, error) {
	return f.run, f.err
}

func (f *fakeRunReader) ListVideosByRun(_ context.Context, runID string) ([]models.VideoRecord, error) {
	return f.videos, nil
}

func TestRunHandler(t *testing.T) {
	h := NewRunHandler(&fakeRunReader{
		run:    &models.RunRecord{ID: "run-1", Source: "@a", VideoCount: 2},
		videos: sampleRecords(),
	}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"run-1"`)
	assert.Contains(t, rec.Body.String(), `"video_url":"https://www.tiktok.com/@a/video/1"`)

	missing := NewRunHandler(&fakeRunReader{err: mysql.ErrNotFound}, nil)
	rec = httptest.NewRecorder()
	missing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
