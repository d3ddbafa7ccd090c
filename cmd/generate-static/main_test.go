package main

import (
	"testing"
	"time"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReport(t *testing.T) {
	dir := t.TempDir()
	store, err := results.NewResultStorage(dir, logger.NewNop(),
		results.WithClock(func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }))
	require.NoError(t, err)
	saved, err := store.SaveResults(&models.Report{
		Metadata: models.ReportMetadata{Source: "@someone", VideoCount: 1},
		Videos:   []models.VideoResult{{Title: "a"}},
	}, "user_someone")
	require.NoError(t, err)

	report, path, err := loadReport(dir, "", logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, saved.JSON, path)
	assert.Equal(t, "@someone", report.Metadata.Source)

	report, path, err = loadReport(t.TempDir(), saved.JSON, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, saved.JSON, path)
	assert.Len(t, report.Videos, 1)

	_, _, err = loadReport(t.TempDir(), "", logger.NewNop())
	assert.ErrorIs(t, err, results.ErrNoResults)
}
