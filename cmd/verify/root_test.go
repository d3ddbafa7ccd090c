package main

import (
	"bytes"
	"testing"

	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/services"
	"TikTokFactCheck/internal/storage/results"

	"github.com/stretchr/testify/assert"
)

func TestPrintSummary(t *testing.T) {
	out := &services.RunOutput{
		Report: &models.Report{
			Metadata: models.ReportMetadata{Source: "@someone", VideoCount: 3},
			Videos: []models.VideoResult{
				{Title: "a", FactChecking: &models.FactCheckSummary{CredibilityScore: 55, Verdict: models.VerdictFaux}},
				{Title: "b", Error: "transcription: boom"},
				{Title: "c"},
			},
			Statistics: models.Statistics{AverageCredibility: 55, VerifiedCount: 1},
		},
		Paths: &results.SavedPaths{JSON: "results/a.json", Markdown: "results/a.md"},
	}

	var buf bytes.Buffer
	printSummary(&buf, out)
	text := buf.String()
	assert.Contains(t, text, "Source : @someone")
	assert.Contains(t, text, "1. a : 55% (faux)")
	assert.Contains(t, text, "2. b : ERREUR (transcription: boom)")
	assert.Contains(t, text, "3. c : non vérifié")
	assert.Contains(t, text, "Crédibilité moyenne : 55.0%")
	assert.Contains(t, text, "JSON : results/a.json")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["url"])
	assert.True(t, names["user"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("provider"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("charts"))
}

func TestURLCommandRequiresArgument(t *testing.T) {
	cmd := urlCommand()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"https://www.tiktok.com/@a/video/1"}))
}
