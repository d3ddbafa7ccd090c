package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"TikTokFactCheck/internal/app"
	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/services"

	"github.com/spf13/cobra"
)

var (
	configDir string
	provider  string
	charts    bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "tiktok-verify",
	Short:         "Vérification de contenu TikTok",
	Long:          "Télécharge, transcrit, analyse et vérifie les affirmations de vidéos TikTok en français.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./configs", "設定檔目錄 (config.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM 供應商: openai, anthropic, local, gemini")
	rootCmd.PersistentFlags().BoolVar(&charts, "charts", false, "同時產生 HTML 圖表")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日誌等級 (覆寫設定檔)")

	rootCmd.AddCommand(urlCommand())
	rootCmd.AddCommand(userCommand())
}

// Execute 執行根命令，SIGINT/SIGTERM 會取消進行中的流程
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// withApp 載入設定並建立 App，執行 fn 後釋放資源
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load(configDir, "config")
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("無法初始化日誌: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, provider, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("[CLI] 釋放資源失敗", logger.Error(err))
		}
	}()
	return fn(a)
}

// finish 輸出摘要，並在需要時產生圖表
func finish(w io.Writer, a *app.App, out *services.RunOutput) error {
	printSummary(w, out)
	if !charts {
		return nil
	}
	dir := strings.TrimSuffix(out.Paths.JSON, filepath.Ext(out.Paths.JSON)) + "_charts"
	written, err := a.Visualizer.RenderReport(out.Report, dir)
	if err != nil {
		return fmt.Errorf("產生圖表失敗: %w", err)
	}
	for _, p := range written {
		fmt.Fprintf(w, "Graphique : %s\n", p)
	}
	return nil
}

func printSummary(w io.Writer, out *services.RunOutput) {
	report := out.Report
	fmt.Fprintf(w, "Source : %s\n", report.Metadata.Source)
	fmt.Fprintf(w, "Vidéos analysées : %d\n", report.Metadata.VideoCount)
	for i, v := range report.Videos {
		switch {
		case v.Error != "":
			fmt.Fprintf(w, "  %d. %s : ERREUR (%s)\n", i+1, v.Title, v.Error)
		case v.FactChecking != nil:
			fmt.Fprintf(w, "  %d. %s : %d%% (%s)\n", i+1, v.Title, v.FactChecking.CredibilityScore, v.FactChecking.Verdict)
		default:
			fmt.Fprintf(w, "  %d. %s : non vérifié\n", i+1, v.Title)
		}
	}
	fmt.Fprintf(w, "Crédibilité moyenne : %.1f%%\n", report.Statistics.AverageCredibility)
	fmt.Fprintf(w, "Vérifiées : %d, non vérifiées : %d\n", report.Statistics.VerifiedCount, report.Statistics.UnverifiedCount)
	fmt.Fprintf(w, "JSON : %s\n", out.Paths.JSON)
	fmt.Fprintf(w, "Markdown : %s\n", out.Paths.Markdown)
}
