package main

import (
	"fmt"
	"os"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"
	"TikTokFactCheck/internal/storage/results"
	"TikTokFactCheck/internal/visualizer"

	"github.com/spf13/cobra"
)

func newCommand() *cobra.Command {
	var (
		input     string
		outputDir string
		configDir string
	)
	cmd := &cobra.Command{
		Use:          "generate-static",
		Short:        "以結果 JSON 產生靜態 HTML 圖表",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir, "config")
			if err != nil {
				return fmt.Errorf("無法載入配置: %w", err)
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			report, path, err := loadReport(cfg.Storage.OutputDir, input, log)
			if err != nil {
				return err
			}
			log.Info("[GenerateStatic] 已讀取結果檔", logger.String("path", path), logger.Int("videos", len(report.Videos)))

			written, err := visualizer.New(log).RenderReport(report, outputDir)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "結果 JSON 路徑 (預設為輸出目錄中最新的檔案)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "static", "圖表輸出目錄")
	cmd.Flags().StringVar(&configDir, "config-dir", "configs", "設定檔目錄")
	return cmd
}

// loadReport 讀取指定的結果檔；未指定時使用 outputDir 中最新的結果
func loadReport(outputDir, input string, log logger.Logger) (*models.Report, string, error) {
	if input != "" {
		report, err := results.LoadReport(input)
		return report, input, err
	}
	store, err := results.NewResultStorage(outputDir, log)
	if err != nil {
		return nil, "", err
	}
	return store.LatestReport()
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "錯誤：%v\n", err)
		os.Exit(1)
	}
}
