package main

import (
	"TikTokFactCheck/internal/app"
	"TikTokFactCheck/internal/services"

	"github.com/spf13/cobra"
)

func urlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Analyse une vidéo TikTok",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				out, err := a.Pipeline.AnalyzeURL(cmd.Context(), args[0], services.TriggerCLI)
				if err != nil {
					return err
				}
				return finish(cmd.OutOrStdout(), a, out)
			})
		},
	}
}

func userCommand() *cobra.Command {
	var maxVideos int
	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Analyse les dernières vidéos d'un compte",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				out, err := a.Pipeline.AnalyzeUser(cmd.Context(), args[0], maxVideos, services.TriggerCLI)
				if err != nil {
					return err
				}
				return finish(cmd.OutOrStdout(), a, out)
			})
		},
	}
	cmd.Flags().IntVar(&maxVideos, "max", 5, "最多分析的影片數量")
	return cmd
}
