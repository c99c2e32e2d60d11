package main

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pindoc/internal/adapters/driven/dates"
	"github.com/custodia-labs/pindoc/internal/adapters/driven/discord"
	"github.com/custodia-labs/pindoc/internal/adapters/driven/file"
	"github.com/custodia-labs/pindoc/internal/adapters/driven/memory"
	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/services"
)

var (
	guildID string
	outPath string
)

var generateCmd = &cobra.Command{
	Use:   "generate [<start_date> [<end_date>]] [<channels> ...]",
	Short: "Write one report for a server without starting the bot",
	Long: `Builds a report through the Discord REST API and writes it to stdout, or to
--out (a file, or a directory that receives the configured report filename).
Arguments follow the doc command: optional dates, then channel or category
names, mentions or IDs.`,
	Example: `  pindoc generate --guild 123456789 1/1
  pindoc generate --guild 123456789 "Jan 1st" "May 30th" general
  pindoc generate --guild 123456789 --out reports/ 1/1 3/31 123123123123`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&guildID, "guild", "", "ID of the server to summarize")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the report to this file or directory instead of stdout")
	_ = generateCmd.MarkFlagRequired("guild")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	session, err := discordgo.New(cfg.BotToken())
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}

	reports := services.NewReportService(services.ReportServiceConfig{
		Platform:             discord.NewPlatformWithAPI(session),
		DateParser:           dates.NewParser(),
		Lock:                 memory.NewLock(),
		Logger:               slog.Default(),
		Filename:             cfg.ReportFilename,
		EmptySectionTemplate: cfg.EmptySectionTemplate,
		LockTTL:              cfg.ReportLockTTL,
	})

	req := domain.ReportRequest{GuildID: guildID, Args: args}
	sink := &file.Sink{Out: cmd.OutOrStdout(), Path: outPath}
	return reports.Publish(cmd.Context(), req, sink)
}
