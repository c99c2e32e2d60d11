package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pindoc/internal/config"
)

var (
	verbose bool
	envFile string

	cfg       *config.Config
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pindoc",
	Short: "Summarize the pinned messages of a Discord server into a Markdown report",
	Long: `pindoc collects the pinned messages of a Discord server's channels and
categories within a date range and renders them as one Markdown document.
Run it as a bot with "serve", or produce a single report with "generate".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		var out io.Writer = os.Stderr
		if w := cfg.LogWriter(); w != nil {
			out = io.MultiWriter(os.Stderr, w)
			logCloser = w
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(out, opts)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("pindoc", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment is read")
}
