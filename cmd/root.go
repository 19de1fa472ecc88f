// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab-bot/internal/config"
	"github.com/ytget/ytgrab-bot/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig   string
	flagLogLevel string
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Settings

// logger is the process logger built from cfg.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "ytgrab-bot",
	Short: "Telegram bot that turns media links into files",
	Long: `ytgrab-bot receives links to videos on supported platforms, offers a choice
of quality, downloads the selection with yt-dlp and sends the file back to the chat.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to config.toml (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagDebug {
		cfg.Log.Level = zerolog.LevelDebugValue
	}

	logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
