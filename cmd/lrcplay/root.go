package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/lrcplay/internal/config"
	"karolbroda.com/lrcplay/internal/logger"
)

var (
	// global flags
	mprisService string
	syncOffset   float64
	hideHeader   bool
	lrclibURL    string
	logFile      string
	logLevel     string

	// viewer flags
	lyricsPath string
	coverRef   string
	audioPath  string
	duration   float64
)

var rootCmd = &cobra.Command{
	Use:   "lrcplay",
	Short: "terminal synchronized lyrics player",
	Long: `lrcplay shows time-synchronized lyrics in the terminal and follows playback
from an mpris player or its own clock. the active line is highlighted as the
track plays, and the screen takes its colors from the cover art.

when run without a subcommand, it starts the interactive viewer.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., spotify or org.mpris.MediaPlayer2.vlc)")
	rootCmd.PersistentFlags().Float64VarP(&syncOffset, "sync-offset", "s", 0, "initial sync offset in seconds")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide header section")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&lyricsPath, "lyrics", "l", "", "lrc file to show instead of fetching from lrclib")
	rootCmd.Flags().StringVarP(&coverRef, "cover", "c", "", "cover image path or url")
	rootCmd.Flags().StringVarP(&audioPath, "audio", "a", "", "audio file to open in the player")
	rootCmd.Flags().Float64VarP(&duration, "duration", "d", 0, "track length in seconds when following the built-in clock")
}

// loadConfig reads the environment, then applies flags the user set.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	if mprisService != "" {
		cfg.MprisService = mprisService
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if cmd.Flags().Changed("hide-header") {
		cfg.HideHeader = hideHeader
	}

	return cfg
}

// initLogging sends logs to the configured file. Without one, logs go to
// stderr for subcommands and nowhere for the viewer, which owns the terminal.
func initLogging(cfg *config.Config, tui bool) error {
	if cfg.LogFile != "" || tui {
		return logger.InitFile(cfg.LogFile, cfg.LogLevel)
	}
	return logger.Init(os.Stderr, cfg.LogLevel)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
