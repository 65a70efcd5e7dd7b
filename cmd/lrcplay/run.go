package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/lrcplay/internal/cache"
	"karolbroda.com/lrcplay/internal/config"
	"karolbroda.com/lrcplay/internal/logger"
	"karolbroda.com/lrcplay/internal/lyrics"
	"karolbroda.com/lrcplay/internal/player"
	"karolbroda.com/lrcplay/internal/resource"
	"karolbroda.com/lrcplay/internal/terminal"
	"karolbroda.com/lrcplay/internal/ui"
)

func runViewer(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if err := initLogging(cfg, true); err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigChan
		cancel()
		terminal.Reset()
		os.Exit(0)
	}()

	defer terminal.Reset()

	var lyricsText string
	if lyricsPath != "" {
		data, err := os.ReadFile(lyricsPath)
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}
		lyricsText = string(data)
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	if audioPath != "" {
		uri, err := player.FileURI(audioPath)
		if err != nil {
			return fmt.Errorf("failed to resolve audio path: %w", err)
		}
		if err := source.Open(uri); err != nil {
			return fmt.Errorf("failed to open audio: %w", err)
		}
	} else if clock, ok := source.(*player.Clock); ok {
		if err := clock.Toggle(); err != nil {
			return fmt.Errorf("failed to start clock: %w", err)
		}
	}

	registry := resource.NewRegistry()
	defer func() {
		if err := registry.ReleaseAll(); err != nil {
			logger.Warn("failed to release resources", "err", err)
		}
	}()

	model := ui.NewModel(ui.ModelConfig{
		Source:         source,
		Lrclib:         lyrics.NewClient(cfg.LrclibURL, cache.NewMemory(config.CacheTTL)),
		Registry:       registry,
		TermCaps:       terminal.DetectCapabilities(),
		SyncOffset:     cfg.SyncOffset,
		OffsetStep:     cfg.OffsetStep,
		FineOffsetStep: cfg.FineOffsetStep,
		HideHeader:     cfg.HideHeader,
		LyricsText:     lyricsText,
		LyricsSource:   lyricsPath,
		CoverRef:       coverRef,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-ctx.Done()
		source.Stop()
		p.Quit()
	}()

	logger.Info("viewer started", "lyrics", lyricsPath, "audio", audioPath, "mpris", cfg.MprisService)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

// openSource follows the named mpris player, or the built-in clock when no
// player is configured.
func openSource(cfg *config.Config) (player.Source, func(), error) {
	if cfg.MprisService == "" {
		clock := player.NewClock(player.WithDuration(duration))
		return clock, clock.Stop, nil
	}

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	service, err := player.NewService(bus, cfg.MprisService)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("failed to create player service: %w", err)
	}

	if err := service.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not set up dbus signals: %v\n", err)
	}

	return service, func() {
		service.Stop()
		bus.Close()
	}, nil
}
