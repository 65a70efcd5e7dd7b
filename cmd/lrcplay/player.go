package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/lrcplay/internal/colors"
	"karolbroda.com/lrcplay/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover mpris-compatible players and inspect what they are playing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(loadConfig(cmd), false)
	},
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		services, err := player.ListPlayers(bus)
		if err != nil {
			return err
		}

		if len(services) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			if identity := player.Identity(bus, service); identity != "" {
				fmt.Printf("  %s (%s)\n", service, identity)
			} else {
				fmt.Printf("  %s\n", service)
			}
		}

		fmt.Println("\nuse --mpris-service flag to specify which player to use")

		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show the track a player is playing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if cfg.MprisService == "" {
			return fmt.Errorf("no player given; set --mpris-service or MPRIS_SERVICE")
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		service, err := player.NewService(bus, cfg.MprisService)
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		if err := service.Poll(); err != nil {
			return fmt.Errorf("failed to read player state: %w", err)
		}
		state := service.GetState()

		fmt.Printf("player: %s", service.Name())
		if identity := player.Identity(bus, service.Name()); identity != "" {
			fmt.Printf(" (%s)", identity)
		}
		fmt.Println()

		if state.Track == nil || !state.Track.IsValid() {
			fmt.Println("\nno track playing")
			return nil
		}

		fmt.Println()
		fmt.Printf("  title:    %s\n", state.Track.Title)
		fmt.Printf("  artist:   %s\n", state.Track.Artist)
		if state.Track.Album != "" {
			fmt.Printf("  album:    %s\n", state.Track.Album)
		}
		if state.Track.DurationSecs > 0 {
			fmt.Printf("  position: %s / %s\n", colors.FormatTime(state.Position), colors.FormatTime(state.Track.DurationSecs))
		} else {
			fmt.Printf("  position: %s\n", colors.FormatTime(state.Position))
		}
		if state.Status != "" {
			fmt.Printf("  status:   %s\n", state.Status)
		}
		if state.Track.AudioPath != "" {
			fmt.Printf("  url:      %s\n", state.Track.AudioPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}
