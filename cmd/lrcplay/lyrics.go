package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/lrcplay/internal/cache"
	"karolbroda.com/lrcplay/internal/config"
	"karolbroda.com/lrcplay/internal/logger"
	"karolbroda.com/lrcplay/internal/lyrics"
	"karolbroda.com/lrcplay/internal/session"
)

var (
	// flags for lyrics locate
	locateOffset float64

	// flags for lyrics fetch
	fetchArtist   string
	fetchTitle    string
	fetchAlbum    string
	fetchDuration int64
	fetchRaw      bool
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyric file and lrclib utilities",
	Long:  `parse lrc files, find the line for a playback position, or fetch synced lyrics from lrclib.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(loadConfig(cmd), false)
	},
}

var lyricsParseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "print the timed lines of an lrc file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readLyricsFile(args[0])
		if err != nil {
			return err
		}

		if len(lines) == 0 {
			fmt.Println("no timed lines found")
			return nil
		}

		for _, line := range lines {
			fmt.Printf("[%s] %s\n", lyrics.FormatTimestamp(line.Time), line.Text)
		}
		fmt.Printf("\n%d lines\n", len(lines))

		return nil
	},
}

var lyricsLocateCmd = &cobra.Command{
	Use:   "locate <file> <position>",
	Short: "show the line active at a playback position",
	Long:  `locate runs the file through a playback session and prints the line highlighted at the given position in seconds.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}

		position, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}

		var highlighted []session.HighlightChanged
		s := session.New(
			session.WithOffset(locateOffset),
			session.WithHandler(func(e session.Effect) {
				if h, ok := e.(session.HighlightChanged); ok {
					highlighted = append(highlighted, h)
				}
			}),
		)

		s.Dispatch(session.LoadLyrics{Raw: string(data)})
		s.Dispatch(session.PositionUpdate{Position: position})

		state := s.State()
		fmt.Printf("position %s, offset %s, effective %s\n",
			lyrics.FormatTimestamp(state.Position),
			lyrics.FormatOffset(state.Offset),
			lyrics.FormatTimestamp(state.EffectiveTime()))

		if state.ActiveIndex < 0 {
			fmt.Println("no line active")
			return nil
		}

		lines := s.Lines()
		for i := max(state.ActiveIndex-2, 0); i <= min(state.ActiveIndex+2, len(lines)-1); i++ {
			prefix := "  "
			if i == state.ActiveIndex {
				prefix = "> "
			}
			fmt.Printf("%s[%s] %s\n", prefix, lyrics.FormatTimestamp(lines[i].Time), lines[i].Text)
		}

		logger.Debug("locate finished", "highlights", len(highlighted))
		return nil
	},
}

var lyricsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "fetch synced lyrics from lrclib",
	Long:  `fetch synced lyrics from lrclib.net. by default the parsed lines are printed; --raw prints the lrc text as returned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchArtist == "" || fetchTitle == "" {
			return errors.New("--artist and --title are required")
		}

		cfg := loadConfig(cmd)
		client := lyrics.NewClient(cfg.LrclibURL, cache.NewMemory(config.CacheTTL))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := client.Fetch(ctx, &lyrics.TrackParams{
			Title:        fetchTitle,
			Artist:       fetchArtist,
			Album:        fetchAlbum,
			DurationSecs: fetchDuration,
		})
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}

		fmt.Printf("%s - %s\n", resp.ArtistName, resp.TrackName)
		if resp.AlbumName != "" {
			fmt.Println(resp.AlbumName)
		}
		fmt.Println()

		if resp.SyncedLyrics == "" {
			if resp.Instrumental {
				fmt.Println("[instrumental]")
				return nil
			}
			return errors.New("no synced lyrics available")
		}

		if fetchRaw {
			fmt.Println(resp.SyncedLyrics)
			return nil
		}

		for _, line := range lyrics.Parse(resp.SyncedLyrics) {
			fmt.Printf("[%s] %s\n", lyrics.FormatTimestamp(line.Time), line.Text)
		}

		return nil
	},
}

func readLyricsFile(path string) ([]lyrics.Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics file: %w", err)
	}
	return lyrics.Parse(string(data)), nil
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsParseCmd)
	lyricsCmd.AddCommand(lyricsLocateCmd)
	lyricsCmd.AddCommand(lyricsFetchCmd)

	lyricsLocateCmd.Flags().Float64VarP(&locateOffset, "offset", "o", 0, "sync offset in seconds")

	lyricsFetchCmd.Flags().StringVar(&fetchArtist, "artist", "", "artist name")
	lyricsFetchCmd.Flags().StringVar(&fetchTitle, "title", "", "track title")
	lyricsFetchCmd.Flags().StringVar(&fetchAlbum, "album", "", "album name")
	lyricsFetchCmd.Flags().Int64Var(&fetchDuration, "duration", 0, "track length in seconds")
	lyricsFetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "print the lrc text unparsed")
}
