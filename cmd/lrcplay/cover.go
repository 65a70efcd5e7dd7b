package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"karolbroda.com/lrcplay/internal/artwork"
)

var coverCmd = &cobra.Command{
	Use:   "cover",
	Short: "cover art utilities",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(loadConfig(cmd), false)
	},
}

var coverColorCmd = &cobra.Command{
	Use:   "color <image>",
	Short: "show the colors lrcplay takes from a cover",
	Long:  `prints the dominant color, the ambient gradient stops and the accent palette extracted from an image path or url.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		img, err := artwork.Load(ctx, args[0])
		if err != nil {
			return err
		}

		dominant := artwork.DominantColor(img)
		ambient := artwork.AmbientFrom(dominant)
		palette := artwork.ExtractPalette(img)

		fmt.Printf("dominant:  %s  (%d, %d, %d)\n", swatchOf(dominant.Hex()), dominant.R, dominant.G, dominant.B)

		stops := make([]string, len(ambient.Stops))
		for i, stop := range ambient.Stops {
			stops[i] = swatchOf(stop.Hex())
		}
		fmt.Printf("ambient:   %s\n", strings.Join(stops, " -> "))

		fmt.Printf("primary:   %s\n", swatchOf(palette.Primary))
		fmt.Printf("secondary: %s\n", swatchOf(palette.Secondary))
		fmt.Printf("accent:    %s\n", swatchOf(palette.Accent))

		var bar strings.Builder
		for _, hex := range ambient.Gradient(40) {
			bar.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(" "))
		}
		fmt.Printf("\n%s\n", bar.String())

		return nil
	},
}

func swatchOf(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ") + " " + hex
}

func init() {
	rootCmd.AddCommand(coverCmd)

	coverCmd.AddCommand(coverColorCmd)
}
