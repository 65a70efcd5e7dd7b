package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

const fetchTimeout = 5 * time.Second

// Load decodes a cover from a local path, a file:// URI or an http(s) URL.
func Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, errors.New("empty artwork reference")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchRemote(ctx, ref)
	}

	path := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to parse artwork uri: %w", err)
		}
		path = u.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}
	return img, nil
}

func fetchRemote(parent context.Context, artworkURL string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(parent, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

// RenderHalfBlockArt draws img with upper half blocks, two pixel rows per
// terminal line.
func RenderHalfBlockArt(img image.Image, width int, height int) []string {
	if img == nil || width < 4 || height < 2 {
		return nil
	}

	resized := resize.Resize(uint(width), uint(height*2), img, resize.Lanczos3)
	b := resized.Bounds()

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		var sb strings.Builder
		top := b.Min.Y + row*2
		bottom := top + 1
		if bottom >= b.Max.Y {
			bottom = top
		}

		for x := b.Min.X; x < b.Max.X; x++ {
			upper, upperOpaque := pixelHex(resized, x, top)
			lower, lowerOpaque := pixelHex(resized, x, bottom)
			if !upperOpaque && !lowerOpaque {
				sb.WriteByte(' ')
				continue
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(upper)).
				Background(lipgloss.Color(lower))
			sb.WriteString(style.Render("▀"))
		}
		lines[row] = sb.String()
	}

	return lines
}

func pixelHex(img image.Image, x, y int) (string, bool) {
	r, g, b, a := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8), a>>8 >= 128
}
