package terminal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

// KittyGraphicsEnv opts into the kitty image protocol for cover art.
const KittyGraphicsEnv = "LRCPLAY_KITTY_GRAPHICS"

type Capabilities struct {
	SupportsKittyGraphics bool
	TermProgram           string
}

func DetectCapabilities() *Capabilities {
	return detect(os.Getenv)
}

func detect(getenv func(string) string) *Capabilities {
	caps := &Capabilities{TermProgram: getenv("TERM_PROGRAM")}

	switch strings.ToLower(getenv(KittyGraphicsEnv)) {
	case "1", "true", "yes", "on":
		caps.SupportsKittyGraphics = true
		if caps.TermProgram == "" {
			caps.TermProgram = "kitty"
		}
	}

	return caps
}

// show cursor, reset attributes, leave alt screen, disable mouse modes
const resetSequence = "\033[?25h\033[0m\033[?1049l\033[?1000l\033[?1002l\033[?1003l\033[?1006l"

// Reset restores the terminal after an abnormal exit.
func Reset() {
	writeReset(os.Stdout)
	os.Stdout.Sync()
}

func writeReset(w io.Writer) {
	io.WriteString(w, resetSequence)
}

// approximate cell size in pixels
const (
	cellWidth  = 10
	cellHeight = 20
	kittyChunk = 4096
)

// fitSize scales width x height to fit in cols x rows cells keeping aspect.
func fitSize(width, height, cols, rows int) (uint, uint) {
	boxW, boxH := float64(cols*cellWidth), float64(rows*cellHeight)
	aspect := float64(width) / float64(height)

	w, h := boxW, boxH
	if aspect > boxW/boxH {
		h = boxW / aspect
	} else {
		w = boxH * aspect
	}

	return uint(max(w, 10)), uint(max(h, 10))
}

// EncodeImageForKitty returns the escape sequence drawing img in a
// cols x rows cell box, or "" if it cannot be encoded.
func EncodeImageForKitty(img image.Image, cols int, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	w, h := fitSize(b.Dx(), b.Dy(), cols, rows)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resize.Resize(w, h, img, resize.Lanczos3)); err != nil {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var sb strings.Builder
	for start := 0; start < len(encoded); start += kittyChunk {
		end := min(start+kittyChunk, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}

		if start == 0 {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, encoded[start:end])
		} else {
			fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, encoded[start:end])
		}
	}

	return sb.String()
}
