package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"karolbroda.com/lrcplay/internal/colors"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDominantColor(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want colors.RGB
	}{
		{"nil image", nil, DefaultDominant},
		{"empty image", image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultDominant},
		{"transparent", solid(8, 8, color.NRGBA{200, 10, 10, 0}), DefaultDominant},
		{"alpha at cutoff ignored", solid(8, 8, color.NRGBA{200, 10, 10, 128}), DefaultDominant},
		{"quantized", solid(8, 8, color.NRGBA{250, 100, 33, 255}), colors.RGB{R: 224, G: 96, B: 32}},
		{"semi opaque counted", solid(8, 8, color.NRGBA{31, 63, 95, 129}), colors.RGB{R: 0, G: 32, B: 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantColor(tt.img); got != tt.want {
				t.Errorf("DominantColor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDominantColorMajorityAndTies(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}

	// 4x4 image: sampled pixels are 0, 4, 8, 12, i.e. the first column
	img := solid(4, 4, blue)
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(0, 1, red)
	img.SetNRGBA(0, 2, red)
	if got := DominantColor(img); got != (colors.RGB{R: 224, G: 0, B: 0}) {
		t.Errorf("majority: got %v, want red bucket", got)
	}

	// two red, two blue among the samples: first seen wins
	img.SetNRGBA(0, 0, blue)
	if got := DominantColor(img); got != (colors.RGB{R: 0, G: 0, B: 224}) {
		t.Errorf("tie: got %v, want blue bucket (seen first)", got)
	}

	// unsampled pixels do not count
	img = solid(4, 4, blue)
	for y := 0; y < 4; y++ {
		for x := 1; x < 4; x++ {
			img.SetNRGBA(x, y, red)
		}
	}
	if got := DominantColor(img); got != (colors.RGB{R: 0, G: 0, B: 224}) {
		t.Errorf("sampling: got %v, want blue bucket", got)
	}
}

func TestAmbient(t *testing.T) {
	a := AmbientFrom(colors.RGB{R: 224, G: 96, B: 32})
	want := []colors.RGB{{R: 224, G: 96, B: 32}, {R: 254, G: 126, B: 62}, {R: 255, G: 156, B: 92}}
	for i, c := range want {
		if a.Stops[i] != c {
			t.Errorf("stop %d = %v, want %v", i, a.Stops[i], c)
		}
	}

	def := DefaultAmbient()
	if def.Stops[0].Hex() != "#667EEA" || def.Stops[1].Hex() != "#764BA2" {
		t.Errorf("unexpected default ambient %v", def.Stops)
	}

	grad := a.Gradient(9)
	if len(grad) != 9 {
		t.Fatalf("len = %d, want 9", len(grad))
	}
	if grad[0] != a.Stops[0].Hex() {
		t.Errorf("gradient should start at first stop, got %s", grad[0])
	}
	if got := (Ambient{}).Gradient(5); got != nil {
		t.Errorf("empty ambient gradient = %v", got)
	}
	if got := def.Gradient(1); len(got) != 1 {
		t.Errorf("single step gradient = %v", got)
	}
}

func writePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	data := writePNG(t, solid(6, 6, color.NRGBA{10, 200, 90, 255}))
	path := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	ctx := context.Background()
	for _, ref := range []string{path, "file://" + path, srv.URL + "/cover.png"} {
		img, err := Load(ctx, ref)
		if err != nil {
			t.Errorf("Load(%q): %v", ref, err)
			continue
		}
		if img.Bounds().Dx() != 6 {
			t.Errorf("Load(%q): width %d", ref, img.Bounds().Dx())
		}
	}

	for _, ref := range []string{"", filepath.Join(t.TempDir(), "nope.png"), srv.URL + "/missing.png"} {
		if _, err := Load(ctx, ref); err == nil {
			t.Errorf("Load(%q) should fail", ref)
		}
	}

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(notImage, []byte("hello"), 0o644)
	if _, err := Load(ctx, notImage); err == nil {
		t.Error("decoding a text file should fail")
	}
}

func TestRenderHalfBlockArt(t *testing.T) {
	img := solid(32, 32, color.NRGBA{120, 40, 200, 255})

	lines := RenderHalfBlockArt(img, 10, 5)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line == "" {
			t.Errorf("line %d empty", i)
		}
	}

	if RenderHalfBlockArt(nil, 10, 5) != nil {
		t.Error("nil image should render nothing")
	}
	if RenderHalfBlockArt(img, 2, 5) != nil {
		t.Error("too narrow should render nothing")
	}
}

func TestExtractPalette(t *testing.T) {
	def := ExtractPalette(nil)
	if def.Primary != DefaultPalette().Primary || len(def.Ambient.Stops) != 2 {
		t.Errorf("nil image should give default palette, got %#v", def)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	bands := []color.NRGBA{{220, 40, 40, 255}, {40, 200, 60, 255}, {50, 80, 230, 255}, {230, 200, 40, 255}, {200, 60, 200, 255}}
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			img.SetNRGBA(x, y, bands[x/12])
		}
	}

	p := ExtractPalette(img)
	if len(p.Gradient) != gradientSteps {
		t.Errorf("gradient len = %d, want %d", len(p.Gradient), gradientSteps)
	}
	if len(p.Ambient.Stops) != 3 || p.Ambient.Stops[0] != DominantColor(img) {
		t.Errorf("ambient should derive from the dominant color, got %v", p.Ambient.Stops)
	}
	for _, hex := range []string{p.Primary, p.Secondary, p.Accent} {
		if _, err := colors.ParseHex(hex); err != nil {
			t.Errorf("invalid palette color %q", hex)
		}
	}
}
