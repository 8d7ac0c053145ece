package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/level5eng/docflow/fonts"
	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/renderer"
)

func a4(t *testing.T, dir string) *Renderer {
	t.Helper()
	r, err := New(renderer.Options{Width: 210, Height: 297, BaseDir: dir, Meta: renderer.Meta{Title: "Contrato"}})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMetricsScaleWithSize(t *testing.T) {
	r := a4(t, "")
	small := r.TextWidth("Contrato de prestação", layout.Font{Size: 10})
	large := r.TextWidth("Contrato de prestação", layout.Font{Size: 20})
	if small <= 0 || large <= small*1.9 || large >= small*2.1 {
		t.Fatalf("widths %g at 10pt and %g at 20pt", small, large)
	}
	if bold := r.TextWidth("Contrato de prestação", layout.Font{Size: 10, Bold: true}); bold <= 0 {
		t.Fatalf("bold width %g", bold)
	}
	asc := r.Ascent(layout.Font{Size: 10})
	if asc <= 0 || asc >= 10*layout.PtToMm {
		t.Fatalf("ascent %g mm out of range", asc)
	}
}

func TestConfiguredFonts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpo.ttf")
	if err := os.WriteFile(path, fonts.Bold(), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := New(renderer.Options{Width: 210, Height: 297, Fonts: renderer.Fonts{Regular: path, Bold: fonts.EmbedBold}})
	if err != nil {
		t.Fatal(err)
	}
	regular := r.TextWidth("Contrato de prestação", layout.Font{Size: 10})
	bold := r.TextWidth("Contrato de prestação", layout.Font{Size: 10, Bold: true})
	if regular != bold {
		t.Fatalf("regular face read from %s measures %g, bold %g", path, regular, bold)
	}

	missing := renderer.Fonts{Regular: filepath.Join(t.TempDir(), "absent.ttf")}
	if _, err := New(renderer.Options{Width: 210, Height: 297, Fonts: missing}); err == nil {
		t.Fatal("expected an error for a missing face")
	}
}

func TestDrawBeforePage(t *testing.T) {
	r := a4(t, "")
	if err := r.DrawText(10, 10, "x", layout.Font{Size: 10}, layout.Color{}); err == nil {
		t.Fatal("expected an error before NewPage")
	}
	if _, err := r.Finish(); err == nil {
		t.Fatal("expected an error without pages")
	}
}

func TestRenderPDF(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "logo.png"), 40, 10)
	r := a4(t, dir)

	w, h, err := r.ImageSize("logo.png")
	if err != nil || w != 40 || h != 10 {
		t.Fatalf("ImageSize = %d %d %v", w, h, err)
	}
	if _, _, err := r.ImageSize("absent.png"); !errors.Is(err, layout.ErrImageNotFound) {
		t.Fatalf("missing image err = %v", err)
	}

	for page := 0; page < 2; page++ {
		if err := r.NewPage(); err != nil {
			t.Fatal(err)
		}
		if err := r.FillRect(layout.Rect{X: 0, Y: 267, W: 210, H: 30}, layout.Color{R: 51, G: 103, B: 119}); err != nil {
			t.Fatal(err)
		}
		if err := r.DrawText(20, 250, "Página com acentuação", layout.Font{Size: 12, Bold: true}, layout.Color{}); err != nil {
			t.Fatal(err)
		}
		if err := r.DrawImage("logo.png", layout.Rect{X: 150, Y: 270, W: 40, H: 10}); err != nil {
			t.Fatal(err)
		}
	}
	if r.Pages() != 2 {
		t.Fatalf("pages = %d", r.Pages())
	}
	if err := r.DrawImage("absent.png", layout.Rect{W: 10, H: 10}); !errors.Is(err, layout.ErrImageNotFound) {
		t.Fatalf("drawing a missing image: %v", err)
	}

	out, err := r.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestComposeOnCanvas(t *testing.T) {
	r := a4(t, "")
	opts := layout.DefaultOptions()
	opts.Chrome = layout.Chrome{Title: "CONTRATO", Footer: "Level5", Palette: layout.DefaultPalette()}
	comp, err := layout.NewComposer(r, r, opts)
	if err != nil {
		t.Fatal(err)
	}
	var blocks []layout.Block
	for i := 0; i < 60; i++ {
		blocks = append(blocks, layout.Paragraph("Cláusula com texto suficiente para ocupar mais de uma linha na largura útil da página A4, com <b>negrito</b> no meio."))
	}
	if err := comp.Compose(blocks); err != nil {
		t.Fatal(err)
	}
	if comp.Page() < 2 || r.Pages() != comp.Page() {
		t.Fatalf("composer pages %d, renderer pages %d", comp.Page(), r.Pages())
	}
	if _, err := r.Finish(); err != nil {
		t.Fatal(err)
	}
}
