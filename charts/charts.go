// Package charts draws the images embedded in commercial proposals: the
// monthly production bar chart and the payback table.
package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/level5eng/docflow/fonts"
)

// Month is the estimated generation of one calendar month (1-12).
type Month struct {
	Month int
	Total float64
}

// Row is the accumulated balance at the end of one year.
type Row struct {
	Year    int
	Balance float64
}

var (
	teal    = color.RGBA{R: 0x16, G: 0xa0, B: 0x85, A: 0xff}
	blue    = color.RGBA{R: 0x33, G: 0x67, B: 0x77, A: 0xff}
	light   = color.RGBA{R: 0xec, G: 0xf0, B: 0xf1, A: 0xff}
	grid    = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	ink     = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	outline = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

var monthNames = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthName abbreviates m; values outside 1-12 are printed as numbers.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprint(m)
	}
	return monthNames[m-1]
}

var (
	parseOnce         sync.Once
	regularTT, boldTT *opentype.Font
	parseErr          error
)

func parsedFonts() (*opentype.Font, *opentype.Font, error) {
	parseOnce.Do(func() {
		if regularTT, parseErr = opentype.Parse(fonts.Regular()); parseErr != nil {
			return
		}
		boldTT, parseErr = opentype.Parse(fonts.Bold())
	})
	return regularTT, boldTT, parseErr
}

// face returns a new face of size px. Faces are not safe for concurrent use,
// so each drawing builds its own.
func face(bold bool, px float64) (font.Face, error) {
	regular, b, err := parsedFonts()
	if err != nil {
		return nil, fmt.Errorf("charts: parse font: %w", err)
	}
	f := regular
	if bold {
		f = b
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("charts: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("charts: encode %s: %w", path, err)
	}
	return f.Close()
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// stroke draws the outline of r, w pixels wide, inside r.
func stroke(dst draw.Image, r image.Rectangle, w int, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// dashed draws a horizontal dashed line at y.
func dashed(dst draw.Image, x0, x1, y int, c color.Color) {
	const dash, gap = 10, 6
	for x := x0; x < x1; x += dash + gap {
		end := x + dash
		if end > x1 {
			end = x1
		}
		fill(dst, image.Rect(x, y, end, y+1), c)
	}
}

type anchor int

const (
	anchorLeft anchor = iota
	anchorCenter
	anchorRight
)

// text draws s with its baseline at y, aligned on x according to a.
func text(dst draw.Image, f font.Face, c color.Color, x, y int, a anchor, s string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: f}
	w := d.MeasureString(s).Round()
	switch a {
	case anchorCenter:
		x -= w / 2
	case anchorRight:
		x -= w
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}
