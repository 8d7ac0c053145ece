// Package fpdfrenderer is a PDF backend built on codeberg.org/go-pdf/fpdf.
// fpdf measures from the top-left corner, so every y is flipped on the way in.
package fpdfrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/renderer"
)

const family = "go"

// defaultAscent is the ascent in em used when the face carries no descriptor.
const defaultAscent = 0.8

// Renderer draws pages with fpdf.
type Renderer struct {
	opts   renderer.Options
	pdf    *fpdf.Fpdf
	images *renderer.ImageStore
	// registered holds the image refs already embedded in the document.
	registered map[string]bool
	pages      int
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a renderer for pages of opts.Width x opts.Height mm.
func New(opts renderer.Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("fpdf renderer: invalid page size %gx%g", opts.Width, opts.Height)
	}
	regular, bold, err := opts.Fonts.Load()
	if err != nil {
		return nil, fmt.Errorf("fpdf renderer: %w", err)
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.Width, Ht: opts.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(family, "", regular)
	pdf.AddUTF8FontFromBytes(family, "B", bold)
	meta := opts.Meta
	pdf.SetTitle(meta.Title, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("fpdf renderer: %w", err)
	}
	return &Renderer{
		opts:       opts,
		pdf:        pdf,
		images:     renderer.NewImageStore(opts.BaseDir, opts.Images),
		registered: map[string]bool{},
	}, nil
}

// NewPage implements layout.Canvas.
func (r *Renderer) NewPage() error {
	r.pdf.AddPage()
	r.pages++
	return r.pdf.Error()
}

// Pages implements renderer.Backend.
func (r *Renderer) Pages() int { return r.pages }

func (r *Renderer) ready() error {
	if r.pages == 0 {
		return errors.New("fpdf renderer: draw before the first page")
	}
	return r.pdf.Error()
}

func (r *Renderer) setFont(font layout.Font) {
	style := ""
	if font.Bold {
		style = "B"
	}
	r.pdf.SetFont(family, style, font.Size)
}

// DrawText implements layout.Canvas. y is the baseline.
func (r *Renderer) DrawText(x, y float64, text string, font layout.Font, col layout.Color) error {
	if err := r.ready(); err != nil {
		return err
	}
	r.setFont(font)
	r.pdf.SetTextColor(col.R, col.G, col.B)
	r.pdf.Text(x, r.opts.Height-y, text)
	return r.pdf.Error()
}

// FillRect implements layout.Canvas.
func (r *Renderer) FillRect(rect layout.Rect, col layout.Color) error {
	if err := r.ready(); err != nil {
		return err
	}
	if rect.W <= 0 || rect.H <= 0 {
		return nil
	}
	r.pdf.SetFillColor(col.R, col.G, col.B)
	r.pdf.Rect(rect.X, r.opts.Height-rect.Y-rect.H, rect.W, rect.H, "F")
	return r.pdf.Error()
}

// DrawImage implements layout.Canvas. Images of any decodable format are
// embedded as PNG and stretched to rect.
func (r *Renderer) DrawImage(ref string, rect layout.Rect) error {
	if err := r.ready(); err != nil {
		return err
	}
	if !r.registered[ref] {
		img, err := r.images.Load(ref)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("fpdf renderer: re-encode %s: %w", ref, err)
		}
		r.pdf.RegisterImageOptionsReader(ref, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
		if err := r.pdf.Error(); err != nil {
			return fmt.Errorf("fpdf renderer: register %s: %w", ref, err)
		}
		r.registered[ref] = true
	}
	y := r.opts.Height - rect.Y - rect.H
	r.pdf.ImageOptions(ref, rect.X, y, rect.W, rect.H, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return r.pdf.Error()
}

// ImageSize implements layout.Canvas.
func (r *Renderer) ImageSize(ref string) (int, int, error) {
	return r.images.Size(ref)
}

// TextWidth implements layout.Metrics.
func (r *Renderer) TextWidth(text string, font layout.Font) float64 {
	r.setFont(font)
	return r.pdf.GetStringWidth(text)
}

// Ascent implements layout.Metrics.
func (r *Renderer) Ascent(font layout.Font) float64 {
	style := ""
	if font.Bold {
		style = "B"
	}
	em := defaultAscent
	if desc := r.pdf.GetFontDesc(family, style); desc.Ascent > 0 {
		em = float64(desc.Ascent) / 1000
	}
	return em * font.Size * layout.PtToMm
}

// Finish serialises the document.
func (r *Renderer) Finish() ([]byte, error) {
	if r.pages == 0 {
		return nil, errors.New("fpdf renderer: no pages to render")
	}
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf renderer: write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
