package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/renderer"
)

// Renderer draws pages with github.com/tdewolff/canvas and writes them as PDF.
// Coordinates are mm with the origin at the bottom-left, which is the
// canvas default.
type Renderer struct {
	opts   renderer.Options
	images *renderer.ImageStore

	pages []*canvas.Canvas
	ctx   *canvas.Context

	fontMu sync.Mutex
	family *canvas.FontFamily
	faces  map[faceKey]*canvas.FontFace
}

type faceKey struct {
	size float64
	bold bool
	rgb  layout.Color
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a renderer for pages of opts.Width x opts.Height mm.
func New(opts renderer.Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("canvas renderer: invalid page size %gx%g", opts.Width, opts.Height)
	}
	regular, bold, err := opts.Fonts.Load()
	if err != nil {
		return nil, fmt.Errorf("canvas renderer: %w", err)
	}
	family := canvas.NewFontFamily("go")
	if err := family.LoadFont(regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("canvas renderer: load regular face: %w", err)
	}
	if err := family.LoadFont(bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("canvas renderer: load bold face: %w", err)
	}
	return &Renderer{
		opts:   opts,
		images: renderer.NewImageStore(opts.BaseDir, opts.Images),
		family: family,
		faces:  map[faceKey]*canvas.FontFace{},
	}, nil
}

// NewPage implements layout.Canvas.
func (r *Renderer) NewPage() error {
	c := canvas.New(r.opts.Width, r.opts.Height)
	r.pages = append(r.pages, c)
	r.ctx = canvas.NewContext(c)
	return nil
}

// Pages implements renderer.Backend.
func (r *Renderer) Pages() int { return len(r.pages) }

func (r *Renderer) context() (*canvas.Context, error) {
	if r.ctx == nil {
		return nil, errors.New("canvas renderer: draw before the first page")
	}
	return r.ctx, nil
}

// DrawText implements layout.Canvas. y is the baseline.
func (r *Renderer) DrawText(x, y float64, text string, font layout.Font, col layout.Color) error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	face := r.face(font, col)
	ctx.DrawText(x, y, canvas.NewTextLine(face, text, canvas.Left))
	return nil
}

// FillRect implements layout.Canvas.
func (r *Renderer) FillRect(rect layout.Rect, col layout.Color) error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	if rect.W <= 0 || rect.H <= 0 {
		return nil
	}
	ctx.SetFillColor(colorFromLayout(col))
	ctx.SetStrokeColor(color.RGBA{})
	ctx.DrawPath(rect.X, rect.Y, canvas.Rectangle(rect.W, rect.H))
	return nil
}

// DrawImage implements layout.Canvas. The image is scaled to rect.W and
// keeps its aspect ratio.
func (r *Renderer) DrawImage(ref string, rect layout.Rect) error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	img, err := r.images.Load(ref)
	if err != nil {
		return err
	}
	width := rect.W
	if width <= 0 {
		return nil
	}
	dpmm := float64(img.Bounds().Dx()) / width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(rect.X, rect.Y, img, canvas.DPMM(dpmm))
	return nil
}

// ImageSize implements layout.Canvas.
func (r *Renderer) ImageSize(ref string) (int, int, error) {
	return r.images.Size(ref)
}

// TextWidth implements layout.Metrics.
func (r *Renderer) TextWidth(text string, font layout.Font) float64 {
	return r.face(font, layout.Color{}).TextWidth(text)
}

// Ascent implements layout.Metrics.
func (r *Renderer) Ascent(font layout.Font) float64 {
	return r.face(font, layout.Color{}).Metrics().Ascent
}

// Finish writes every page to a single PDF.
func (r *Renderer) Finish() ([]byte, error) {
	if len(r.pages) == 0 {
		return nil, errors.New("canvas renderer: no pages to render")
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, r.opts.Width, r.opts.Height, nil)
	meta := r.opts.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	for i, c := range r.pages {
		if i > 0 {
			writer.NewPage(r.opts.Width, r.opts.Height)
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("canvas renderer: write PDF: %w", err)
	}
	r.pages, r.ctx = nil, nil
	return buf.Bytes(), nil
}

func (r *Renderer) face(font layout.Font, col layout.Color) *canvas.FontFace {
	key := faceKey{size: font.Size, bold: font.Bold, rgb: col}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f
	}
	style := canvas.FontRegular
	if font.Bold {
		style = canvas.FontBold
	}
	f := r.family.Face(font.Size, colorFromLayout(col), style, canvas.FontNormal)
	r.faces[key] = f
	return f
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
