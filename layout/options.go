package layout

import "fmt"

// Options configures a Composer. All lengths are in mm.
type Options struct {
	Geometry PageGeometry
	Styles   StyleTable
	Chrome   Chrome
	// Gap is added after every block, whatever its kind.
	Gap float64
	// TitleGap is consumed before a title unless it opens a fresh page.
	TitleGap float64
	// Marker is the bullet glyph.
	Marker string
	// Signature holds the fixed gaps of the closing signature block.
	Signature SignatureOptions
}

// SignatureOptions are the fixed dimensions of a signature block.
type SignatureOptions struct {
	FontSize  float64 // pt
	Leading   float64
	DateGap   float64
	LineGap   float64
	RuleWidth float64
	Color     Color
}

// DefaultOptions mirrors the spacing of the printed contracts.
func DefaultOptions() Options {
	return Options{
		Geometry: DefaultGeometry(),
		Styles:   DefaultStyles(),
		Chrome:   Chrome{Palette: DefaultPalette()},
		Gap:      2.5,
		TitleGap: 4,
		Marker:   "•",
		Signature: SignatureOptions{
			FontSize:  10,
			Leading:   5,
			DateGap:   20,
			LineGap:   15,
			RuleWidth: 85,
			Color:     Color{R: 30, G: 30, B: 30},
		},
	}
}

// Validate rejects geometry the composer cannot lay out on.
func (o Options) Validate() error {
	g := o.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("layout: invalid page size %gx%g", g.Width, g.Height)
	}
	if g.TextWidth() <= 0 {
		return fmt.Errorf("layout: margins leave no text width")
	}
	if g.TopOffset() <= g.Margins.Bottom {
		return fmt.Errorf("layout: margins leave no text height")
	}
	if o.Gap < 0 || o.TitleGap < 0 {
		return fmt.Errorf("layout: gaps must not be negative")
	}
	for kind, s := range o.Styles {
		if s.Size <= 0 || s.Leading <= 0 {
			return fmt.Errorf("layout: style %s needs a positive size and leading", kind)
		}
	}
	return nil
}
