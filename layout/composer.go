package layout

import (
	"errors"
	"fmt"
	"strings"
)

const (
	dividerGap       = 1.5
	dividerThickness = 0.7
	ruleThickness    = 0.3
	captionPad       = 2.0
)

// Composer is the pagination engine. It owns the cursor and the page counter
// and emits draw calls to a Canvas it does not own. A Composer serves one
// document and is not safe for concurrent use.
type Composer struct {
	canvas   Canvas
	metrics  Metrics
	measurer *Measurer
	chrome   *ChromeRenderer
	opts     Options

	page   int
	cursor float64
	// fresh is true until the first block lands on the current page.
	fresh bool
	next  int
	trace []Placement
}

// NewComposer validates opts, opens the first content page and draws its chrome.
func NewComposer(c Canvas, m Metrics, opts Options) (*Composer, error) {
	if c == nil || m == nil {
		return nil, errors.New("layout: composer needs a canvas and metrics")
	}
	if opts.Styles == nil {
		opts.Styles = DefaultStyles()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	comp := &Composer{
		canvas:   c,
		metrics:  m,
		measurer: NewMeasurer(m),
		chrome:   NewChromeRenderer(opts.Chrome, m),
		opts:     opts,
	}
	if err := comp.startPage(); err != nil {
		return nil, err
	}
	return comp, nil
}

// Page is the number of content pages started so far.
func (c *Composer) Page() int { return c.page }

// Cursor is the current writing position, in mm from the bottom of the page.
func (c *Composer) Cursor() float64 { return c.cursor }

// Trace returns where every placed block landed, in append order.
func (c *Composer) Trace() []Placement {
	out := make([]Placement, len(c.trace))
	copy(out, c.trace)
	return out
}

// Compose appends blocks in order and stops at the first error.
func (c *Composer) Compose(blocks []Block) error {
	for i, b := range blocks {
		if err := c.Append(b); err != nil {
			return fmt.Errorf("block %d (%s): %w", i, b.Kind, err)
		}
	}
	return nil
}

// Append dispatches b to the operation of its kind.
func (c *Composer) Append(b Block) error {
	switch b.Kind {
	case KindTitle:
		return c.Title(b.Text)
	case KindLabel:
		return c.Label(b.Text)
	case KindText:
		return c.Text(b.Text)
	case KindParagraph:
		return c.Paragraph(b.Text)
	case KindBullet:
		return c.Bullet(b.Text)
	case KindImage:
		if b.Image == nil {
			return errors.New("layout: image block without image")
		}
		return c.Image(b.Image.Ref, b.Image.Width, b.Image.Height)
	case KindSignature:
		if b.Signature == nil {
			return errors.New("layout: signature block without signature")
		}
		return c.Signature(*b.Signature)
	default:
		return fmt.Errorf("layout: unknown block kind %q", b.Kind)
	}
}

// Title draws a heading followed by an accent divider. Mid-page it is preceded
// by the title gap; at the top of a page it is not.
func (c *Composer) Title(text string) error {
	style := c.opts.Styles.For(KindTitle)
	m := c.measurer.Measure(text, style, c.opts.Geometry.TextWidth())
	h := 0.0
	if m.LineCount > 0 {
		h = m.Height + dividerGap + dividerThickness
	}
	return c.place(KindTitle, h, c.opts.TitleGap, func(top float64) error {
		if err := c.drawLines(m, style, top); err != nil {
			return err
		}
		geo := c.opts.Geometry
		rule := Rect{
			X: geo.Margins.Left,
			Y: top - m.Height - dividerGap - dividerThickness,
			W: geo.TextWidth(),
			H: dividerThickness,
		}
		return c.canvas.FillRect(rule, c.opts.Chrome.Palette.Accent)
	})
}

// Label draws one unwrapped line in the label style.
func (c *Composer) Label(text string) error {
	return c.singleLine(KindLabel, text)
}

// Text draws one unwrapped line in the body style.
func (c *Composer) Text(text string) error {
	return c.singleLine(KindText, text)
}

// Paragraph draws wrapped, usually justified, body text.
func (c *Composer) Paragraph(text string) error {
	return c.wrapped(KindParagraph, text)
}

// Bullet draws a wrapped list item with the marker glued to its first word.
func (c *Composer) Bullet(text string) error {
	if strings.TrimSpace(text) != "" && c.opts.Marker != "" {
		text = c.opts.Marker + "\u00a0" + text
	}
	return c.wrapped(KindBullet, text)
}

// Image draws ref at a fixed size, centred in the text column. A zero height
// consumes no space; an unresolvable ref keeps its space but draws nothing.
func (c *Composer) Image(ref string, width, height float64) error {
	geo := c.opts.Geometry
	if width > geo.TextWidth() {
		width = geo.TextWidth()
	}
	return c.place(KindImage, height, 0, func(top float64) error {
		r := Rect{
			X: geo.Margins.Left + (geo.TextWidth()-width)/2,
			Y: top - height,
			W: width,
			H: height,
		}
		if err := c.canvas.DrawImage(ref, r); err != nil && !errors.Is(err, ErrImageNotFound) {
			return fmt.Errorf("draw image %s: %w", ref, err)
		}
		return nil
	})
}

// Signature draws the closing date and two signature lines. Its height is fixed
// by the signature options and does not depend on the texts.
func (c *Composer) Signature(sig SignatureBlock) error {
	so := c.opts.Signature
	h := 5*so.Leading + so.DateGap + so.LineGap
	return c.place(KindSignature, h, 0, func(top float64) error {
		font := Font{Size: so.FontSize}
		left := c.opts.Geometry.Margins.Left
		y := top
		if sig.DateText != "" {
			if err := c.canvas.DrawText(left, c.baseline(y, so.Leading, font), sig.DateText, font, so.Color); err != nil {
				return err
			}
		}
		y -= so.Leading + so.DateGap
		for i, line := range sig.Lines {
			ruleY, err := c.drawSignatureLine(line, y, font)
			if err != nil {
				return err
			}
			if ov := sig.Overlay; ov.Ref != "" && ov.Line == i {
				x := left + c.metrics.TextWidth(line.Caption, font) + captionPad
				r := Rect{X: x, Y: ruleY, W: ov.Width, H: ov.Height}
				if err := c.canvas.DrawImage(ov.Ref, r); err != nil && !errors.Is(err, ErrImageNotFound) {
					return fmt.Errorf("draw signature overlay: %w", err)
				}
			}
			y -= 2*so.Leading + so.LineGap
		}
		return nil
	})
}

// drawSignatureLine draws caption, rule and name starting at top and returns
// the y of the rule.
func (c *Composer) drawSignatureLine(line SignatureLine, top float64, font Font) (float64, error) {
	so := c.opts.Signature
	left := c.opts.Geometry.Margins.Left
	base := c.baseline(top, so.Leading, font)
	if line.Caption != "" {
		if err := c.canvas.DrawText(left, base, line.Caption, font, so.Color); err != nil {
			return 0, err
		}
	}
	x := left + c.metrics.TextWidth(line.Caption, font) + captionPad
	if err := c.canvas.FillRect(Rect{X: x, Y: base, W: so.RuleWidth, H: ruleThickness}, so.Color); err != nil {
		return 0, err
	}
	if line.Name != "" {
		nameBase := c.baseline(top-so.Leading, so.Leading, font)
		if err := c.canvas.DrawText(x, nameBase, line.Name, font, so.Color); err != nil {
			return 0, err
		}
	}
	return base, nil
}

func (c *Composer) singleLine(kind Kind, text string) error {
	style := c.opts.Styles.For(kind)
	m := c.measurer.MeasureLine(text, style)
	return c.place(kind, m.Height, 0, func(top float64) error {
		return c.drawLines(m, style, top)
	})
}

func (c *Composer) wrapped(kind Kind, text string) error {
	style := c.opts.Styles.For(kind)
	m := c.measurer.Measure(text, style, c.opts.Geometry.TextWidth())
	return c.place(kind, m.Height, 0, func(top float64) error {
		return c.drawLines(m, style, top)
	})
}

// place is the only code path that moves the cursor. A block of no height is
// skipped without a gap. A block that does not fit breaks the page unless the
// page is still empty, in which case it is drawn overflowing.
func (c *Composer) place(kind Kind, h, preGap float64, draw func(top float64) error) error {
	index := c.next
	c.next++
	if h <= 0 {
		return nil
	}
	if !c.fresh {
		c.cursor -= preGap
	}
	broke := false
	if !c.fresh && c.cursor-h < c.opts.Geometry.Margins.Bottom {
		if err := c.startPage(); err != nil {
			return err
		}
		broke = true
	}
	top := c.cursor
	c.trace = append(c.trace, Placement{
		Index:  index,
		Kind:   kind,
		Page:   c.page,
		Top:    top,
		Height: h,
		Break:  broke,
	})
	if err := draw(top); err != nil {
		return err
	}
	c.cursor = top - h - c.opts.Gap
	c.fresh = false
	return nil
}

func (c *Composer) startPage() error {
	if err := c.canvas.NewPage(); err != nil {
		return fmt.Errorf("start page: %w", err)
	}
	c.page++
	if err := c.chrome.Render(c.canvas, c.opts.Geometry, c.page); err != nil {
		return fmt.Errorf("page %d chrome: %w", c.page, err)
	}
	c.cursor = c.opts.Geometry.TopOffset()
	c.fresh = true
	return nil
}

// drawLines emits the segments of m with their top edge at top.
func (c *Composer) drawLines(m Measurement, style Style, top float64) error {
	left := c.opts.Geometry.Margins.Left
	for i, line := range m.Lines {
		base := c.baseline(top-float64(i)*style.Leading, style.Leading, style.Font(false))
		extra := 0.0
		if style.Align == AlignJustify && !line.Last && len(line.Words) > 1 {
			extra = (line.Avail - line.Width) / float64(len(line.Words)-1)
		}
		x := left + line.Indent
		for _, w := range line.Words {
			for _, seg := range w.Segments {
				if err := c.canvas.DrawText(x, base, seg.Text, style.Font(seg.Bold), style.Color); err != nil {
					return fmt.Errorf("draw text: %w", err)
				}
				x += seg.Width
			}
			x += m.Space + extra
		}
	}
	return nil
}

// baseline centres a font of the given size inside a line box of height leading.
func (c *Composer) baseline(lineTop, leading float64, font Font) float64 {
	return lineTop - (leading-font.Size*PtToMm)/2 - c.metrics.Ascent(font)
}
