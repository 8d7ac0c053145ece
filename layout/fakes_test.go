package layout

import "unicode/utf8"

// fixedMetrics gives every rune the same advance so wrapping is predictable.
type fixedMetrics struct {
	advance float64
}

func (m fixedMetrics) TextWidth(text string, _ Font) float64 {
	return float64(utf8.RuneCountInString(text)) * m.advance
}

func (m fixedMetrics) Ascent(font Font) float64 {
	return font.Size * PtToMm * 0.8
}

type drawOp struct {
	Op    string
	X, Y  float64
	Text  string
	Font  Font
	Color Color
	Rect  Rect
	Ref   string
}

// recordingCanvas keeps every primitive it receives. Images resolve only when
// listed in images.
type recordingCanvas struct {
	pages  int
	ops    []drawOp
	images map[string][2]int
}

func (c *recordingCanvas) NewPage() error {
	c.pages++
	c.ops = append(c.ops, drawOp{Op: "page"})
	return nil
}

func (c *recordingCanvas) DrawText(x, y float64, text string, font Font, color Color) error {
	c.ops = append(c.ops, drawOp{Op: "text", X: x, Y: y, Text: text, Font: font, Color: color})
	return nil
}

func (c *recordingCanvas) DrawImage(ref string, r Rect) error {
	if _, ok := c.images[ref]; !ok {
		return ErrImageNotFound
	}
	c.ops = append(c.ops, drawOp{Op: "image", Ref: ref, Rect: r})
	return nil
}

func (c *recordingCanvas) FillRect(r Rect, color Color) error {
	c.ops = append(c.ops, drawOp{Op: "rect", Rect: r, Color: color})
	return nil
}

func (c *recordingCanvas) ImageSize(ref string) (int, int, error) {
	size, ok := c.images[ref]
	if !ok {
		return 0, 0, ErrImageNotFound
	}
	return size[0], size[1], nil
}

func (c *recordingCanvas) count(op string, match func(drawOp) bool) int {
	n := 0
	for _, o := range c.ops {
		if o.Op == op && (match == nil || match(o)) {
			n++
		}
	}
	return n
}

func (c *recordingCanvas) texts() []string {
	var out []string
	for _, o := range c.ops {
		if o.Op == "text" {
			out = append(out, o.Text)
		}
	}
	return out
}

// smallPage is 100x100mm with 10mm margins: content runs from 90 down to 10.
func smallPage() Options {
	o := DefaultOptions()
	o.Geometry = PageGeometry{
		Width:        100,
		Height:       100,
		Margins:      Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
		HeaderHeight: 5,
	}
	return o
}
