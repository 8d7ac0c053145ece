package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one block variant. The style table is keyed by it.
type Kind string

const (
	KindTitle     Kind = "title"
	KindLabel     Kind = "label"
	KindText      Kind = "text"
	KindParagraph Kind = "paragraph"
	KindBullet    Kind = "bullet"
	KindImage     Kind = "image"
	KindSignature Kind = "signature"
)

// Block is one independently measured unit of document content.
// Only the fields relevant to Kind are set.
type Block struct {
	Kind      Kind            `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Image     *ImageSpec      `json:"image,omitempty"`
	Signature *SignatureBlock `json:"signature,omitempty"`
}

// ImageSpec is a fixed-size graphic. Sizes are in mm; Height is never measured.
type ImageSpec struct {
	Ref    string  `json:"ref"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SignatureBlock is the closing date line followed by two signature lines.
type SignatureBlock struct {
	DateText string           `json:"dateText"`
	Lines    [2]SignatureLine `json:"lines"`
	Overlay  Overlay          `json:"overlay,omitempty"`
}

// SignatureLine is a caption followed by a rule, with the signer's name below it.
type SignatureLine struct {
	Caption string `json:"caption"`
	Name    string `json:"name,omitempty"`
}

// Overlay is an optional image (a scanned signature, a stamp) anchored above
// the rule of Lines[Line]. An empty Ref disables it.
type Overlay struct {
	Ref    string  `json:"ref,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Line   int     `json:"line,omitempty"`
}

func Title(text string) Block     { return Block{Kind: KindTitle, Text: text} }
func Label(text string) Block     { return Block{Kind: KindLabel, Text: text} }
func Text(text string) Block      { return Block{Kind: KindText, Text: text} }
func Paragraph(text string) Block { return Block{Kind: KindParagraph, Text: text} }
func Bullet(text string) Block    { return Block{Kind: KindBullet, Text: text} }

// Image returns an image block; a zero height makes it a placeholder that consumes no space.
func Image(ref string, width, height float64) Block {
	return Block{Kind: KindImage, Image: &ImageSpec{Ref: ref, Width: width, Height: height}}
}

// Signature wraps a signature block.
func Signature(sig SignatureBlock) Block {
	return Block{Kind: KindSignature, Signature: &sig}
}

// Align is the horizontal alignment of wrapped text.
type Align string

const (
	AlignLeft    Align = "left"
	AlignJustify Align = "justify"
)

// Style describes how one block kind is set. Size is in points, every length in mm.
type Style struct {
	Size        float64 `json:"size" yaml:"size"`
	Leading     float64 `json:"leading" yaml:"leading"`
	Bold        bool    `json:"bold" yaml:"bold"`
	Align       Align   `json:"align" yaml:"align"`
	Indent      float64 `json:"indent" yaml:"indent"`
	FirstIndent float64 `json:"firstIndent" yaml:"firstIndent"`
	Color       Color   `json:"color" yaml:"color"`
}

// Font returns the face used for a run inside this style.
func (s Style) Font(bold bool) Font {
	return Font{Size: s.Size, Bold: s.Bold || bold}
}

// StyleTable maps each text block kind to its style.
type StyleTable map[Kind]Style

// DefaultStyles mirrors the body/heading styles of the printed contracts.
func DefaultStyles() StyleTable {
	body := Color{R: 51, G: 51, B: 51}
	heading := Color{R: 51, G: 103, B: 119}
	return StyleTable{
		KindTitle:     {Size: 14, Leading: 7, Bold: true, Align: AlignLeft, Color: heading},
		KindLabel:     {Size: 10, Leading: 5.5, Bold: true, Align: AlignLeft, Color: body},
		KindText:      {Size: 10, Leading: 5.5, Align: AlignLeft, Color: body},
		KindParagraph: {Size: 10, Leading: 5, Align: AlignJustify, Color: body},
		KindBullet:    {Size: 10, Leading: 5, Align: AlignJustify, Indent: 6, FirstIndent: 2, Color: body},
	}
}

// For returns the style of kind, falling back to the paragraph style.
func (t StyleTable) For(kind Kind) Style {
	if s, ok := t[kind]; ok {
		return s
	}
	if s, ok := t[KindParagraph]; ok {
		return s
	}
	return Style{Size: 10, Leading: 5, Align: AlignLeft}
}

// Font selects a face by size (pt) and weight.
type Font struct {
	Size float64 `json:"size"`
	Bold bool    `json:"bold,omitempty"`
}

// Color uses 0-255 RGB channels.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseColor accepts #rgb and #rrggbb.
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, fmt.Errorf("layout: invalid colour %q", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("layout: invalid colour %q: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalYAML lets configuration files spell colours as hex strings.
func (c *Color) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Rect is an axis-aligned rectangle in page coordinates (mm, origin bottom-left).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Margins are in mm.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// PageGeometry is immutable for the lifetime of a document.
type PageGeometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Margins      Margins `json:"margins"`
	HeaderHeight float64 `json:"headerHeight"`
}

// TextWidth is the width available to body text.
func (g PageGeometry) TextWidth() float64 {
	return g.Width - g.Margins.Left - g.Margins.Right
}

// TopOffset is the cursor value of a fresh content page.
func (g PageGeometry) TopOffset() float64 {
	return g.Height - g.Margins.Top
}

var pagePresets = map[string][2]float64{
	"A4": {210, 297},
	"A5": {148, 210},
}

// PageSize resolves a named paper size (portrait) in mm.
func PageSize(name string) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, fmt.Errorf("layout: unsupported page size %q", name)
	}
	return base[0], base[1], nil
}

// DefaultGeometry is A4 with a 30mm header band.
func DefaultGeometry() PageGeometry {
	return PageGeometry{
		Width:        210,
		Height:       297,
		Margins:      Margins{Top: 40, Right: 20, Bottom: 22, Left: 20},
		HeaderHeight: 30,
	}
}

// Palette holds the colours of the page chrome.
type Palette struct {
	Band     Color `json:"band" yaml:"band"`
	BandText Color `json:"bandText" yaml:"bandText"`
	Accent   Color `json:"accent" yaml:"accent"`
	Muted    Color `json:"muted" yaml:"muted"`
	Rule     Color `json:"rule" yaml:"rule"`
}

// DefaultPalette is the company's blue band with an orange accent.
func DefaultPalette() Palette {
	return Palette{
		Band:     Color{R: 51, G: 103, B: 119},
		BandText: Color{R: 255, G: 255, B: 255},
		Accent:   Color{R: 243, G: 156, B: 18},
		Muted:    Color{R: 127, G: 140, B: 141},
		Rule:     Color{R: 236, G: 240, B: 241},
	}
}

// Chrome parameterises the repeating frame of content pages.
type Chrome struct {
	Title   string  `json:"title"`
	Logo    string  `json:"logo,omitempty"`
	Footer  string  `json:"footer,omitempty"`
	Palette Palette `json:"palette"`
	// FirstPage is the number printed on the first content page, so that
	// pages such as a cover drawn before the composer are counted. Zero means 1.
	FirstPage int `json:"firstPage,omitempty"`
}

// Document is one rendering request: ordered blocks plus chrome parameters.
type Document struct {
	Blocks []Block `json:"blocks"`
	Chrome Chrome  `json:"chrome"`
}

// Placement records where a block landed.
type Placement struct {
	Index  int     `json:"index"`
	Kind   Kind    `json:"kind"`
	Page   int     `json:"page"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Break  bool    `json:"break,omitempty"`
}
