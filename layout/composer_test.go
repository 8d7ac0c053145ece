package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const eps = 1e-9

func newTestComposer(t *testing.T, opts Options) (*Composer, *recordingCanvas) {
	t.Helper()
	canvas := &recordingCanvas{images: map[string][2]int{"logo.png": {400, 100}, "chart.png": {800, 400}}}
	comp, err := NewComposer(canvas, fixedMetrics{advance: 2}, opts)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return comp, canvas
}

// fourLines wraps to exactly four lines (20mm) on the small page.
var fourLines = strings.Repeat("aaaa ", 32)

func bandRects(c *recordingCanvas, band Color) int {
	return c.count("rect", func(o drawOp) bool { return o.Color == band && o.Rect.X == 0 })
}

func TestNewComposerStartsFirstPage(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	if comp.Page() != 1 || canvas.pages != 1 {
		t.Fatalf("page=%d canvas pages=%d, want 1/1", comp.Page(), canvas.pages)
	}
	if comp.Cursor() != 90 {
		t.Fatalf("cursor %g, want top offset 90", comp.Cursor())
	}
	if n := bandRects(canvas, DefaultPalette().Band); n != 1 {
		t.Fatalf("chrome drawn %d times, want 1", n)
	}
}

func TestCursorNeverBelowBottomMargin(t *testing.T) {
	opts := smallPage()
	comp, _ := newTestComposer(t, opts)
	blocks := []Block{Title("Objeto")}
	for i := 0; i < 12; i++ {
		blocks = append(blocks,
			Label("CONTRATANTE:"),
			Text("Cliente"),
			Paragraph(fourLines),
			Bullet("aaaa bbbb cccc"),
			Title("Cláusula"),
			Image("chart.png", 60, 30),
			Image("missing.png", 60, 0),
		)
	}
	if err := comp.Compose(blocks); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	bottom := opts.Geometry.Margins.Bottom
	for _, p := range comp.Trace() {
		if p.Top < bottom-eps {
			t.Fatalf("block %d drawn at %g below bottom margin", p.Index, p.Top)
		}
		fresh := math.Abs(p.Top-opts.Geometry.TopOffset()) < eps
		if p.Top-p.Height < bottom-eps && !fresh {
			t.Fatalf("block %d overflows page %d without a break: top=%g h=%g", p.Index, p.Page, p.Top, p.Height)
		}
		if p.Break && !fresh {
			t.Fatalf("block %d broke the page but starts at %g", p.Index, p.Top)
		}
	}
	if comp.Page() < 3 {
		t.Fatalf("expected several pages, got %d", comp.Page())
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	blocks := []Block{
		Title("Proposta"),
		Paragraph(fourLines),
		Paragraph(fourLines + fourLines),
		Bullet("item"),
		Title("Garantias"),
		Signature(SignatureBlock{DateText: "Cidade, 1 de janeiro de 2025"}),
	}
	run := func() (int, []Placement) {
		comp, _ := newTestComposer(t, smallPage())
		if err := comp.Compose(blocks); err != nil {
			t.Fatalf("Compose: %v", err)
		}
		return comp.Page(), comp.Trace()
	}
	pages1, trace1 := run()
	pages2, trace2 := run()
	if pages1 != pages2 {
		t.Fatalf("page counts differ: %d vs %d", pages1, pages2)
	}
	if diff := cmp.Diff(trace1, trace2); diff != "" {
		t.Fatalf("placements differ (-first +second):\n%s", diff)
	}
}

func TestParagraphBreaksOnce(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	// eight labels leave the cursor at 90 - 8*(5.5+2.5) = 26
	for i := 0; i < 8; i++ {
		if err := comp.Text("linha"); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(comp.Cursor()-26) > eps {
		t.Fatalf("cursor %g, want 26", comp.Cursor())
	}
	if err := comp.Paragraph(fourLines); err != nil {
		t.Fatal(err)
	}
	if comp.Page() != 2 || canvas.pages != 2 {
		t.Fatalf("pages=%d canvas=%d, want exactly one break", comp.Page(), canvas.pages)
	}
	if n := bandRects(canvas, DefaultPalette().Band); n != 2 {
		t.Fatalf("chrome drawn %d times, want 2", n)
	}
	trace := comp.Trace()
	last := trace[len(trace)-1]
	want := Placement{Index: 8, Kind: KindParagraph, Page: 2, Top: 90, Height: 20, Break: true}
	if diff := cmp.Diff(want, last, cmpopts.EquateApprox(0, eps)); diff != "" {
		t.Fatalf("paragraph placement (-want +got):\n%s", diff)
	}
}

func TestTitleGap(t *testing.T) {
	t.Run("first block on a page", func(t *testing.T) {
		comp, _ := newTestComposer(t, smallPage())
		if err := comp.Title("Objeto"); err != nil {
			t.Fatal(err)
		}
		if top := comp.Trace()[0].Top; top != 90 {
			t.Fatalf("title top %g, want 90", top)
		}
	})

	t.Run("mid page", func(t *testing.T) {
		opts := smallPage()
		comp, _ := newTestComposer(t, opts)
		if err := comp.Text("linha"); err != nil {
			t.Fatal(err)
		}
		if err := comp.Title("Objeto"); err != nil {
			t.Fatal(err)
		}
		// 90 - 5.5 - 2.5 gap - 4 title gap
		if top := comp.Trace()[1].Top; math.Abs(top-78) > eps {
			t.Fatalf("title top %g, want 78", top)
		}
	})

	t.Run("after a break", func(t *testing.T) {
		comp, _ := newTestComposer(t, smallPage())
		for i := 0; i < 9; i++ {
			if err := comp.Text("linha"); err != nil {
				t.Fatal(err)
			}
		}
		// cursor 18: the gap would leave 14, the title needs 9.2
		if err := comp.Title("Objeto"); err != nil {
			t.Fatal(err)
		}
		last := comp.Trace()[9]
		if !last.Break || last.Page != 2 || last.Top != 90 {
			t.Fatalf("title after break: %+v", last)
		}
	})
}

func TestEmptyBlocksConsumeNoSpace(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	before := len(canvas.ops)
	for _, b := range []Block{Paragraph(""), Text("  "), Title(""), Bullet(""), Image("chart.png", 50, 0)} {
		if err := comp.Append(b); err != nil {
			t.Fatal(err)
		}
	}
	if comp.Cursor() != 90 || len(comp.Trace()) != 0 || len(canvas.ops) != before {
		t.Fatalf("empty blocks moved the cursor to %g or drew %d ops", comp.Cursor(), len(canvas.ops)-before)
	}
	if err := comp.Text("x"); err != nil {
		t.Fatal(err)
	}
	if idx := comp.Trace()[0].Index; idx != 5 {
		t.Fatalf("index %d, want 5", idx)
	}
}

func TestOversizedBlockDrawnAtTop(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	huge := strings.Repeat(fourLines, 6) // 120mm against 80mm of page
	if err := comp.Paragraph(huge); err != nil {
		t.Fatal(err)
	}
	if comp.Page() != 1 || canvas.pages != 1 {
		t.Fatalf("oversized block on a fresh page must not break, pages=%d", comp.Page())
	}
	if p := comp.Trace()[0]; p.Top != 90 || p.Break {
		t.Fatalf("placement %+v", p)
	}
	if err := comp.Text("next"); err != nil {
		t.Fatal(err)
	}
	if p := comp.Trace()[1]; !p.Break || p.Page != 2 {
		t.Fatalf("block after overflow: %+v", p)
	}
}

func TestMissingImageKeepsSpace(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	if err := comp.Image("missing.png", 40, 30); err != nil {
		t.Fatalf("missing image must not fail: %v", err)
	}
	if math.Abs(comp.Cursor()-(90-30-2.5)) > eps {
		t.Fatalf("cursor %g", comp.Cursor())
	}
	if err := comp.Image("chart.png", 500, 30); err != nil {
		t.Fatal(err)
	}
	for _, o := range canvas.ops {
		if o.Op == "image" && (o.Rect.W != 80 || o.Rect.X != 10) {
			t.Fatalf("image not clamped to the text column: %+v", o.Rect)
		}
	}
}

func TestBulletMarkerGluedToText(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	if err := comp.Bullet("Instalação completa"); err != nil {
		t.Fatal(err)
	}
	texts := canvas.texts()
	if len(texts) == 0 || texts[0] != "•\u00a0Instalação" {
		t.Fatalf("drawn texts %q", texts)
	}
}

func TestJustifiedLinesReachRightEdge(t *testing.T) {
	comp, canvas := newTestComposer(t, smallPage())
	if err := comp.Paragraph("aa bbb c dddd eeeee ffffff ggggggg hh iii jjjj kkkkk llllll"); err != nil {
		t.Fatal(err)
	}
	m := NewMeasurer(fixedMetrics{advance: 2}).Measure("aa bbb c dddd eeeee ffffff ggggggg hh iii jjjj kkkkk llllll", DefaultStyles()[KindParagraph], 80)
	if m.LineCount < 2 {
		t.Fatalf("expected wrapping, got %d lines", m.LineCount)
	}
	firstLineWords := len(m.Lines[0].Words)
	lastWordOfFirstLine := canvas.ops[0]
	n := 0
	for _, o := range canvas.ops {
		if o.Op != "text" {
			continue
		}
		if n == firstLineWords-1 {
			lastWordOfFirstLine = o
			break
		}
		n++
	}
	end := lastWordOfFirstLine.X + fixedMetrics{advance: 2}.TextWidth(lastWordOfFirstLine.Text, Font{})
	if math.Abs(end-90) > 1e-6 {
		t.Fatalf("justified line ends at %g, want 90", end)
	}
}

func TestSignatureHeightIsFixed(t *testing.T) {
	opts := smallPage()
	comp, canvas := newTestComposer(t, opts)
	sig := SignatureBlock{
		DateText: "Teresina, 1 de janeiro de 2025",
		Lines:    [2]SignatureLine{{Caption: "CONTRATADA:", Name: "Level 5"}, {Caption: "CONTRATANTE:", Name: "Cliente"}},
		Overlay:  Overlay{Ref: "logo.png", Width: 30, Height: 10},
	}
	if err := comp.Signature(sig); err != nil {
		t.Fatal(err)
	}
	so := opts.Signature
	want := 5*so.Leading + so.DateGap + so.LineGap
	if h := comp.Trace()[0].Height; math.Abs(h-want) > eps {
		t.Fatalf("signature height %g, want %g", h, want)
	}
	if canvas.count("image", nil) != 1 {
		t.Fatalf("overlay not drawn")
	}
	if diff := cmp.Diff([]string{sig.DateText, "CONTRATADA:", "Level 5", "CONTRATANTE:", "Cliente"}, canvas.texts()); diff != "" {
		t.Fatalf("signature texts (-want +got):\n%s", diff)
	}
}

func TestAppendRejectsMalformedBlocks(t *testing.T) {
	comp, _ := newTestComposer(t, smallPage())
	for _, b := range []Block{{Kind: KindImage}, {Kind: KindSignature}, {Kind: "table"}} {
		if err := comp.Append(b); err == nil {
			t.Fatalf("Append(%+v) succeeded", b)
		}
	}
}

func TestNewComposerValidates(t *testing.T) {
	opts := smallPage()
	opts.Geometry.Margins.Left = 60
	opts.Geometry.Margins.Right = 60
	if _, err := NewComposer(&recordingCanvas{}, fixedMetrics{advance: 1}, opts); err == nil {
		t.Fatal("expected an error for margins wider than the page")
	}
}
