package layout

import (
	"math"
	"strings"
)

// Segment is a word fragment in a single face.
type Segment struct {
	Text  string  `json:"text"`
	Bold  bool    `json:"bold,omitempty"`
	Width float64 `json:"width"`
}

// Word is the unit of wrapping. Emphasis markers never split a word, so a word
// may hold several segments.
type Word struct {
	Segments []Segment `json:"segments"`
	Width    float64   `json:"width"`
}

// Line is one wrapped line. Indent is relative to the left margin and Avail is
// the width the line was wrapped against.
type Line struct {
	Words  []Word  `json:"words"`
	Width  float64 `json:"width"`
	Indent float64 `json:"indent"`
	Avail  float64 `json:"avail"`
	// Last marks the final line of a paragraph or of a forced break; it is never justified.
	Last bool `json:"last,omitempty"`
}

// Measurement is the result of wrapping one text run.
type Measurement struct {
	Lines     []Line  `json:"lines"`
	LineCount int     `json:"lineCount"`
	Height    float64 `json:"height"`
	Space     float64 `json:"space"`
}

// Measurer wraps text greedily against a width using Metrics.
type Measurer struct {
	metrics Metrics
}

// NewMeasurer returns a measurer backed by m.
func NewMeasurer(m Metrics) *Measurer {
	return &Measurer{metrics: m}
}

// Measure wraps text for style within maxWidth. The first line is indented by
// style.FirstIndent, every other line by style.Indent. A word that does not fit
// an empty line is placed alone on it. Empty text measures 0 lines and 0 height.
func (m *Measurer) Measure(text string, style Style, maxWidth float64) Measurement {
	space := m.metrics.TextWidth(" ", style.Font(false))
	out := Measurement{Space: space}

	hard := m.splitWords(ParseMarkup(text), style)
	for len(hard) > 0 && len(hard[0]) == 0 {
		hard = hard[1:]
	}
	for len(hard) > 0 && len(hard[len(hard)-1]) == 0 {
		hard = hard[:len(hard)-1]
	}
	if len(hard) == 0 {
		return out
	}

	newLine := func() Line {
		indent := style.Indent
		if len(out.Lines) == 0 {
			indent = style.FirstIndent
		}
		return Line{Indent: indent, Avail: maxWidth - indent}
	}
	for _, words := range hard {
		cur := newLine()
		for _, w := range words {
			if len(cur.Words) > 0 && cur.Width+space+w.Width > cur.Avail {
				out.Lines = append(out.Lines, cur)
				cur = newLine()
			}
			if len(cur.Words) > 0 {
				cur.Width += space
			}
			cur.Words = append(cur.Words, w)
			cur.Width += w.Width
		}
		cur.Last = true
		out.Lines = append(out.Lines, cur)
	}
	out.LineCount = len(out.Lines)
	out.Height = float64(out.LineCount) * style.Leading
	return out
}

// MeasureLine lays text on a single unwrapped line; forced breaks become spaces.
func (m *Measurer) MeasureLine(text string, style Style) Measurement {
	flat := strings.Join(strings.FieldsFunc(flattenBreaks(text), isBreakingSpace), " ")
	if flat == "" {
		return Measurement{Space: m.metrics.TextWidth(" ", style.Font(false))}
	}
	return m.Measure(flat, Style{
		Size:    style.Size,
		Leading: style.Leading,
		Bold:    style.Bold,
		Align:   AlignLeft,
		Color:   style.Color,
	}, math.Inf(1))
}

// flattenBreaks replaces forced breaks with spaces but keeps emphasis markers.
func flattenBreaks(text string) string {
	r := strings.NewReplacer("<br/>", " ", "<br />", " ", "<br>", " ", "\r", "", "\n", " ")
	return r.Replace(text)
}

// splitWords turns runs into words, grouped by forced line breaks.
func (m *Measurer) splitWords(runs []Run, style Style) [][]Word {
	groups := [][]Word{nil}
	var word Word
	var seg strings.Builder
	segBold := false

	flushSeg := func() {
		if seg.Len() == 0 {
			return
		}
		text := seg.String()
		w := m.metrics.TextWidth(text, style.Font(segBold))
		word.Segments = append(word.Segments, Segment{Text: text, Bold: segBold, Width: w})
		word.Width += w
		seg.Reset()
	}
	flushWord := func() {
		flushSeg()
		if len(word.Segments) == 0 {
			return
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], word)
		word = Word{}
	}

	for _, run := range runs {
		if run.Break {
			flushWord()
			groups = append(groups, nil)
			continue
		}
		for _, r := range run.Text {
			if isBreakingSpace(r) {
				flushWord()
				continue
			}
			if seg.Len() > 0 && segBold != run.Bold {
				flushSeg()
			}
			segBold = run.Bold
			seg.WriteRune(r)
		}
	}
	flushWord()
	return groups
}

// isBreakingSpace reports wrap opportunities; a no-break space is part of a word.
func isBreakingSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
