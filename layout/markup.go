package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run is a piece of text sharing one emphasis state. A Break run forces a new line.
type Run struct {
	Text  string `json:"text,omitempty"`
	Bold  bool   `json:"bold,omitempty"`
	Break bool   `json:"break,omitempty"`
}

// ParseMarkup splits text into runs. <b> and <strong> toggle emphasis, <br> and
// "\n" force a line break, entities are unescaped. Other tags are dropped and
// their text kept.
func ParseMarkup(text string) []Run {
	if !strings.ContainsAny(text, "<&") {
		return appendText(nil, text, false)
	}
	var runs []Run
	bold := 0
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return runs
		case html.TextToken:
			runs = appendText(runs, string(z.Text()), bold > 0)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.B, atom.Strong:
				if tt == html.StartTagToken {
					bold++
				}
			case atom.Br:
				runs = append(runs, Run{Break: true})
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.B, atom.Strong:
				if bold > 0 {
					bold--
				}
			}
		}
	}
}

// PlainText strips markup, turning breaks into single spaces.
func PlainText(text string) string {
	var b strings.Builder
	for _, r := range ParseMarkup(text) {
		if r.Break {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

func appendText(runs []Run, text string, bold bool) []Run {
	text = strings.ReplaceAll(text, "\r", "")
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			runs = append(runs, Run{Break: true})
		}
		if part == "" {
			continue
		}
		if n := len(runs); n > 0 && !runs[n-1].Break && runs[n-1].Bold == bold {
			runs[n-1].Text += part
			continue
		}
		runs = append(runs, Run{Text: part, Bold: bold})
	}
	return runs
}
