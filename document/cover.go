package document

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/level5eng/docflow/layout"
)

// Cover is the first page of a document. It is drawn outside the composer
// and carries no chrome.
type Cover struct {
	// Background is drawn full-bleed; when it cannot be found Heading is
	// printed instead.
	Background string `json:"background,omitempty"`
	Heading    string `json:"heading"`
	Client     string `json:"client"`
	// Number is printed under the client name when set.
	Number string `json:"number,omitempty"`
}

const (
	coverHeadingSize = 48.0
	coverLabelSize   = 14.0
	coverNameSize    = 26.0
	coverNameLeading = 10.0
	// coverTextTop is where the client label starts, measured from the bottom.
	coverTextTop = 42.0
)

// coverName is the teal of the client name.
var coverName = layout.Color{R: 22, G: 160, B: 133}

// DrawCover opens a page on c and draws cover on it.
func DrawCover(c layout.Canvas, m layout.Metrics, geo layout.PageGeometry, cover Cover, pal layout.Palette) error {
	if err := c.NewPage(); err != nil {
		return fmt.Errorf("document: cover page: %w", err)
	}
	drawn := false
	if cover.Background != "" {
		err := c.DrawImage(cover.Background, layout.Rect{W: geo.Width, H: geo.Height})
		switch {
		case err == nil:
			drawn = true
		case !errors.Is(err, layout.ErrImageNotFound):
			return fmt.Errorf("document: cover background: %w", err)
		}
	}
	left := geo.Margins.Left
	if !drawn && cover.Heading != "" {
		font := layout.Font{Size: coverHeadingSize, Bold: true}
		y := geo.Height * 2 / 3
		if err := c.DrawText(left, y, cover.Heading, font, pal.Band); err != nil {
			return err
		}
		rule := layout.Rect{X: left, Y: y - 6, W: geo.TextWidth(), H: 1.2}
		if err := c.FillRect(rule, pal.Accent); err != nil {
			return err
		}
	}

	label := layout.Font{Size: coverLabelSize, Bold: true}
	y := coverTextTop
	if err := c.DrawText(left, y-m.Ascent(label), "CLIENTE:", label, pal.Band); err != nil {
		return err
	}
	y -= coverLabelSize*layout.PtToMm + 2
	name := layout.Font{Size: coverNameSize, Bold: true}
	if err := c.DrawText(left, y-m.Ascent(name), cases.Upper(language.BrazilianPortuguese).String(cover.Client), name, coverName); err != nil {
		return err
	}
	if cover.Number == "" {
		return nil
	}
	y -= coverNameLeading + 10
	return c.DrawText(left, y-m.Ascent(label), "Contrato nº "+cover.Number, label, pal.Band)
}
