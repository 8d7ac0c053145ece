package layout

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	chromeTitleSize  = 12.0
	chromeFooterSize = 8.0
	accentHeight     = 1.2
	logoMaxWidth     = 80.0
	logoPadding      = 5.0
	logoRightInset   = 10.0
	footerRuleY      = 15.0
	footerTextY      = 10.0
)

// ChromeRenderer draws the repeating frame of a content page: the coloured
// header band with its title and logo, and an optional footer.
type ChromeRenderer struct {
	chrome  Chrome
	metrics Metrics
}

// NewChromeRenderer binds chrome parameters to the metrics used for alignment.
func NewChromeRenderer(chrome Chrome, m Metrics) *ChromeRenderer {
	return &ChromeRenderer{chrome: chrome, metrics: m}
}

// Render draws the chrome of content page number page. A logo that cannot be
// found is skipped.
func (r *ChromeRenderer) Render(c Canvas, geo PageGeometry, page int) error {
	pal := r.chrome.Palette
	band := geo.HeaderHeight
	if band > 0 {
		if err := c.FillRect(Rect{X: 0, Y: geo.Height - band, W: geo.Width, H: band}, pal.Band); err != nil {
			return fmt.Errorf("draw header band: %w", err)
		}
		if err := c.FillRect(Rect{X: 0, Y: geo.Height - band - accentHeight, W: geo.Width, H: accentHeight}, pal.Accent); err != nil {
			return fmt.Errorf("draw header accent: %w", err)
		}
	}

	if r.chrome.Title != "" {
		font := Font{Size: chromeTitleSize, Bold: true}
		baseline := geo.Height - band/2 - r.metrics.Ascent(font)/2
		if err := c.DrawText(geo.Margins.Left, baseline, r.chrome.Title, font, pal.BandText); err != nil {
			return fmt.Errorf("draw header title: %w", err)
		}
	}

	if err := r.drawLogo(c, geo); err != nil {
		return err
	}
	return r.drawFooter(c, geo, page)
}

func (r *ChromeRenderer) drawLogo(c Canvas, geo PageGeometry) error {
	if r.chrome.Logo == "" || geo.HeaderHeight <= 2*logoPadding {
		return nil
	}
	pw, ph, err := c.ImageSize(r.chrome.Logo)
	if errors.Is(err, ErrImageNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read logo size: %w", err)
	}
	rect := fitLogo(pw, ph, geo)
	err = c.DrawImage(r.chrome.Logo, rect)
	if err != nil && !errors.Is(err, ErrImageNotFound) {
		return fmt.Errorf("draw logo: %w", err)
	}
	return nil
}

// fitLogo scales the logo into the band keeping its aspect ratio, right-aligned
// and vertically centred.
func fitLogo(pw, ph int, geo PageGeometry) Rect {
	aspect := 1.0
	if pw > 0 && ph > 0 {
		aspect = float64(pw) / float64(ph)
	}
	h := geo.HeaderHeight - 2*logoPadding
	w := h * aspect
	if w > logoMaxWidth {
		w = logoMaxWidth
		h = w / aspect
	}
	return Rect{
		X: geo.Width - w - logoRightInset,
		Y: geo.Height - geo.HeaderHeight/2 - h/2,
		W: w,
		H: h,
	}
}

func (r *ChromeRenderer) drawFooter(c Canvas, geo PageGeometry, page int) error {
	if r.chrome.Footer == "" {
		return nil
	}
	pal := r.chrome.Palette
	left, right := geo.Margins.Left, geo.Width-geo.Margins.Right
	if err := c.FillRect(Rect{X: left, Y: footerRuleY, W: right - left, H: 0.3}, pal.Rule); err != nil {
		return fmt.Errorf("draw footer rule: %w", err)
	}
	font := Font{Size: chromeFooterSize}
	if err := c.DrawText(left, footerTextY, r.chrome.Footer, font, pal.Muted); err != nil {
		return fmt.Errorf("draw footer: %w", err)
	}
	if r.chrome.FirstPage > 0 {
		page += r.chrome.FirstPage - 1
	}
	label := "Página " + strconv.Itoa(page)
	x := right - r.metrics.TextWidth(label, font)
	if err := c.DrawText(x, footerTextY, label, font, pal.Muted); err != nil {
		return fmt.Errorf("draw page number: %w", err)
	}
	return nil
}
