package layout

import "errors"

// ErrImageNotFound is returned by a Canvas when an image reference does not
// resolve to an asset. Callers treat it as a skipped optional visual.
var ErrImageNotFound = errors.New("layout: image not found")

// Canvas is the drawing surface the composer writes to. Coordinates are mm
// with the origin at the bottom-left corner of the page; y of DrawText is the baseline.
type Canvas interface {
	NewPage() error
	DrawText(x, y float64, text string, font Font, color Color) error
	DrawImage(ref string, r Rect) error
	FillRect(r Rect, color Color) error
	ImageSize(ref string) (width, height int, err error)
}

// Metrics measures text for a Canvas. Widths and ascent are in mm.
type Metrics interface {
	TextWidth(text string, font Font) float64
	Ascent(font Font) float64
}
