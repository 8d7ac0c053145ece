// Package renderer defines the PDF backends the composer draws on.
package renderer

import (
	"github.com/level5eng/docflow/fonts"
	"github.com/level5eng/docflow/layout"
)

// Backend is a drawing surface that also measures text in the faces it
// draws with, and serialises the pages it received when finished.
type Backend interface {
	layout.Canvas
	layout.Metrics
	// Finish returns the document. The backend must not be used afterwards.
	Finish() ([]byte, error)
	// Pages is the number of pages started so far.
	Pages() int
}

// Meta is written into the PDF information dictionary.
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// Options are shared by every backend.
type Options struct {
	// Width and Height of every page, in mm.
	Width  float64
	Height float64
	// BaseDir resolves relative image references.
	BaseDir string
	// Images are in-memory assets addressed as "built-in:<name>".
	Images map[string][]byte
	Fonts  Fonts
	Meta   Meta
}

// Fonts names the regular and bold faces as fonts.Load references. Empty
// names select the built-in Go faces.
type Fonts struct {
	Regular string
	Bold    string
}

// Load resolves both faces.
func (f Fonts) Load() (regular, bold []byte, err error) {
	if regular, err = fonts.Load(orDefault(f.Regular, fonts.EmbedRegular)); err != nil {
		return nil, nil, err
	}
	if bold, err = fonts.Load(orDefault(f.Bold, fonts.EmbedBold)); err != nil {
		return nil, nil, err
	}
	return regular, bold, nil
}

func orDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
