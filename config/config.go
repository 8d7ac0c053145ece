// Package config loads the deployment settings of the generator from YAML.
// Every key is optional; an absent file yields the defaults the printed
// contracts were designed with.
//
//	company:
//	  name: LEVEL 5 ENGENHARIA ELÉTRICA LTDA
//	page:
//	  size: A4
//	  margins: {top: 4cm, right: 2cm, bottom: 22mm, left: 2cm}
//	styles:
//	  paragraph: {size: 11pt, leading: 1.45x, align: justify}
//	palette:
//	  band: "#336777"
//	assets:
//	  logo: assets/logo.png
//	fonts:
//	  regular: embed:regular
//	  bold: fonts/Inter-Bold.ttf
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/level5eng/docflow/document"
	"github.com/level5eng/docflow/fonts"
	"github.com/level5eng/docflow/layout"
)

// Config is immutable after Load.
type Config struct {
	Company   document.Company `yaml:"company"`
	Page      Page             `yaml:"page"`
	Styles    map[string]Style `yaml:"styles"`
	Gap       string           `yaml:"gap"`
	TitleGap  string           `yaml:"titleGap"`
	Marker    string           `yaml:"marker"`
	Palette   layout.Palette   `yaml:"palette"`
	Assets    document.Assets  `yaml:"assets"`
	Fonts     Fonts            `yaml:"fonts"`
	Templates Templates        `yaml:"templates"`
	Output    Output           `yaml:"output"`
}

// Page is the paper and its fixed areas. Lengths carry units.
type Page struct {
	Size    string  `yaml:"size"`
	Margins Margins `yaml:"margins"`
	Header  string  `yaml:"header"`
}

// Margins of a content page.
type Margins struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// Style overrides one block kind. Empty fields keep the built-in value.
type Style struct {
	Size        string `yaml:"size"`
	Leading     string `yaml:"leading"`
	Bold        *bool  `yaml:"bold"`
	Align       string `yaml:"align"`
	Indent      string `yaml:"indent"`
	FirstIndent string `yaml:"firstIndent"`
	Color       string `yaml:"color"`
}

// Fonts are the faces every backend draws with: "embed:regular",
// "embed:bold" or a TrueType file.
type Fonts struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// check loads both faces once so a bad reference fails at startup.
func (f Fonts) check() error {
	for _, face := range []struct{ name, ref string }{{"fonts.regular", f.Regular}, {"fonts.bold", f.Bold}} {
		if _, err := fonts.Load(face.ref); err != nil {
			return fmt.Errorf("%s: %w", face.name, err)
		}
	}
	return nil
}

// Templates replace the built-in scripts with files.
type Templates struct {
	Contract string `yaml:"contract"`
	Proposal string `yaml:"proposal"`
}

// Output controls where documents and scratch images are written.
type Output struct {
	Dir     string `yaml:"dir"`
	Scratch string `yaml:"scratch"`
	Backend string `yaml:"backend"`
}

// Backends accepted in output.backend.
const (
	BackendCanvas = "canvas"
	BackendFPDF   = "fpdf"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Company: document.DefaultCompany(),
		Page: Page{
			Size:    "A4",
			Margins: Margins{Top: "40mm", Right: "20mm", Bottom: "22mm", Left: "20mm"},
			Header:  "30mm",
		},
		Styles:   map[string]Style{},
		Gap:      "2.5mm",
		TitleGap: "4mm",
		Marker:   "•",
		Palette:  layout.DefaultPalette(),
		Fonts:    Fonts{Regular: fonts.EmbedRegular, Bold: fonts.EmbedBold},
		Output: Output{
			Dir:     filepath.Join(os.TempDir(), "propostas"),
			Backend: BackendCanvas,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads YAML from data over the defaults. Relative paths are kept as
// written.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.LayoutOptions(); err != nil {
		return err
	}
	return c.Fonts.check()
}

func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return err
	}
	switch c.Output.Backend {
	case BackendCanvas, BackendFPDF:
	default:
		return fmt.Errorf("unknown backend %q", c.Output.Backend)
	}
	return nil
}

// resolvePaths makes asset, font and template paths relative to the config
// file.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Assets.Logo, &c.Assets.Cover, &c.Assets.Signature, &c.Fonts.Regular, &c.Fonts.Bold, &c.Templates.Contract, &c.Templates.Proposal} {
		if *p == "" || filepath.IsAbs(*p) || strings.HasPrefix(*p, "built-in:") || fonts.IsEmbedded(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}

// LayoutOptions converts the configuration into composer options.
func (c *Config) LayoutOptions() (layout.Options, error) {
	opts := layout.DefaultOptions()

	w, h, err := layout.PageSize(c.Page.Size)
	if err != nil {
		return opts, err
	}
	geo := layout.PageGeometry{Width: w, Height: h}
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"page.margins.top", c.Page.Margins.Top, &geo.Margins.Top},
		{"page.margins.right", c.Page.Margins.Right, &geo.Margins.Right},
		{"page.margins.bottom", c.Page.Margins.Bottom, &geo.Margins.Bottom},
		{"page.margins.left", c.Page.Margins.Left, &geo.Margins.Left},
		{"page.header", c.Page.Header, &geo.HeaderHeight},
		{"gap", c.Gap, &opts.Gap},
		{"titleGap", c.TitleGap, &opts.TitleGap},
	} {
		if *f.dst, err = mm(f.raw); err != nil {
			return opts, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	opts.Geometry = geo
	opts.Marker = c.Marker

	for name, s := range c.Styles {
		kind := layout.Kind(name)
		base, ok := opts.Styles[kind]
		if !ok {
			return opts, fmt.Errorf("styles: unknown block kind %q", name)
		}
		if base, err = s.apply(base); err != nil {
			return opts, fmt.Errorf("styles.%s: %w", name, err)
		}
		opts.Styles[kind] = base
	}

	opts.Chrome = layout.Chrome{Palette: c.Palette, Logo: c.Assets.Logo, Footer: c.Company.Footer}
	return opts, opts.Validate()
}

func (s Style) apply(base layout.Style) (layout.Style, error) {
	if s.Size != "" {
		l, err := layout.ParseLength(s.Size)
		if err != nil {
			return base, err
		}
		if l.Unit == layout.UnitNone {
			l.Unit = layout.UnitPT
		}
		base.Size = l.ToPT()
	}
	if s.Leading != "" {
		spec, err := layout.ParseLineHeight(s.Leading)
		if err != nil {
			return base, err
		}
		base.Leading = spec.Resolve(layout.Length{Value: base.Size, Unit: layout.UnitPT}, layout.UnitMM)
	}
	if s.Bold != nil {
		base.Bold = *s.Bold
	}
	switch layout.Align(s.Align) {
	case "":
	case layout.AlignLeft, layout.AlignJustify:
		base.Align = layout.Align(s.Align)
	default:
		return base, fmt.Errorf("unknown alignment %q", s.Align)
	}
	var err error
	if s.Indent != "" {
		if base.Indent, err = mm(s.Indent); err != nil {
			return base, err
		}
	}
	if s.FirstIndent != "" {
		if base.FirstIndent, err = mm(s.FirstIndent); err != nil {
			return base, err
		}
	}
	if s.Color != "" {
		if base.Color, err = layout.ParseColor(s.Color); err != nil {
			return base, err
		}
	}
	return base, nil
}

// mm parses a length with units into millimetres; a bare number is mm.
func mm(raw string) (float64, error) {
	l, err := layout.ParseLength(raw)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}
