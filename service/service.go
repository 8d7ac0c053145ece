// Package service generates contracts and proposals end to end: it
// normalises the request, draws the proposal charts, composes the document
// on a PDF backend and stores the result under the output directory.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/level5eng/docflow/config"
	"github.com/level5eng/docflow/document"
	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/renderer"
	canvasrenderer "github.com/level5eng/docflow/renderer/canvas"
	fpdfrenderer "github.com/level5eng/docflow/renderer/fpdf"
	"github.com/level5eng/docflow/templates"
)

// ErrNotFound is returned by Open for names that were never generated.
var ErrNotFound = errors.New("service: file not found")

// Generator is safe for concurrent use; every call composes on its own
// backend.
type Generator struct {
	cfg     *config.Config
	logger  *log.Logger
	now     func() time.Time
	rand    io.Reader
	baseDir string
}

// Option customises a Generator.
type Option func(*Generator)

// WithLogger receives recoverable notices such as a chart that could not be
// drawn. Without it they are discarded.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithClock replaces time.Now for contract dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand replaces crypto/rand for contract numbers and file names.
func WithRand(r io.Reader) Option {
	return func(g *Generator) { g.rand = r }
}

// WithBaseDir resolves relative image references. Defaults to the working
// directory.
func WithBaseDir(dir string) Option {
	return func(g *Generator) { g.baseDir = dir }
}

// New returns a Generator for cfg.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if _, err := cfg.LayoutOptions(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	g := &Generator{
		cfg:     cfg,
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
		rand:    rand.Reader,
		baseDir: ".",
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard, "", 0)
	}
	return g, nil
}

// Output is one generated document.
type Output struct {
	Filename string
	PDF      []byte
	// Data holds the values computed while generating, keyed as the API
	// reports them.
	Data  map[string]any
	Pages int
	Trace []layout.Placement
}

// Contract generates a service contract.
func (g *Generator) Contract(req *document.ContractRequest) (*Output, error) {
	if err := req.Normalize(g.now(), g.rand); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	script, err := templates.Load(templates.Contract, g.cfg.Templates.Contract)
	if err != nil {
		return nil, err
	}
	built, err := document.BuildContract(script, req, g.settings())
	if err != nil {
		return nil, err
	}
	meta := renderer.Meta{
		Title:    "Contrato " + req.Number,
		Subject:  "Contrato de prestação de serviços",
		Author:   g.cfg.Company.Name,
		Creator:  "docflow",
		Keywords: []string{"contrato", "energia solar"},
	}
	out, err := g.render(built, meta, "contrato", req.ClientName)
	if err != nil {
		return nil, err
	}
	out.Data = map[string]any{
		"numero_contrato":    req.Number,
		"data_contrato":      req.Date,
		"cliente_nome":       req.ClientName,
		"cliente_cpf":        req.ClientCPF,
		"investimento_total": req.Total(),
		"valor_material":     req.MaterialValue,
		"valor_mao_obra":     req.LaborValue,
		"percentual_entrada": *req.EntryPercent,
		"prazo_dias":         req.Days,
	}
	return out, nil
}

// Proposal generates a commercial proposal. Its charts are drawn into a
// scratch directory that is removed before returning.
func (g *Generator) Proposal(req *document.ProposalRequest) (*Output, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	script, err := templates.Load(templates.Proposal, g.cfg.Templates.Proposal)
	if err != nil {
		return nil, err
	}

	scratch, err := g.scratchDir()
	if err != nil {
		return nil, err
	}
	defer g.remove(scratch)

	charts := g.drawCharts(req, scratch)
	built, err := document.BuildProposal(script, req, charts, g.settings())
	if err != nil {
		return nil, err
	}
	meta := renderer.Meta{
		Title:    "Proposta Comercial - " + req.ClientName,
		Subject:  "Proposta de sistema fotovoltaico",
		Author:   g.cfg.Company.Name,
		Creator:  "docflow",
		Keywords: []string{"proposta", "energia solar"},
	}
	out, err := g.render(built, meta, "proposta", req.ClientName)
	if err != nil {
		return nil, err
	}

	out.Data = map[string]any{
		"investimento_total": req.Total(),
		"ano_payback":        nil,
		"valor_payback":      nil,
		"economia_25_anos":   req.Savings(),
	}
	if row, ok := req.Payback(); ok {
		out.Data["ano_payback"] = row.Year
		out.Data["valor_payback"] = row.Balance
	}
	return out, nil
}

func (g *Generator) settings() document.Settings {
	return document.Settings{
		Company: g.cfg.Company,
		Assets:  g.cfg.Assets,
		Palette: g.cfg.Palette,
	}
}

// render draws the cover and the composed pages, then stores the PDF.
func (g *Generator) render(built *document.Built, meta renderer.Meta, prefix, client string) (*Output, error) {
	opts, err := g.cfg.LayoutOptions()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	opts.Chrome = built.Chrome
	geo := opts.Geometry

	backend, err := NewBackend(g.cfg.Output.Backend, renderer.Options{
		Width:   geo.Width,
		Height:  geo.Height,
		BaseDir: g.baseDir,
		Fonts:   renderer.Fonts{Regular: g.cfg.Fonts.Regular, Bold: g.cfg.Fonts.Bold},
		Meta:    meta,
	})
	if err != nil {
		return nil, err
	}
	if err := document.DrawCover(backend, backend, geo, built.Cover, opts.Chrome.Palette); err != nil {
		return nil, fmt.Errorf("service: draw cover: %w", err)
	}
	comp, err := layout.NewComposer(backend, backend, opts)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := comp.Compose(built.Blocks); err != nil {
		return nil, fmt.Errorf("service: compose: %w", err)
	}
	pdf, err := backend.Finish()
	if err != nil {
		return nil, fmt.Errorf("service: finish: %w", err)
	}

	name, err := g.filename(prefix, client)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("service: create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.cfg.Output.Dir, name), pdf, 0o644); err != nil {
		return nil, fmt.Errorf("service: write %s: %w", name, err)
	}
	return &Output{
		Filename: name,
		PDF:      pdf,
		Pages:    backend.Pages(),
		Trace:    comp.Trace(),
	}, nil
}

// filename builds "<prefix>_<client>_<8 hex>.pdf".
func (g *Generator) filename(prefix, client string) (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(g.rand, b[:]); err != nil {
		return "", fmt.Errorf("service: file name suffix: %w", err)
	}
	return prefix + "_" + Slug(client) + "_" + hex.EncodeToString(b[:]) + ".pdf", nil
}

func (g *Generator) scratchDir() (string, error) {
	parent := g.cfg.Output.Scratch
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("service: create scratch dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "graficos-")
	if err != nil {
		return "", fmt.Errorf("service: create scratch dir: %w", err)
	}
	return dir, nil
}

func (g *Generator) remove(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		g.logger.Printf("service: remove scratch dir %s: %v", dir, err)
	}
}

// Open returns a document generated earlier. Names that are not plain file
// names in the output directory are reported as ErrNotFound.
func (g *Generator) Open(filename string) ([]byte, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, filename)
	}
	data, err := os.ReadFile(filepath.Join(g.cfg.Output.Dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("service: open %s: %w", filename, err)
	}
	return data, nil
}

// NewBackend creates the PDF backend registered under name.
func NewBackend(name string, opts renderer.Options) (renderer.Backend, error) {
	switch name {
	case config.BackendCanvas, "":
		r, err := canvasrenderer.New(opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendFPDF:
		r, err := fpdfrenderer.New(opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("service: unknown backend %q", name)
	}
}
