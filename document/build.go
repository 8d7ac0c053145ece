package document

import (
	"github.com/level5eng/docflow/dsl"
	"github.com/level5eng/docflow/layout"
)

// Assets are optional images referenced by every document. A reference the
// renderer cannot resolve is skipped.
type Assets struct {
	Logo      string `yaml:"logo"`
	Cover     string `yaml:"cover"`
	Signature string `yaml:"signature"`
}

// Settings are the per-deployment inputs of a build.
type Settings struct {
	Company Company
	Assets  Assets
	Palette layout.Palette
}

// Built is a document ready to compose, preceded by its cover.
type Built struct {
	layout.Document
	Cover Cover
	// Data is the tree the script was bound against.
	Data map[string]any
}

// BuildContract binds script to a normalized contract request.
func BuildContract(script *dsl.Document, r *ContractRequest, s Settings) (*Built, error) {
	data, err := ContractData(r, s.Company, s.Assets.Signature)
	if err != nil {
		return nil, err
	}
	built, err := build(script, data, s)
	if err != nil {
		return nil, err
	}
	built.Cover = Cover{
		Background: s.Assets.Cover,
		Heading:    "CONTRATO",
		Client:     r.ClientName,
		Number:     r.Number,
	}
	return built, nil
}

// BuildProposal binds script to a proposal request and its chart images.
func BuildProposal(script *dsl.Document, r *ProposalRequest, charts Charts, s Settings) (*Built, error) {
	data, err := ProposalData(r, s.Company, charts)
	if err != nil {
		return nil, err
	}
	built, err := build(script, data, s)
	if err != nil {
		return nil, err
	}
	built.Cover = Cover{
		Background: s.Assets.Cover,
		Heading:    "PROPOSTA",
		Client:     r.ClientName,
	}
	return built, nil
}

func build(script *dsl.Document, data map[string]any, s Settings) (*Built, error) {
	x, err := Expand(script, data)
	if err != nil {
		return nil, err
	}
	chrome := layout.Chrome{
		Title:     x.Meta["title"],
		Logo:      s.Assets.Logo,
		Footer:    s.Company.Footer,
		Palette:   s.Palette,
		FirstPage: 2,
	}
	if v, ok := x.Meta["logo"]; ok {
		chrome.Logo = v
	}
	if v, ok := x.Meta["footer"]; ok {
		chrome.Footer = v
	}
	return &Built{
		Document: layout.Document{Blocks: x.Blocks, Chrome: chrome},
		Data:     data,
	}, nil
}
