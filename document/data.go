package document

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/level5eng/docflow/brformat"
	"github.com/level5eng/docflow/numwords"
)

// Company identifies the contractor printed on every document.
type Company struct {
	Name   string `yaml:"name"`
	CNPJ   string `yaml:"cnpj"`
	Seat   string `yaml:"seat"`
	Forum  string `yaml:"forum"`
	Place  string `yaml:"place"`
	Footer string `yaml:"footer"`
}

// DefaultCompany is the contractor of the printed contracts.
func DefaultCompany() Company {
	return Company{
		Name:   "LEVEL 5 ENGENHARIA ELÉTRICA LTDA",
		CNPJ:   "57.946.157/0001-21",
		Seat:   "Juiz de Fora – MG",
		Forum:  "Juiz de Fora – MG",
		Place:  "Juiz de Fora – MG",
		Footer: "Level5 Engenharia Elétrica",
	}
}

// Charts are the images generated for a proposal. Heights are in mm at the
// width the proposal script places them; an empty path leaves the chart out.
type Charts struct {
	Production       string
	ProductionHeight float64
	Payback          string
	PaybackHeight    float64
}

// freeText keeps the emphasis and line breaks the composer understands.
var freeText = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "br")
	return p
}()

// Sanitize strips every tag the composer does not render from user text.
func Sanitize(s string) string {
	return strings.TrimSpace(freeText.Sanitize(s))
}

// escape keeps plain request text literal when a paragraph is parsed as
// markup.
func escape(s string) string {
	return html.EscapeString(s)
}

// ContractData builds the tree the contract script is bound against. r must
// be normalized. overlay is the scanned signature placed over the
// contractor's line; it may be empty.
func ContractData(r *ContractRequest, company Company, overlay string) (map[string]any, error) {
	total := r.Total()
	totalWords, err := numwords.Amount(total)
	if err != nil {
		return nil, err
	}
	entryPercent := float64(DefaultEntryPercent)
	if r.EntryPercent != nil {
		entryPercent = *r.EntryPercent
	}

	place := company.Place
	if strings.TrimSpace(r.Place) != "" {
		place = r.Place
	}

	items := make([]any, 0, len(r.Items))
	for i, it := range r.Items {
		n := it.Number
		if n == 0 {
			n = i + 1
		}
		items = append(items, map[string]any{
			"number":      strconv.Itoa(n),
			"quantity":    escape(it.Quantity),
			"description": Sanitize(it.Description),
		})
	}

	return map[string]any{
		"client": map[string]any{
			"name":    escape(r.ClientName),
			"cpf":     escape(brformat.CPF(r.ClientCPF)),
			"address": escape(r.ClientAddress),
			"cep":     escape(brformat.CEP(r.ClientCEP)),
		},
		"company": companyData(company, place),
		"contract": map[string]any{
			"number": escape(r.Number),
			"date":   escape(r.Date),
		},
		"object": Sanitize(r.Object),
		"items":  items,
		"warranty": map[string]any{
			"modules":           strconv.Itoa(r.WarrantyModules),
			"performance":       strconv.Itoa(r.WarrantyPerformance),
			"inverters":         strconv.Itoa(r.WarrantyInverters),
			"structure":         strconv.Itoa(r.WarrantyStructure),
			"installation":      strconv.Itoa(r.WarrantyInstall),
			"installationWords": numwords.Cardinal(int64(r.WarrantyInstall)),
		},
		"values": map[string]any{
			"total":          brformat.Currency(total),
			"totalWords":     totalWords,
			"material":       brformat.Currency(r.MaterialValue),
			"labor":          brformat.Currency(r.LaborValue),
			"entry":          brformat.Currency(r.Entry()),
			"entryPercent":   brformat.Percent(entryPercent, 0),
			"balance":        brformat.Currency(r.Balance()),
			"balancePercent": brformat.Percent(100-entryPercent, 0),
		},
		"days":      strconv.Itoa(r.Days),
		"daysWords": numwords.Cardinal(int64(r.Days)),
		"notes":     Sanitize(r.Notes),
		"signature": map[string]any{
			"overlay": overlay,
		},
	}, nil
}

// ProposalData builds the tree the proposal script is bound against.
func ProposalData(r *ProposalRequest, company Company, charts Charts) (map[string]any, error) {
	total := r.Total()
	totalWords, err := numwords.Amount(total)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"client":  map[string]any{"name": escape(r.ClientName)},
		"company": companyData(company, company.Place),
		"modules": map[string]any{
			"quantity": strconv.Itoa(r.Modules),
			"spec":     Sanitize(r.ModuleSpec),
		},
		"inverters": map[string]any{
			"quantity": strconv.Itoa(r.Inverters),
			"spec":     Sanitize(r.InverterSpec),
		},
		"investment": map[string]any{
			"kit":        brformat.Currency(r.KitValue),
			"labor":      brformat.Currency(r.LaborValue),
			"total":      brformat.Currency(total),
			"totalWords": totalWords,
		},
		"charts": map[string]any{
			"production":       charts.Production,
			"productionHeight": chartHeight(charts.Production, charts.ProductionHeight),
			"payback":          charts.Payback,
			"paybackHeight":    chartHeight(charts.Payback, charts.PaybackHeight),
		},
		"savings": brformat.Currency(r.Savings()),
		"payback": map[string]any{},
	}
	if row, ok := r.Payback(); ok {
		data["payback"] = map[string]any{
			"year":  strconv.Itoa(row.Year),
			"value": brformat.Currency(row.Balance),
		}
	}
	return data, nil
}

func companyData(c Company, place string) map[string]any {
	return map[string]any{
		"name":  escape(c.Name),
		"cnpj":  escape(brformat.CNPJ(c.CNPJ)),
		"seat":  escape(c.Seat),
		"forum": escape(c.Forum),
		"place": escape(place),
	}
}

func chartHeight(path string, h float64) string {
	if path == "" || h <= 0 {
		return "0mm"
	}
	return strconv.FormatFloat(h, 'f', 2, 64) + "mm"
}
