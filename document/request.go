// Package document turns contract and proposal requests into composable
// layout documents: request shapes and their defaults, the data tree the
// scripts are bound against, script expansion and the cover page.
package document

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/level5eng/docflow/brformat"
)

// Defaults of the optional contract fields.
const (
	DefaultEntryPercent        = 30
	DefaultDays                = 40
	DefaultWarrantyModules     = 15
	DefaultWarrantyPerformance = 25
	DefaultWarrantyInverters   = 12
	DefaultWarrantyStructure   = 5
	DefaultWarrantyInstall     = 12
)

// NumberPrefix starts every generated contract number.
const NumberPrefix = "LEVEL5-"

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("document: invalid request")

// TechnicalItem is one numbered line of the technical specification.
type TechnicalItem struct {
	Number      int    `json:"numero"`
	Quantity    string `json:"quantidade"`
	Description string `json:"descricao"`
}

// ContractRequest carries everything a service contract prints.
type ContractRequest struct {
	ClientName    string `json:"cliente_nome"`
	ClientCPF     string `json:"cliente_cpf"`
	ClientAddress string `json:"cliente_endereco"`
	ClientCEP     string `json:"cliente_cep"`

	Number string `json:"numero_contrato,omitempty"`
	Date   string `json:"data_contrato,omitempty"`

	Items  []TechnicalItem `json:"itens_tecnicos"`
	Object string          `json:"descricao_objeto"`

	MaterialValue float64  `json:"valor_material"`
	LaborValue    float64  `json:"valor_mao_obra"`
	EntryPercent  *float64 `json:"percentual_entrada_mao_obra,omitempty"`

	Days                int `json:"prazo_execucao_dias,omitempty"`
	WarrantyModules     int `json:"garantia_modulos_anos,omitempty"`
	WarrantyPerformance int `json:"garantia_performance_anos,omitempty"`
	WarrantyInverters   int `json:"garantia_inversores_anos,omitempty"`
	WarrantyStructure   int `json:"garantia_estrutura_anos,omitempty"`
	WarrantyInstall     int `json:"garantia_instalacao_meses,omitempty"`

	Notes string `json:"observacoes,omitempty"`
	Place string `json:"local_execucao,omitempty"`
}

// Normalize fills the optional fields. The contract number is drawn from rand
// and the date is spelled out, defaulting to now.
func (r *ContractRequest) Normalize(now time.Time, rand io.Reader) error {
	if strings.TrimSpace(r.Number) == "" {
		n, err := NewNumber(rand)
		if err != nil {
			return err
		}
		r.Number = n
	}
	if strings.TrimSpace(r.Date) == "" {
		r.Date = brformat.LongDate(now)
	} else {
		spelled, err := brformat.SpellDate(r.Date)
		if err != nil {
			return fmt.Errorf("%w: data_contrato: %w", ErrInvalidRequest, err)
		}
		r.Date = spelled
	}
	if r.EntryPercent == nil {
		p := float64(DefaultEntryPercent)
		r.EntryPercent = &p
	}
	setDefault(&r.Days, DefaultDays)
	setDefault(&r.WarrantyModules, DefaultWarrantyModules)
	setDefault(&r.WarrantyPerformance, DefaultWarrantyPerformance)
	setDefault(&r.WarrantyInverters, DefaultWarrantyInverters)
	setDefault(&r.WarrantyStructure, DefaultWarrantyStructure)
	setDefault(&r.WarrantyInstall, DefaultWarrantyInstall)
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate reports every malformed field at once.
func (r *ContractRequest) Validate() error {
	var errs []error
	required := map[string]string{
		"cliente_nome":     r.ClientName,
		"cliente_cpf":      r.ClientCPF,
		"cliente_endereco": r.ClientAddress,
		"cliente_cep":      r.ClientCEP,
	}
	for _, key := range []string{"cliente_nome", "cliente_cpf", "cliente_endereco", "cliente_cep"} {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	errs = append(errs, checkAmount("valor_material", r.MaterialValue))
	errs = append(errs, checkAmount("valor_mao_obra", r.LaborValue))
	if p := r.EntryPercent; p != nil && (math.IsNaN(*p) || *p < 0 || *p > 100) {
		errs = append(errs, fmt.Errorf("percentual_entrada_mao_obra must be within 0-100, got %g", *p))
	}
	if r.Days < 0 {
		errs = append(errs, fmt.Errorf("prazo_execucao_dias must not be negative, got %d", r.Days))
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.Description) == "" {
			errs = append(errs, fmt.Errorf("itens_tecnicos[%d].descricao is required", i))
		}
	}
	return joinInvalid(errs)
}

// Total is material plus labor.
func (r *ContractRequest) Total() float64 {
	return brformat.RoundCents(r.MaterialValue + r.LaborValue)
}

// Entry is the share of the labor paid on signature.
func (r *ContractRequest) Entry() float64 {
	p := float64(DefaultEntryPercent)
	if r.EntryPercent != nil {
		p = *r.EntryPercent
	}
	return brformat.RoundCents(r.LaborValue * p / 100)
}

// Balance is the labor paid on completion.
func (r *ContractRequest) Balance() float64 {
	return brformat.RoundCents(r.LaborValue - r.Entry())
}

// NewNumber returns LEVEL5- followed by eight upper-case hex digits read from rand.
func NewNumber(rand io.Reader) (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(rand, b[:]); err != nil {
		return "", fmt.Errorf("document: contract number: %w", err)
	}
	return NumberPrefix + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// MonthlyProduction is the estimated generation of one month. The source
// systems also send an average row whose month is the string "média"; it is
// decoded with Average set and left out of the chart.
type MonthlyProduction struct {
	Month   int     `json:"mes"`
	Total   float64 `json:"geracao_total"`
	Average bool    `json:"-"`
}

// UnmarshalJSON accepts a numeric month or the average marker.
func (m *MonthlyProduction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Month json.RawMessage `json:"mes"`
		Total float64         `json:"geracao_total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Total = raw.Total
	var n int
	if err := json.Unmarshal(raw.Month, &n); err == nil {
		m.Month = n
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Month, &s); err != nil {
		return fmt.Errorf("document: mes must be a number or %q", "média")
	}
	m.Average = true
	return nil
}

// PaybackRow is the accumulated balance at the end of one year.
type PaybackRow struct {
	Year    int     `json:"ano"`
	Balance float64 `json:"saldo"`
}

// ProposalRequest carries everything a commercial proposal prints.
type ProposalRequest struct {
	ClientName    string              `json:"nome"`
	Modules       int                 `json:"modulos_quantidade"`
	ModuleSpec    string              `json:"especificacoes_modulo"`
	Inverters     int                 `json:"inversores_quantidade"`
	InverterSpec  string              `json:"especificacoes_inversores"`
	KitValue      float64             `json:"investimento_kit_fotovoltaico"`
	LaborValue    float64             `json:"investimento_mao_de_obra"`
	Production    []MonthlyProduction `json:"producao_mensal"`
	PaybackSeries []PaybackRow        `json:"retorno_investimento"`
}

// Validate reports every malformed field at once.
func (r *ProposalRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.ClientName) == "" {
		errs = append(errs, errors.New("nome is required"))
	}
	if r.Modules < 0 {
		errs = append(errs, fmt.Errorf("modulos_quantidade must not be negative, got %d", r.Modules))
	}
	if r.Inverters < 0 {
		errs = append(errs, fmt.Errorf("inversores_quantidade must not be negative, got %d", r.Inverters))
	}
	errs = append(errs, checkAmount("investimento_kit_fotovoltaico", r.KitValue))
	errs = append(errs, checkAmount("investimento_mao_de_obra", r.LaborValue))
	for _, m := range r.Production {
		if !m.Average && (m.Month < 1 || m.Month > 12) {
			errs = append(errs, fmt.Errorf("producao_mensal: month %d out of range", m.Month))
		}
	}
	return joinInvalid(errs)
}

// Total is the kit plus labor.
func (r *ProposalRequest) Total() float64 {
	return brformat.RoundCents(r.KitValue + r.LaborValue)
}

// Payback returns the first year whose accumulated balance turns positive.
func (r *ProposalRequest) Payback() (PaybackRow, bool) {
	for _, row := range r.PaybackSeries {
		if row.Balance > 0 {
			return row, true
		}
	}
	return PaybackRow{}, false
}

// Savings is the balance of the last year of the series.
func (r *ProposalRequest) Savings() float64 {
	if len(r.PaybackSeries) == 0 {
		return 0
	}
	return r.PaybackSeries[len(r.PaybackSeries)-1].Balance
}

func checkAmount(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%s must be a finite number", field)
	case v < 0:
		return fmt.Errorf("%s must not be negative, got %g", field, v)
	}
	return nil
}

func joinInvalid(errs []error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
