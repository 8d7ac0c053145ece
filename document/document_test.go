package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/templates"
)

func contractRequest() *ContractRequest {
	return &ContractRequest{
		ClientName:    "Maria da Silva",
		ClientCPF:     "12345678901",
		ClientAddress: "Rua das Flores, 100 - Centro, Juiz de Fora/MG",
		ClientCEP:     "36000000",
		Date:          "2025-01-28",
		Items: []TechnicalItem{
			{Number: 1, Quantity: "6", Description: "Módulos fotovoltaicos 550W"},
			{Number: 2, Quantity: "1", Description: "Inversor 3kW"},
		},
		MaterialValue: 20000,
		LaborValue:    10000,
	}
}

func settings() Settings {
	return Settings{
		Company: DefaultCompany(),
		Assets:  Assets{Logo: "logo.png", Signature: "assinatura.png"},
		Palette: layout.DefaultPalette(),
	}
}

func TestNormalizeContract(t *testing.T) {
	r := contractRequest()
	if err := r.Normalize(time.Now(), bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef})); err != nil {
		t.Fatal(err)
	}
	if r.Number != "LEVEL5-DEADBEEF" {
		t.Errorf("number = %q", r.Number)
	}
	if r.Date != "28 de janeiro de 2025" {
		t.Errorf("date = %q", r.Date)
	}
	got := []int{r.Days, r.WarrantyModules, r.WarrantyPerformance, r.WarrantyInverters, r.WarrantyStructure, r.WarrantyInstall}
	if diff := cmp.Diff([]int{40, 15, 25, 12, 5, 12}, got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
	if r.EntryPercent == nil || *r.EntryPercent != 30 {
		t.Errorf("entry percent = %v", r.EntryPercent)
	}
}

func TestNormalizeKeepsGivenValues(t *testing.T) {
	r := contractRequest()
	r.Number = "LEVEL5-2025-001"
	r.Date = ""
	r.Days = 60
	zero := 0.0
	r.EntryPercent = &zero
	now := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	if err := r.Normalize(now, strings.NewReader("")); err != nil {
		t.Fatal(err)
	}
	if r.Number != "LEVEL5-2025-001" || r.Date != "05 de março de 2025" || r.Days != 60 || *r.EntryPercent != 0 {
		t.Fatalf("normalized = %+v", r)
	}
	if r.Entry() != 0 || r.Balance() != 10000 {
		t.Fatalf("entry %v balance %v", r.Entry(), r.Balance())
	}
}

func TestNormalizeRejectsBadDate(t *testing.T) {
	r := contractRequest()
	r.Date = "amanhã"
	err := r.Normalize(time.Now(), bytes.NewReader(make([]byte, 4)))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateContract(t *testing.T) {
	if err := contractRequest().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	r := contractRequest()
	r.ClientName = " "
	r.LaborValue = -1
	pct := 120.0
	r.EntryPercent = &pct
	r.Days = -5
	err := r.Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v", err)
	}
	for _, want := range []string{"cliente_nome", "valor_mao_obra", "percentual_entrada_mao_obra", "prazo_execucao_dias must not be negative, got -5"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestContractData(t *testing.T) {
	r := contractRequest()
	r.Notes = `<script>alert(1)</script><b>Sujeito</b> à <i>aprovação</i>`
	if err := r.Normalize(time.Now(), bytes.NewReader(make([]byte, 4))); err != nil {
		t.Fatal(err)
	}
	data, err := ContractData(r, DefaultCompany(), "")
	if err != nil {
		t.Fatal(err)
	}
	values := data["values"].(map[string]any)
	want := map[string]any{
		"total":          "R$ 30.000,00",
		"totalWords":     "trinta mil reais",
		"material":       "R$ 20.000,00",
		"labor":          "R$ 10.000,00",
		"entry":          "R$ 3.000,00",
		"entryPercent":   "30%",
		"balance":        "R$ 7.000,00",
		"balancePercent": "70%",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
	client := data["client"].(map[string]any)
	if client["cpf"] != "123.456.789-01" || client["cep"] != "36000-000" {
		t.Errorf("client = %v", client)
	}
	if data["daysWords"] != "quarenta" {
		t.Errorf("daysWords = %v", data["daysWords"])
	}
	if got := data["notes"]; got != "<b>Sujeito</b> à aprovação" {
		t.Errorf("notes = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"plain":                       "plain",
		"<strong>a</strong> b":        "<strong>a</strong> b",
		`<a href="x">link</a>`:        "link",
		"<style>p{}</style>  texto  ": "texto",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildContract(t *testing.T) {
	script, err := templates.Load(templates.Contract, "")
	if err != nil {
		t.Fatal(err)
	}
	r := contractRequest()
	r.Object = "Sistema fotovoltaico de 3,3 kWp"
	if err := r.Normalize(time.Now(), bytes.NewReader(make([]byte, 4))); err != nil {
		t.Fatal(err)
	}
	built, err := BuildContract(script, r, settings())
	if err != nil {
		t.Fatal(err)
	}

	if built.Chrome.Title != "CONTRATO DE PRESTAÇÃO DE SERVIÇO" || built.Chrome.Logo != "logo.png" || built.Chrome.FirstPage != 2 {
		t.Errorf("chrome = %+v", built.Chrome)
	}
	if diff := cmp.Diff(Cover{Heading: "CONTRATO", Client: "Maria da Silva", Number: "LEVEL5-00000000"}, built.Cover); diff != "" {
		t.Errorf("cover (-want +got):\n%s", diff)
	}

	blocks := built.Blocks
	if blocks[0] != layout.Label("CONTRATANTE:") {
		t.Errorf("first block = %+v", blocks[0])
	}
	var all strings.Builder
	for _, b := range blocks {
		all.WriteString(b.Text + "\n")
		if strings.Contains(b.Text, "${") {
			t.Errorf("unresolved placeholder in %q", b.Text)
		}
	}
	text := all.String()
	for _, want := range []string{
		"<b>Maria da Silva</b>, inscrito no <b>CPF nº 123.456.789-01</b>",
		"tem por objeto: Sistema fotovoltaico de 3,3 kWp",
		"<b>Item 2:</b> 1 × Inversor 3kW",
		"(trinta mil reais)",
		"<b>40 (quarenta) dias corridos</b>",
		"12 (doze) meses",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document misses %q", want)
		}
	}
	if strings.Contains(text, "OBSERVAÇÕES") {
		t.Error("notes section printed without notes")
	}

	last := blocks[len(blocks)-1]
	if last.Kind != layout.KindSignature {
		t.Fatalf("last block = %+v", last)
	}
	want := layout.SignatureBlock{
		DateText: "Juiz de Fora – MG, 28 de janeiro de 2025.",
		Lines: [2]layout.SignatureLine{
			{Caption: "CONTRATANTE:", Name: "Maria da Silva"},
			{Caption: "CONTRATADA:", Name: "LEVEL 5 ENGENHARIA ELÉTRICA LTDA"},
		},
		Overlay: layout.Overlay{Ref: "assinatura.png", Width: 45, Height: 18, Line: 1},
	}
	if diff := cmp.Diff(want, *last.Signature); diff != "" {
		t.Errorf("signature (-want +got):\n%s", diff)
	}
}

func TestBuildContractNotesAndPlace(t *testing.T) {
	script, err := templates.Load(templates.Contract, "")
	if err != nil {
		t.Fatal(err)
	}
	r := contractRequest()
	r.Notes = "Projeto sujeito à aprovação da concessionária."
	r.Place = "Matias Barbosa – MG"
	r.Items = nil
	if err := r.Normalize(time.Now(), bytes.NewReader(make([]byte, 4))); err != nil {
		t.Fatal(err)
	}
	built, err := BuildContract(script, r, settings())
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, b := range built.Blocks {
		if b.Kind == layout.KindTitle {
			titles = append(titles, b.Text)
		}
		if strings.HasPrefix(b.Text, "1.2.") {
			t.Errorf("technical items printed without items: %q", b.Text)
		}
	}
	if titles[len(titles)-1] != "9. OBSERVAÇÕES ADICIONAIS" {
		t.Errorf("titles = %q", titles)
	}
	sig := built.Blocks[len(built.Blocks)-1].Signature
	if !strings.HasPrefix(sig.DateText, "Matias Barbosa – MG, ") {
		t.Errorf("date line = %q", sig.DateText)
	}
}

func TestBuildContractKeepsAngleBrackets(t *testing.T) {
	script, err := templates.Load(templates.Contract, "")
	if err != nil {
		t.Fatal(err)
	}
	r := contractRequest()
	r.ClientName = "ACME <Filial> & Cia"
	r.ClientAddress = "Rua A <casa 2>"
	if err := r.Normalize(time.Now(), bytes.NewReader(make([]byte, 4))); err != nil {
		t.Fatal(err)
	}
	s := settings()
	s.Company.CNPJ = "57946157000121"
	built, err := BuildContract(script, r, s)
	if err != nil {
		t.Fatal(err)
	}
	var printed strings.Builder
	for _, b := range built.Blocks {
		printed.WriteString(layout.PlainText(b.Text) + "\n")
	}
	for _, want := range []string{
		"ACME <Filial> & Cia, inscrito no CPF nº 123.456.789-01",
		"residente em Rua A <casa 2> - CEP 36000-000.",
		"CNPJ sob o nº 57.946.157/0001-21",
	} {
		if !strings.Contains(printed.String(), want) {
			t.Errorf("document misses %q", want)
		}
	}
	sig := built.Blocks[len(built.Blocks)-1].Signature
	if sig.Lines[0].Name != "ACME <Filial> & Cia" {
		t.Errorf("signature name = %q", sig.Lines[0].Name)
	}
	if built.Cover.Client != "ACME <Filial> & Cia" {
		t.Errorf("cover client = %q", built.Cover.Client)
	}
}

func proposalRequest() *ProposalRequest {
	return &ProposalRequest{
		ClientName:   "João Pereira",
		Modules:      10,
		ModuleSpec:   "Módulos 550W",
		Inverters:    1,
		InverterSpec: "5kW",
		KitValue:     15000,
		LaborValue:   5000.5,
		PaybackSeries: []PaybackRow{
			{Year: 1, Balance: -15000},
			{Year: 2, Balance: -8000},
			{Year: 3, Balance: 1200},
			{Year: 4, Balance: 9000},
		},
	}
}

func TestProposalDerivedValues(t *testing.T) {
	r := proposalRequest()
	row, ok := r.Payback()
	if !ok || row.Year != 3 || row.Balance != 1200 {
		t.Fatalf("payback = %+v %v", row, ok)
	}
	if r.Savings() != 9000 {
		t.Fatalf("savings = %v", r.Savings())
	}
	if r.Total() != 20000.5 {
		t.Fatalf("total = %v", r.Total())
	}
	empty := &ProposalRequest{}
	if _, ok := empty.Payback(); ok || empty.Savings() != 0 {
		t.Fatal("empty series has no payback")
	}
}

func TestBuildProposal(t *testing.T) {
	script, err := templates.Load(templates.Proposal, "")
	if err != nil {
		t.Fatal(err)
	}
	charts := Charts{Production: "/tmp/p.png", ProductionHeight: 80}
	built, err := BuildProposal(script, proposalRequest(), charts, settings())
	if err != nil {
		t.Fatal(err)
	}
	if built.Cover.Heading != "PROPOSTA" || built.Cover.Number != "" {
		t.Errorf("cover = %+v", built.Cover)
	}
	var images []layout.ImageSpec
	var text strings.Builder
	for _, b := range built.Blocks {
		if b.Image != nil {
			images = append(images, *b.Image)
		}
		text.WriteString(b.Text + "\n")
	}
	wantImages := []layout.ImageSpec{
		{Ref: "/tmp/p.png", Width: 160, Height: 80},
		{Ref: "", Width: 160, Height: 0},
	}
	if diff := cmp.Diff(wantImages, images); diff != "" {
		t.Errorf("images (-want +got):\n%s", diff)
	}
	for _, want := range []string{
		"10 Módulos 550W",
		"1 Inversor(es) 5kW",
		"INVESTIMENTO TOTAL: R$ 20.000,50",
		"(vinte mil reais e cinquenta centavos)",
		"Lucro a partir do 3º ano:",
		"<b>R$ 1.200,00</b>",
		"Economia acumulada de <b>R$ 9.000,00</b>",
	} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("proposal misses %q", want)
		}
	}
}

func TestBuildProposalWithoutPayback(t *testing.T) {
	script, err := templates.Load(templates.Proposal, "")
	if err != nil {
		t.Fatal(err)
	}
	r := proposalRequest()
	r.PaybackSeries = r.PaybackSeries[:2]
	built, err := BuildProposal(script, r, Charts{}, settings())
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range built.Blocks {
		if strings.Contains(b.Text, "Lucro a partir") {
			t.Fatalf("payback bullet printed without payback: %q", b.Text)
		}
	}
}

func TestValidateProposal(t *testing.T) {
	if err := proposalRequest().Validate(); err != nil {
		t.Fatal(err)
	}
	r := proposalRequest()
	r.ClientName = ""
	r.Production = []MonthlyProduction{{Month: 13}}
	if err := r.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v", err)
	}
}

func TestMonthlyProductionJSON(t *testing.T) {
	var got []MonthlyProduction
	in := `[{"mes": 1, "geracao_total": 410.5}, {"mes": "média", "geracao_total": 380}]`
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatal(err)
	}
	want := []MonthlyProduction{{Month: 1, Total: 410.5}, {Total: 380, Average: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if err := json.Unmarshal([]byte(`[{"mes": true}]`), &got); err == nil {
		t.Fatal("expected an error for a boolean month")
	}
}

func TestNewNumberShortRead(t *testing.T) {
	if _, err := NewNumber(strings.NewReader("ab")); err == nil {
		t.Fatal("expected an error on a short read")
	}
}
