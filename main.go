package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/level5eng/docflow/config"
	"github.com/level5eng/docflow/document"
	"github.com/level5eng/docflow/layout"
	"github.com/level5eng/docflow/service"
)

func main() {
	configPath := flag.String("config", "", "arquivo YAML de configuração")
	input := flag.String("in", "", "requisição JSON (contrato ou proposta)")
	kind := flag.String("kind", "contract", "tipo de documento: contract ou proposal")
	output := flag.String("out", "", "caminho do PDF gerado (padrão: diretório de saída da configuração)")
	debug := flag.String("debug", "", "caminho do JSON de depuração do layout")
	backend := flag.String("backend", "", "backend de PDF: canvas ou fpdf")
	envelope := flag.Bool("envelope", false, "imprime a resposta JSON em vez do caminho do PDF")
	flag.Parse()

	if *input == "" {
		log.Fatalf("informe a requisição com -in")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("carregar configuração: %v", err)
	}
	if *backend != "" {
		cfg.Output.Backend = *backend
	}
	if *output != "" {
		cfg.Output.Dir = filepath.Dir(*output)
	}

	logger := log.New(os.Stderr, "docflow: ", log.LstdFlags)
	gen, err := service.New(cfg, service.WithLogger(logger), service.WithBaseDir(filepath.Dir(*input)))
	if err != nil {
		log.Fatalf("%v", err)
	}

	out, message, err := run(gen, *kind, *input)
	if err != nil {
		if *envelope {
			printJSON(service.NewErrorEnvelope(err))
			os.Exit(1)
		}
		log.Fatalf("gerar PDF: %v", err)
	}

	if *output != "" {
		// the service picks its own file name; move it where the caller asked
		if err := os.Rename(filepath.Join(cfg.Output.Dir, out.Filename), *output); err != nil {
			log.Fatalf("mover PDF: %v", err)
		}
		out.Filename = filepath.Base(*output)
	}
	if *debug != "" {
		if err := writeDebug(out.Trace, *debug); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if *envelope {
		printJSON(service.NewEnvelope(out, message))
		return
	}
	fmt.Printf("PDF gerado: %s (%d páginas)\n", filepath.Join(cfg.Output.Dir, out.Filename), out.Pages)
}

// run decodes the request file and generates the document of kind.
func run(gen *service.Generator, kind, inputPath string) (*service.Output, string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("ler requisição %s: %w", inputPath, err)
	}
	switch kind {
	case "contract":
		var req document.ContractRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, "", fmt.Errorf("decodificar requisição: %w", err)
		}
		out, err := gen.Contract(&req)
		return out, "Contrato gerado com sucesso", err
	case "proposal":
		var req document.ProposalRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, "", fmt.Errorf("decodificar requisição: %w", err)
		}
		out, err := gen.Proposal(&req)
		return out, "Proposta gerada com sucesso", err
	default:
		return nil, "", fmt.Errorf("tipo de documento desconhecido %q", kind)
	}
}

func writeDebug(trace []layout.Placement, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("criar diretório de depuração: %w", err)
	}
	if err := layout.WriteDebugJSON(trace, debugPath); err != nil {
		return fmt.Errorf("gravar JSON de depuração: %w", err)
	}
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("escrever JSON: %v", err)
	}
}
