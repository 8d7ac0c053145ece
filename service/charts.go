package service

import (
	"image"
	"path/filepath"

	"github.com/level5eng/docflow/charts"
	"github.com/level5eng/docflow/document"
)

// chartWidth is the width in mm at which the proposal script places charts.
const chartWidth = 160.0

// drawCharts writes the proposal images into dir. A chart that cannot be
// drawn is logged and left out of the document.
func (g *Generator) drawCharts(req *document.ProposalRequest, dir string) document.Charts {
	var out document.Charts

	var months []charts.Month
	for _, m := range req.Production {
		if m.Average {
			continue
		}
		months = append(months, charts.Month{Month: m.Month, Total: m.Total})
	}
	if len(months) > 0 {
		path := filepath.Join(dir, "producao.png")
		if size, err := charts.ProductionChart(months, path); err != nil {
			g.logger.Printf("service: production chart: %v", err)
		} else {
			out.Production, out.ProductionHeight = path, heightAt(size)
		}
	}

	rows := make([]charts.Row, 0, len(req.PaybackSeries))
	for _, r := range req.PaybackSeries {
		rows = append(rows, charts.Row{Year: r.Year, Balance: r.Balance})
	}
	if len(rows) > 0 {
		path := filepath.Join(dir, "retorno.png")
		if size, err := charts.PaybackTable(rows, path); err != nil {
			g.logger.Printf("service: payback table: %v", err)
		} else {
			out.Payback, out.PaybackHeight = path, heightAt(size)
		}
	}
	return out
}

// heightAt keeps the pixel aspect ratio at chartWidth.
func heightAt(size image.Point) float64 {
	if size.X <= 0 {
		return 0
	}
	return chartWidth * float64(size.Y) / float64(size.X)
}
