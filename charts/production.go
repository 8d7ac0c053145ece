package charts

import (
	"image"
	"image/color"

	"github.com/level5eng/docflow/brformat"
)

// Production chart geometry in pixels (10x5 in at 150 dpi).
const (
	prodWidth  = 1500
	prodHeight = 750
	prodLeft   = 130
	prodRight  = 40
	prodTop    = 110
	prodBottom = 80
	prodTicks  = 5
)

// Production draws the monthly production bar chart.
func Production(months []Month) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, prodWidth, prodHeight))
	fill(img, img.Bounds(), color.White)

	title, err := face(true, 34)
	if err != nil {
		return nil, err
	}
	label, err := face(false, 22)
	if err != nil {
		return nil, err
	}
	axis, err := face(true, 24)
	if err != nil {
		return nil, err
	}

	text(img, title, blue, prodWidth/2, 55, anchorCenter, "Produção Mensal Estimada")
	text(img, axis, ink, prodLeft, prodTop-22, anchorLeft, "Geração (kWh)")

	plot := image.Rect(prodLeft, prodTop, prodWidth-prodRight, prodHeight-prodBottom)
	maxV := 0.0
	for _, m := range months {
		if m.Total > maxV {
			maxV = m.Total
		}
	}
	top := niceCeil(maxV)
	for i := 0; i <= prodTicks; i++ {
		v := top * float64(i) / prodTicks
		y := plot.Max.Y - int(float64(plot.Dy())*float64(i)/prodTicks)
		if i > 0 {
			dashed(img, plot.Min.X, plot.Max.X, y, grid)
		}
		text(img, label, ink, plot.Min.X-12, y+8, anchorRight, brformat.Number(v, 0))
	}
	fill(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+2), ink)

	if len(months) == 0 {
		return img, nil
	}
	slot := float64(plot.Dx()) / float64(len(months))
	barW := int(slot * 0.7)
	for i, m := range months {
		cx := plot.Min.X + int(slot*(float64(i)+0.5))
		h := int(float64(plot.Dy()) * m.Total / top)
		if h > 0 {
			bar := image.Rect(cx-barW/2, plot.Max.Y-h, cx+barW/2, plot.Max.Y)
			fill(img, bar, teal)
			stroke(img, bar, 3, blue)
		}
		text(img, label, ink, cx, plot.Max.Y+32, anchorCenter, MonthName(m.Month))
	}
	return img, nil
}

// ProductionChart draws the production chart to a PNG file at path and
// returns its pixel size.
func ProductionChart(months []Month, path string) (image.Point, error) {
	img, err := Production(months)
	if err != nil {
		return image.Point{}, err
	}
	if err := WritePNG(path, img); err != nil {
		return image.Point{}, err
	}
	return img.Bounds().Size(), nil
}
