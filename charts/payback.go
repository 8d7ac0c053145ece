package charts

import (
	"fmt"
	"image"
	"image/color"

	"github.com/level5eng/docflow/brformat"
)

const (
	tableWidth  = 1200
	tableRowH   = 60
	tableMargin = 20
	sampleEvery = 5
)

// Sample keeps every fifth row, counting from the first, plus the last one.
func Sample(rows []Row) []Row {
	var out []Row
	for i, r := range rows {
		if i%sampleEvery == 0 || i == len(rows)-1 {
			out = append(out, r)
		}
	}
	return out
}

// Payback draws the sampled payback table: a header row followed by
// alternating bands, one per sampled year.
func Payback(rows []Row) (*image.RGBA, error) {
	sampled := Sample(rows)
	h := 2*tableMargin + tableRowH*(len(sampled)+1)
	img := image.NewRGBA(image.Rect(0, 0, tableWidth, h))
	fill(img, img.Bounds(), color.White)

	head, err := face(true, 26)
	if err != nil {
		return nil, err
	}
	body, err := face(false, 26)
	if err != nil {
		return nil, err
	}

	inner := tableWidth - 2*tableMargin
	split := tableMargin + inner*4/10
	cols := [2][2]int{{tableMargin, split}, {split, tableWidth - tableMargin}}

	row := func(i int, bg color.Color, cells [2]string, bold bool) {
		y := tableMargin + i*tableRowH
		f, fg := body, color.Color(ink)
		if bold {
			f, fg = head, color.White
		}
		for j, c := range cols {
			r := image.Rect(c[0], y, c[1], y+tableRowH)
			fill(img, r, bg)
			stroke(img, r, 1, outline)
			text(img, f, fg, (c[0]+c[1])/2, y+tableRowH/2+9, anchorCenter, cells[j])
		}
	}

	row(0, blue, [2]string{"Período", "Saldo Acumulado"}, true)
	for i, r := range sampled {
		bg := color.Color(color.White)
		if (i+1)%2 == 0 {
			bg = light
		}
		row(i+1, bg, [2]string{fmt.Sprintf("Ano %d", r.Year), brformat.Currency(r.Balance)}, false)
	}
	return img, nil
}

// PaybackTable draws the payback table to a PNG file at path and returns its
// pixel size.
func PaybackTable(rows []Row, path string) (image.Point, error) {
	img, err := Payback(rows)
	if err != nil {
		return image.Point{}, err
	}
	if err := WritePNG(path, img); err != nil {
		return image.Point{}, err
	}
	return img.Bounds().Size(), nil
}
