package postpro

import (
	"fmt"
	"image/color"

	merit "github.com/licm13/Merit-catchment-extract"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SummaryChart renders the batch outcome tally (ok/reject/fail) as a bar
// chart png.
func SummaryChart(fp string, rows []merit.LedgerRow) error {
	var nok, nrej, nfail float64
	for _, r := range rows {
		switch r.Status {
		case merit.StatusOK:
			nok++
		case merit.StatusReject:
			nrej++
		default:
			nfail++
		}
	}

	p := plot.New()
	p.Title.Text = "watershed extraction summary"
	p.Y.Label.Text = "stations"

	bars, err := plotter.NewBarChart(plotter.Values{nok, nrej, nfail}, vg.Points(40))
	if err != nil {
		return fmt.Errorf("SummaryChart: %v", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(bars)
	p.NominalX("ok", "reject", "fail")

	if err := p.Save(6*vg.Inch, 4*vg.Inch, fp); err != nil {
		return fmt.Errorf("SummaryChart: %v", err)
	}
	return nil
}
