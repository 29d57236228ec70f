// Package debugplot renders support point clusters for visual inspection.
package debugplot

import (
	"fmt"
	"image/color"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chazu/sla/internal/logger"
	"github.com/chazu/sla/pkg/cluster"
)

// palette assigns distinct colours to clusters, cycling when there are
// more clusters than entries.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Size is the edge length of the square output image.
const Size = 6 * vg.Inch

// Clusters writes a top-down XY scatter of the clustered points to path.
// The image format follows the file extension (png, svg, pdf, ...).
func Clusters(path string, pointfn func(int) r3.Vec, clusters cluster.Clusters) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d clusters", len(clusters))
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	points := 0
	for i, c := range clusters {
		xys := make(plotter.XYs, len(c))
		for j, idx := range c {
			v := pointfn(idx)
			xys[j] = plotter.XY{X: v.X, Y: v.Y}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("cluster %d: %w", i, err)
		}
		s.GlyphStyle.Color = PaletteColor(i)
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		points += len(c)
	}

	if err := p.Save(Size, Size, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	logger.Debug("cluster plot written",
		zap.String("path", path),
		zap.Int("clusters", len(clusters)),
		zap.Int("points", points),
	)
	return nil
}

// PaletteColor returns the colour used for cluster i.
func PaletteColor(i int) color.Color {
	c, err := parseHex(palette[i%len(palette)])
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
