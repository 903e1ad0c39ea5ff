// ABOUTME: Renders a SpaceChart to PNG or SVG with go-chart.
// ABOUTME: Points are drawn as dots only; the split boundary is a dashed red series.
package viz

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size when the surface reports none.
const (
	DefaultImageWidth  = 640
	DefaultImageHeight = 480
)

// pointStyle draws markers with no connecting stroke.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

// RenderSpace writes c to w as "png" or "svg".
func RenderSpace(c SpaceChart, format string, w io.Writer) error {
	var provider chart.RendererProvider
	switch format {
	case "png":
		provider = chart.PNG
	case "svg":
		provider = chart.SVG
	default:
		return fmt.Errorf("unsupported format %q: supported formats are png, svg", format)
	}

	width, height := c.Surface.Width, c.Surface.Height
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}

	// The frame series pins the plot to the chart ranges even with no points.
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "frame",
			XValues: []float64{c.XRange.Min, c.XRange.Max},
			YValues: []float64{c.YRange.Min, c.YRange.Max},
			Style:   chart.Style{Hidden: true},
		},
	}
	for _, s := range c.Series {
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   pointStyle(drawing.ColorFromHex(trimHash(s.Color))),
		})
	}
	if c.Split != nil {
		seg := c.Split.Segment
		series = append(series, chart.ContinuousSeries{
			Name:    "Split Line",
			XValues: []float64{seg.X0, seg.X1},
			YValues: []float64{seg.Y0, seg.Y1},
			Style: chart.Style{
				StrokeWidth:     2,
				StrokeColor:     chart.ColorRed,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Feature 0",
			Range: &chart.ContinuousRange{Min: c.XRange.Min, Max: c.XRange.Max},
		},
		YAxis: chart.YAxis{
			Name:  "Feature 1",
			Range: &chart.ContinuousRange{Min: c.YRange.Min, Max: c.YRange.Max},
		},
		Series: series,
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render space chart: %w", err)
	}
	return nil
}

func trimHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}
