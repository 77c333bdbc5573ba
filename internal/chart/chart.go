// Package chart renders report tables as PNG stacked-bar and pie charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kamaal505/MLAnalytics/internal/report"
)

// ErrNoData is returned when a chart has no positive value to draw.
var ErrNoData = errors.New("chart has no positive values")

const (
	barWidth   = 40
	barSpacing = 30
	margin     = 120
)

// Options sizes the rendered image.
type Options struct {
	Width  int
	Height int
	DPI    float64
}

// Segment is one labelled value: a bar slice or a pie wedge. A zero Color
// picks the palette entry for the segment's position.
type Segment struct {
	Label string
	Value float64
	Color drawing.Color
}

// Bar is one stacked bar. Segments are stacked bottom to top.
type Bar struct {
	Label    string
	Segments []Segment
}

// Palette colors successive segments.
var Palette = []drawing.Color{
	drawing.ColorFromHex("E74C3C"),
	drawing.ColorFromHex("3498DB"),
	drawing.ColorFromHex("2ECC71"),
	drawing.ColorFromHex("F1C40F"),
	drawing.ColorFromHex("9B59B6"),
	drawing.ColorFromHex("1ABC9C"),
	drawing.ColorFromHex("E67E22"),
	drawing.ColorFromHex("D35400"),
	drawing.ColorFromHex("C0392B"),
	drawing.ColorFromHex("7F8C8D"),
}

// Outcome colors for success/failure charts.
var (
	FailureColor = drawing.ColorFromHex("E74C3C")
	SuccessColor = drawing.ColorFromHex("2ECC71")
)

func (s Segment) color(i int) drawing.Color {
	if s.Color != (drawing.Color{}) {
		return s.Color
	}
	return Palette[i%len(Palette)]
}

func fill(c drawing.Color) gochart.Style {
	return gochart.Style{FillColor: c, StrokeColor: drawing.ColorBlack, StrokeWidth: 0.5}
}

// Bars turns table rows into stacked bars, one segment per column in the
// given order. Missing or non-numeric cells become 0.
func Bars(t report.Table, columns []string) []Bar {
	bars := make([]Bar, 0, len(t.Rows))
	for i, row := range t.Rows {
		bar := Bar{Label: report.FormatCell(row[0])}
		for _, col := range columns {
			v, _ := t.Float(i, col)
			bar.Segments = append(bar.Segments, Segment{Label: col, Value: v})
		}
		bars = append(bars, bar)
	}
	return bars
}

// StackedBar renders bars to a PNG at path. Segment colors follow their
// position, so the same column keeps its color across bars.
func StackedBar(path, title string, bars []Bar, opts Options) error {
	positive := false
	out := make([]gochart.StackedBar, 0, len(bars))
	for _, b := range bars {
		sb := gochart.StackedBar{Name: b.Label, Width: barWidth}
		// go-chart stacks from the top down.
		for i := len(b.Segments) - 1; i >= 0; i-- {
			s := b.Segments[i]
			if s.Value <= 0 {
				continue
			}
			positive = true
			sb.Values = append(sb.Values, gochart.Value{
				Label: s.Label,
				Value: s.Value,
				Style: fill(s.color(i)),
			})
		}
		out = append(out, sb)
	}
	if !positive {
		return ErrNoData
	}

	width := opts.Width
	if need := len(out)*(barWidth+barSpacing) + margin; need > width {
		width = need
	}
	c := gochart.StackedBarChart{
		Title:      title,
		Width:      width,
		Height:     opts.Height,
		DPI:        opts.DPI,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		Bars:       out,
	}
	return render(path, c)
}

// Pie renders one pie at path, skipping segments that are not positive.
func Pie(path, title string, segments []Segment, opts Options) error {
	var values []gochart.Value
	for i, s := range segments {
		if s.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: fill(s.color(i)),
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	size := opts.Height
	if opts.Width < size {
		size = opts.Width
	}
	c := gochart.PieChart{
		Title:  title,
		Width:  size,
		Height: size,
		DPI:    opts.DPI,
		Values: values,
	}
	return render(path, c)
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

func render(path string, c renderable) error {
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WithColors sets the color of every segment whose label is in colors.
func WithColors(bars []Bar, colors map[string]drawing.Color) []Bar {
	for i := range bars {
		for j := range bars[i].Segments {
			if c, ok := colors[bars[i].Segments[j].Label]; ok {
				bars[i].Segments[j].Color = c
			}
		}
	}
	return bars
}
