// Package chart renders the dashboard pie and the analytics bar chart as
// inline SVG, caching documents by theme and content.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"html"
	"html/template"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"intentdash/internal/cache"
	"intentdash/internal/core"
	"intentdash/internal/theme"
)

const (
	PieSize   = 320
	BarWidth  = 860
	BarHeight = 420
)

// ErrNoData is returned when there is nothing to draw. Callers render the
// no-data state instead of a chart.
var ErrNoData = errors.New("no chart data")

type kind string

const (
	kindPie kind = "pie"
	kindBar kind = "bar"
)

// Renderer draws charts and memoizes the SVG.
type Renderer struct {
	cache cache.Cache[string]
}

// NewRenderer uses c to memoize SVG documents; c may be nil to disable caching.
func NewRenderer(c cache.Cache[string]) *Renderer {
	return &Renderer{cache: c}
}

// Reset drops every cached document.
func (r *Renderer) Reset() {
	if r.cache != nil {
		r.cache.Clear()
	}
}

// Pie draws one slice per category in feed order, each in its palette color.
// Zero-count categories get no slice but keep their color in the legend.
func (r *Renderer) Pie(res core.AggregationResult, t theme.Theme) (template.HTML, error) {
	if res.Empty() || res.Total == 0 {
		return "", ErrNoData
	}
	return r.cached(kindPie, t, res.Categories, func() ([]byte, error) {
		colors := t.Colors()
		values := make([]gochart.Value, 0, len(res.Categories))
		for _, c := range res.Categories {
			if c.Count == 0 {
				continue
			}
			values = append(values, gochart.Value{
				Value: float64(c.Count),
				Style: gochart.Style{
					FillColor:   hexColor(c.Hex),
					StrokeColor: hexColor(colors.Card),
					StrokeWidth: 1,
				},
			})
		}

		pie := gochart.PieChart{
			Width:  PieSize,
			Height: PieSize,
			Background: gochart.Style{
				FillColor: hexColor(colors.Card),
				Padding:   gochart.Box{Top: 8, Left: 8, Right: 8, Bottom: 8},
			},
			Canvas: gochart.Style{FillColor: hexColor(colors.Card)},
			Values: values,
		}
		var buf bytes.Buffer
		if err := pie.Render(gochart.SVG, &buf); err != nil {
			return nil, fmt.Errorf("render pie chart: %w", err)
		}
		return buf.Bytes(), nil
	})
}

// Bar draws one bar per category in feed order with a zero-based y axis.
func (r *Renderer) Bar(res core.AggregationResult, t theme.Theme) (template.HTML, error) {
	if res.Empty() || res.Total == 0 {
		return "", ErrNoData
	}
	return r.cached(kindBar, t, res.Categories, func() ([]byte, error) {
		colors := t.Colors()
		maxCount := 0
		bars := make([]gochart.Value, len(res.Categories))
		for i, c := range res.Categories {
			maxCount = max(maxCount, c.Count)
			bars[i] = gochart.Value{
				Value: float64(c.Count),
				Label: svgText(shortLabel(c.Category)),
				Style: gochart.Style{
					FillColor:   hexColor(c.Hex),
					StrokeColor: hexColor(c.Hex),
					StrokeWidth: 1,
				},
			}
		}

		n := len(bars)
		spacing := 8
		barWidth := max(6, (BarWidth-120)/n-spacing)

		axis := gochart.Style{
			FontColor:   hexColor(colors.Text),
			StrokeColor: hexColor(colors.Border),
			FontSize:    9,
		}
		bar := gochart.BarChart{
			Width:      BarWidth,
			Height:     BarHeight,
			BarWidth:   barWidth,
			BarSpacing: spacing,
			Background: gochart.Style{
				FillColor: hexColor(colors.Card),
				Padding:   gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
			},
			Canvas: gochart.Style{FillColor: hexColor(colors.Card)},
			XAxis:  axis,
			YAxis: gochart.YAxis{
				Style: axis,
				Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
				ValueFormatter: func(v interface{}) string {
					if f, ok := v.(float64); ok {
						return strconv.Itoa(int(f))
					}
					return ""
				},
			},
			Bars: bars,
		}
		var buf bytes.Buffer
		if err := bar.Render(gochart.SVG, &buf); err != nil {
			return nil, fmt.Errorf("render bar chart: %w", err)
		}
		return buf.Bytes(), nil
	})
}

func (r *Renderer) cached(k kind, t theme.Theme, rows []core.BreakdownRow, draw func() ([]byte, error)) (template.HTML, error) {
	key := cacheKey(k, t, rows)
	if r.cache != nil {
		if svg, ok := r.cache.Get(key); ok {
			return template.HTML(svg), nil
		}
	}

	raw, err := draw()
	if err != nil {
		return "", err
	}
	svg := stripXMLProlog(string(raw))
	if r.cache != nil {
		r.cache.Set(key, svg)
	}
	return template.HTML(svg), nil
}

// cacheKey fingerprints everything that affects the drawing.
func cacheKey(k kind, t theme.Theme, rows []core.BreakdownRow) string {
	h := fnv.New64a()
	for _, r := range rows {
		h.Write([]byte(r.Category))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(r.Count)))
		h.Write([]byte{0})
		h.Write([]byte(r.Hex))
		h.Write([]byte{1})
	}
	return fmt.Sprintf("%s|%s|%016x", k, t, h.Sum64())
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// shortLabel keeps x-axis labels from overlapping on narrow bars.
func shortLabel(s string) string {
	const limit = 14
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

// svgText escapes feed text for go-chart, which writes labels into the SVG
// verbatim. Truncate before escaping so an entity is never cut in half.
func svgText(s string) string {
	return html.EscapeString(s)
}

// stripXMLProlog makes the document embeddable inside HTML.
func stripXMLProlog(svg string) string {
	if strings.HasPrefix(svg, "<?xml") {
		if i := strings.Index(svg, "?>"); i >= 0 {
			return strings.TrimLeft(svg[i+2:], "\r\n ")
		}
	}
	return svg
}
