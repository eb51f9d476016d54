package widgets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no chart data")

// Image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ContentType returns the MIME type of an image format.
func ContentType(format string) string {
	if format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func renderer(format string) chart.RendererProvider {
	if format == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

func parseDay(s string) (time.Time, bool) {
	if len(s) >= 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func dateAxis() chart.XAxis {
	return chart.XAxis{
		TickPosition: chart.TickPositionBetweenTicks,
		ValueFormatter: func(v interface{}) string {
			if t, ok := v.(float64); ok {
				return chart.TimeFromFloat64(t).Format("2 Jan")
			}
			return ""
		},
	}
}

// RenderVolume draws feedback volume over time as a line chart.
func RenderVolume(v *models.Volume, format string) ([]byte, error) {
	if v == nil {
		return nil, ErrNoData
	}
	var xs []time.Time
	var ys []float64
	for _, p := range v.Periods {
		t, ok := parseDay(p.Date)
		if !ok {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, float64(p.Count))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", ErrNoData, len(xs))
	}

	graph := chart.Chart{
		Title:  "Feedback Volume",
		Width:  900,
		Height: 320,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: dateAxis(),
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Feedback",
				Style: chart.Style{
					StrokeColor: color("6366f1"),
					StrokeWidth: 2.5,
					FillColor:   color("6366f1").WithAlpha(48),
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return render(format, graph.Render)
}

// RenderSentimentTrend draws a customer's sentiment against the product average.
func RenderSentimentTrend(trend *models.SentimentTrend, format string) ([]byte, error) {
	if trend == nil {
		return nil, ErrNoData
	}
	customer := trendSeries("Customer", trend.Periods, chart.Style{
		StrokeColor: color("6366f1"),
		StrokeWidth: 2.5,
	})
	if len(customer.XValues) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", ErrNoData, len(customer.XValues))
	}
	series := []chart.Series{customer}
	if avg := trendSeries("Product average", trend.ProductAverage, chart.Style{
		StrokeColor:     color("9ca3af"),
		StrokeWidth:     1.5,
		StrokeDashArray: []float64{5.0, 3.0},
	}); len(avg.XValues) >= 2 {
		series = append(series, avg)
	}

	graph := chart.Chart{
		Title:  "Sentiment Trend",
		Width:  900,
		Height: 320,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: dateAxis(),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	return render(format, graph.Render)
}

func trendSeries(name string, points []models.TrendPoint, style chart.Style) chart.TimeSeries {
	s := chart.TimeSeries{Name: name, Style: style}
	for _, p := range points {
		t, ok := parseDay(p.Date)
		if !ok {
			continue
		}
		s.XValues = append(s.XValues, t)
		s.YValues = append(s.YValues, p.AvgSentiment)
	}
	return s
}

// RenderSentiment draws the sentiment distribution as a donut.
func RenderSentiment(b *models.SentimentBreakdown, format string) ([]byte, error) {
	if b == nil {
		return nil, ErrNoData
	}
	values := make([]chart.Value, 0, len(b.Breakdown))
	for _, item := range b.Breakdown {
		if item.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.0f%%", item.Sentiment, item.Percentage),
			Value: float64(item.Count),
			Style: chart.Style{FillColor: color(SentimentColor(item.Sentiment))},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	donut := chart.DonutChart{
		Title:  "Sentiment",
		Width:  400,
		Height: 400,
		Values: values,
	}
	return render(format, donut.Render)
}

// RenderSources draws the source distribution as bars.
func RenderSources(b *models.SourceBreakdown, format string) ([]byte, error) {
	if b == nil {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, 0, len(b.Breakdown))
	for _, item := range b.Breakdown {
		bars = append(bars, chart.Value{
			Label: models.SourceLabel(item.Source),
			Value: float64(item.Count),
			Style: chart.Style{FillColor: color(SourceColor(item.Source)), StrokeColor: color(SourceColor(item.Source))},
		})
	}
	return renderBars("Sources", bars, format)
}

// RenderAreas draws feedback per product area, coloured by average sentiment.
func RenderAreas(b *models.AreaBreakdown, format string) ([]byte, error) {
	if b == nil {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, 0, len(b.Areas))
	for _, a := range b.Areas {
		c := color(AreaColor(a.AvgSentiment))
		bars = append(bars, chart.Value{
			Label: a.ProductArea,
			Value: float64(a.Count),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}
	return renderBars("Product Areas", bars, format)
}

// RenderSegments draws feedback per customer segment.
func RenderSegments(b *models.SegmentBreakdown, format string) ([]byte, error) {
	if b == nil {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, 0, len(b.Segments))
	for i, s := range b.Segments {
		c := color(SegmentColor(i))
		bars = append(bars, chart.Value{
			Label: s.Segment,
			Value: float64(s.Count),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}
	return renderBars("Segments", bars, format)
}

func renderBars(title string, bars []chart.Value, format string) ([]byte, error) {
	total := 0.0
	for _, b := range bars {
		total += b.Value
	}
	if total <= 0 {
		return nil, ErrNoData
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    900,
		Height:   360,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return render(format, graph.Render)
}

func render(format string, fn func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(renderer(format), &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
