package render

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hecos/internal/model"
)

// ErrNoValues 图表没有可绘制的数据
var ErrNoValues = errors.New("chart has no values to draw")

// 图表尺寸（像素）
const (
	ChartWidth  = 640
	ChartHeight = 320
)

// 饼图扇区配色，依次循环使用
var piePalette = []string{"ff477e", "06ffa5", "ffa502", "42e9f5"}

// ChartSVG 将图表渲染为 SVG
// 单序列柱状图用 BarChart，折线与多序列用 Chart + 分类刻度 + 图例，饼图用 PieChart
func ChartSVG(c model.Chart, w io.Writer) error {
	if len(c.Points) == 0 || len(c.Series) == 0 {
		return fmt.Errorf("%s: %w", c.ID, ErrNoValues)
	}

	switch {
	case c.Kind == model.ChartKindPie:
		return renderPie(c, w)
	case c.Kind == model.ChartKindBar && len(c.Series) == 1:
		return renderBar(c, w)
	default:
		return renderCategory(c, w)
	}
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}

// valueRange Y 轴范围：总是包含 0，全部相等时撑开为 1
func valueRange(c model.Chart) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, p := range c.Points {
		for _, s := range c.Series {
			v := p.Values[s.Key]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	// 顶部留白
	hi += (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func renderBar(c model.Chart, w io.Writer) error {
	s := c.Series[0]
	bars := make([]chart.Value, 0, len(c.Points))
	for _, p := range c.Points {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Values[s.Key],
			Style: chart.Style{
				FillColor:   color(s.Color),
				StrokeColor: color(s.Color),
				StrokeWidth: 0,
			},
		})
	}

	// 每个分类占一个槽位，柱宽取槽位的 2/3（最多 40px）
	slot := (ChartWidth - 100) / len(bars)
	barWidth := slot * 2 / 3
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 2 {
		barWidth = 2
	}
	spacing := slot - barWidth
	if spacing < 1 {
		spacing = 1
	}

	bc := chart.BarChart{
		Title:      c.Title,
		Width:      ChartWidth,
		Height:     ChartHeight,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      chart.YAxis{Range: valueRange(c)},
		Bars:       bars,

		// 柱子从 0 起画，负值向下
		UseBaseValue: true,
		BaseValue:    0,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart %s: %w", c.ID, err)
	}
	return nil
}

func renderCategory(c model.Chart, w io.Writer) error {
	n := len(c.Points)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n)
	for i, p := range c.Points {
		xs[i] = float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: p.Label})
	}

	series := make([]chart.Series, 0, len(c.Series))
	for _, s := range c.Series {
		ys := make([]float64, n)
		for i, p := range c.Points {
			ys[i] = p.Values[s.Key]
		}
		st := chart.Style{
			StrokeColor: color(s.Color),
			StrokeWidth: 3,
			DotColor:    color(s.Color),
			DotWidth:    4,
		}
		if c.Kind == model.ChartKindBar {
			// 多序列柱状图以点线呈现，便于同一分类下对比
			st.StrokeWidth = 1
			st.DotWidth = 6
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   st,
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      ChartWidth,
		Height:     ChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(n) + 0.5},
			Ticks: ticks,
		},
		YAxis:  chart.YAxis{Range: valueRange(c)},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart %s: %w", c.ID, err)
	}
	return nil
}

func renderPie(c model.Chart, w io.Writer) error {
	key := c.Series[0].Key
	values := make([]chart.Value, 0, len(c.Points))
	total := 0.0
	for i, p := range c.Points {
		v := p.Values[key]
		if v <= 0 {
			continue
		}
		total += v
		hex := piePalette[i%len(piePalette)]
		values = append(values, chart.Value{
			Label: p.Label,
			Value: v,
			Style: chart.Style{FillColor: color(hex), StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if total <= 0 {
		return fmt.Errorf("%s: %w", c.ID, ErrNoValues)
	}

	pc := chart.PieChart{
		Title:  c.Title,
		Width:  ChartHeight,
		Height: ChartHeight,
		Values: values,
	}
	if err := pc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render pie chart %s: %w", c.ID, err)
	}
	return nil
}

// EmptyChartSVG 无数据时的占位图
func EmptyChartSVG(title string, w io.Writer) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
			`<text x="50%%" y="28" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#333">%s</text>`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#999">No data</text>`+
			`</svg>`,
		ChartWidth, ChartHeight, ChartWidth, ChartHeight, html.EscapeString(title))
	return err
}
