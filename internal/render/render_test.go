package render

import (
	"bytes"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"hecos/internal/model"
)

func sampleChart(kind model.ChartKind, series ...model.SeriesDef) model.Chart {
	points := []model.Point{
		{Label: "Jan", Values: map[string]float64{}},
		{Label: "Feb", Values: map[string]float64{}},
		{Label: "Mar", Values: map[string]float64{}},
	}
	for i := range points {
		for j, s := range series {
			points[i].Values[s.Key] = float64((i + 1) * (j + 2) * 10)
		}
	}
	return model.Chart{ID: "c", Title: "Sample", Kind: kind, Series: series, Points: points}
}

func TestChartSVG_Kinds(t *testing.T) {
	t.Parallel()

	one := model.SeriesDef{Key: "Revenue", Name: "Revenue", Color: "ffa502"}
	two := model.SeriesDef{Key: "Target", Name: "Target", Color: "42e9f5"}

	cases := map[string]model.Chart{
		"bar":        sampleChart(model.ChartKindBar, one),
		"line":       sampleChart(model.ChartKindLine, one),
		"multi-bar":  sampleChart(model.ChartKindBar, one, two),
		"single-bar": {ID: "s", Title: "One", Kind: model.ChartKindBar, Series: []model.SeriesDef{one}, Points: []model.Point{{Label: "x", Values: map[string]float64{"Revenue": 0}}}},
	}
	for name, c := range cases {
		var buf bytes.Buffer
		if err := ChartSVG(c, &buf); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Fatalf("%s: output is not svg", name)
		}
	}
}

var boxPath = regexp.MustCompile(`d="M (\d+) (\d+)\nL (\d+) (\d+)\nL (\d+) (\d+)\nL (\d+) (\d+)\nL (\d+) (\d+)"`)

type svgBox struct{ left, right, top, bottom int }

// barBoxes 取出 SVG 中宽度出现 n 次的矩形路径，按横坐标排序
func barBoxes(t *testing.T, svg string, n int) []svgBox {
	t.Helper()
	byWidth := map[int][]svgBox{}
	for _, m := range boxPath.FindAllStringSubmatch(svg, -1) {
		v := make([]int, 10)
		for i := range v {
			v[i], _ = strconv.Atoi(m[i+1])
		}
		// M l,t L r,t L r,b L l,b L l,t
		if v[3] != v[1] || v[4] != v[2] || v[7] != v[5] || v[6] != v[0] || v[8] != v[0] || v[9] != v[1] {
			continue
		}
		b := svgBox{left: v[0], right: v[2], top: v[1], bottom: v[5]}
		byWidth[b.right-b.left] = append(byWidth[b.right-b.left], b)
	}
	for _, boxes := range byWidth {
		if len(boxes) == n {
			sort.Slice(boxes, func(i, j int) bool { return boxes[i].left < boxes[j].left })
			return boxes
		}
	}
	t.Fatalf("no group of %d bars found in svg", n)
	return nil
}

func TestChartSVG_BarsStartAtZero(t *testing.T) {
	t.Parallel()

	c := model.Chart{
		ID:     "metric-change",
		Title:  "Real-time Metric Change",
		Kind:   model.ChartKindBar,
		Series: []model.SeriesDef{{Key: "Change", Name: "Change", Color: "42e9f5"}},
		Points: []model.Point{
			{Label: "A", Values: map[string]float64{"Change": 10}},
			{Label: "B", Values: map[string]float64{"Change": -10}},
			{Label: "C", Values: map[string]float64{"Change": 0}},
		},
	}
	var buf bytes.Buffer
	if err := ChartSVG(c, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	bars := barBoxes(t, buf.String(), 3)
	up, down, zero := bars[0], bars[1], bars[2]

	baseline := zero.top
	if zero.bottom != baseline {
		t.Fatalf("zero bar should have no height: %+v", zero)
	}
	if up.bottom != baseline || up.top >= baseline {
		t.Fatalf("positive bar should rise from the zero line %d: %+v", baseline, up)
	}
	if down.bottom != baseline || down.top <= baseline {
		t.Fatalf("negative bar should extend below the zero line %d: %+v", baseline, down)
	}
}

func TestChartSVG_Pie(t *testing.T) {
	t.Parallel()

	c := model.Chart{
		ID:     "customer-split",
		Title:  "Customer Split",
		Kind:   model.ChartKindPie,
		Series: []model.SeriesDef{{Key: "value", Name: "Customers", Color: "ff477e"}},
		Points: []model.Point{
			{Label: "New Customers", Values: map[string]float64{"value": 40}},
			{Label: "Returning Customers", Values: map[string]float64{"value": 60}},
		},
	}
	var buf bytes.Buffer
	if err := ChartSVG(c, &buf); err != nil {
		t.Fatalf("render pie: %v", err)
	}

	c.Points[0].Values["value"] = 0
	c.Points[1].Values["value"] = 0
	buf.Reset()
	if err := ChartSVG(c, &buf); !errors.Is(err, ErrNoValues) {
		t.Fatalf("expected ErrNoValues for all-zero pie, got %v", err)
	}
}

func TestChartSVG_NoPoints(t *testing.T) {
	t.Parallel()

	c := model.Chart{ID: "empty", Kind: model.ChartKindLine, Series: []model.SeriesDef{{Key: "a"}}}
	var buf bytes.Buffer
	if err := ChartSVG(c, &buf); !errors.Is(err, ErrNoValues) {
		t.Fatalf("expected ErrNoValues, got %v", err)
	}
}

func TestPage_States(t *testing.T) {
	t.Parallel()

	sources := []model.SheetSource{
		{Label: "Monthly Sales Data", Kind: model.SheetKindMonthlySales},
		{Label: "Goals & Targets", Kind: model.SheetKindGoals},
	}
	clock := time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

	render := func(state model.FetchState, errText string, s model.Summary) string {
		t.Helper()
		var buf bytes.Buffer
		if err := Page(&buf, NewPageData(sources, 1, state, errText, "", clock, s)); err != nil {
			t.Fatalf("page: %v", err)
		}
		return buf.String()
	}

	out := render(model.FetchStateLoading, "", model.Summary{})
	if !strings.Contains(out, "Loading...") || !strings.Contains(out, "HECOS") || !strings.Contains(out, "3:04:05 pm") {
		t.Fatalf("loading page missing content:\n%s", out)
	}
	if !strings.Contains(out, `<option value="1" selected>Goals &amp; Targets</option>`) {
		t.Fatalf("active option not selected:\n%s", out)
	}

	out = render(model.FetchStateFailed, "fetch failed: unexpected status 404", model.Summary{})
	if !strings.Contains(out, "Failed to load: fetch failed: unexpected status 404") || strings.Contains(out, "Loading...") {
		t.Fatalf("failed page should differ from loading:\n%s", out)
	}

	out = render(model.FetchStateReady, "", model.Summary{Empty: true, Message: model.NoDataMessage})
	if !strings.Contains(out, "No data") {
		t.Fatalf("empty page missing message")
	}

	progress := 80.0
	out = render(model.FetchStateReady, "", model.Summary{
		Sheet: 1,
		Cards: []model.Card{{Title: "Revenue", Value: "80/100", Tone: model.ToneWarning, Progress: &progress,
			Badge: &model.Badge{Text: "Behind", Tone: model.ToneNegative}, Notes: []string{"Deadline: Dec"}}},
		Charts: []model.Chart{{ID: "goal-achievement", Title: "Goal Achievement (%)"}},
	})
	for _, want := range []string{"80/100", "width: 80.0%", "tone-negative", "Deadline: Dec", "/api/sheets/1/charts/goal-achievement"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ready page missing %q:\n%s", want, out)
		}
	}
}

func TestWorkbookXLSX(t *testing.T) {
	t.Parallel()

	summary := model.Summary{
		Label: "Hourly Sales Today",
		Cards: []model.Card{{Title: "Total Sales", Value: "$15"}},
	}
	ds := model.DataSet{
		Columns: []string{"Hour", "Sales"},
		Rows: []model.Row{
			{"Hour": "09:00", "Sales": "10"},
			{"Hour": "10:00"},
		},
	}

	f, err := WorkbookXLSX(summary, ds)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != DataSheet {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	v, err := f.GetCellValue(SummarySheet, "B3")
	if err != nil || v != "$15" {
		t.Fatalf("unexpected summary value: %q err=%v", v, err)
	}
	rows, err := f.GetRows(DataSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "10" || rows[2][0] != "10:00" {
		t.Fatalf("unexpected data rows: %v", rows)
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	if got := ExportFilename("Daily Sales (Current Month)"); got != "hecos-daily-sales-current-month.xlsx" {
		t.Fatalf("unexpected filename: %s", got)
	}
	if got := ExportFilename("  "); got != "hecos-sheet.xlsx" {
		t.Fatalf("unexpected fallback filename: %s", got)
	}
}
