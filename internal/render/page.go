package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"hecos/internal/model"
)

//go:embed templates/index.html
var templateFS embed.FS

// Brand 顶栏品牌名
const Brand = "HECOS"

// ClockLayout 顶栏时钟格式，形如 3:04:05 pm
const ClockLayout = "3:04:05 pm"

var pageFuncs = template.FuncMap{
	"chartURL": func(sheet int, id string) string {
		return fmt.Sprintf("/api/sheets/%d/charts/%s", sheet, id)
	},
	"progress": func(p *float64) string {
		if p == nil {
			return "0"
		}
		return fmt.Sprintf("%.1f", *p)
	},
	"toneClass": func(t model.Tone) string {
		if t == "" {
			return "tone-neutral"
		}
		return "tone-" + string(t)
	},
}

var pageTemplate = template.Must(
	template.New("index.html").Funcs(pageFuncs).ParseFS(templateFS, "templates/index.html"),
)

// SheetOption 下拉框选项
type SheetOption struct {
	Index    int
	Label    string
	Selected bool
}

// PageData 看板页面数据
type PageData struct {
	Brand     string
	Sheets    []SheetOption
	Active    int
	Title     string
	State     model.FetchState
	Error     string
	RequestID string
	Clock     string
	Summary   model.Summary
}

// FormatClock 顶栏时钟文本
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// NewPageData 根据目录与当前状态组装页面数据
func NewPageData(sources []model.SheetSource, active int, state model.FetchState, errText, requestID string, clock time.Time, summary model.Summary) PageData {
	opts := make([]SheetOption, 0, len(sources))
	title := ""
	for i, s := range sources {
		opts = append(opts, SheetOption{Index: i, Label: s.Label, Selected: i == active})
		if i == active {
			title = s.Label
		}
	}
	return PageData{
		Brand:     Brand,
		Sheets:    opts,
		Active:    active,
		Title:     title,
		State:     state,
		Error:     errText,
		RequestID: requestID,
		Clock:     FormatClock(clock),
		Summary:   summary,
	}
}

// Page 渲染看板页面
func Page(w io.Writer, data PageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
