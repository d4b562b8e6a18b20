package model

// Tone 卡片/徽标的颜色语义
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneWarning  Tone = "warning"
)

// Placeholder 仅用于展示场景的缺失值占位符
const Placeholder = "--"

// NoDataMessage 数据为空时的提示
const NoDataMessage = "No data"

// Badge 卡片上的状态徽标（涨跌幅、目标状态等）
type Badge struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Card 指标卡片
type Card struct {
	Title    string   `json:"title"`
	Value    string   `json:"value"`
	Badge    *Badge   `json:"badge,omitempty"`
	Tone     Tone     `json:"tone,omitempty"`
	Progress *float64 `json:"progress,omitempty"` // 0-100，仅目标类卡片
	Notes    []string `json:"notes,omitempty"`
}

// ChartKind 图表类型
type ChartKind string

const (
	ChartKindLine ChartKind = "line"
	ChartKindBar  ChartKind = "bar"
	ChartKindPie  ChartKind = "pie"
)

// SeriesDef 图表中的一条数据序列
type SeriesDef struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"` // 十六进制，不带 #
}

// Point 分类轴上的一个点（月份/日期/产品/小时…）
type Point struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
}

// Chart 图表数据
type Chart struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Kind   ChartKind   `json:"kind"`
	Series []SeriesDef `json:"series"`
	Points []Point     `json:"points"`
}

// Summary 单个数据表推导出的展示数据，每次渲染重新计算
type Summary struct {
	Sheet   int       `json:"sheet"`
	Label   string    `json:"label"`
	Kind    SheetKind `json:"kind"`
	Empty   bool      `json:"empty"`
	Message string    `json:"message,omitempty"`
	Cards   []Card    `json:"cards"`
	Charts  []Chart   `json:"charts"`
}

// FindChart 按 ID 查找图表
func (s Summary) FindChart(id string) (Chart, bool) {
	for _, c := range s.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}
