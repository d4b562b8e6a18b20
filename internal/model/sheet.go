package model

import (
	"strings"
	"time"
)

// SheetKind 数据表类型（决定使用哪种指标推导规则）
type SheetKind string

const (
	SheetKindMonthlySales       SheetKind = "monthly_sales"       // 月度销售
	SheetKindDailySales         SheetKind = "daily_sales"         // 当月每日销售
	SheetKindProductPerformance SheetKind = "product_performance" // 产品表现
	SheetKindRegionalSales      SheetKind = "regional_sales"      // 区域销售
	SheetKindLiveMetrics        SheetKind = "live_metrics"        // 实时指标
	SheetKindHourlySales        SheetKind = "hourly_sales"        // 今日分时销售
	SheetKindGoals              SheetKind = "goals"               // 目标与达成
)

// SheetSource 数据源目录项（启动时固定）
type SheetSource struct {
	Label string    `toml:"label" json:"label"`
	URL   string    `toml:"url" json:"url"`
	Kind  SheetKind `toml:"kind" json:"kind"`
}

// Row 一行数据：列名 -> 文本值；键不存在表示该值缺失
type Row map[string]string

// Get 返回原始值及是否存在
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Text 返回去除首尾空白后的值，缺失时为空串
func (r Row) Text(column string) string {
	return strings.TrimSpace(r[column])
}

// DataSet 单个数据表的全部行，每次拉取整体替换
type DataSet struct {
	Columns   []string  `json:"columns"`
	Rows      []Row     `json:"rows"`
	FetchedAt time.Time `json:"fetchedAt"`
	RequestID string    `json:"requestId"`
}

// Len 行数
func (d DataSet) Len() int {
	return len(d.Rows)
}

// Last 最后一行；数据为空时 ok=false
func (d DataSet) Last() (Row, bool) {
	if len(d.Rows) == 0 {
		return nil, false
	}
	return d.Rows[len(d.Rows)-1], true
}

// FetchState 数据表拉取状态
type FetchState string

const (
	FetchStateIdle    FetchState = "idle"
	FetchStateLoading FetchState = "loading"
	FetchStateReady   FetchState = "ready"
	FetchStateFailed  FetchState = "failed"
)
