package metrics

import (
	"fmt"

	"hecos/internal/model"
)

// Deriver 从一个数据表的全部行推导卡片与图表（数据非空时才会被调用）
type Deriver func(ds model.DataSet) (cards []model.Card, charts []model.Chart)

// Registry 数据表类型 -> 推导规则
type Registry struct {
	derivers map[model.SheetKind]Deriver
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{derivers: make(map[model.SheetKind]Deriver)}
}

// DefaultRegistry 内置七类数据表的推导规则
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(model.SheetKindMonthlySales, deriveMonthlySales)
	r.Register(model.SheetKindDailySales, deriveDailySales)
	r.Register(model.SheetKindProductPerformance, deriveProductPerformance)
	r.Register(model.SheetKindRegionalSales, deriveRegionalSales)
	r.Register(model.SheetKindLiveMetrics, deriveLiveMetrics)
	r.Register(model.SheetKindHourlySales, deriveHourlySales)
	r.Register(model.SheetKindGoals, deriveGoals)
	return r
}

// Register 注册（或覆盖）一种数据表的推导规则
func (r *Registry) Register(kind model.SheetKind, d Deriver) {
	r.derivers[kind] = d
}

// Has 是否存在该类型的推导规则
func (r *Registry) Has(kind model.SheetKind) bool {
	_, ok := r.derivers[kind]
	return ok
}

// PlaceholderMessage 未接入推导规则的数据表提示语
func PlaceholderMessage(label string) string {
	return fmt.Sprintf("Integrate this section with analytics for %s", label)
}

// Derive 计算一个数据表的展示数据；任何输入都不会返回错误
func (r *Registry) Derive(index int, src model.SheetSource, ds model.DataSet) model.Summary {
	s := model.Summary{
		Sheet:  index,
		Label:  src.Label,
		Kind:   src.Kind,
		Cards:  []model.Card{},
		Charts: []model.Chart{},
	}

	d, ok := r.derivers[src.Kind]
	if !ok {
		s.Message = PlaceholderMessage(src.Label)
		return s
	}
	if len(ds.Rows) == 0 {
		s.Empty = true
		s.Message = model.NoDataMessage
		return s
	}

	cards, charts := d(ds)
	if cards != nil {
		s.Cards = cards
	}
	if charts != nil {
		s.Charts = charts
	}
	return s
}
