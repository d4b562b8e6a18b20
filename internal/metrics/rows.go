package metrics

import (
	"hecos/internal/model"
	"hecos/internal/util"
)

// 图表配色（十六进制，不带 #）
const (
	colorOrange = "ffa502"
	colorGreen  = "06ffa5"
	colorCyan   = "42e9f5"
	colorPink   = "ff477e"
)

// display 展示场景：缺失或空白显示占位符，否则原样显示
func display(row model.Row, col string) string {
	if v := row.Text(col); v != "" {
		return v
	}
	return model.Placeholder
}

// currency 展示场景的金额：非数值显示占位符
func currency(row model.Row, col string) string {
	f, ok := util.ParseNumber(row.Text(col))
	if !ok {
		return model.Placeholder
	}
	return util.FormatCurrency(f)
}

// percent 文本非空时追加 %
func percent(row model.Row, col string) string {
	return util.FormatPercent(row.Text(col))
}

// num 聚合/图表场景：非数值按 0
func num(row model.Row, col string) float64 {
	return util.NumberOrZero(row.Text(col))
}

// latest 最后一行为最新数据
func latest(rows []model.Row) (model.Row, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	return rows[len(rows)-1], true
}

// maxBy 取 col 数值最大的行；并列时保留最先出现的行
func maxBy(rows []model.Row, col string) (model.Row, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	best := rows[0]
	bestVal := num(best, col)
	for _, r := range rows[1:] {
		if v := num(r, col); v > bestVal {
			best, bestVal = r, v
		}
	}
	return best, true
}

// sum 对 col 求和，非数值按 0
func sum(rows []model.Row, col string) float64 {
	total := 0.0
	for _, r := range rows {
		total += num(r, col)
	}
	return total
}

// series 定义一条以 col 为数据列的序列
func series(col, name, color string) model.SeriesDef {
	return model.SeriesDef{Key: col, Name: name, Color: color}
}

// categoryChart 以 labelCol 为分类轴、每行一个点构造图表
func categoryChart(id, title string, kind model.ChartKind, rows []model.Row, labelCol string, defs ...model.SeriesDef) model.Chart {
	points := make([]model.Point, 0, len(rows))
	for _, r := range rows {
		values := make(map[string]float64, len(defs))
		for _, d := range defs {
			values[d.Key] = num(r, d.Key)
		}
		points = append(points, model.Point{Label: r.Text(labelCol), Values: values})
	}
	return model.Chart{
		ID:     id,
		Title:  title,
		Kind:   kind,
		Series: defs,
		Points: points,
	}
}

func card(title, value string) model.Card {
	return model.Card{Title: title, Value: value}
}
