package metrics

import (
	"math"
	"strings"

	"hecos/internal/model"
	"hecos/internal/util"
)

// changeBadge 涨跌幅徽标：正数加 +，缺失显示占位符
func changeBadge(row model.Row) *model.Badge {
	text := row.Text("ChangePercentage")
	if text == "" {
		return &model.Badge{Text: model.Placeholder, Tone: model.ToneNeutral}
	}

	v, ok := util.ParseNumber(text)
	tone := model.ToneNeutral
	switch {
	case ok && v > 0:
		tone = model.TonePositive
		if !strings.HasPrefix(text, "+") {
			text = "+" + text
		}
	case ok && v < 0:
		tone = model.ToneNegative
	}
	return &model.Badge{Text: util.FormatPercent(text), Tone: tone}
}

// deriveLiveMetrics 实时指标：每行一张卡片
func deriveLiveMetrics(ds model.DataSet) ([]model.Card, []model.Chart) {
	cards := make([]model.Card, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		badge := changeBadge(r)
		cards = append(cards, model.Card{
			Title: display(r, "MetricName"),
			Value: display(r, "CurrentValue"),
			Badge: badge,
			Tone:  badge.Tone,
			Notes: []string{
				"Target: " + display(r, "TargetValue"),
				"Last updated: " + display(r, "LastUpdated"),
			},
		})
	}

	charts := []model.Chart{
		categoryChart("metric-change", "Real-time Metric Change", model.ChartKindBar, ds.Rows, "MetricName",
			series("ChangePercentage", "Change (%)", colorGreen)),
		categoryChart("metric-vs-target", "Metric vs Target", model.ChartKindBar, ds.Rows, "MetricName",
			series("CurrentValue", "Now", colorOrange),
			series("TargetValue", "Target", colorCyan)),
	}
	return cards, charts
}

// goalProgress 进度条宽度：达成率截断到 [0, 100]，非数值为 0
func goalProgress(row model.Row) float64 {
	v, ok := util.ParseNumber(row.Text("AchievementPercentage"))
	if !ok {
		return 0
	}
	return math.Max(0, math.Min(v, 100))
}

// goalTone 达成率 >= 100（含）为达标
func goalTone(row model.Row) model.Tone {
	v, ok := util.ParseNumber(row.Text("AchievementPercentage"))
	if ok && v >= 100 {
		return model.TonePositive
	}
	return model.ToneWarning
}

// statusBadge 状态文本决定颜色：excellent 绿、behind 红、其余中性
func statusBadge(row model.Row) *model.Badge {
	status := row.Text("Status")
	if status == "" {
		return &model.Badge{Text: model.Placeholder, Tone: model.ToneNeutral}
	}
	lower := strings.ToLower(status)
	tone := model.ToneNeutral
	switch {
	case strings.Contains(lower, "excellent"):
		tone = model.TonePositive
	case strings.Contains(lower, "behind"):
		tone = model.ToneNegative
	}
	return &model.Badge{Text: status, Tone: tone}
}

// deriveGoals 目标与达成：每个目标一张带进度条的卡片
func deriveGoals(ds model.DataSet) ([]model.Card, []model.Chart) {
	cards := make([]model.Card, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		progress := goalProgress(r)
		cards = append(cards, model.Card{
			Title:    display(r, "GoalType"),
			Value:    display(r, "CurrentValue") + "/" + display(r, "TargetValue"),
			Badge:    statusBadge(r),
			Tone:     goalTone(r),
			Progress: &progress,
			Notes:    []string{"Deadline: " + display(r, "Deadline")},
		})
	}

	charts := []model.Chart{
		categoryChart("goal-achievement", "Goal Achievement (%)", model.ChartKindBar, ds.Rows, "GoalType",
			series("AchievementPercentage", "Achieved (%)", colorCyan)),
	}
	return cards, charts
}
