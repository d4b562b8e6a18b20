package util

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseNumber 解析表格中的数值文本
// 允许千分位逗号、前导 $ 与末尾 %；空串或无法解析时 ok=false
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	neg := false
	if strings.HasPrefix(s, "-$") {
		neg = true
		s = s[2:]
	} else {
		s = strings.TrimPrefix(s, "$")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// NumberOrZero 聚合/图表场景：缺失或非数值按 0 计
func NumberOrZero(s string) float64 {
	f, _ := ParseNumber(s)
	return f
}

// FormatNumber 千分位，最多保留 3 位小数（四舍五入），去掉末尾的 0
func FormatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "--"
	}
	// humanize 只截断小数位，先按 3 位四舍五入
	rounded := math.Round(value*1000) / 1000
	if rounded == 0 {
		// -0 会被格式化成 "-0"
		rounded = 0
	}
	return humanize.CommafWithDigits(rounded, 3)
}

// FormatCurrency 货币：$ 前缀 + 千分位
func FormatCurrency(value float64) string {
	return "$" + FormatNumber(value)
}

// FormatPercent 在原始文本后追加 %，文本为空时返回占位符
func FormatPercent(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "--"
	}
	return strings.TrimSpace(strings.TrimSuffix(text, "%")) + "%"
}
