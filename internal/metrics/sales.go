package metrics

import (
	"hecos/internal/model"
	"hecos/internal/util"
)

// deriveMonthlySales 月度销售：卡片取最新月份
func deriveMonthlySales(ds model.DataSet) ([]model.Card, []model.Chart) {
	last, _ := latest(ds.Rows)

	cards := []model.Card{
		card("Revenue", currency(last, "Revenue")),
		card("Orders", display(last, "Orders")),
		card("Total Units Sold", display(last, "TotalUnitsSold")),
		card("New Customers", display(last, "NewCustomers")),
		card("Returning Customers", display(last, "ReturningCustomers")),
		card("Avg. Order Value", currency(last, "AverageOrderValue")),
	}

	split := model.Chart{
		ID:     "customer-split",
		Title:  "Customer Split (Latest Month)",
		Kind:   model.ChartKindPie,
		Series: []model.SeriesDef{series("value", "Customers", colorPink)},
		Points: []model.Point{
			{Label: "New Customers", Values: map[string]float64{"value": num(last, "NewCustomers")}},
			{Label: "Returning Customers", Values: map[string]float64{"value": num(last, "ReturningCustomers")}},
		},
	}

	charts := []model.Chart{
		categoryChart("revenue-trend", "Revenue Trend (Monthly)", model.ChartKindLine, ds.Rows, "Month",
			series("Revenue", "Revenue", colorOrange)),
		split,
		categoryChart("units-sold", "Units Sold (Monthly)", model.ChartKindBar, ds.Rows, "Month",
			series("TotalUnitsSold", "Total Units Sold", colorGreen)),
	}
	return cards, charts
}

// deriveDailySales 当月每日销售：卡片取最后一天
func deriveDailySales(ds model.DataSet) ([]model.Card, []model.Chart) {
	today, _ := latest(ds.Rows)

	// 缺失的营收按 0 显示，非数值仍显示占位符
	revenue := util.FormatCurrency(0)
	if today.Text("Revenue") != "" {
		revenue = currency(today, "Revenue")
	}

	cards := []model.Card{
		card("Today's Revenue", revenue),
		card("Orders", display(today, "Orders")),
		card("Visitors", display(today, "Visitors")),
		card("Conversion Rate", percent(today, "ConversionRate")),
		card("Top Product", display(today, "TopProduct")),
		card("Units Sold Today", display(today, "UnitsSoldToday")),
	}

	charts := []model.Chart{
		categoryChart("revenue-trend", "Revenue Trend (Daily)", model.ChartKindLine, ds.Rows, "Date",
			series("Revenue", "Revenue", colorGreen)),
		categoryChart("orders-per-day", "Orders Per Day", model.ChartKindBar, ds.Rows, "Date",
			series("Orders", "Orders", colorOrange)),
	}
	return cards, charts
}

// deriveHourlySales 今日分时：全天合计 + 销售额最高的小时
func deriveHourlySales(ds model.DataSet) ([]model.Card, []model.Chart) {
	peak, _ := maxBy(ds.Rows, "Sales")

	cards := []model.Card{
		card("Total Sales", util.FormatCurrency(sum(ds.Rows, "Sales"))),
		card("Total Orders", util.FormatNumber(sum(ds.Rows, "Orders"))),
		card("Total Visitors", util.FormatNumber(sum(ds.Rows, "Visitors"))),
		card("Top Product (Peak Hour)", display(peak, "TopProductSold")),
	}

	charts := []model.Chart{
		categoryChart("sales-by-hour", "Sales by Hour", model.ChartKindBar, ds.Rows, "Hour",
			series("Sales", "Sales", colorGreen)),
		categoryChart("orders-by-hour", "Orders by Hour", model.ChartKindBar, ds.Rows, "Hour",
			series("Orders", "Orders", colorOrange)),
		categoryChart("visitors-by-hour", "Visitors by Hour", model.ChartKindLine, ds.Rows, "Hour",
			series("Visitors", "Visitors", colorCyan)),
	}
	return cards, charts
}
