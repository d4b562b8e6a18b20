package metrics

import (
	"hecos/internal/model"
	"hecos/internal/util"
)

// deriveProductPerformance 产品表现：本月销量最高的产品
func deriveProductPerformance(ds model.DataSet) ([]model.Card, []model.Chart) {
	top, _ := maxBy(ds.Rows, "UnitsSoldThisMonth")

	cards := []model.Card{
		card("Top Product", display(top, "ProductName")),
		card("Units Sold", display(top, "UnitsSoldThisMonth")),
		card("Revenue", currency(top, "RevenueThisMonth")),
		card("Profit Margin", percent(top, "ProfitMargin")),
		card("Rating", display(top, "Rating")),
		card("Reviews", display(top, "ReviewsCount")),
		card("In Stock", display(top, "StockLevel")),
	}

	charts := []model.Chart{
		categoryChart("units-by-product", "Units Sold by Product", model.ChartKindBar, ds.Rows, "ProductName",
			series("UnitsSoldThisMonth", "Units Sold", colorGreen)),
		categoryChart("revenue-by-product", "Revenue by Product", model.ChartKindBar, ds.Rows, "ProductName",
			series("RevenueThisMonth", "Revenue", colorOrange)),
	}
	return cards, charts
}

// regionalRows 只保留有区域名且本月营收为数值的行
func regionalRows(rows []model.Row) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.Text("Region") == "" {
			continue
		}
		if _, ok := util.ParseNumber(r.Text("RevenueThisMonth")); !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// deriveRegionalSales 区域销售：过滤后营收最高的区域；无有效行时卡片全部为占位符
func deriveRegionalSales(ds model.DataSet) ([]model.Card, []model.Chart) {
	filtered := regionalRows(ds.Rows)
	top, _ := maxBy(filtered, "RevenueThisMonth")

	cards := []model.Card{
		card("Top Region", display(top, "Region")),
		card("Revenue", currency(top, "RevenueThisMonth")),
		card("Orders", display(top, "Orders")),
		card("Customers", display(top, "Customers")),
		card("Growth Rate", percent(top, "GrowthRate")),
		card("Top Category", display(top, "TopProductCategory")),
		card("Market Share", percent(top, "MarketShare")),
	}

	charts := []model.Chart{
		categoryChart("revenue-by-region", "Revenue by Region", model.ChartKindBar, filtered, "Region",
			series("RevenueThisMonth", "Revenue", colorGreen)),
		categoryChart("orders-by-country", "Orders by Country", model.ChartKindBar, filtered, "Country",
			series("Orders", "Orders", colorOrange)),
		categoryChart("market-share", "Market Share (%) by Region", model.ChartKindBar, filtered, "Region",
			series("MarketShare", "Market Share", colorCyan)),
	}
	return cards, charts
}
