package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"hecos/internal/model"
	"hecos/internal/util"
)

// 导出工作簿的工作表名
const (
	SummarySheet = "Summary"
	DataSheet    = "Data"
)

// WorkbookXLSX 导出当前数据表：Summary 为指标卡片，Data 为原始行
// 调用方负责 Close 返回的工作簿
func WorkbookXLSX(summary model.Summary, ds model.DataSet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(DataSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create data sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, summary, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeDataSheet(f, ds, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, summary model.Summary, headerStyle int) error {
	sheet := SummarySheet
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{summary.Label}); err != nil {
		return fmt.Errorf("write summary title: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"Metric", "Value", "Status", "Notes"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	_ = f.SetRowStyle(sheet, 2, 2, headerStyle)

	row := 3
	if summary.Message != "" {
		if err := f.SetCellValue(sheet, "A3", summary.Message); err != nil {
			return fmt.Errorf("write summary message: %w", err)
		}
		row++
	}
	for _, c := range summary.Cards {
		status := ""
		if c.Badge != nil {
			status = c.Badge.Text
		}
		if c.Progress != nil {
			status = strings.TrimSpace(status + " " + util.FormatNumber(*c.Progress) + "%")
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		vals := []interface{}{c.Title, c.Value, status, strings.Join(c.Notes, "; ")}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write summary row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	return nil
}

// writeDataSheet 原样写出行数据；能解析为数值的单元格写成数字
func writeDataSheet(f *excelize.File, ds model.DataSet, headerStyle int) error {
	sheet := DataSheet
	if len(ds.Columns) == 0 {
		return nil
	}

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write data header: %w", err)
	}
	_ = f.SetRowStyle(sheet, 1, 1, headerStyle)

	for i, r := range ds.Rows {
		vals := make([]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			text, ok := r.Get(col)
			if !ok {
				vals[j] = nil
				continue
			}
			if n, isNum := util.ParseNumber(text); isNum && !strings.ContainsAny(text, "$%,") {
				vals[j] = n
			} else {
				vals[j] = text
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write data row %d: %w", i+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(ds.Columns))
	_ = f.SetColWidth(sheet, "A", last, 16)
	return nil
}

// ExportFilename 下载文件名：hecos-<label>.xlsx
func ExportFilename(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if s := b.String(); s != "" && !strings.HasSuffix(s, "-") {
				b.WriteByte('-')
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "sheet"
	}
	return "hecos-" + name + ".xlsx"
}
