package ingest

import (
	"fmt"
	"strings"

	"hecos/internal/model"
)

// normalizeHeader 规范化表头：去 BOM、去空白、空列名补 Column_N、重名追加 _N
func normalizeHeader(raw []string) []string {
	columns := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

// buildRow 按表头组装一行；短行缺失的列不写入，多出的单元格丢弃
func buildRow(columns, record []string) model.Row {
	row := make(model.Row, len(columns))
	for i, col := range columns {
		if i >= len(record) {
			break
		}
		row[col] = record[i]
	}
	return row
}

// keepRow 首列为空或缺失的行视为空行
func keepRow(columns []string, row model.Row) bool {
	if len(columns) == 0 {
		return false
	}
	return row.Text(columns[0]) != ""
}

// tableFromRecords 将首行为表头的二维记录转换为 DataSet
func tableFromRecords(records [][]string) model.DataSet {
	if len(records) == 0 {
		return model.DataSet{Columns: []string{}, Rows: []model.Row{}}
	}
	columns := normalizeHeader(records[0])
	rows := make([]model.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := buildRow(columns, rec)
		if !keepRow(columns, row) {
			continue
		}
		rows = append(rows, row)
	}
	return model.DataSet{Columns: columns, Rows: rows}
}
