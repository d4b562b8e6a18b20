package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hecos/internal/model"
)

// ParseXLSX 读取工作簿第一个工作表，表头与空行规则同 CSV
func ParseXLSX(r io.Reader) (model.DataSet, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: open xlsx: %w", ErrParse, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return tableFromRecords(nil), nil
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: read sheet %s: %w", ErrParse, sheets[0], err)
	}
	return tableFromRecords(rows), nil
}
