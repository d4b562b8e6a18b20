package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"hecos/internal/model"
)

// ParseCSV 解析 CSV：首行为表头，允许行长度不一致，引号不合法时返回 ErrParse
func ParseCSV(r io.Reader) (model.DataSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.DataSet{}, fmt.Errorf("%w: csv: %w", ErrParse, err)
		}
		records = append(records, rec)
	}

	return tableFromRecords(records), nil
}
