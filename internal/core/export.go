package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// csvHeader is the fixed export column order. The type column carries the
// localized label, not the enum value.
var csvHeader = []string{"ID", "类型", "类别", "金额", "备注", "日期"}

// ExportCSV renders the records as UTF-8 CSV with a BOM so spreadsheet
// applications pick the encoding up correctly.
func ExportCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Type.Label(),
			r.Category,
			r.Amount.String(),
			r.Description,
			r.Date,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
