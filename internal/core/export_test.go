package core

import (
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	records := []Record{
		{ID: "id1", Type: Income, Category: "工资", Amount: 800000, Description: "五月", Date: "2024-05-01"},
		{ID: "id2", Type: Expense, Category: "餐饮", Amount: 3550, Description: "含, 逗号", Date: "2024-05-02"},
	}
	out, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, "\uFEFF") {
		t.Fatal("export must start with a UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d: %q", len(lines), s)
	}
	if lines[0] != "ID,类型,类别,金额,备注,日期" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "收入") || !strings.Contains(lines[1], "8000.00") {
		t.Fatalf("income row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "支出") || !strings.Contains(lines[2], `"含, 逗号"`) {
		t.Fatalf("comma-bearing description must be quoted: %q", lines[2])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	out, err := ExportCSV(nil)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if !strings.Contains(string(out), "ID,类型") {
		t.Fatalf("header missing: %q", out)
	}
}
