package core

import (
	"testing"
)

func TestMergeForDay(t *testing.T) {
	records := []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1000, Date: "2024-05-01"},
		{ID: "b", Type: Expense, Category: "餐饮", Amount: 500, Description: "午饭", Date: "2024-05-01"},
		{ID: "c", Type: Expense, Category: "交通", Amount: 300, Date: "2024-05-01"},
		{ID: "d", Type: Income, Category: "餐饮", Amount: 700, Date: "2024-05-01"}, // same category, other type
		{ID: "e", Type: Expense, Category: "餐饮", Amount: 999, Date: "2024-05-02"},
	}

	merged := MergeForDay(records, "2024-05-01")
	if len(merged) != 3 {
		t.Fatalf("want 3 groups, got %d: %+v", len(merged), merged)
	}

	food := merged[0]
	if food.ID != "a" {
		t.Fatalf("group id must be the first record in source order, got %q", food.ID)
	}
	if food.Amount != 1500 || food.Count != 2 {
		t.Fatalf("food group = %+v", food)
	}
	if food.Description != "午饭" {
		t.Fatalf("empty descriptions must be dropped, got %q", food.Description)
	}

	if merged[1].Category != "交通" || merged[2].Type != Income {
		t.Fatalf("group order must follow source order: %+v", merged)
	}
}

func TestMergeForDayDescriptions(t *testing.T) {
	records := []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1, Description: " 早饭 ", Date: "2024-05-01"},
		{ID: "b", Type: Expense, Category: "餐饮", Amount: 1, Description: "午饭", Date: "2024-05-01"},
		{ID: "c", Type: Expense, Category: "餐饮", Amount: 1, Description: "早饭", Date: "2024-05-01"}, // duplicate after trim
		{ID: "d", Type: Expense, Category: "餐饮", Amount: 1, Description: "", Date: "2024-05-01"},
	}
	merged := MergeForDay(records, "2024-05-01")
	if len(merged) != 1 {
		t.Fatalf("want 1 group, got %d", len(merged))
	}
	if merged[0].Description != "早饭, 午饭" {
		t.Fatalf("description join = %q", merged[0].Description)
	}
	if merged[0].Count != 4 {
		t.Fatalf("count = %d", merged[0].Count)
	}
}

// Re-merging merged output yields the same grouping.
func TestMergeForDayIdempotent(t *testing.T) {
	records := []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1000, Date: "2024-05-01"},
		{ID: "b", Type: Expense, Category: "餐饮", Amount: 500, Description: "午饭", Date: "2024-05-01"},
		{ID: "c", Type: Income, Category: "工资", Amount: 9000, Date: "2024-05-01"},
	}
	first := MergeForDay(records, "2024-05-01")

	again := make([]Record, 0, len(first))
	for _, m := range first {
		again = append(again, Record{
			ID: m.ID, Type: m.Type, Category: m.Category,
			Amount: m.Amount, Description: m.Description, Date: m.Date,
		})
	}
	second := MergeForDay(again, "2024-05-01")

	if len(second) != len(first) {
		t.Fatalf("group count changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if second[i].ID != first[i].ID || second[i].Amount != first[i].Amount ||
			second[i].Description != first[i].Description {
			t.Fatalf("group %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestApplyAdd(t *testing.T) {
	s := Snapshot{}
	out, err := ApplyAdd(s, Record{Type: Expense, Category: " 餐饮 ", Amount: 100, Description: " x "})
	if err != nil {
		t.Fatalf("ApplyAdd: %v", err)
	}
	if len(s.Records) != 0 {
		t.Fatal("input snapshot mutated")
	}
	if len(out.Records) != 1 {
		t.Fatalf("records = %d", len(out.Records))
	}
	r := out.Records[0]
	if r.ID == "" {
		t.Fatal("id must be assigned")
	}
	if r.Category != "餐饮" || r.Description != "x" {
		t.Fatalf("fields must be trimmed: %+v", r)
	}
	if r.Date != Today() {
		t.Fatalf("empty date must default to today, got %q", r.Date)
	}

	if _, err := ApplyAdd(s, Record{Type: Expense, Category: "餐饮", Amount: 0}); err == nil {
		t.Fatal("zero amount must be rejected")
	}
	if _, err := ApplyAdd(s, Record{Type: "x", Category: "餐饮", Amount: 1}); err == nil {
		t.Fatal("bad type must be rejected")
	}
}

func TestApplyEditCollapsesGroup(t *testing.T) {
	s := Snapshot{Records: []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1000, Date: "2024-05-01"},
		{ID: "b", Type: Expense, Category: "餐饮", Amount: 500, Date: "2024-05-01"},
		{ID: "c", Type: Expense, Category: "交通", Amount: 300, Date: "2024-05-01"},
	}}

	out, err := ApplyEdit(s, "b", RecordChanges{
		Type: Expense, Category: "餐饮", Amount: 2000, Description: "改", Date: "2024-05-03",
	})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("whole group must collapse into one record: %+v", out.Records)
	}
	if _, found := out.FindRecord("a"); found {
		t.Fatal("sibling of edited record must be removed")
	}
	if _, found := out.FindRecord("b"); found {
		t.Fatal("edited record keeps its old id")
	}

	var edited Record
	for _, r := range out.Records {
		if r.Category == "餐饮" {
			edited = r
		}
	}
	if edited.ID == "" || edited.ID == "a" || edited.ID == "b" {
		t.Fatalf("replacement must carry a fresh id, got %q", edited.ID)
	}
	if edited.Amount != 2000 || edited.Date != "2024-05-03" || edited.Description != "改" {
		t.Fatalf("replacement = %+v", edited)
	}
	if len(s.Records) != 3 {
		t.Fatal("input snapshot mutated")
	}
}

func TestApplyEditSoloRecord(t *testing.T) {
	s := Snapshot{Records: []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1000, Description: "old", Date: "2024-05-01"},
	}}
	out, err := ApplyEdit(s, "a", RecordChanges{
		Type: Expense, Category: "餐饮", Amount: 1000, Description: "new", Date: "2024-05-01",
	})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if len(out.Records) != 1 {
		t.Fatalf("solo edit must not duplicate: %+v", out.Records)
	}
	r := out.Records[0]
	if r.Amount != 1000 || r.Type != Expense || r.Category != "餐饮" || r.Date != "2024-05-01" {
		t.Fatalf("unchanged fields must survive: %+v", r)
	}
	if r.Description != "new" {
		t.Fatalf("description = %q", r.Description)
	}
}

func TestApplyEditNotFound(t *testing.T) {
	s := Snapshot{Records: []Record{{ID: "a", Type: Expense, Category: "餐饮", Amount: 1, Date: "2024-05-01"}}}
	out, err := ApplyEdit(s, "missing", RecordChanges{Type: Expense, Category: "餐饮", Amount: 1, Date: "2024-05-01"})
	if err != ErrRecordNotFound {
		t.Fatalf("err = %v", err)
	}
	if len(out.Records) != 1 || out.Records[0].ID != "a" {
		t.Fatal("snapshot must be unchanged on not-found")
	}
}

func TestApplyDeleteRemovesWholeGroup(t *testing.T) {
	s := Snapshot{Records: []Record{
		{ID: "a", Type: Expense, Category: "餐饮", Amount: 1000, Date: "2024-05-01"},
		{ID: "b", Type: Expense, Category: "餐饮", Amount: 500, Date: "2024-05-01"},
		{ID: "c", Type: Expense, Category: "餐饮", Amount: 250, Date: "2024-05-01"},
		{ID: "d", Type: Expense, Category: "交通", Amount: 300, Date: "2024-05-01"},
		{ID: "e", Type: Expense, Category: "餐饮", Amount: 700, Date: "2024-05-02"},
	}}

	out, err := ApplyDelete(s, "b")
	if err != nil {
		t.Fatalf("ApplyDelete: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("exactly the 3-record group must go: %+v", out.Records)
	}
	if _, found := out.FindRecord("d"); !found {
		t.Fatal("other category on same day must survive")
	}
	if _, found := out.FindRecord("e"); !found {
		t.Fatal("same category on other day must survive")
	}

	if _, err := ApplyDelete(s, "missing"); err != ErrRecordNotFound {
		t.Fatalf("err = %v", err)
	}
}
