package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := core.Snapshot{
		Records: []core.Record{
			{ID: "a", Type: core.Expense, Category: "餐饮", Amount: 1250, Description: "午饭", Date: "2024-05-01"},
			{ID: "b", Type: core.Income, Category: "工资", Amount: 800000, Date: "2024-05-10"},
		},
		Categories: core.CategorySet{Expense: []string{"餐饮"}, Income: []string{"工资"}},
		Budgets:    core.BudgetMap{"餐饮": 50000},
		Settings:   core.Settings{KeepLastDate: true},
	}

	data, err := EncodeDocument(s)
	if err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}
	// Amounts are persisted as decimal yuan, not fen.
	if !strings.Contains(string(data), "12.5") {
		t.Fatalf("document should carry decimal amounts: %s", data)
	}

	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if len(got.Records) != 2 {
		t.Fatalf("records = %d", len(got.Records))
	}
	// Save order is date-descending.
	if got.Records[0].ID != "b" || got.Records[1].ID != "a" {
		t.Fatalf("records must be sorted newest first: %+v", got.Records)
	}
	if got.Records[1].Amount != 1250 {
		t.Fatalf("amount round-trip broken: %v", got.Records[1].Amount)
	}
	if got.Budgets["餐饮"] != 50000 || !got.Settings.KeepLastDate {
		t.Fatalf("snapshot round-trip broken: %+v", got)
	}
}

func TestDecodeDocumentRejectsMissingSections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no records", `{"categories":{"expense":[],"income":[]},"budgets":{}}`},
		{"no categories", `{"records":[],"budgets":{}}`},
		{"no budgets", `{"records":[],"categories":{"expense":[],"income":[]}}`},
	}
	for _, tc := range cases {
		if _, err := DecodeDocument([]byte(tc.doc)); !errors.Is(err, ErrMissingSection) {
			t.Fatalf("%s: err = %v, want ErrMissingSection", tc.name, err)
		}
	}

	if _, err := DecodeDocument([]byte(`not json`)); err == nil {
		t.Fatal("garbage must be rejected")
	}

	ok := `{"records":[],"categories":{"expense":[],"income":[]},"budgets":{}}`
	if _, err := DecodeDocument([]byte(ok)); err != nil {
		t.Fatalf("minimal document rejected: %v", err)
	}
}

func TestDefaultSnapshot(t *testing.T) {
	def := DefaultSnapshot()
	if len(def.Records) != 0 || len(def.Budgets) != 0 {
		t.Fatalf("default must be empty: %+v", def)
	}
	if len(def.Categories.Expense) == 0 || len(def.Categories.Income) == 0 {
		t.Fatal("default must carry the stock category lists")
	}
	if def.Categories.Expense[0] != "餐饮" || def.Categories.Income[0] != "工资" {
		t.Fatalf("stock categories changed: %+v", def.Categories)
	}
}
