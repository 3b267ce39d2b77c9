package core

import (
	"fmt"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "1", Type: Income, Category: "工资", Amount: 800000, Date: "2024-05-01"},
		{ID: "2", Type: Expense, Category: "餐饮", Amount: 3500, Date: "2024-05-01"},
		{ID: "3", Type: Expense, Category: "交通", Amount: 1200, Date: "2024-05-02"},
		{ID: "4", Type: Expense, Category: "餐饮", Amount: 4800, Date: "2024-06-15"},
		{ID: "5", Type: Income, Category: "兼职", Amount: 50000, Date: "2023-12-31"},
	}
}

func TestAggregateWindows(t *testing.T) {
	records := sampleRecords()
	cases := []struct {
		name string
		w    Window
		want Totals
	}{
		{"day", Day("2024-05-01"), Totals{Income: 800000, Expense: 3500}},
		{"month", Month("2024-05"), Totals{Income: 800000, Expense: 4700}},
		{"year", Year("2024"), Totals{Income: 800000, Expense: 9500}},
		{"other year", Year("2023"), Totals{Income: 50000}},
		{"no match", Day("2020-01-01"), Totals{}},
	}
	for _, tc := range cases {
		if got := Aggregate(records, tc.w); got != tc.want {
			t.Fatalf("%s: Aggregate() = %+v, want %+v", tc.name, got, tc.want)
		}
	}

	if got := Aggregate(nil, Year("2024")); got != (Totals{}) {
		t.Fatalf("empty records: got %+v", got)
	}
}

func TestAggregateSkipsMalformedDates(t *testing.T) {
	records := []Record{
		{ID: "1", Type: Expense, Category: "餐饮", Amount: 100, Date: "2024-05-01"},
		{ID: "2", Type: Expense, Category: "餐饮", Amount: 100, Date: "not-a-date"},
		{ID: "3", Type: Expense, Category: "餐饮", Amount: 100, Date: ""},
	}
	if got := Aggregate(records, Month("2024-05")).Expense; got != 100 {
		t.Fatalf("malformed dates must not match: got %v", got)
	}
	if got := Aggregate(records, Year("2024")).Expense; got != 100 {
		t.Fatalf("malformed dates must not match year: got %v", got)
	}
}

// Disjoint month windows covering a year must add up to the year window.
func TestAggregateAdditivity(t *testing.T) {
	records := sampleRecords()
	year := Aggregate(records, Year("2024"))

	var sum Totals
	for m := 1; m <= 12; m++ {
		part := Aggregate(records, Month(fmt.Sprintf("2024-%02d", m)))
		sum.Income += part.Income
		sum.Expense += part.Expense
	}
	if sum != year {
		t.Fatalf("months sum %+v != year %+v", sum, year)
	}
}

func TestBudgetProgress(t *testing.T) {
	records := []Record{
		{ID: "1", Type: Expense, Category: "餐饮", Amount: 12000, Date: "2024-05-10"},
		{ID: "2", Type: Expense, Category: "交通", Amount: 3000, Date: "2024-05-11"},
		{ID: "3", Type: Income, Category: "工资", Amount: 99999, Date: "2024-05-11"},
		{ID: "4", Type: Expense, Category: "餐饮", Amount: 5000, Date: "2024-04-30"}, // other month
	}
	budgets := BudgetMap{"餐饮": 10000, "交通": 10000, "购物": 0}

	progress := BudgetProgress(records, budgets, "2024-05")
	if len(progress) != 2 {
		t.Fatalf("zero-budget category must be omitted: %v", progress)
	}

	food := progress["餐饮"]
	if food.Spent != 12000 || food.Budget != 10000 {
		t.Fatalf("food = %+v", food)
	}
	if food.ProgressPct != 100 {
		t.Fatalf("progress must cap at 100, got %v", food.ProgressPct)
	}
	if !food.Overspent {
		t.Fatal("overspend must be flagged from the uncapped ratio")
	}

	transit := progress["交通"]
	if transit.ProgressPct != 30 || transit.Overspent {
		t.Fatalf("transit = %+v", transit)
	}
}

func TestOverallProgress(t *testing.T) {
	records := []Record{
		{ID: "1", Type: Expense, Category: "餐饮", Amount: 5000, Date: "2024-05-10"},
	}

	pct, total := OverallProgress(records, BudgetMap{"餐饮": 10000}, "2024-05")
	if pct != 50 || total != 10000 {
		t.Fatalf("got pct=%v total=%v", pct, total)
	}

	// Zero total budget must yield zero, never divide.
	pct, total = OverallProgress(records, BudgetMap{}, "2024-05")
	if pct != 0 || total != 0 {
		t.Fatalf("zero budget: got pct=%v total=%v", pct, total)
	}
}
