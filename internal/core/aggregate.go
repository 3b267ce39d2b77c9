package core

import "sort"

// Window selects records by date. A day window matches the exact date
// string; month and year windows match by string prefix, which is what
// makes malformed dates harmless: they simply never match.
type Window struct {
	match  string
	prefix bool
}

// Day returns a window matching exactly the given YYYY-MM-DD date.
func Day(date string) Window { return Window{match: date} }

// Month returns a window matching every date in the given YYYY-MM month.
func Month(month string) Window { return Window{match: month, prefix: true} }

// Year returns a window matching every date in the given YYYY year.
func Year(year string) Window { return Window{match: year, prefix: true} }

// Matches reports whether the window selects the given date string.
func (w Window) Matches(date string) bool {
	if w.prefix {
		return len(date) >= len(w.match) && date[:len(w.match)] == w.match
	}
	return date == w.match
}

// Totals is the income/expense sum over a window.
type Totals struct {
	Income  Money
	Expense Money
}

// Balance returns income minus expense.
func (t Totals) Balance() Money { return t.Income - t.Expense }

// Aggregate sums record amounts within the window, split by type. An empty
// records slice yields zero totals.
func Aggregate(records []Record, w Window) Totals {
	var t Totals
	for _, r := range records {
		if !w.Matches(r.Date) {
			continue
		}
		switch r.Type {
		case Income:
			t.Income += r.Amount
		case Expense:
			t.Expense += r.Amount
		}
	}
	return t
}

// CategoryProgress is the budget-vs-spend state of one category.
type CategoryProgress struct {
	Spent  Money
	Budget Money
	// ProgressPct is capped at 100 for display; Overspent is computed
	// from the uncapped ratio so overspend is still flagged when the bar
	// shows full.
	ProgressPct float64
	Overspent   bool
}

// BudgetProgress computes per-category progress for the given YYYY-MM
// month. Categories without a positive budget are omitted entirely rather
// than shown with a zero budget.
func BudgetProgress(records []Record, budgets BudgetMap, month string) map[string]CategoryProgress {
	spentByCategory := expenseByCategory(records, Month(month))

	out := make(map[string]CategoryProgress)
	for category, budget := range budgets.Normalize() {
		spent := spentByCategory[category]
		pct := float64(spent) / float64(budget) * 100
		out[category] = CategoryProgress{
			Spent:       spent,
			Budget:      budget,
			ProgressPct: min(pct, 100),
			Overspent:   spent > budget,
		}
	}
	return out
}

// OverallProgress returns the capped month-expense-vs-total-budget
// percentage and the total tracked budget. A zero total budget yields 0;
// the division guard is part of the contract, not incidental.
func OverallProgress(records []Record, budgets BudgetMap, month string) (float64, Money) {
	total := budgets.Normalize().Total()
	if total <= 0 {
		return 0, 0
	}
	expense := Aggregate(records, Month(month)).Expense
	return min(float64(expense)/float64(total)*100, 100), total
}

// SortedCategories returns the progress map's keys in ascending name
// order, for stable display.
func SortedCategories(progress map[string]CategoryProgress) []string {
	names := make([]string, 0, len(progress))
	for name := range progress {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expenseByCategory(records []Record, w Window) map[string]Money {
	out := make(map[string]Money)
	for _, r := range records {
		if r.Type == Expense && w.Matches(r.Date) {
			out[r.Category] += r.Amount
		}
	}
	return out
}
