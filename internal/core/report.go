package core

import (
	"fmt"
	"sort"
	"strconv"
)

type (
	// CategoryAmount is one row of the expense ranking.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// MonthTrend is one bucket of the fixed twelve-month trend table.
	MonthTrend struct {
		Month   string // YYYY-MM
		Income  Money
		Expense Money
	}

	// Report is the derived annual view.
	Report struct {
		Year          string
		TotalIncome   Money
		TotalExpense  Money
		Balance       Money
		TopCategories []CategoryAmount
		MonthlyTrends []MonthTrend
		Summary       string
	}
)

const (
	summaryNoData      = "该年度无足够数据生成摘要。"
	summaryTemplate    = "根据您的数据，%s年度您的总收入为 ¥%s，总支出为 ¥%s。主要支出集中在“%s”类别上。"
	unknownCategory    = "未知"
	topCategoriesLimit = 5
)

// AnnualReport derives the annual totals, the twelve-month trend table,
// the top-5 expense ranking and the templated summary for the given YYYY
// year. Records whose dates fall outside the twelve canonical month keys
// (malformed dates included) are skipped without error.
func AnnualReport(records []Record, year string) Report {
	rep := Report{Year: year}

	buckets := make(map[string]int, 12)
	rep.MonthlyTrends = make([]MonthTrend, 12)
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%s-%02d", year, m)
		buckets[key] = m - 1
		rep.MonthlyTrends[m-1] = MonthTrend{Month: key}
	}

	yearWindow := Year(year)
	var ranking []CategoryAmount
	rankIndex := make(map[string]int)

	for _, r := range records {
		if !yearWindow.Matches(r.Date) {
			continue
		}
		switch r.Type {
		case Income:
			rep.TotalIncome += r.Amount
		case Expense:
			rep.TotalExpense += r.Amount
		}
		if len(r.Date) < 7 {
			continue
		}
		idx, ok := buckets[r.Date[:7]]
		if !ok {
			continue
		}
		if r.Type == Income {
			rep.MonthlyTrends[idx].Income += r.Amount
		} else {
			rep.MonthlyTrends[idx].Expense += r.Amount
			i, seen := rankIndex[r.Category]
			if !seen {
				rankIndex[r.Category] = len(ranking)
				ranking = append(ranking, CategoryAmount{Name: r.Category})
				i = len(ranking) - 1
			}
			ranking[i].Amount += r.Amount
		}
	}

	// Stable sort keeps first-seen order among equal totals.
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Amount > ranking[j].Amount
	})
	rep.Balance = rep.TotalIncome - rep.TotalExpense
	rep.Summary = buildSummary(year, rep.TotalIncome, rep.TotalExpense, ranking)
	if len(ranking) > topCategoriesLimit {
		ranking = ranking[:topCategoriesLimit]
	}
	rep.TopCategories = ranking
	return rep
}

func buildSummary(year string, income, expense Money, ranking []CategoryAmount) string {
	if expense <= 0 {
		return summaryNoData
	}
	top := unknownCategory
	if len(ranking) > 0 {
		top = ranking[0].Name
	}
	return fmt.Sprintf(summaryTemplate, year, income.Grouped(), expense.Grouped(), top)
}

// AvailableYears lists the distinct four-character year prefixes present
// in the records, newest first. With no usable records it falls back to
// the given current year.
func AvailableYears(records []Record, currentYear int) []string {
	seen := make(map[string]bool)
	var years []string
	for _, r := range records {
		if len(r.Date) < 4 {
			continue
		}
		y := r.Date[:4]
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return []string{strconv.Itoa(currentYear)}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
