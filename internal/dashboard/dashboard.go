// Package dashboard derives the dashboard figures from raw records.
// Every function here is pure: no I/O, inputs are never modified.
package dashboard

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"time"

	"calcula/internal/core"
)

// AnchorLabel labels the zero point that opens every balance series.
const AnchorLabel = "00/00"

type (
	Totals struct {
		Income  core.Money
		Expense core.Money
		Balance core.Money
	}

	PiePoint struct {
		CategoryID string
		Name       string
		Value      core.Money
	}

	BalancePoint struct {
		Label   string // "DD/MM"
		Balance core.Money
	}

	// View is everything the dashboard renders for one filter.
	View struct {
		Filter       core.Filter
		Transactions []core.Transaction
		Totals       Totals
		ByCategory   map[string]core.Money
		Pie          []PiePoint
		Balance      []BalancePoint
		Months       []string
		Budgets      []BudgetStatus
		Unbudgeted   []core.Category
	}
)

// FilterTransactions returns the transactions matching f, in input order.
func FilterTransactions(all []core.Transaction, f core.Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func ComputeTotals(txs []core.Transaction) Totals {
	var tot Totals
	for _, t := range txs {
		switch t.Kind {
		case core.KindIncome:
			tot.Income = tot.Income.Add(t.Amount)
		case core.KindExpense:
			tot.Expense = tot.Expense.Add(t.Amount)
		}
	}
	tot.Balance = tot.Income.Sub(tot.Expense)
	return tot
}

// ExpensesByCategory sums expense amounts per category ID.
func ExpensesByCategory(txs []core.Transaction) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, t := range txs {
		if t.Kind != core.KindExpense {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// PieSeries turns the per-category expenses into named chart points,
// largest first. Unknown category IDs are shown by ID.
func PieSeries(byCategory map[string]core.Money, categories []core.Category) []PiePoint {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]PiePoint, 0, len(byCategory))
	for id, v := range byCategory {
		name, ok := names[id]
		if !ok {
			name = id
		}
		out = append(out, PiePoint{CategoryID: id, Name: name, Value: v})
	}
	slices.SortFunc(out, func(a, b PiePoint) int {
		if c := cmp.Compare(b.Value.Cents, a.Value.Cents); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})
	return out
}

// BalanceSeries returns the running balance of txs ordered by date.
// The first point is always the {00/00, 0} anchor, so the result has
// len(txs)+1 points. Dates are compared as ISO strings.
func BalanceSeries(txs []core.Transaction) []BalancePoint {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b core.Transaction) int {
		return strings.Compare(string(a.Date), string(b.Date))
	})

	out := make([]BalancePoint, 0, len(sorted)+1)
	out = append(out, BalancePoint{Label: AnchorLabel})
	var running core.Money
	for _, t := range sorted {
		if t.Kind == core.KindIncome {
			running = running.Add(t.Amount)
		} else {
			running = running.Sub(t.Amount)
		}
		out = append(out, BalancePoint{Label: t.Date.Label(), Balance: running})
	}
	return out
}

// AvailableMonths lists the months that have transactions plus the
// month of now, most recent first.
func AvailableMonths(all []core.Transaction, now time.Time) []string {
	set := map[string]struct{}{core.MonthOf(now): {}}
	for _, t := range all {
		if m := t.Date.Month(); m != "" {
			set[m] = struct{}{}
		}
	}
	months := slices.Sorted(maps.Keys(set))
	slices.Reverse(months)
	return months
}

// FormatMonthYear renders "2025-11" as "November 2025".
// Anything that is not a month is returned unchanged.
func FormatMonthYear(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// Compute builds the full dashboard view.
func Compute(all []core.Transaction, categories []core.Category, budgets []core.Budget, f core.Filter, now time.Time) View {
	filtered := FilterTransactions(all, f)
	byCategory := ExpensesByCategory(filtered)
	return View{
		Filter:       f,
		Transactions: filtered,
		Totals:       ComputeTotals(filtered),
		ByCategory:   byCategory,
		Pie:          PieSeries(byCategory, categories),
		Balance:      BalanceSeries(filtered),
		Months:       AvailableMonths(all, now),
		Budgets:      BudgetStatuses(budgets, categories, byCategory),
		Unbudgeted:   UnbudgetedCategories(categories, budgets),
	}
}
