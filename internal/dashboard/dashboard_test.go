package dashboard

import (
	"slices"
	"testing"
	"time"

	"calcula/internal/core"
)

func money(cents int64) core.Money { return core.Money{Cents: cents} }

var (
	exampleCategories = []core.Category{
		{ID: "c1", Name: "Salary", Kind: core.KindIncome},
		{ID: "c2", Name: "Market", Kind: core.KindExpense},
	}
	exampleTransactions = []core.Transaction{
		{ID: "t1", Kind: core.KindIncome, Date: "2025-11-01", Category: "c1", Description: "Salary", Amount: money(500000)},
		{ID: "t2", Kind: core.KindExpense, Date: "2025-11-05", Category: "c2", Description: "Weekly market", Amount: money(25050)},
	}
)

func TestComputeExampleScenario(t *testing.T) {
	now := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	v := Compute(exampleTransactions, exampleCategories, nil, core.Filter{Month: "2025-11", Kind: core.KindAll}, now)

	if v.Totals.Income.Cents != 500000 {
		t.Errorf("income = %d, want 500000", v.Totals.Income.Cents)
	}
	if v.Totals.Expense.Cents != 25050 {
		t.Errorf("expense = %d, want 25050", v.Totals.Expense.Cents)
	}
	if v.Totals.Balance.Cents != 474950 {
		t.Errorf("balance = %d, want 474950", v.Totals.Balance.Cents)
	}
	if len(v.ByCategory) != 1 || v.ByCategory["c2"].Cents != 25050 {
		t.Errorf("byCategory = %v, want {c2: 25050}", v.ByCategory)
	}
	if len(v.Pie) != 1 || v.Pie[0].Name != "Market" {
		t.Errorf("pie = %+v", v.Pie)
	}
	if len(v.Unbudgeted) != 1 || v.Unbudgeted[0].ID != "c2" {
		t.Errorf("unbudgeted = %+v", v.Unbudgeted)
	}
}

func TestFilterTransactions(t *testing.T) {
	txs := []core.Transaction{
		{ID: "a", Kind: core.KindIncome, Date: "2025-10-31", Category: "c1", Description: "October pay"},
		{ID: "b", Kind: core.KindExpense, Date: "2025-11-01", Category: "c2", Description: "Groceries at MARKET"},
		{ID: "c", Kind: core.KindExpense, Date: "2025-11-30", Category: "c3", Description: "Bus"},
		{ID: "d", Kind: core.KindIncome, Date: "2024-11-15", Category: "c1", Description: "Bonus"},
	}

	tests := []struct {
		name   string
		filter core.Filter
		want   []string
	}{
		{"empty filter is identity", core.Filter{Kind: core.KindAll}, []string{"a", "b", "c", "d"}},
		{"empty kind is identity", core.Filter{}, []string{"a", "b", "c", "d"}},
		{"month prefix", core.Filter{Month: "2025-11", Kind: core.KindAll}, []string{"b", "c"}},
		{"month boundary", core.Filter{Month: "2025-10", Kind: core.KindAll}, []string{"a"}},
		{"kind", core.Filter{Kind: core.KindIncome}, []string{"a", "d"}},
		{"category", core.Filter{Kind: core.KindAll, Category: "c2"}, []string{"b"}},
		{"search is case-insensitive", core.Filter{Kind: core.KindAll, Search: "market"}, []string{"b"}},
		{"all dimensions", core.Filter{Month: "2025-11", Kind: core.KindExpense, Category: "c3", Search: "bu"}, []string{"c"}},
		{"no match", core.Filter{Month: "2023-01", Kind: core.KindAll}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, tx := range FilterTransactions(txs, tt.filter) {
				got = append(got, tx.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalsBalanceIdentity(t *testing.T) {
	sets := [][]core.Transaction{
		nil,
		exampleTransactions,
		{
			{Kind: core.KindExpense, Amount: money(10)},
			{Kind: core.KindExpense, Amount: money(20)},
			{Kind: core.KindIncome, Amount: money(1)},
		},
	}
	for i, txs := range sets {
		tot := ComputeTotals(txs)
		if tot.Income.Cents-tot.Expense.Cents != tot.Balance.Cents {
			t.Errorf("set %d: income %d - expense %d != balance %d", i, tot.Income.Cents, tot.Expense.Cents, tot.Balance.Cents)
		}
	}
}

func TestBalanceSeries(t *testing.T) {
	txs := []core.Transaction{
		{ID: "late", Kind: core.KindExpense, Date: "2025-11-20", Amount: money(3000)},
		{ID: "early", Kind: core.KindIncome, Date: "2025-11-02", Amount: money(10000)},
		{ID: "same-day-1", Kind: core.KindExpense, Date: "2025-11-10", Amount: money(500)},
		{ID: "same-day-2", Kind: core.KindIncome, Date: "2025-11-10", Amount: money(200)},
	}

	got := BalanceSeries(txs)
	want := []BalancePoint{
		{Label: "00/00", Balance: money(0)},
		{Label: "02/11", Balance: money(10000)},
		{Label: "10/11", Balance: money(9500)},
		{Label: "10/11", Balance: money(9700)},
		{Label: "20/11", Balance: money(6700)},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if txs[0].ID != "late" {
		t.Error("input slice was reordered")
	}
}

func TestBalanceSeriesEmpty(t *testing.T) {
	got := BalanceSeries(nil)
	if len(got) != 1 || got[0] != (BalancePoint{Label: AnchorLabel}) {
		t.Fatalf("got %+v, want only the anchor", got)
	}
}

func TestPieSeriesOrderAndFallback(t *testing.T) {
	byCat := map[string]core.Money{
		"c2":      money(100),
		"ghost":   money(500),
		"c3":      money(100),
		"c-first": money(900),
	}
	cats := []core.Category{
		{ID: "c2", Name: "Market"},
		{ID: "c3", Name: "Leisure"},
		{ID: "c-first", Name: "Housing"},
	}

	got := PieSeries(byCat, cats)
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"Housing", "ghost", "Leisure", "Market"}
	if !slices.Equal(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestAvailableMonths(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{Date: "2025-11-01"},
		{Date: "2025-11-30"},
		{Date: "2024-01-15"},
		{Date: "2026-02-01"},
	}

	got := AvailableMonths(txs, now)
	want := []string{"2026-02", "2025-11", "2024-01"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := AvailableMonths(nil, now); !slices.Equal(got, []string{"2026-02"}) {
		t.Errorf("empty set: got %v", got)
	}
}

func TestFormatMonthYear(t *testing.T) {
	tests := map[string]string{
		"2025-11": "November 2025",
		"2024-01": "January 2024",
		"":        "",
		"bogus":   "bogus",
	}
	for in, want := range tests {
		if got := FormatMonthYear(in); got != want {
			t.Errorf("FormatMonthYear(%q) = %q, want %q", in, got, want)
		}
	}
}
