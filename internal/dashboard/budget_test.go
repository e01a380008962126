package dashboard

import (
	"testing"

	"calcula/internal/core"
)

func TestBudgetStatusExample(t *testing.T) {
	statuses := BudgetStatuses(
		[]core.Budget{{ID: "c2", Limit: money(80000)}},
		exampleCategories,
		map[string]core.Money{"c2": money(25050)},
	)
	if len(statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(statuses))
	}
	s := statuses[0]
	if s.Remaining.Cents != 54950 {
		t.Errorf("remaining = %d, want 54950", s.Remaining.Cents)
	}
	if got := s.Rounded().String(); got != "31.3" {
		t.Errorf("percentage = %s, want 31.3", got)
	}
	if s.Level != BudgetOK || s.Name != "Market" {
		t.Errorf("status = %+v", s)
	}
}

func TestBudgetLevels(t *testing.T) {
	tests := []struct {
		spent int64
		want  BudgetLevel
	}{
		{0, BudgetOK},
		{7999, BudgetOK},
		{8000, BudgetWarning},
		{9999, BudgetWarning},
		{10000, BudgetExceeded},
		{25000, BudgetExceeded},
	}
	for _, tt := range tests {
		got := BudgetStatuses(
			[]core.Budget{{ID: "x", Limit: money(10000)}},
			nil,
			map[string]core.Money{"x": money(tt.spent)},
		)[0]
		if got.Level != tt.want {
			t.Errorf("spent %d: level %s, want %s", tt.spent, got.Level, tt.want)
		}
		if got.Name != "Unknown" {
			t.Errorf("name fallback = %q", got.Name)
		}
	}
}

func TestUnbudgetedCategories(t *testing.T) {
	cats := []core.Category{
		{ID: "i", Name: "Salary", Kind: core.KindIncome},
		{ID: "e1", Name: "Housing", Kind: core.KindExpense},
		{ID: "e2", Name: "Leisure", Kind: core.KindExpense},
	}
	got := UnbudgetedCategories(cats, []core.Budget{{ID: "e1", Limit: money(1)}})
	if len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("got %+v, want only e2", got)
	}
}
