package dashboard

import (
	"github.com/shopspring/decimal"

	"calcula/internal/core"
)

type BudgetLevel string

const (
	BudgetOK       BudgetLevel = "ok"
	BudgetWarning  BudgetLevel = "warning"
	BudgetExceeded BudgetLevel = "exceeded"
)

const unknownCategoryName = "Unknown"

var (
	hundred           = decimal.NewFromInt(100)
	warningThreshold  = decimal.NewFromInt(80)
	exceededThreshold = decimal.NewFromInt(100)
)

// BudgetStatus compares one budget limit with what was spent in its
// category over the filtered transactions.
type BudgetStatus struct {
	Budget     core.Budget
	Name       string
	Spent      core.Money
	Remaining  core.Money // negative once the limit is exceeded
	Percentage decimal.Decimal
	Level      BudgetLevel
}

// Rounded returns the percentage with one decimal place.
func (s BudgetStatus) Rounded() decimal.Decimal {
	return s.Percentage.Round(1)
}

// BudgetStatuses evaluates every budget against byCategory.
// Budgets carry no month, so the comparison uses whatever period
// byCategory was computed for.
func BudgetStatuses(budgets []core.Budget, categories []core.Category, byCategory map[string]core.Money) []BudgetStatus {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := byCategory[b.ID]
		name, ok := names[b.ID]
		if !ok {
			name = unknownCategoryName
		}
		pct := percentage(spent, b.Limit)
		out = append(out, BudgetStatus{
			Budget:     b,
			Name:       name,
			Spent:      spent,
			Remaining:  b.Limit.Sub(spent),
			Percentage: pct,
			Level:      levelOf(pct),
		})
	}
	return out
}

// UnbudgetedCategories returns the expense categories without a budget.
func UnbudgetedCategories(categories []core.Category, budgets []core.Budget) []core.Category {
	has := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		has[b.ID] = true
	}
	var out []core.Category
	for _, c := range categories {
		if c.Kind == core.KindExpense && !has[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func percentage(spent, limit core.Money) decimal.Decimal {
	if limit.Cents <= 0 {
		return decimal.Zero
	}
	return spent.Decimal().Div(limit.Decimal()).Mul(hundred)
}

func levelOf(pct decimal.Decimal) BudgetLevel {
	switch {
	case pct.LessThan(warningThreshold):
		return BudgetOK
	case pct.LessThan(exceededThreshold):
		return BudgetWarning
	default:
		return BudgetExceeded
	}
}
