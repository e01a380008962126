package core

import (
	"strings"
	"time"
)

// Filter narrows the transaction list shown on the dashboard.
type Filter struct {
	Month    string `json:"month"` // "YYYY-MM", "" means all months
	Kind     Kind   `json:"type"`  // all, income or expense
	Category string `json:"category"`
	Search   string `json:"search"`
}

// FilterPatch is a partial filter update; nil fields keep their current value.
type FilterPatch struct {
	Month    *string
	Kind     *Kind
	Category *string
	Search   *string
}

// DefaultFilter shows every transaction of the month containing now.
func DefaultFilter(now time.Time) Filter {
	return Filter{Month: MonthOf(now), Kind: KindAll}
}

func (f Filter) Validate() error {
	if err := ValidateMonth(f.Month); err != nil {
		return err
	}
	if f.Kind != KindAll && !f.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// Merge returns f with the non-nil fields of p applied.
func (f Filter) Merge(p FilterPatch) Filter {
	if p.Month != nil {
		f.Month = *p.Month
	}
	if p.Kind != nil {
		f.Kind = *p.Kind
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}

// Match reports whether t passes every dimension of the filter.
// The month is compared as a string prefix of the ISO date.
func (f Filter) Match(t Transaction) bool {
	if f.Month != "" && t.Date.Month() != f.Month {
		return false
	}
	if f.Kind != "" && f.Kind != KindAll && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Normalize fills an empty kind with KindAll.
func (f Filter) Normalize() Filter {
	if f.Kind == "" {
		f.Kind = KindAll
	}
	return f
}
