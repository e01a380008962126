package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	// KindAll is only meaningful in a Filter.
	KindAll Kind = "all"
)

// SeedPrefix marks demo transactions removed by the bootstrap cleanup.
const SeedPrefix = "seed-"

type (
	Kind string

	// Date is a calendar date kept as an ISO "YYYY-MM-DD" string.
	// It never goes through a zoned timestamp, so month and day labels
	// are sliced straight from the string.
	Date string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Kind        Kind
		Date        Date
		Category    string // Category ID
		Description string
		Amount      Money
	}

	Category struct {
		ID   string
		Name string
		Kind Kind
	}

	// Budget is the current spending limit of one expense category.
	// ID equals the category ID.
	Budget struct {
		ID    string
		Limit Money
	}

	Meta struct {
		Key   string
		Value string
	}

	// TransactionPatch carries the fields of an update; nil fields are kept.
	TransactionPatch struct {
		Kind        *Kind
		Date        *Date
		Category    *string
		Description *string
		Amount      *Money
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidLimit     = errors.New("invalid budget limit")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyID          = errors.New("empty id")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrInvalidMonth, ErrInvalidKind, ErrInvalidAmount, ErrInvalidLimit,
		ErrEmptyDescription, ErrEmptyCategory, ErrEmptyName, ErrEmptyID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Valid reports whether k is a record kind (income or expense).
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (d Date) Validate() error {
	s := string(d)
	if len(s) != len("2006-01-02") {
		return ErrInvalidDate
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the "YYYY-MM" prefix, or "" for a malformed date.
func (d Date) Month() string {
	if len(d) < 7 {
		return ""
	}
	return string(d[:7])
}

// Label returns the "DD/MM" chart label.
func (d Date) Label() string {
	if len(d) < 10 {
		return string(d)
	}
	return string(d[8:10]) + "/" + string(d[5:7])
}

// Format returns the date as "DD/MM/YYYY".
func (d Date) Format() string {
	if len(d) < 10 {
		return string(d)
	}
	return string(d[8:10]) + "/" + string(d[5:7]) + "/" + string(d[:4])
}

// DateOf builds the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// MonthOf returns the "YYYY-MM" month of t in t's own location.
func MonthOf(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ValidateMonth accepts "" (all months) or a "YYYY-MM" string.
func ValidateMonth(m string) error {
	if m == "" {
		return nil
	}
	if len(m) != len("2006-01") {
		return ErrInvalidMonth
	}
	if _, err := time.Parse("2006-01", m); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Amount.Validate()
}

// Apply returns t with the non-nil fields of p merged in.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	return t
}

// IsSeed reports whether the transaction is leftover demo data.
func (t Transaction) IsSeed() bool {
	return strings.HasPrefix(t.ID, SeedPrefix)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
