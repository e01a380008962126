package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{"2025-01-01", true},
		{"2025-12-31", true},
		{"2024-02-29", true},
		{"2025-02-30", false},
		{"2025-1-01", false},
		{"01/11/2025", false},
		{"", false},
	}
	for _, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.d, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.d, err)
		}
	}
}

func TestDateSlices(t *testing.T) {
	d := Date("2025-11-05")
	if d.Month() != "2025-11" {
		t.Fatalf("month = %q", d.Month())
	}
	if d.Label() != "05/11" {
		t.Fatalf("label = %q", d.Label())
	}
	if d.Format() != "05/11/2025" {
		t.Fatalf("format = %q", d.Format())
	}
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	// 23:30 on Nov 30 in UTC-3 is already Dec 1 in UTC.
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2025, 11, 30, 23, 30, 0, 0, loc)
	if got := DateOf(now); got != "2025-11-30" {
		t.Fatalf("DateOf = %q", got)
	}
	if got := MonthOf(now); got != "2025-11" {
		t.Fatalf("MonthOf = %q", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        KindExpense,
		Date:        "2025-11-05",
		Category:    "c2",
		Description: "Market",
		Amount:      Money{Cents: 25050},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := good
	long.Description = strings.Repeat("ção ", 100)
	if err := long.Validate(); err != nil {
		t.Fatalf("long description rejected: %v", err)
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{func(tx *Transaction) { tx.Date = "2025-13-01" }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Amount = Money{Cents: -5} }, ErrInvalidAmount},
	}
	for i, b := range bads {
		tx := good
		b.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, b.want) {
			t.Fatalf("case %d: expected %v, got %v", i, b.want, err)
		}
	}
}

func TestTransactionPatchApply(t *testing.T) {
	orig := Transaction{ID: "t1", Kind: KindExpense, Date: "2025-11-05", Category: "c2", Description: "a", Amount: Money{Cents: 100}}
	desc := "b"
	amount := Money{Cents: 200}
	got := TransactionPatch{Description: &desc, Amount: &amount}.Apply(orig)
	if got.ID != "t1" || got.Description != "b" || got.Amount.Cents != 200 || got.Category != "c2" || got.Date != orig.Date {
		t.Fatalf("unexpected merge result: %+v", got)
	}
}

func TestCategoryAndBudgetValidate(t *testing.T) {
	if err := (Category{Name: "Market", Kind: KindExpense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "", Kind: KindExpense}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Budget{ID: "c2", Limit: Money{Cents: 80000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{ID: "c2"}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestIsSeed(t *testing.T) {
	if !(Transaction{ID: "seed-3"}).IsSeed() {
		t.Fatal("seed-3 should be seed data")
	}
	if (Transaction{ID: "3f1c-seed-"}).IsSeed() {
		t.Fatal("prefix only")
	}
}
