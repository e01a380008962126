package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"250.50", 25050, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1e3", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"250.5", 25050},
		{"5000", 500000},
		{"0.005", 1},
		{"12.344", 1234},
		{"0", 0},
	}
	for _, tc := range cases {
		got := MoneyFromDecimal(decimal.RequireFromString(tc.in))
		if got.Cents != tc.want {
			t.Errorf("MoneyFromDecimal(%s) = %d, want %d", tc.in, got.Cents, tc.want)
		}
	}
}

func TestMoneyFromDecimalChecked(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"250.5", 25050, true},
		{"92233720368547758", 9223372036854775800, true},
		{"92233720368547758.01", 0, false},
		{"100000000000000000000", 0, false},
		{"-100000000000000000000", 0, false},
	}
	for _, tc := range cases {
		got, err := MoneyFromDecimalChecked(decimal.RequireFromString(tc.in))
		if tc.ok {
			if err != nil || got.Cents != tc.want {
				t.Errorf("MoneyFromDecimalChecked(%s) = %d, %v; want %d", tc.in, got.Cents, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("MoneyFromDecimalChecked(%s) error = %v, want ErrInvalidAmount", tc.in, err)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{25050, "R$ 250,50"},
		{123456, "R$ 1.234,56"},
		{474950, "R$ 4.749,50"},
		{100000000, "R$ 1.000.000,00"},
		{-25050, "-R$ 250,50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 474950}).String(); got != "4749.5" {
		t.Fatalf("unexpected string %q", got)
	}
	if got := (Money{Cents: 500000}).String(); got != "5000" {
		t.Fatalf("unexpected string %q", got)
	}
}
