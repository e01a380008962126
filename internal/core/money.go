package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var maxAmount = decimal.New(math.MaxInt64/100, 0)

// ParseMoney reads a positive amount typed by a user. Both "12.34" and
// "12,34" are accepted; digits past the cent are rounded half-up.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m, err := MoneyFromDecimalChecked(d)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MoneyFromDecimalChecked is MoneyFromDecimal for untrusted input: values
// whose cents do not fit in an int64 fail with ErrInvalidAmount.
func MoneyFromDecimalChecked(d decimal.Decimal) (Money, error) {
	if d.Abs().GreaterThan(maxAmount) {
		return Money{}, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal rounds d to the minor unit.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Decimal returns the exact major-unit value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the plain decimal value, e.g. "4749.5".
func (m Money) String() string {
	return m.Decimal().String()
}

// Format renders the amount in Brazilian real notation, e.g. "R$ 1.234,56".
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := humanize.FormatInteger("#.###,", int(cents/100))
	return fmt.Sprintf("%sR$ %s,%02d", sign, units, cents%100)
}
