// Package types provides the numeric types shared by all documents.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a fractional item count (e.g. 1.5 kg of bread dough).
type Quantity = decimal.Decimal

// MoneyScale is the number of fractional digits stored for amounts.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal parses a decimal string, naming the field in the error.
func ParseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}

// RoundMoney rounds half away from zero to MoneyScale digits.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// PercentOf returns amount * percent / 100, rounded to MoneyScale.
func PercentOf(amount Money, percent decimal.Decimal) Money {
	return RoundMoney(amount.Mul(percent).Div(hundred))
}

// MaxZero floors m at zero.
func MaxZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}
