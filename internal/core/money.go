// Package core holds the transaction model and the pure functions around it.
//
// This file is the text boundary for amounts: parsing user input into a
// decimal and formatting decimals back to text. Everything past this point
// works on decimal.Decimal values.
package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount       = errors.New("empty amount")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// amountPattern accepts an unsigned number with an optional one or two digit
// fraction. No sign, no thousands separators, no decimal comma.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseAmount converts user text into a strictly positive amount.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.50, nil
//	ParseAmount("12.50") -> 12.50, nil
//	ParseAmount("1,50")  -> ErrInvalidAmount
//	ParseAmount("0")     -> ErrNonPositiveAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d.Round(2), nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid amount literal " + s)
	}
	return d
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
