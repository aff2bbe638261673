// Package money holds the shared rounding rules for invoice arithmetic.
// Every monetary accumulation step rounds to 2 decimal places; totals built
// from already-rounded parts therefore match the printed invoice line by line.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary amount to 2 decimal places (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns value * pct/100 rounded to 2 decimal places.
func Percent(value, pct decimal.Decimal) decimal.Decimal {
	return Round2(value.Mul(pct).Div(hundred))
}

// Mul multiplies two decimals and rounds the result to 2 decimal places.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Mul(b))
}

// Half splits an amount evenly, rounding the half to 2 decimal places.
func Half(d decimal.Decimal) decimal.Decimal {
	return Round2(d.Div(decimal.NewFromInt(2)))
}
