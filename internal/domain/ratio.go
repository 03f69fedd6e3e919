package domain

import "github.com/shopspring/decimal"

// DividendRatio is the profit-sharing fraction applied by the dividend
// calculator. Both components are clamped to at least 1.
type DividendRatio struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// DefaultDividendRatio is one third.
var DefaultDividendRatio = DividendRatio{Numerator: 1, Denominator: 3}

// NewDividendRatio creates a ratio, clamping both parts to >= 1.
func NewDividendRatio(numerator, denominator int) DividendRatio {
	if numerator < 1 {
		numerator = 1
	}
	if denominator < 1 {
		denominator = 1
	}
	return DividendRatio{Numerator: numerator, Denominator: denominator}
}

// Decimal returns numerator/denominator as an exact decimal.
func (r DividendRatio) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(r.Numerator)).Div(decimal.NewFromInt(int64(r.Denominator)))
}
