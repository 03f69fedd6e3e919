package domain

import (
	"github.com/shopspring/decimal"
)

// Money is an exact decimal monetary amount.
// All arithmetic stays in decimal space; nothing here ever rounds through
// a binary float, so repeated add/sub/mul/div chains remain exact.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the zero monetary amount.
var ZeroMoney = Money{}

// NewMoney creates a Money from a decimal amount.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// MoneyFromInt creates a Money from an integer amount.
func MoneyFromInt(v int64) Money {
	return Money{amount: decimal.NewFromInt(v)}
}

// MoneyFromFloat creates a Money from a float amount.
// Only for boundary conversions (JSON import, remote DTOs); internal
// computation never goes through floats.
func MoneyFromFloat(v float64) Money {
	return Money{amount: decimal.NewFromFloat(v)}
}

// MoneyFromString parses a decimal string amount.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d}, nil
}

// Amount returns the underlying decimal value.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Add returns m + n.
func (m Money) Add(n Money) Money { return Money{amount: m.amount.Add(n.amount)} }

// Sub returns m - n.
func (m Money) Sub(n Money) Money { return Money{amount: m.amount.Sub(n.amount)} }

// MulInt returns m multiplied by an integer quantity.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// MulDecimal returns m multiplied by a decimal factor.
func (m Money) MulDecimal(d decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(d)}
}

// DivInt returns m divided by an integer. Division by zero yields zero.
func (m Money) DivInt(n int) Money {
	if n == 0 {
		return ZeroMoney
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(n)))}
}

// DivDecimal returns m divided by a decimal. Division by zero yields zero.
func (m Money) DivDecimal(d decimal.Decimal) Money {
	if d.IsZero() {
		return ZeroMoney
	}
	return Money{amount: m.amount.Div(d)}
}

// Neg returns -m.
func (m Money) Neg() Money { return Money{amount: m.amount.Neg()} }

// Abs returns the absolute value of m.
func (m Money) Abs() Money { return Money{amount: m.amount.Abs()} }

// Ceil rounds toward positive infinity to integer precision.
func (m Money) Ceil() Money { return Money{amount: m.amount.Ceil()} }

// Floor rounds toward negative infinity to integer precision.
func (m Money) Floor() Money { return Money{amount: m.amount.Floor()} }

func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsZero() bool     { return m.amount.IsZero() }

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(n Money) bool { return m.amount.Equal(n.amount) }

// GreaterThan reports whether m > n.
func (m Money) GreaterThan(n Money) bool { return m.amount.GreaterThan(n.amount) }

// LessThan reports whether m < n.
func (m Money) LessThan(n Money) bool { return m.amount.LessThan(n.amount) }

// InexactFloat64 converts to float64 for display and export payloads.
func (m Money) InexactFloat64() float64 { return m.amount.InexactFloat64() }

// String returns the plain decimal representation.
func (m Money) String() string { return m.amount.String() }

// MarshalJSON encodes the amount as a quoted decimal string, preserving
// exactness across storage round-trips.
func (m Money) MarshalJSON() ([]byte, error) { return m.amount.MarshalJSON() }

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error { return m.amount.UnmarshalJSON(data) }
