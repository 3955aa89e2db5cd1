package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an immutable non-negative amount in a single ISO 4217 currency.
// Arithmetic never mixes currencies.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates amount and currency. The currency code is upper-cased.
func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	cur, err := NormalizeCurrency(code)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// NewMoneyFromFloat rejects NaN and infinities before delegating to NewMoney.
func NewMoneyFromFloat(amount float64, code string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, amount)
	}
	return NewMoney(decimal.NewFromFloat(amount), code)
}

// ParseMoney parses a decimal string such as "120.50".
func ParseMoney(amount, code string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, amount)
	}
	return NewMoney(d, code)
}

// ZeroMoney returns a zero amount in code. code is expected to be valid;
// an invalid code yields a Money whose currency fails every comparison.
func ZeroMoney(code string) Money {
	cur, _ := NormalizeCurrency(code)
	return Money{amount: decimal.Zero, currency: cur}
}

// NormalizeCurrency upper-cases code and checks it is exactly three ASCII letters.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", fmt.Errorf("%w: %q must be a 3-letter code", ErrInvalidCurrency, code)
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q must be a 3-letter code", ErrInvalidCurrency, code)
		}
	}
	return c, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return &CurrencyMismatchError{Expected: m.currency, Actual: other.currency}
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract fails with ErrNegativeResult when other exceeds m.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.amount.GreaterThan(m.amount) {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, m, other)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: factor %s is negative", ErrInvalidScalar, factor)
	}
	return Money{amount: m.amount.Mul(factor), currency: m.currency}, nil
}

// DivideBy splits m into n equal parts. n must be positive.
func (m Money) DivideBy(n int) (Money, error) {
	if n <= 0 {
		return Money{}, fmt.Errorf("%w: divisor %d must be positive", ErrInvalidScalar, n)
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(n))), currency: m.currency}, nil
}

// Compare returns -1, 0 or +1 as m is less than, equal to or greater than other.
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Compare(other)
	return c > 0, err
}

func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Compare(other)
	return c < 0, err
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders the amount with two decimals followed by the code, e.g. "12.50 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// Format renders m for display in the given language using the currency symbol
// when x/text knows the code, falling back to String otherwise.
func (m Money) Format(tag language.Tag) string {
	unit, err := currency.ParseISO(m.currency)
	if err != nil {
		return m.String()
	}
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(m.amount.InexactFloat64())))
}
