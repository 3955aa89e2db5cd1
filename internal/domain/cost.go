package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostCalculator computes read-only financial figures over an itinerary.
// It re-checks the currency of every activity instead of trusting the aggregate.
type CostCalculator struct{}

// TotalCost sums every non-cancelled activity. An activity in a currency other
// than the base currency yields a *CurrencyMismatchError.
func (CostCalculator) TotalCost(it *Itinerary) (Money, error) {
	total := ZeroMoney(it.baseCurrency)
	for _, d := range it.days {
		for _, a := range d.activities {
			if a.IsCancelled() {
				continue
			}
			if a.cost.currency != it.baseCurrency {
				return Money{}, fmt.Errorf("activity %s: %w", a.id,
					&CurrencyMismatchError{Expected: it.baseCurrency, Actual: a.cost.currency})
			}
			var err error
			if total, err = total.Add(a.cost); err != nil {
				return Money{}, err
			}
		}
	}
	return total, nil
}

// CostPerDay divides the total over the days of the date range.
func (c CostCalculator) CostPerDay(it *Itinerary) (Money, error) {
	n := it.dates.Days()
	if n == 0 {
		return Money{}, fmt.Errorf("%w: %s", ErrEmptyItinerary, it.id)
	}
	total, err := c.TotalCost(it)
	if err != nil {
		return Money{}, err
	}
	return total.DivideBy(n)
}

// CostByType sums non-cancelled activity costs per activity type. Types with no
// activity are absent from the map.
func (CostCalculator) CostByType(it *Itinerary) (map[ActivityType]Money, error) {
	out := make(map[ActivityType]Money)
	for _, d := range it.days {
		for _, a := range d.activities {
			if a.IsCancelled() {
				continue
			}
			sum, ok := out[a.kind]
			if !ok {
				sum = ZeroMoney(it.baseCurrency)
			}
			next, err := sum.Add(a.cost)
			if err != nil {
				return nil, fmt.Errorf("activity %s: %w", a.id, err)
			}
			out[a.kind] = next
		}
	}
	return out, nil
}

func (c CostCalculator) totalIn(it *Itinerary, budget Money) (Money, error) {
	total, err := c.TotalCost(it)
	if err != nil {
		return Money{}, err
	}
	if total.currency != budget.currency {
		return Money{}, &CurrencyMismatchError{Expected: total.currency, Actual: budget.currency}
	}
	return total, nil
}

// ExceedsBudget reports whether the total is strictly greater than budget.
func (c CostCalculator) ExceedsBudget(it *Itinerary, budget Money) (bool, error) {
	total, err := c.totalIn(it, budget)
	if err != nil {
		return false, err
	}
	return total.GreaterThan(budget)
}

// RemainingBudget returns budget minus the total, or zero when over budget.
func (c CostCalculator) RemainingBudget(it *Itinerary, budget Money) (Money, error) {
	total, err := c.totalIn(it, budget)
	if err != nil {
		return Money{}, err
	}
	if total.amount.GreaterThan(budget.amount) {
		return ZeroMoney(budget.currency), nil
	}
	return budget.Subtract(total)
}

// BudgetUtilizationPercent returns total / budget * 100 rounded to two places.
// A zero budget yields zero.
func (c CostCalculator) BudgetUtilizationPercent(it *Itinerary, budget Money) (decimal.Decimal, error) {
	total, err := c.totalIn(it, budget)
	if err != nil {
		return decimal.Zero, err
	}
	if budget.amount.IsZero() {
		return decimal.Zero, nil
	}
	return total.amount.Div(budget.amount).Mul(decimal.NewFromInt(100)).Round(2), nil
}

// BudgetReport compares the total against a maximum budget.
type BudgetReport struct {
	Max                Money
	Remaining          Money
	UtilizationPercent decimal.Decimal
	Exceeded           bool
}

// FinancialSummary aggregates every figure the calculator produces.
// Budget is nil when no maximum was supplied.
type FinancialSummary struct {
	Total      Money
	CostPerDay Money
	CostByType map[ActivityType]Money
	Budget     *BudgetReport
}

// FinancialSummary builds the full report. budget may be nil.
func (c CostCalculator) FinancialSummary(it *Itinerary, budget *Money) (FinancialSummary, error) {
	total, err := c.TotalCost(it)
	if err != nil {
		return FinancialSummary{}, err
	}
	perDay, err := c.CostPerDay(it)
	if err != nil {
		return FinancialSummary{}, err
	}
	byType, err := c.CostByType(it)
	if err != nil {
		return FinancialSummary{}, err
	}
	s := FinancialSummary{Total: total, CostPerDay: perDay, CostByType: byType}
	if budget == nil {
		return s, nil
	}
	remaining, err := c.RemainingBudget(it, *budget)
	if err != nil {
		return FinancialSummary{}, err
	}
	pct, err := c.BudgetUtilizationPercent(it, *budget)
	if err != nil {
		return FinancialSummary{}, err
	}
	exceeded, err := c.ExceedsBudget(it, *budget)
	if err != nil {
		return FinancialSummary{}, err
	}
	s.Budget = &BudgetReport{
		Max:                *budget,
		Remaining:          remaining,
		UtilizationPercent: pct,
		Exceeded:           exceeded,
	}
	return s, nil
}
