// Package totals sums ledger entries over a date range.
package totals

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/kakeibu/pkg/models"
)

const dateLayout = "2006-01-02"

// Entry is anything with an ISO date, a non-negative amount and a type.
// *models.Transaction satisfies it.
type Entry interface {
	Date() string
	Amount() float64
	Type() models.Type
}

// Totals is the income and expense sum of the entries inside a range.
type Totals[T Entry] struct {
	Income       float64 `json:"income"`
	Expenses     float64 `json:"expenses"`
	Transactions []T     `json:"transactions"`
}

// Net is income minus expenses.
func (t Totals[T]) Net() float64 {
	return decimal.NewFromFloat(t.Income).Sub(decimal.NewFromFloat(t.Expenses)).InexactFloat64()
}

// Between sums the entries dated within [start, end], both days inclusive.
// Only the calendar date of start and end is used. Entries whose date does
// not parse are logged and left out.
func Between[T Entry](entries []T, start, end time.Time) Totals[T] {
	from, to := day(start), day(end)

	income, expenses := decimal.Zero, decimal.Zero
	out := Totals[T]{Transactions: []T{}}
	for _, e := range entries {
		d, err := time.Parse(dateLayout, e.Date())
		if err != nil {
			log.Warn("skipping entry with invalid date", "date", e.Date(), "err", err)
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		amount := decimal.NewFromFloat(e.Amount())
		switch e.Type() {
		case models.Income:
			income = income.Add(amount)
		case models.Expense:
			expenses = expenses.Add(amount)
		}
		out.Transactions = append(out.Transactions, e)
	}
	out.Income = income.InexactFloat64()
	out.Expenses = expenses.InexactFloat64()
	return out
}

// ForMonth sums the entries of one calendar month.
func ForMonth[T Entry](entries []T, year int, month time.Month) Totals[T] {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Between(entries, start, start.AddDate(0, 1, -1))
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
