package totals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/kakeibu/pkg/models"
)

func tx(t *testing.T, id, date string, amount float64, typ models.Type) *models.Transaction {
	t.Helper()
	out, err := models.NewTransaction(id).SetID(id).SetISODate(date, "").SetAmount(amount).SetType(typ).Build()
	require.NoError(t, err)
	return out
}

func TestForMonth(t *testing.T) {
	txs := []*models.Transaction{
		tx(t, "salary", "2024-05-01", 738747, models.Income),
		tx(t, "rent", "2024-05-15", 670430, models.Expense),
		tx(t, "bonus", "2024-05-20", 100000, models.Income),
		tx(t, "april", "2024-04-30", 5000, models.Expense),
	}

	got := ForMonth(txs, 2024, time.May)
	assert.Equal(t, 838747.0, got.Income)
	assert.Equal(t, 670430.0, got.Expenses)
	assert.Equal(t, 168317.0, got.Net())
	assert.Len(t, got.Transactions, 3)
}

func TestForMonth_BoundaryCountedOnce(t *testing.T) {
	txs := []*models.Transaction{
		tx(t, "last", "2024-02-29", 100, models.Expense),
		tx(t, "first", "2024-03-01", 200, models.Expense),
	}

	feb := ForMonth(txs, 2024, time.February)
	mar := ForMonth(txs, 2024, time.March)
	assert.Equal(t, 100.0, feb.Expenses)
	assert.Equal(t, 200.0, mar.Expenses)
	assert.Equal(t, len(txs), len(feb.Transactions)+len(mar.Transactions))

	dec := ForMonth(txs, 2023, time.December)
	assert.Empty(t, dec.Transactions)
	assert.Zero(t, dec.Income)
}

type entry struct {
	date   string
	amount float64
	typ    models.Type
}

func (e entry) Date() string      { return e.date }
func (e entry) Amount() float64   { return e.amount }
func (e entry) Type() models.Type { return e.typ }

func TestBetween_SkipsInvalidDates(t *testing.T) {
	entries := []entry{
		{"2024-05-01", 0.1, models.Income},
		{"2024-05-02", 0.2, models.Income},
		{"2024/05/03", 999, models.Income},
		{"not a date", 999, models.Expense},
	}

	start := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	got := Between(entries, start, end)

	assert.Equal(t, 0.3, got.Income)
	assert.Zero(t, got.Expenses)
	assert.Len(t, got.Transactions, 2)
}
