package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/kakeibu/pkg/models"
)

func tx(t *testing.T, id, desc, date, clock string, amount float64, typ models.Type) *models.Transaction {
	t.Helper()
	out, err := models.NewTransaction(desc).SetID(id).SetISODate(date, clock).SetAmount(amount).SetType(typ).Build()
	require.NoError(t, err)
	return out
}

func TestIsDuplicate_CardAndWallet(t *testing.T) {
	card := tx(t, "a", "ABC Store", "2024-05-01", "10:00:00", 10000, models.Expense)
	wallet := tx(t, "b", "ABC Store ", "2024-05-01", "10:05:00", 10000, models.Expense)

	assert.True(t, IsDuplicate(card, wallet))
	assert.True(t, IsDuplicate(wallet, card))

	// suffixed branch names are too far apart
	branch := tx(t, "c", "ABC Store Shibuya", "2024-05-01", "10:00:00", 10000, models.Expense)
	assert.False(t, IsDuplicate(card, branch))
}

func TestIsDuplicate_Rules(t *testing.T) {
	base := tx(t, "a", "セブン-イレブン", "2024-05-01", "10:00:00", 500, models.Expense)

	tests := []struct {
		name  string
		other *models.Transaction
		want  bool
	}{
		{"identical", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:00:00", 500, models.Expense), true},
		{"within tolerance", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:00:00", 500.01, models.Expense), true},
		{"amount differs", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:00:00", 500.02, models.Expense), false},
		{"five minutes apart", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:05:00", 500, models.Expense), true},
		{"six minutes apart", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:06:00", 500, models.Expense), false},
		{"other day", tx(t, "b", "セブン-イレブン", "2024-05-02", "10:00:00", 500, models.Expense), false},
		{"other shop", tx(t, "b", "ローソン", "2024-05-01", "10:00:00", 500, models.Expense), false},
		{"type ignored", tx(t, "b", "セブン-イレブン", "2024-05-01", "10:00:00", 500, models.Income), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicate(base, tt.other))
		})
	}

	assert.False(t, IsDuplicate(base, nil))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("ABC", "abc"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 9.0/17.0, Similarity("ABC Store", "ABC Store Shibuya"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("三島支店", "三島本店"), 1e-9)
}
