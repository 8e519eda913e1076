package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	tx, err := NewTransaction("  ABC Store  ").
		SetID("tx-1").
		SetDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)).
		SetAmount(10000).
		SetType(Expense).
		SetCategory("food").
		SetSource("楽天カード").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01", tx.Date())
	assert.Equal(t, "12:00:00", tx.Time())
	assert.Equal(t, "ABC Store", tx.Description())
	assert.Equal(t, "ABC Store", tx.ShopName())
	assert.Equal(t, -10000.0, tx.Signed())
	assert.Equal(t, 1, tx.DuplicateCount())
}

func TestBuilder_Rejects(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewTransaction("x").SetDate(day).SetAmount(1).SetType(Income).Build()
	assert.ErrorContains(t, err, "id")

	_, err = NewTransaction("x").SetID("a").SetAmount(1).SetType(Income).Build()
	assert.ErrorContains(t, err, "date")

	_, err = NewTransaction("x").SetID("a").SetDate(day).SetAmount(-1).SetType(Income).Build()
	assert.ErrorContains(t, err, "negative")

	_, err = NewTransaction("x").SetID("a").SetDate(day).SetAmount(1).SetType("transfer").Build()
	assert.ErrorContains(t, err, "type")

	_, err = NewTransaction("x").SetID("a").SetISODate("2024-02-30", "").SetAmount(1).SetType(Income).Build()
	assert.Error(t, err)
}

func TestShopName_Truncates(t *testing.T) {
	assert.Equal(t, "セブン-イレブン 三島店", ShopName("セブン-イレブン　　三島店"))
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRST", ShopName("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
}

func TestMerged_KeepsOriginalUntouched(t *testing.T) {
	tx, err := NewTransaction("ABC").SetID("a").SetISODate("2024-05-01", "10:00:00").
		SetAmount(5).SetType(Expense).SetProvenance(Provenance{FileName: "a.csv"}).Build()
	require.NoError(t, err)

	m := tx.Merged("ABC Store", "ABC Store", 2, []string{"a", "b"})
	assert.Equal(t, "ABC", tx.Description())
	assert.Empty(t, tx.Original().MergedIDs)
	assert.Equal(t, "ABC Store", m.Description())
	assert.Equal(t, 2, m.DuplicateCount())
	assert.Equal(t, []string{"a", "b"}, m.Original().MergedIDs)
	assert.Equal(t, "a.csv", m.Original().FileName)
	assert.Equal(t, tx.ID(), m.ID())
}

func TestIDGenerator_Unique(t *testing.T) {
	g := NewIDGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
