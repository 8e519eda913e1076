package compare

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/ynab"
)

const (
	// AmountTolerance is the largest amount difference still treated as equal.
	AmountTolerance = 0.01
	// TimeWindow is the largest time-of-day distance between duplicates.
	TimeWindow = 5 * time.Minute
	// MinSimilarity is the description similarity duplicates must reach.
	MinSimilarity = 0.7
)

// IsDuplicate reports whether two transactions describe the same real-world
// event: equal amounts, the same calendar day, at most TimeWindow apart and
// similar descriptions. Type is not compared.
func IsDuplicate(a, b *models.Transaction) bool {
	if a == nil || b == nil {
		return false
	}
	if math.Abs(a.Amount()-b.Amount()) > AmountTolerance {
		return false
	}
	if a.Date() != b.Date() {
		return false
	}
	if d := a.At().Sub(b.At()); d > TimeWindow || d < -TimeWindow {
		return false
	}
	return Similarity(a.Description(), b.Description()) >= MinSimilarity
}

// Similarity is 1 - editDistance/maxLength over the lowercased runes of both
// strings. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Equal compares a local transaction with one fetched from YNAB using the
// fields both sides keep: date, payee and amount in two-decimal precision.
func Equal(local *models.Transaction, remote *ynab.Transaction) bool {
	if local == nil || remote == nil {
		return false
	}
	if fmt.Sprintf("%.2f", local.Signed()) != fmt.Sprintf("%.2f", float64(remote.Amount)/1000.0) {
		return false
	}
	if remote.PayeeName == nil || local.ShopName() != *remote.PayeeName {
		return false
	}
	return local.Date() == remote.Date.Format("2006-01-02")
}
