package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

var amountNoise = strings.NewReplacer(
	"¥", "", "\\", "", "$", "", "円", "", "JPY", "", ",", "", " ", "", "+", "",
)

// parseAmount reads a money cell. Empty cells report ok=false. Negative
// amounts may be written with a leading minus, △ or ▲, a trailing minus or
// parentheses.
func parseAmount(value string) (amount decimal.Decimal, ok bool, err error) {
	s := strings.TrimSpace(value)
	negative := false
	for _, marker := range []string{"△", "▲", "−", "－"} {
		if strings.HasPrefix(s, marker) {
			s, negative = strings.TrimPrefix(s, marker), true
		}
	}

	s = amountNoise.Replace(norm.NFKC.String(s))
	if s == "" {
		return decimal.Zero, false, nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s, negative = s[1:len(s)-1], !negative
	}
	if strings.HasSuffix(s, "-") {
		s, negative = strings.TrimSuffix(s, "-"), !negative
	}
	if strings.HasPrefix(s, "-") {
		s, negative = strings.TrimPrefix(s, "-"), !negative
	}
	if s == "" {
		return decimal.Zero, false, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("invalid amount %q", value)
	}
	if negative {
		d = d.Neg()
	}
	return d, true, nil
}

// resolveAmount returns the absolute amount and its type for a row.
func resolveAmount(desc *sources.Descriptor, row []string) (float64, models.Type, error) {
	cols := desc.Columns
	if desc.Layout() == sources.SplitAmount {
		withdrawal, _, err := parseAmount(cell(row, cols.Withdrawal))
		if err != nil {
			return 0, "", fmt.Errorf("%w: withdrawal: %v", ErrUnparsableRow, err)
		}
		deposit, _, err := parseAmount(cell(row, cols.Deposit))
		if err != nil {
			return 0, "", fmt.Errorf("%w: deposit: %v", ErrUnparsableRow, err)
		}
		switch {
		case withdrawal.IsPositive():
			return withdrawal.InexactFloat64(), models.Expense, nil
		case deposit.IsPositive():
			return deposit.InexactFloat64(), models.Income, nil
		default:
			return 0, "", fmt.Errorf("%w: no withdrawal or deposit", errFiltered)
		}
	}

	amount, ok, err := parseAmount(cell(row, cols.Amount))
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrUnparsableRow, err)
	}
	if !ok || amount.IsZero() {
		return 0, "", fmt.Errorf("%w: zero amount", errFiltered)
	}

	var typ models.Type
	switch cols.TypeHint {
	case sources.HintIncome:
		typ = models.Income
	case sources.HintExpense:
		typ = models.Expense
	default:
		typ = models.Income
		if amount.IsNegative() {
			typ = models.Expense
		}
	}
	return amount.Abs().InexactFloat64(), typ, nil
}
