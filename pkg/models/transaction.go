package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Type tells whether a transaction adds money (income) or spends it (expense).
// Amounts are always stored as non-negative values; the sign lives here.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	// shopNameLength is the rune length of the merchant label derived from the description.
	shopNameLength = 20
)

// NoonHour is the time-of-day assigned to rows from sources that only export a date.
const NoonHour = 12

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Provenance records where a transaction came from and, after a merge, which
// transactions were folded into it.
type Provenance struct {
	Row            []string `json:"row,omitempty"`
	FileName       string   `json:"file_name,omitempty"`
	Format         string   `json:"format,omitempty"`
	Encoding       string   `json:"encoding,omitempty"`
	LineNumber     int      `json:"line_number,omitempty"`
	AccountNumber  string   `json:"account_number,omitempty"`
	DuplicateCount int      `json:"duplicate_count,omitempty"`
	MergedIDs      []string `json:"merged_ids,omitempty"`
}

// Transaction is a normalized ledger entry. It is immutable once built; use
// the builder returned by NewTransaction to create one.
type Transaction struct {
	id          string
	at          time.Time
	amount      float64
	description string
	category    string
	shopName    string
	typ         Type
	source      string
	original    Provenance
}

func (t *Transaction) ID() string          { return t.id }
func (t *Transaction) At() time.Time       { return t.at }
func (t *Transaction) Date() string        { return t.at.Format(dateLayout) }
func (t *Transaction) Time() string        { return t.at.Format(timeLayout) }
func (t *Transaction) Amount() float64     { return t.amount }
func (t *Transaction) Description() string { return t.description }
func (t *Transaction) Category() string    { return t.category }
func (t *Transaction) ShopName() string    { return t.shopName }
func (t *Transaction) Type() Type          { return t.typ }
func (t *Transaction) Source() string      { return t.source }

// Original returns a copy of the provenance bag.
func (t *Transaction) Original() Provenance {
	p := t.original
	p.Row = append([]string(nil), t.original.Row...)
	p.MergedIDs = append([]string(nil), t.original.MergedIDs...)
	return p
}

// DuplicateCount is the number of source transactions represented by t. An
// unmerged transaction represents itself.
func (t *Transaction) DuplicateCount() int {
	if t.original.DuplicateCount < 1 {
		return 1
	}
	return t.original.DuplicateCount
}

// Signed returns the amount with expenses negated.
func (t *Transaction) Signed() float64 {
	if t.typ == Expense {
		return -t.amount
	}
	return t.amount
}

// Merged returns a copy of t that stands for the whole merge group: the
// description and shop name are replaced and the merge history recorded.
func (t *Transaction) Merged(description, shopName string, duplicateCount int, mergedIDs []string) *Transaction {
	m := *t
	m.description = description
	m.shopName = shopName
	m.original = t.Original()
	m.original.DuplicateCount = duplicateCount
	m.original.MergedIDs = append([]string(nil), mergedIDs...)
	return &m
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %s %.2f %s (%s)", t.Date(), t.Time(), t.typ, t.amount, t.description, t.category)
}

// ShopName derives the merchant label from a description: whitespace runs are
// collapsed and the result is cut to a fixed number of runes.
func ShopName(description string) string {
	collapsed := strings.Join(strings.FieldsFunc(description, unicode.IsSpace), " ")
	r := []rune(collapsed)
	if len(r) > shopNameLength {
		r = r[:shopNameLength]
	}
	return string(r)
}
