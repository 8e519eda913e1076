package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Builder assembles a Transaction step by step. Errors are collected and
// reported by Build.
type Builder struct {
	tx  Transaction
	err error
}

// NewTransaction starts a builder for a transaction with the given description.
func NewTransaction(description string) *Builder {
	return &Builder{tx: Transaction{description: strings.TrimSpace(description)}}
}

func (b *Builder) SetID(id string) *Builder {
	b.tx.id = id
	return b
}

// SetDate sets the calendar day; the time of day defaults to noon.
func (b *Builder) SetDate(date time.Time) *Builder {
	b.tx.at = time.Date(date.Year(), date.Month(), date.Day(), NoonHour, 0, 0, 0, time.UTC)
	return b
}

// SetDateTime sets both day and time of day.
func (b *Builder) SetDateTime(at time.Time) *Builder {
	b.tx.at = time.Date(at.Year(), at.Month(), at.Day(), at.Hour(), at.Minute(), at.Second(), 0, time.UTC)
	return b
}

// SetISODate parses a YYYY-MM-DD date and an optional HH:MM:SS time.
func (b *Builder) SetISODate(date, clock string) *Builder {
	if clock == "" {
		clock = fmt.Sprintf("%02d:00:00", NoonHour)
	}
	at, err := time.Parse(dateLayout+" "+timeLayout, date+" "+clock)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("invalid date %q %q: %w", date, clock, err))
		return b
	}
	b.tx.at = at
	return b
}

func (b *Builder) SetAmount(amount float64) *Builder {
	b.tx.amount = amount
	return b
}

func (b *Builder) SetType(t Type) *Builder {
	b.tx.typ = t
	return b
}

func (b *Builder) SetCategory(category string) *Builder {
	b.tx.category = category
	return b
}

func (b *Builder) SetShopName(shopName string) *Builder {
	b.tx.shopName = shopName
	return b
}

func (b *Builder) SetSource(source string) *Builder {
	b.tx.source = source
	return b
}

func (b *Builder) SetProvenance(p Provenance) *Builder {
	b.tx.original = p
	return b
}

// Build validates the collected fields and returns the transaction.
func (b *Builder) Build() (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.tx.id == "" {
		return nil, errors.New("transaction id is required")
	}
	if b.tx.at.IsZero() {
		return nil, errors.New("transaction date is required")
	}
	if b.tx.amount < 0 {
		return nil, fmt.Errorf("negative amount %.2f", b.tx.amount)
	}
	if !b.tx.typ.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", b.tx.typ)
	}
	if b.tx.shopName == "" {
		b.tx.shopName = ShopName(b.tx.description)
	}
	tx := b.tx
	return &tx, nil
}
