package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/yurifrl/kakeibu/pkg/models"
)

type Record interface {
	ID() string
	Date() string
	Time() string
	Type() models.Type
	Amount() float64
	Description() string
	ShopName() string
	Category() string
	Source() string
	DuplicateCount() int
}

type FilterFunc[T Record] func(T) bool

var header = []string{"id", "date", "time", "type", "amount", "description", "shop_name", "category", "source", "duplicates"}

// Create renders records as a ledger CSV, skipping those the filter rejects.
func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range records {
		if filter != nil && !filter(r) {
			continue
		}
		_ = w.Write([]string{
			r.ID(),
			r.Date(),
			r.Time(),
			string(r.Type()),
			strconv.FormatFloat(r.Amount(), 'f', -1, 64),
			r.Description(),
			r.ShopName(),
			r.Category(),
			r.Source(),
			strconv.Itoa(r.DuplicateCount()),
		})
	}
	w.Flush()
	return buf.Bytes()
}
