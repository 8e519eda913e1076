package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// IDGenerator hands out transaction ids built from the current time, a
// monotonic counter and a random suffix. One generator is shared by every
// file of a batch so ids never collide across files.
type IDGenerator struct {
	counter *atomic.Uint64
	now     func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counter: atomic.NewUint64(0), now: time.Now}
}

// Next returns a new id, e.g. tx-1717200000000-42-9f1c2d3e.
func (g *IDGenerator) Next() string {
	n := g.counter.Inc()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("tx-%d-%d-%s", g.now().UnixMilli(), n, suffix)
}
