// Package id hands out identifiers for catalog, order and payment records.
package id

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Offsets keep the id ranges of different record types apart.
const (
	ProductOffset  int64 = 2000
	OrderOffset    int64 = 3000
	LineItemOffset int64 = 4000
	PaymentOffset  int64 = 5000
)

// Sequence is a monotonic, concurrency-safe counter. The first value is offset+1.
type Sequence struct {
	n atomic.Int64
}

func NewSequence(offset int64) *Sequence {
	s := &Sequence{}
	s.n.Store(offset)
	return s
}

func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// OrderNumbers formats ORD-<YYYYMMDD>-<5-digit sequence> numbers. The sequence
// never resets, so numbers stay unique across days.
type OrderNumbers struct {
	seq Sequence
	now func() time.Time
}

func NewOrderNumbers(now func() time.Time) *OrderNumbers {
	if now == nil {
		now = time.Now
	}
	return &OrderNumbers{now: now}
}

func (g *OrderNumbers) Next() string {
	n := g.seq.Next()
	return fmt.Sprintf("ORD-%s-%05d", g.now().UTC().Format("20060102"), n)
}

// NewTransactionID returns TXN- followed by an upper-case random UUID.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString())
}
