package transfer

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

type Movement struct {
	Account   string
	Amount    decimal.Decimal
	Reference string
}

// MemoryMover records transfers and can be told to fail, which tests use
// to exercise withdrawal rollback.
type MemoryMover struct {
	mu        sync.Mutex
	movements []Movement
	failWith  error
}

func NewMemoryMover() *MemoryMover {
	return &MemoryMover{}
}

func (m *MemoryMover) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MemoryMover) Transfer(_ context.Context, account string, amount decimal.Decimal, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.movements = append(m.movements, Movement{Account: account, Amount: amount, Reference: reference})
	return nil
}

func (m *MemoryMover) Movements() []Movement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Movement, len(m.movements))
	copy(out, m.movements)
	return out
}
