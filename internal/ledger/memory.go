// Package ledger provides the in-process idempotency ledger. Production
// deployments back the same interface with Postgres (internal/store) so the
// guarantee holds across instances; call semantics are identical.
package ledger

import (
	"context"
	"sync"
	"time"
)

type record struct {
	firstSeenAt time.Time
}

// Memory is a process-local IdempotencyLedger. The check and the insert
// happen under one lock, never as a separate read then write.
type Memory struct {
	mu        sync.Mutex
	processed map[string]record
}

func NewMemory() *Memory {
	return &Memory{processed: make(map[string]record)}
}

func (m *Memory) CheckAndMark(_ context.Context, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.processed[transactionID]; seen {
		return false, nil
	}
	m.processed[transactionID] = record{firstSeenAt: time.Now()}
	return true, nil
}

// Seen reports whether an id has already been marked, without marking it.
func (m *Memory) Seen(transactionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.processed[transactionID]
	return ok
}
