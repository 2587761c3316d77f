// Package memory keeps the ledger in process memory. State does not survive a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/baharkarakas/card-ledger/internal/models"
)

type LedgerRepo struct {
	mu          sync.RWMutex
	creditLimit float64
	events      []models.Event
}

func NewLedger(creditLimit float64) *LedgerRepo {
	return &LedgerRepo{creditLimit: creditLimit}
}

func (r *LedgerRepo) Append(_ context.Context, events ...models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *LedgerRepo) Snapshot(_ context.Context) (models.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(), nil
}

func (r *LedgerRepo) Reset(_ context.Context, creditLimit float64) (models.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creditLimit = creditLimit
	r.events = nil
	return r.snapshotLocked(), nil
}

func (r *LedgerRepo) snapshotLocked() models.Ledger {
	events := slices.Clone(r.events)
	if events == nil {
		events = []models.Event{}
	}
	return models.Ledger{CreditLimit: r.creditLimit, Events: events}
}
