package repository

import (
	"context"

	"github.com/baharkarakas/card-ledger/internal/models"
)

// Ledger is the append-only event log of one card account. Implementations
// serialize writers against readers so a Snapshot always sees a complete,
// ordered prefix of the appended events.
type Ledger interface {
	// Append adds events at the end of the log, all or nothing.
	Append(ctx context.Context, events ...models.Event) error
	// Snapshot returns a copy of the credit limit and events.
	Snapshot(ctx context.Context) (models.Ledger, error)
	// Reset clears the log and sets the credit limit to creditLimit.
	Reset(ctx context.Context, creditLimit float64) (models.Ledger, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Repositories struct {
	Ledger    Ledger
	AuditLogs AuditLogs
}
