package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/card-ledger/internal/models"
)

type AuditLogsRepo struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogsRepo { return &AuditLogsRepo{} }

func (r *AuditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.logs = append(r.logs, l)
	r.mu.Unlock()
	return nil
}

// List returns up to limit entries, newest first.
func (r *AuditLogsRepo) List(_ context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		return []models.AuditLog{}, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, 0, min(limit, len(r.logs)))
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}
