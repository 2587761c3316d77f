package postgres

import (
	repo "github.com/baharkarakas/card-ledger/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool, initialCreditLimit float64) repo.Repositories {
	return repo.Repositories{
		Ledger:    NewLedger(pool, initialCreditLimit),
		AuditLogs: &auditLogsRepo{pool},
	}
}
