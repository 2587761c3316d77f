package memory

import repo "github.com/baharkarakas/card-ledger/internal/repository"

func NewRepositories(initialCreditLimit float64) repo.Repositories {
	return repo.Repositories{
		Ledger:    NewLedger(initialCreditLimit),
		AuditLogs: NewAuditLogs(),
	}
}
