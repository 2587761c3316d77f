package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/card-ledger/internal/models"
	repo "github.com/baharkarakas/card-ledger/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerLockKey is the advisory lock every writer holds for the rest of its
// transaction, so card_events.seq values commit in allocation order and a
// snapshot always sees a prefix of the log.
const ledgerLockKey int64 = 0x6c656467 // "ledg"

// ledgerRepo stores the single card ledger in two tables: ledger_state holds
// the credit limit (row id=1) and card_events holds the log ordered by seq.
type ledgerRepo struct {
	pool    *pgxpool.Pool
	initial float64
}

func NewLedger(pool *pgxpool.Pool, initialCreditLimit float64) repo.Ledger {
	return &ledgerRepo{pool: pool, initial: initialCreditLimit}
}

func (r *ledgerRepo) Append(ctx context.Context, events ...models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.withTx(ctx, pgx.ReadCommitted, func(tx pgx.Tx) error {
		if err := lockLedger(ctx, tx); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, ev := range events {
			batch.Queue(
				`INSERT INTO card_events(event_type, event_time, txn_id, amount)
				 VALUES($1, $2, $3, $4)`,
				string(ev.EventType), ev.EventTime, ev.TxnID, ev.Amount,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *ledgerRepo) Snapshot(ctx context.Context) (models.Ledger, error) {
	var out models.Ledger
	err := r.withTx(ctx, pgx.RepeatableRead, func(tx pgx.Tx) error {
		var err error
		out, err = r.snapshotTx(ctx, tx)
		return err
	})
	return out, err
}

func (r *ledgerRepo) Reset(ctx context.Context, creditLimit float64) (models.Ledger, error) {
	var out models.Ledger
	err := r.withTx(ctx, pgx.Serializable, func(tx pgx.Tx) error {
		if err := lockLedger(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM card_events`); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO ledger_state(id, credit_limit, updated_at)
			 VALUES(1, $1, now())
			 ON CONFLICT (id) DO UPDATE
			 SET credit_limit = EXCLUDED.credit_limit, updated_at = now()`,
			creditLimit,
		); err != nil {
			return fmt.Errorf("set credit limit: %w", err)
		}
		out = models.Ledger{CreditLimit: creditLimit, Events: []models.Event{}}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) snapshotTx(ctx context.Context, tx pgx.Tx) (models.Ledger, error) {
	out := models.Ledger{CreditLimit: r.initial, Events: []models.Event{}}

	err := tx.QueryRow(ctx, `SELECT credit_limit FROM ledger_state WHERE id=1`).Scan(&out.CreditLimit)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return models.Ledger{}, fmt.Errorf("read credit limit: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT event_type, event_time, txn_id, amount
		   FROM card_events
		  ORDER BY seq`,
	)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.Event
		var typ string
		if err := rows.Scan(&typ, &ev.EventTime, &ev.TxnID, &ev.Amount); err != nil {
			return models.Ledger{}, err
		}
		ev.EventType = models.EventType(typ)
		out.Events = append(out.Events, ev)
	}
	return out, rows.Err()
}

func lockLedger(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	return nil
}

func (r *ledgerRepo) withTx(ctx context.Context, iso pgx.TxIsoLevel, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
