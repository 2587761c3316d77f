package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/baharkarakas/card-ledger/internal/api/validate"
	"github.com/baharkarakas/card-ledger/internal/ledger"
	"github.com/baharkarakas/card-ledger/internal/metrics"
	"github.com/baharkarakas/card-ledger/internal/models"
	repo "github.com/baharkarakas/card-ledger/internal/repository"
	"github.com/baharkarakas/card-ledger/internal/worker"
)

// ErrInvalidEvent wraps validate.Errs for events rejected before they reach the log.
var ErrInvalidEvent = errors.New("invalid event")

// ErrEmptyBatch is returned by AddEvents when no events are given.
var ErrEmptyBatch = errors.New("batch must contain at least one event")

// LedgerService is the boundary between transport and the ledger store. It
// validates and appends events, and computes summaries by running
// ledger.Reduce over a snapshot taken from the store.
type LedgerService struct {
	ledger  repo.Ledger
	audit   repo.AuditLogs
	wp      *worker.Pool
	log     *slog.Logger
	initial atomic.Uint64 // math.Float64bits of the reset credit limit
}

func NewLedgerService(l repo.Ledger, a repo.AuditLogs, wp *worker.Pool, initialCreditLimit float64) *LedgerService {
	s := &LedgerService{ledger: l, audit: a, wp: wp, log: slog.Default()}
	s.SetInitialCreditLimit(initialCreditLimit)
	return s
}

// InitialCreditLimit is the limit Reset restores.
func (s *LedgerService) InitialCreditLimit() float64 {
	return math.Float64frombits(s.initial.Load())
}

// SetInitialCreditLimit changes the limit used by later resets; the current
// ledger is left alone.
func (s *LedgerService) SetInitialCreditLimit(v float64) {
	s.initial.Store(math.Float64bits(v))
}

// ----------------- Helpers -----------------

func (s *LedgerService) record(action string, details map[string]any) {
	if s.audit == nil || s.wp == nil {
		return
	}
	entity := "card"
	entry := models.AuditLog{
		EntityType: models.AuditEntityLedger,
		EntityID:   &entity,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Create(ctx, entry); err != nil {
			s.log.Warn("audit write failed", "action", action, "err", err)
		}
	})
}

// ----------------- Commands -----------------

func (s *LedgerService) AddEvent(ctx context.Context, ev models.Event) error {
	if errs := validate.Event("", ev); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, errs)
	}
	if err := s.ledger.Append(ctx, ev); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	metrics.EventsTotal.WithLabelValues(string(ev.EventType)).Inc()
	s.log.Debug("event appended", "event_type", ev.EventType, "txn_id", ev.TxnID, "event_time", ev.EventTime, "amount", ev.Amount)
	s.record(models.AuditEventAppended, map[string]any{
		"event_type": ev.EventType,
		"txn_id":     ev.TxnID,
		"event_time": ev.EventTime,
		"amount":     ev.Amount,
	})
	return nil
}

// AddEvents validates every event first and appends them in order as one
// store operation, so either all of them land or none do.
func (s *LedgerService) AddEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return ErrEmptyBatch
	}
	var errs validate.Errs
	for i, ev := range events {
		errs = append(errs, validate.Event(fmt.Sprintf("events[%d].", i), ev)...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, errs)
	}
	if err := s.ledger.Append(ctx, events...); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	for _, ev := range events {
		metrics.EventsTotal.WithLabelValues(string(ev.EventType)).Inc()
	}
	s.log.Debug("events appended", "count", len(events))
	s.record(models.AuditEventsAppended, map[string]any{"count": len(events)})
	return nil
}

// Reset restores the configured credit limit, clears the log and returns the
// summary of the empty ledger.
func (s *LedgerService) Reset(ctx context.Context) (models.Summary, error) {
	limit := s.InitialCreditLimit()
	l, err := s.ledger.Reset(ctx, limit)
	if err != nil {
		return models.Summary{}, fmt.Errorf("reset ledger: %w", err)
	}
	metrics.ResetsTotal.Inc()
	s.log.Info("ledger reset", "credit_limit", limit)
	s.record(models.AuditReset, map[string]any{"credit_limit": limit})
	return s.reduce(l), nil
}

// ----------------- Queries -----------------

func (s *LedgerService) Events(ctx context.Context) (models.Ledger, error) {
	l, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("snapshot ledger: %w", err)
	}
	return l, nil
}

func (s *LedgerService) Summary(ctx context.Context) (models.Summary, error) {
	l, err := s.Events(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return s.reduce(l), nil
}

func (s *LedgerService) AuditTrail(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if s.audit == nil {
		return []models.AuditLog{}, nil
	}
	return s.audit.List(ctx, limit)
}

func (s *LedgerService) reduce(l models.Ledger) models.Summary {
	start := time.Now()
	sum := ledger.Reduce(l.CreditLimit, l.Events)
	metrics.ReduceDuration.Observe(time.Since(start).Seconds())
	metrics.SummariesTotal.Inc()
	metrics.AvailableCredit.Set(sum.AvailableCredit)
	metrics.PayableBalance.Set(sum.PayableBalance)
	metrics.PendingTransactions.Set(float64(len(sum.PendingTransactions)))

	s.log.Debug("summary computed",
		"events", len(l.Events),
		"available_credit", sum.AvailableCredit,
		"payable_balance", sum.PayableBalance,
		"pending", len(sum.PendingTransactions),
		"settled", len(sum.SettledTransactions),
	)
	return sum
}
