package services

import (
	"context"
	"errors"
	"testing"

	"github.com/baharkarakas/card-ledger/internal/api/validate"
	"github.com/baharkarakas/card-ledger/internal/models"
	"github.com/baharkarakas/card-ledger/internal/repository/memory"
	"github.com/baharkarakas/card-ledger/internal/worker"
)

func newService(t *testing.T) (*LedgerService, *memory.AuditLogsRepo, *worker.Pool) {
	t.Helper()
	audit := memory.NewAuditLogs()
	wp := worker.NewPool(1, 16)
	t.Cleanup(wp.Stop)
	return NewLedgerService(memory.NewLedger(1000), audit, wp, 1000), audit, wp
}

func TestAddEventAndSummary(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	for _, ev := range []models.Event{
		{EventType: models.TxnAuthed, EventTime: "t1", TxnID: "A", Amount: 100},
		{EventType: models.TxnSettled, EventTime: "t2", TxnID: "A", Amount: 90},
	} {
		if err := s.AddEvent(ctx, ev); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.AvailableCredit != 910 || sum.PayableBalance != 90 || len(sum.SettledTransactions) != 1 {
		t.Fatalf("summary=%+v", sum)
	}
}

func TestAddEventRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	err := s.AddEvent(ctx, models.Event{EventType: "BOGUS", EventTime: "t1", TxnID: "A"})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
	var errs validate.Errs
	if !errors.As(err, &errs) || len(errs) != 1 || errs[0].Field != "eventType" {
		t.Fatalf("field errors=%v", errs)
	}

	l, _ := s.Events(ctx)
	if len(l.Events) != 0 {
		t.Fatalf("invalid event was stored: %+v", l.Events)
	}
}

func TestAddEventsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	err := s.AddEvents(ctx, []models.Event{
		{EventType: models.TxnAuthed, EventTime: "t1", TxnID: "A", Amount: 5},
		{EventType: models.TxnAuthed, EventTime: "", TxnID: "B", Amount: 5},
	})
	var errs validate.Errs
	if !errors.As(err, &errs) || errs[0].Field != "events[1].eventTime" {
		t.Fatalf("err=%v", err)
	}
	if l, _ := s.Events(ctx); len(l.Events) != 0 {
		t.Fatalf("partial batch stored: %+v", l.Events)
	}

	if err := s.AddEvents(ctx, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("want ErrEmptyBatch, got %v", err)
	}

	if err := s.AddEvents(ctx, []models.Event{
		{EventType: models.PaymentInitiated, EventTime: "t1", TxnID: "P", Amount: -50},
		{EventType: models.PaymentPosted, EventTime: "t2", TxnID: "P"},
	}); err != nil {
		t.Fatalf("AddEvents: %v", err)
	}
	sum, _ := s.Summary(ctx)
	if sum.AvailableCredit != 1050 || sum.PayableBalance != -50 {
		t.Fatalf("summary=%+v", sum)
	}
}

func TestResetUsesCurrentInitialLimit(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	_ = s.AddEvent(ctx, models.Event{EventType: models.TxnAuthed, EventTime: "t1", TxnID: "A", Amount: 100})
	s.SetInitialCreditLimit(2500)
	if got := s.InitialCreditLimit(); got != 2500 {
		t.Fatalf("initial=%v", got)
	}

	sum, err := s.Reset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.AvailableCredit != 2500 || sum.PayableBalance != 0 || len(sum.PendingTransactions) != 0 || len(sum.SettledTransactions) != 0 {
		t.Fatalf("reset summary=%+v", sum)
	}
	l, _ := s.Events(ctx)
	if l.CreditLimit != 2500 || len(l.Events) != 0 {
		t.Fatalf("ledger after reset=%+v", l)
	}
}

func TestAuditEntriesRecorded(t *testing.T) {
	ctx := context.Background()
	s, _, wp := newService(t)

	_ = s.AddEvent(ctx, models.Event{EventType: models.TxnAuthed, EventTime: "t1", TxnID: "A", Amount: 1})
	_, _ = s.Reset(ctx)
	wp.Stop() // drain async audit writes

	logs, err := s.AuditTrail(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].Action != models.AuditReset || logs[1].Action != models.AuditEventAppended {
		t.Fatalf("audit=%+v", logs)
	}
	if logs[1].Details["txn_id"] != "A" {
		t.Fatalf("details=%+v", logs[1].Details)
	}
}
