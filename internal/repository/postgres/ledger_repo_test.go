package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/baharkarakas/card-ledger/internal/db"
	"github.com/baharkarakas/card-ledger/internal/models"
	repo "github.com/baharkarakas/card-ledger/internal/repository"
)

// openRepos connects to TEST_DATABASE_URL and skips the test when it is unset.
func openRepos(t *testing.T) repo.Repositories {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := db.RunMigrations(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepositories(pool, 1000)
}

func TestLedgerRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := openRepos(t)
	if _, err := repos.Ledger.Reset(ctx, 1000); err != nil {
		t.Fatalf("reset: %v", err)
	}

	events := []models.Event{
		{EventType: models.TxnAuthed, EventTime: "2024-01-01T00:00:00Z", TxnID: "A", Amount: 12.5},
		{EventType: models.TxnSettled, EventTime: "2024-01-02T00:00:00Z", TxnID: "A", Amount: 10},
		{EventType: models.PaymentPosted, EventTime: "2024-01-03T00:00:00Z", TxnID: "P"},
	}
	if err := repos.Ledger.Append(ctx, events...); err != nil {
		t.Fatalf("append: %v", err)
	}

	snap, err := repos.Ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.CreditLimit != 1000 || len(snap.Events) != len(events) {
		t.Fatalf("snapshot=%+v", snap)
	}
	for i := range events {
		if snap.Events[i] != events[i] {
			t.Fatalf("event %d = %+v want %+v", i, snap.Events[i], events[i])
		}
	}

	reset, err := repos.Ledger.Reset(ctx, 750)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.CreditLimit != 750 || len(reset.Events) != 0 {
		t.Fatalf("reset=%+v", reset)
	}

	entity := "card"
	if err := repos.AuditLogs.Create(ctx, models.AuditLog{
		EntityType: models.AuditEntityLedger,
		EntityID:   &entity,
		Action:     models.AuditReset,
		Details:    map[string]any{"credit_limit": 750.0},
	}); err != nil {
		t.Fatalf("audit create: %v", err)
	}
	logs, err := repos.AuditLogs.List(ctx, 1)
	if err != nil || len(logs) != 1 || logs[0].Action != models.AuditReset {
		t.Fatalf("audit list=%+v err=%v", logs, err)
	}
}

func TestLedgerRepoConcurrentAppendsCommitInOrder(t *testing.T) {
	ctx := context.Background()
	repos := openRepos(t)
	if _, err := repos.Ledger.Reset(ctx, 1000); err != nil {
		t.Fatalf("reset: %v", err)
	}

	const writers = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		snaps [][]models.Event
	)
	wg.Add(writers * 2)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			if err := repos.Ledger.Append(ctx, models.Event{
				EventType: models.TxnAuthed, EventTime: "t1", TxnID: fmt.Sprintf("w-%d", i), Amount: 1,
			}); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
		go func() {
			defer wg.Done()
			snap, err := repos.Ledger.Snapshot(ctx)
			if err != nil {
				t.Errorf("snapshot: %v", err)
				return
			}
			mu.Lock()
			snaps = append(snaps, snap.Events)
			mu.Unlock()
		}()
	}
	wg.Wait()

	final, err := repos.Ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(final.Events) != writers {
		t.Fatalf("events=%d want %d", len(final.Events), writers)
	}
	// every intermediate snapshot must be a prefix of the final log
	for _, s := range snaps {
		for i := range s {
			if s[i] != final.Events[i] {
				t.Fatalf("snapshot is not a prefix: position %d = %+v, final has %+v", i, s[i], final.Events[i])
			}
		}
	}
}
