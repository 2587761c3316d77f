package validate

import (
	"testing"

	"github.com/baharkarakas/card-ledger/internal/models"
)

func TestEventValid(t *testing.T) {
	errs := Event("", models.Event{EventType: models.PaymentPosted, EventTime: "2024-01-01T00:00", TxnID: "P1"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestEventInvalid(t *testing.T) {
	errs := Event("events[2].", models.Event{EventType: "TXN_REFUNDED", EventTime: "  "})
	if len(errs) != 3 {
		t.Fatalf("errs=%v want 3", errs)
	}
	want := []string{"events[2].eventType", "events[2].eventTime", "events[2].txnId"}
	for i, f := range want {
		if errs[i].Field != f {
			t.Fatalf("errs[%d].Field=%q want %q", i, errs[i].Field, f)
		}
	}
	if msg := errs.Error(); msg == "" {
		t.Fatal("empty error message")
	}
}
