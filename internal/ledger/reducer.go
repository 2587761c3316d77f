// Package ledger folds a card's event log into balances and transaction lists.
package ledger

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/card-ledger/internal/models"
)

// MaxSettled is how many settled transactions a Summary reports.
const MaxSettled = 3

type pendingEntry struct {
	amount decimal.Decimal
	time   string
}

type settledEntry struct {
	id          string
	amount      decimal.Decimal
	initialTime string
	finalTime   string
}

// Reduce processes events strictly in slice order and returns the resulting
// Summary. It never fails and never mutates events: unknown event types are
// skipped, a settlement without a prior hold is accepted as its own origin,
// and a posted payment without a prior initiation is dropped.
func Reduce(creditLimit float64, events []models.Event) models.Summary {
	available := toDecimal(creditLimit)
	payable := decimal.Zero

	// txnId -> open hold; authorizations and payment initiations share it.
	pending := make(map[string]pendingEntry)
	var settled []settledEntry

	for _, ev := range events {
		amount := toDecimal(ev.Amount)

		switch ev.EventType {
		case models.TxnAuthed:
			available = available.Sub(amount)
			pending[ev.TxnID] = pendingEntry{amount: amount, time: ev.EventTime}

		case models.TxnSettled:
			initialTime := ev.EventTime
			if p, ok := pending[ev.TxnID]; ok {
				available = available.Add(p.amount)
				initialTime = p.time
				delete(pending, ev.TxnID)
			}
			available = available.Sub(amount)
			payable = payable.Add(amount)
			settled = append(settled, settledEntry{
				id:          ev.TxnID,
				amount:      amount,
				initialTime: initialTime,
				finalTime:   ev.EventTime,
			})

		case models.PaymentInitiated:
			// stored signed; abs() is applied only when the payment posts
			pending[ev.TxnID] = pendingEntry{amount: amount, time: ev.EventTime}

		case models.PaymentPosted:
			p, ok := pending[ev.TxnID]
			if !ok {
				continue
			}
			delete(pending, ev.TxnID)
			paid := p.amount.Abs()
			available = available.Add(paid)
			payable = payable.Sub(paid)
			settled = append(settled, settledEntry{
				id:          ev.TxnID,
				amount:      paid.Neg(),
				initialTime: p.time,
				finalTime:   ev.EventTime,
			})
		}
	}

	return models.Summary{
		AvailableCredit:     available.Round(2).InexactFloat64(),
		PayableBalance:      payable.Round(2).InexactFloat64(),
		PendingTransactions: pendingView(pending),
		SettledTransactions: settledView(settled),
	}
}

// toDecimal treats NaN and infinities as 0; decimal cannot represent them.
func toDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// pendingView lists every open hold, newest first, ties broken by larger id.
func pendingView(pending map[string]pendingEntry) []models.PendingTransaction {
	out := make([]models.PendingTransaction, 0, len(pending))
	for id, p := range pending {
		out = append(out, models.PendingTransaction{
			ID:     id,
			Amount: p.amount.InexactFloat64(),
			Time:   p.time,
		})
	}
	slices.SortFunc(out, func(a, b models.PendingTransaction) int {
		if c := cmp.Compare(b.Time, a.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// settledView keeps the MaxSettled most recently finalized entries. Entries
// with equal (finalTime, id) stay in the order they were settled.
func settledView(settled []settledEntry) []models.SettledTransaction {
	slices.SortStableFunc(settled, func(a, b settledEntry) int {
		if c := cmp.Compare(b.finalTime, a.finalTime); c != 0 {
			return c
		}
		return cmp.Compare(b.id, a.id)
	})
	if len(settled) > MaxSettled {
		settled = settled[:MaxSettled]
	}

	out := make([]models.SettledTransaction, 0, len(settled))
	for _, s := range settled {
		out = append(out, models.SettledTransaction{
			ID:          s.id,
			Amount:      s.amount.InexactFloat64(),
			InitialTime: s.initialTime,
			FinalTime:   s.finalTime,
		})
	}
	return out
}
