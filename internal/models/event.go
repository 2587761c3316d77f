package models

type EventType string

const (
	TxnAuthed        EventType = "TXN_AUTHED"
	TxnSettled       EventType = "TXN_SETTLED"
	PaymentInitiated EventType = "PAYMENT_INITIATED"
	PaymentPosted    EventType = "PAYMENT_POSTED"
)

// EventTypes lists the accepted event types in lifecycle order.
var EventTypes = []EventType{TxnAuthed, TxnSettled, PaymentInitiated, PaymentPosted}

func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Event is one immutable entry of a card's activity log.
// EventTime is compared as an opaque string; Amount defaults to 0 when omitted.
type Event struct {
	EventType EventType `json:"eventType"`
	EventTime string    `json:"eventTime"`
	TxnID     string    `json:"txnId"`
	Amount    float64   `json:"amount"`
}
