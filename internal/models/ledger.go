package models

// Ledger is a point-in-time copy of the account state: the credit limit and
// the event log in processing order.
type Ledger struct {
	CreditLimit float64 `json:"creditLimit"`
	Events      []Event `json:"events"`
}
