package models

type PendingTransaction struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Time   string  `json:"time"`
}

type SettledTransaction struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	InitialTime string  `json:"initialTime"`
	FinalTime   string  `json:"finalTime"`
}

type Summary struct {
	AvailableCredit     float64              `json:"availableCredit"`
	PayableBalance      float64              `json:"payableBalance"`
	PendingTransactions []PendingTransaction `json:"pendingTransactions"`
	SettledTransactions []SettledTransaction `json:"settledTransactions"`
}
