package entity

import "github.com/shopspring/decimal"

type TransactionType string

const (
	DepositTransaction  TransactionType = "DEPOSIT"
	WithdrawTransaction TransactionType = "WITHDRAW"
	InterestTransaction TransactionType = "INTEREST"
)

// Transaction is one immutable journal entry of an account.
type Transaction struct {
	Type   TransactionType `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   Date            `json:"date"`
}

// TransactionRecord is a Transaction as read back from the ledger, together
// with the key it is stored under.
type TransactionRecord struct {
	Key string `json:"key"`
	Transaction
}
