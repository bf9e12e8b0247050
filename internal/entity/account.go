package entity

import "github.com/shopspring/decimal"

type Account struct {
	AccountID  string          `json:"accountId"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	LastUpdate Date            `json:"lastUpdate"`
}
