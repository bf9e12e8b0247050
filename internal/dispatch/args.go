package dispatch

import (
	"time"

	"bankledger/internal/entity"

	"github.com/shopspring/decimal"
)

type CreateAccountArgs struct {
	AccountID  string           `json:"accountId" validate:"required"`
	Name       string           `json:"name" validate:"required"`
	Balance    *decimal.Decimal `json:"balance" validate:"required"`
	LastUpdate *entity.Date     `json:"lastUpdate,omitempty"`
}

type AccountArgs struct {
	AccountID string `json:"accountId" validate:"required"`
}

type RangeArgs struct {
	StartAccountID string `json:"startAccountId" validate:"required"`
	EndAccountID   string `json:"endAccountId" validate:"required"`
}

type AmountArgs struct {
	AccountID string           `json:"accountId" validate:"required"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Date      *entity.Date     `json:"date,omitempty"`
}

type NoArgs struct{}

func timeOf(d *entity.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
