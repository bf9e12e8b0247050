package entity

import "errors"

var (
	AccountNotFoundErr   = errors.New("account not found")
	AccountExistsErr     = errors.New("account already exists")
	InsufficientFundsErr = errors.New("no sufficient balance")
	InvalidAccountIDErr  = errors.New("invalid account id")
	StaleDateErr         = errors.New("date precedes last update")
)
