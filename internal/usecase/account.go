package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bankledger/internal/entity"
	"bankledger/internal/interest"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Accounts implements the account state machine on top of a ledger State.
// It keeps no state of its own; every call works inside the invocation whose
// State it receives.
type Accounts struct {
	now func() time.Time
	log logrus.FieldLogger
}

type AccountsOption func(*Accounts)

// WithClock replaces time.Now as the source of default dates.
func WithClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) {
		a.now = now
	}
}

func NewAccounts(log logrus.FieldLogger, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		now: time.Now,
		log: log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type CreateAccountInput struct {
	AccountID string
	Name      string
	Balance   decimal.Decimal
	// LastUpdate defaults to now when zero.
	LastUpdate time.Time
}

func (a *Accounts) CreateAccount(st State, in CreateAccountInput) error {
	if !entity.ValidAccountID(in.AccountID) {
		return fmt.Errorf("%w: %q must start with a character in [%s, %s)",
			entity.InvalidAccountIDErr, in.AccountID, entity.RangeLow, entity.RangeHigh)
	}

	existing, err := a.QueryAccount(st, in.AccountID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", entity.AccountExistsErr, in.AccountID)
	}

	lastUpdate := in.LastUpdate
	if lastUpdate.IsZero() {
		lastUpdate = a.now()
	}

	account := entity.Account{
		AccountID:  in.AccountID,
		Name:       in.Name,
		Balance:    in.Balance.Round(2),
		LastUpdate: entity.NewDate(lastUpdate),
	}

	if err := putJSON(st, entity.AccountKey(account.AccountID), account); err != nil {
		return err
	}

	err = a.appendTransaction(st, account.AccountID, entity.Transaction{
		Type:   entity.DepositTransaction,
		Amount: account.Balance,
		Date:   account.LastUpdate,
	})
	if err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"accountId": account.AccountID,
		"balance":   account.Balance.String(),
	}).Info("account created")

	return nil
}

// QueryAccount returns nil without error when the account does not exist.
func (a *Accounts) QueryAccount(st State, accountID string) (*entity.Account, error) {
	raw, err := st.Get(entity.AccountKey(accountID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var account entity.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", accountID, err)
	}

	return &account, nil
}

// QueryAccounts returns the accounts stored in [startAccountID, endAccountID)
// keyed by their storage key.
func (a *Accounts) QueryAccounts(st State, startAccountID, endAccountID string) (map[string]entity.Account, error) {
	start, end := entity.AccountRange(startAccountID, endAccountID)
	return scanAccounts(st, start, end)
}

func (a *Accounts) FetchAllAccount(st State) (map[string]entity.Account, error) {
	start, end := entity.AllAccountsRange()
	return scanAccounts(st, start, end)
}

// FetchTransactions returns the journal of accountID in creation order.
func (a *Accounts) FetchTransactions(st State, accountID string) ([]entity.TransactionRecord, error) {
	start, end := entity.TransactionRange(accountID)
	it, err := st.Range(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	transactions := make([]entity.TransactionRecord, 0)
	for it.Next() {
		if !entity.IsTransactionKeyOf(accountID, it.Key()) {
			continue
		}

		record := entity.TransactionRecord{Key: it.Key()}
		if err := json.Unmarshal(it.Value(), &record.Transaction); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", it.Key(), err)
		}
		transactions = append(transactions, record)
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// Deposit accrues interest on the current balance up to date and then adds
// amount. A zero date means now; a date before the account's lastUpdate fails
// with StaleDateErr.
func (a *Accounts) Deposit(st State, accountID string, amount decimal.Decimal, date time.Time) error {
	return a.apply(st, accountID, entity.DepositTransaction, amount, date)
}

// Withdraw fails with InsufficientFundsErr, leaving the ledger untouched, when
// the balance before interest is lower than amount.
func (a *Accounts) Withdraw(st State, accountID string, amount decimal.Decimal, date time.Time) error {
	return a.apply(st, accountID, entity.WithdrawTransaction, amount, date)
}

func (a *Accounts) apply(st State, accountID string, kind entity.TransactionType, amount decimal.Decimal, date time.Time) error {
	account, err := a.QueryAccount(st, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: %s", entity.AccountNotFoundErr, accountID)
	}

	amount = amount.Round(2)

	if date.IsZero() {
		date = a.now()
	}
	when := entity.NewDate(date)

	if when.Before(account.LastUpdate.Time) {
		return fmt.Errorf("%w: %s is before %s", entity.StaleDateErr, when, account.LastUpdate)
	}

	delta := amount
	if kind == entity.WithdrawTransaction {
		if account.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s is less than %s",
				entity.InsufficientFundsErr, account.Balance.StringFixed(2), amount.StringFixed(2))
		}
		delta = amount.Neg()
	}

	accrued := interest.Calculate(account.Balance, account.LastUpdate.Time, when.Time)
	previous := account.Balance

	account.Balance = account.Balance.Add(delta).Add(accrued).Round(2)
	account.LastUpdate = when

	if err := putJSON(st, entity.AccountKey(accountID), account); err != nil {
		return err
	}

	for _, t := range []entity.Transaction{
		{Type: entity.InterestTransaction, Amount: accrued, Date: when},
		{Type: kind, Amount: amount, Date: when},
	} {
		if err := a.appendTransaction(st, accountID, t); err != nil {
			return err
		}
	}

	a.log.WithFields(logrus.Fields{
		"accountId": accountID,
		"type":      kind,
		"amount":    amount.String(),
		"interest":  accrued.String(),
		"before":    previous.String(),
		"after":     account.Balance.String(),
	}).Info("balance updated")

	return nil
}

func (a *Accounts) appendTransaction(st State, accountID string, t entity.Transaction) error {
	seq, err := nextSequence(st, accountID)
	if err != nil {
		return err
	}
	return putJSON(st, entity.TransactionKey(accountID, seq), t)
}

func nextSequence(st State, accountID string) (uint64, error) {
	key := entity.SequenceKey(accountID)

	raw, err := st.Get(key)
	if err != nil {
		return 0, err
	}

	var seq uint64
	if raw != nil {
		seq, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode journal sequence of %s: %w", accountID, err)
		}
	}
	seq++

	if err := st.Put(key, []byte(strconv.FormatUint(seq, 10))); err != nil {
		return 0, err
	}

	return seq, nil
}

func scanAccounts(st State, start, end string) (map[string]entity.Account, error) {
	it, err := st.Range(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	accounts := make(map[string]entity.Account)
	for it.Next() {
		var account entity.Account
		if err := json.Unmarshal(it.Value(), &account); err != nil {
			return nil, fmt.Errorf("decode account %s: %w", it.Key(), err)
		}
		accounts[it.Key()] = account
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func putJSON(st State, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return st.Put(key, raw)
}
