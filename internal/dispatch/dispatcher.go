// Package dispatch routes named operations with JSON arguments to the account
// ledger and wraps the outcome in a Response envelope.
//
// Every invocation runs in exactly one ledger transaction: queries in a
// read-only one, mutations in a read-write one that is rolled back if the
// operation fails.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"bankledger/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	UnknownOperationErr = errors.New("no such operation")
	ValidationErr       = errors.New("invalid arguments")
)

type Operation string

const (
	CreateAccount     Operation = "createAccount"
	QueryAccount      Operation = "queryAccount"
	QueryAccounts     Operation = "queryAccounts"
	FetchAllAccount   Operation = "fetchAllAccount"
	FetchTransactions Operation = "fetchTransactions"
	Deposit           Operation = "deposit"
	Withdraw          Operation = "withdraw"
)

type store interface {
	Update(ctx context.Context, fn func(usecase.State) error) error
	View(ctx context.Context, fn func(usecase.State) error) error
}

type handler struct {
	mutates bool
	// prepare decodes and validates the payload before any transaction is
	// opened and returns the work to run inside it.
	prepare func(payload []byte) (func(usecase.State) (any, error), error)
}

type Dispatcher struct {
	ledger   store
	accounts *usecase.Accounts
	validate *validator.Validate
	log      logrus.FieldLogger
	newTxID  func() string

	handlers map[Operation]handler
}

func New(ledger store, accounts *usecase.Accounts, log logrus.FieldLogger) *Dispatcher {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonName)

	d := &Dispatcher{
		ledger:   ledger,
		accounts: accounts,
		validate: validate,
		log:      log,
		newTxID:  uuid.NewString,
		handlers: make(map[Operation]handler),
	}

	register(d, CreateAccount, true, func(st usecase.State, args CreateAccountArgs) (any, error) {
		return nil, d.accounts.CreateAccount(st, usecase.CreateAccountInput{
			AccountID:  args.AccountID,
			Name:       args.Name,
			Balance:    *args.Balance,
			LastUpdate: timeOf(args.LastUpdate),
		})
	})
	register(d, QueryAccount, false, func(st usecase.State, args AccountArgs) (any, error) {
		account, err := d.accounts.QueryAccount(st, args.AccountID)
		if err != nil || account == nil {
			return nil, err
		}
		return account, nil
	})
	register(d, QueryAccounts, false, func(st usecase.State, args RangeArgs) (any, error) {
		return d.accounts.QueryAccounts(st, args.StartAccountID, args.EndAccountID)
	})
	register(d, FetchAllAccount, false, func(st usecase.State, _ NoArgs) (any, error) {
		return d.accounts.FetchAllAccount(st)
	})
	register(d, FetchTransactions, false, func(st usecase.State, args AccountArgs) (any, error) {
		return d.accounts.FetchTransactions(st, args.AccountID)
	})
	register(d, Deposit, true, func(st usecase.State, args AmountArgs) (any, error) {
		return nil, d.accounts.Deposit(st, args.AccountID, *args.Amount, timeOf(args.Date))
	})
	register(d, Withdraw, true, func(st usecase.State, args AmountArgs) (any, error) {
		return nil, d.accounts.Withdraw(st, args.AccountID, *args.Amount, timeOf(args.Date))
	})

	return d
}

func register[T any](d *Dispatcher, op Operation, mutates bool, run func(usecase.State, T) (any, error)) {
	d.handlers[op] = handler{
		mutates: mutates,
		prepare: func(payload []byte) (func(usecase.State) (any, error), error) {
			var args T
			if err := d.decode(payload, &args); err != nil {
				return nil, err
			}
			return func(st usecase.State) (any, error) {
				return run(st, args)
			}, nil
		},
	}
}

// Operations lists the registered operation names in lexical order.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	return ops
}

// Mutates reports whether op changes ledger state. Unknown operations report
// false.
func (d *Dispatcher) Mutates(op string) bool {
	return d.handlers[Operation(op)].mutates
}

// Invoke runs op with the JSON payload. It never fails outright: errors end
// up in the returned envelope.
func (d *Dispatcher) Invoke(ctx context.Context, op string, payload []byte) Response {
	txID := d.newTxID()
	started := time.Now()

	result, err := d.invoke(ctx, op, payload)

	log := d.log.WithFields(logrus.Fields{
		"txId":      txID,
		"operation": op,
		"duration":  time.Since(started).String(),
	})

	if err != nil {
		log.WithError(err).Warn("invocation failed")
		return failure(txID, err)
	}

	log.Debug("invocation succeeded")
	return success(txID, result)
}

func (d *Dispatcher) invoke(ctx context.Context, op string, payload []byte) (json.RawMessage, error) {
	h, ok := d.handlers[Operation(op)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", UnknownOperationErr, op)
	}

	run, err := h.prepare(payload)
	if err != nil {
		return nil, err
	}

	var result any
	tx := func(st usecase.State) error {
		r, err := run(st)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if h.mutates {
		err = d.ledger.Update(ctx, tx)
	} else {
		err = d.ledger.View(ctx, tx)
	}
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", op, err)
	}

	return raw, nil
}

func (d *Dispatcher) decode(payload []byte, args any) error {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	if err := json.Unmarshal(payload, args); err != nil {
		return fmt.Errorf("%w: %v", ValidationErr, err)
	}

	if err := d.validate.Struct(args); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problems := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ValidationErr, strings.Join(problems, ", "))
		}
		return fmt.Errorf("%w: %v", ValidationErr, err)
	}

	return nil
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
