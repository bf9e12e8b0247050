package entity

import (
	"fmt"
	"strings"
)

const (
	AccountKeyPrefix     = "a_"
	TransactionKeyPrefix = "t_"
	SequenceKeyPrefix    = "s_"

	// RangeLow and RangeHigh bound the id alphabet covered by full scans.
	// An account id whose first byte is outside [RangeLow, RangeHigh) is
	// invisible to FetchAllAccount.
	RangeLow  = "0"
	RangeHigh = "z"

	sequenceWidth = 20
)

func AccountKey(accountID string) string {
	return AccountKeyPrefix + accountID
}

func TransactionKey(accountID string, seq uint64) string {
	return transactionKeyBase(accountID) + TransactionSuffix(seq)
}

// TransactionSuffix renders seq zero padded so that lexical key order
// matches creation order.
func TransactionSuffix(seq uint64) string {
	return fmt.Sprintf("%0*d", sequenceWidth, seq)
}

func SequenceKey(accountID string) string {
	return SequenceKeyPrefix + accountID
}

// AccountRange returns the half-open key range [start, end) for accounts
// with ids between startID and endID.
func AccountRange(startID, endID string) (string, string) {
	return AccountKey(startID), AccountKey(endID)
}

func AllAccountsRange() (string, string) {
	return AccountRange(RangeLow, RangeHigh)
}

func TransactionRange(accountID string) (string, string) {
	base := transactionKeyBase(accountID)
	return base + RangeLow, base + RangeHigh
}

// IsTransactionKeyOf reports whether key is a journal key of accountID.
// The transaction range of "x" also spans keys of "x_1"; those carry a
// suffix that is not a pure sequence number.
func IsTransactionKeyOf(accountID, key string) bool {
	suffix, ok := strings.CutPrefix(key, transactionKeyBase(accountID))
	if !ok || len(suffix) != sequenceWidth {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return false
		}
	}
	return true
}

// ValidAccountID reports whether accountID is reachable by a full account scan.
func ValidAccountID(accountID string) bool {
	if accountID == "" {
		return false
	}
	return accountID[:1] >= RangeLow && accountID[:1] < RangeHigh
}

func transactionKeyBase(accountID string) string {
	return TransactionKeyPrefix + accountID + "_"
}
