package usecase

import "time"

// State is the key-value view of the ledger available to one invocation.
// Everything written through it commits or rolls back together.
type State interface {
	// Get returns nil when key is absent.
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// Range iterates keys in [start, end) in ascending byte order.
	Range(start, end string) (Iterator, error)
}

// Iterator is a forward-only cursor over a Range. It is exhausted once Next
// returns false; a fresh Range call is the only way to start over.
type Iterator interface {
	Next() bool
	Key() string
	// Value is valid until the next call to Next.
	Value() []byte
	Err() error
	Close() error
}

type idempotenceRepository interface {
	// MakeRecord return true if it was first time to call this method with same id
	MakeRecord(id string, at time.Time) (bool, error)
	// Prune drops records made before the given instant.
	Prune(before time.Time) (int, error)
}
